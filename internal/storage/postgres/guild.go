package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// GetGuildConfig returns the config for a guild, or nil when none exists.
func (c *Client) GetGuildConfig(ctx context.Context, guildID string) (*types.GuildConfig, error) {
	cfg := new(types.GuildConfig)
	err := c.db.NewSelect().
		Model(cfg).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config: %w", err)
	}
	return cfg, nil
}

// GetGuildConfigByKey resolves a dashboard server key to its guild config.
func (c *Client) GetGuildConfigByKey(ctx context.Context, serverKey string) (*types.GuildConfig, error) {
	cfg := new(types.GuildConfig)
	err := c.db.NewSelect().
		Model(cfg).
		Where("server_key = ?", serverKey).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild config by key: %w", err)
	}
	return cfg, nil
}

// GetAllGuildConfigs returns every guild config, newest first.
func (c *Client) GetAllGuildConfigs(ctx context.Context) ([]*types.GuildConfig, error) {
	var configs []*types.GuildConfig
	err := c.db.NewSelect().
		Model(&configs).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild configs: %w", err)
	}
	return configs, nil
}

// CreateGuildConfig stores a new guild config, filling the ID, server key,
// default texts, and creation time.
func (c *Client) CreateGuildConfig(ctx context.Context, config *types.GuildConfig) (*types.GuildConfig, error) {
	stored := *config
	stored.ID = uuid.NewString()
	if stored.ServerKey == "" {
		stored.ServerKey = storage.GenerateServerKey()
	}
	if stored.AISystemPrompt == "" {
		stored.AISystemPrompt = types.DefaultSystemPrompt
	}
	if stored.WelcomeMessage == "" {
		stored.WelcomeMessage = types.DefaultWelcomeMessage
	}
	if stored.PanelTitle == "" {
		stored.PanelTitle = types.DefaultPanelTitle
	}
	if stored.PanelDescription == "" {
		stored.PanelDescription = types.DefaultPanelDescription
	}
	if stored.PanelButtonText == "" {
		stored.PanelButtonText = types.DefaultPanelButtonText
	}
	if stored.PanelColor == "" {
		stored.PanelColor = types.DefaultPanelColor
	}
	stored.CreatedAt = time.Now().UTC()

	if _, err := c.db.NewInsert().Model(&stored).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create guild config: %w", err)
	}
	return &stored, nil
}

// UpdateGuildConfig applies the non-nil fields of update. Returns nil when
// the guild has no config.
func (c *Client) UpdateGuildConfig(ctx context.Context, guildID string, update storage.GuildConfigUpdate) (*types.GuildConfig, error) {
	q := c.db.NewUpdate().
		Model((*types.GuildConfig)(nil)).
		Where("guild_id = ?", guildID)

	changed := false
	set := func(column string, value any) {
		q.Set(column+" = ?", value)
		changed = true
	}
	if update.GuildName != nil {
		set("guild_name", *update.GuildName)
	}
	if update.GuildIcon != nil {
		set("guild_icon", *update.GuildIcon)
	}
	if update.ServerKey != nil {
		set("server_key", *update.ServerKey)
	}
	if update.TicketCategoryID != nil {
		set("ticket_category_id", *update.TicketCategoryID)
	}
	if update.TicketPanelChannelID != nil {
		set("ticket_panel_channel_id", *update.TicketPanelChannelID)
	}
	if update.TicketPanelMessageID != nil {
		set("ticket_panel_message_id", *update.TicketPanelMessageID)
	}
	if update.FeedbackChannelID != nil {
		set("feedback_channel_id", *update.FeedbackChannelID)
	}
	if update.LogChannelID != nil {
		set("log_channel_id", *update.LogChannelID)
	}
	if update.StaffRoleID != nil {
		set("staff_role_id", *update.StaffRoleID)
	}
	if update.AIEnabled != nil {
		set("ai_enabled", *update.AIEnabled)
	}
	if update.AISystemPrompt != nil {
		set("ai_system_prompt", *update.AISystemPrompt)
	}
	if update.WelcomeMessage != nil {
		set("welcome_message", *update.WelcomeMessage)
	}
	if update.PanelTitle != nil {
		set("panel_title", *update.PanelTitle)
	}
	if update.PanelDescription != nil {
		set("panel_description", *update.PanelDescription)
	}
	if update.PanelButtonText != nil {
		set("panel_button_text", *update.PanelButtonText)
	}
	if update.PanelColor != nil {
		set("panel_color", *update.PanelColor)
	}

	if changed {
		if _, err := q.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to update guild config: %w", err)
		}
	}
	return c.GetGuildConfig(ctx, guildID)
}

// DeleteGuildConfig removes a guild's config. Missing configs are a no-op.
func (c *Client) DeleteGuildConfig(ctx context.Context, guildID string) error {
	_, err := c.db.NewDelete().
		Model((*types.GuildConfig)(nil)).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete guild config: %w", err)
	}
	return nil
}
