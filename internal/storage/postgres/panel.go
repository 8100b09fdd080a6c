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

// GetPanel returns a panel by ID, or nil when it does not exist.
func (c *Client) GetPanel(ctx context.Context, id string) (*types.TicketPanel, error) {
	panel := new(types.TicketPanel)
	err := c.db.NewSelect().
		Model(panel).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get panel: %w", err)
	}
	return panel, nil
}

// GetPanelsByGuild lists a guild's panels, newest first.
func (c *Client) GetPanelsByGuild(ctx context.Context, guildID string) ([]*types.TicketPanel, error) {
	var panels []*types.TicketPanel
	err := c.db.NewSelect().
		Model(&panels).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild panels: %w", err)
	}
	return panels, nil
}

// CreatePanel stores a new panel draft with default copy applied.
func (c *Client) CreatePanel(ctx context.Context, panel *types.TicketPanel) (*types.TicketPanel, error) {
	stored := *panel
	stored.ID = uuid.NewString()
	if stored.Title == "" {
		stored.Title = types.DefaultPanelTitle
	}
	if stored.Description == "" {
		stored.Description = types.DefaultPanelDescription
	}
	if stored.EmbedColor == "" {
		stored.EmbedColor = types.DefaultPanelColor
	}
	if stored.WelcomeMessage == "" {
		stored.WelcomeMessage = types.DefaultWelcomeMessage
	}
	stored.CreatedAt = time.Now().UTC()

	if _, err := c.db.NewInsert().Model(&stored).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create panel: %w", err)
	}
	return &stored, nil
}

// UpdatePanel applies the non-nil fields of update. Returns nil when the
// panel does not exist.
func (c *Client) UpdatePanel(ctx context.Context, id string, update storage.PanelUpdate) (*types.TicketPanel, error) {
	q := c.db.NewUpdate().
		Model((*types.TicketPanel)(nil)).
		Where("id = ?", id)

	changed := false
	set := func(column string, value any) {
		q.Set(column+" = ?", value)
		changed = true
	}
	if update.ChannelID != nil {
		set("channel_id", *update.ChannelID)
	}
	if update.MessageID != nil {
		set("message_id", *update.MessageID)
	}
	if update.Title != nil {
		set("title", *update.Title)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}
	if update.EmbedColor != nil {
		set("embed_color", *update.EmbedColor)
	}
	if update.CategoryID != nil {
		set("category_id", *update.CategoryID)
	}
	if update.WelcomeMessage != nil {
		set("welcome_message", *update.WelcomeMessage)
	}
	if update.RequireReason != nil {
		set("require_reason", *update.RequireReason)
	}
	if update.IsConfigured != nil {
		set("is_configured", *update.IsConfigured)
	}

	if changed {
		if _, err := q.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to update panel: %w", err)
		}
	}
	return c.GetPanel(ctx, id)
}

// DeletePanel removes a panel; its buttons go with it via the FK cascade.
func (c *Client) DeletePanel(ctx context.Context, id string) error {
	if _, err := c.db.NewDelete().
		Model((*types.TicketPanel)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete panel: %w", err)
	}
	return nil
}

// GetPanelButtons lists a panel's options in display order.
func (c *Client) GetPanelButtons(ctx context.Context, panelID string) ([]*types.PanelButton, error) {
	var buttons []*types.PanelButton
	err := c.db.NewSelect().
		Model(&buttons).
		Where("panel_id = ?", panelID).
		Order("btn_order ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get panel buttons: %w", err)
	}
	return buttons, nil
}

// CreatePanelButton appends a new option to a panel.
func (c *Client) CreatePanelButton(ctx context.Context, button *types.PanelButton) (*types.PanelButton, error) {
	stored := *button
	stored.ID = uuid.NewString()
	if stored.Style == "" {
		stored.Style = types.ButtonStylePrimary
	}
	stored.CreatedAt = time.Now().UTC()

	if _, err := c.db.NewInsert().Model(&stored).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create panel button: %w", err)
	}
	return &stored, nil
}

// UpdatePanelButton applies the non-nil fields of update. Returns nil when
// the button does not exist.
func (c *Client) UpdatePanelButton(ctx context.Context, id string, update storage.ButtonUpdate) (*types.PanelButton, error) {
	q := c.db.NewUpdate().
		Model((*types.PanelButton)(nil)).
		Where("id = ?", id)

	changed := false
	set := func(column string, value any) {
		q.Set(column+" = ?", value)
		changed = true
	}
	if update.Label != nil {
		set("label", *update.Label)
	}
	if update.Emoji != nil {
		set("emoji", *update.Emoji)
	}
	if update.Style != nil {
		set("style", *update.Style)
	}
	if update.Order != nil {
		set("btn_order", *update.Order)
	}

	if changed {
		if _, err := q.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to update panel button: %w", err)
		}
	}

	button := new(types.PanelButton)
	err := c.db.NewSelect().
		Model(button).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get panel button: %w", err)
	}
	return button, nil
}

// DeletePanelButton removes one option.
func (c *Client) DeletePanelButton(ctx context.Context, id string) error {
	if _, err := c.db.NewDelete().
		Model((*types.PanelButton)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete panel button: %w", err)
	}
	return nil
}
