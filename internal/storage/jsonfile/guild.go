package jsonfile

import (
	"context"
	"time"

	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// GetGuildConfig returns the config for a guild, or nil when none exists.
func (c *Client) GetGuildConfig(_ context.Context, guildID string) (*types.GuildConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, cfg := range c.data.GuildConfigs {
		if cfg.GuildID == guildID {
			return clone(cfg), nil
		}
	}
	return nil, nil
}

// GetGuildConfigByKey resolves a dashboard server key to its guild config.
func (c *Client) GetGuildConfigByKey(_ context.Context, serverKey string) (*types.GuildConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, cfg := range c.data.GuildConfigs {
		if cfg.ServerKey == serverKey {
			return clone(cfg), nil
		}
	}
	return nil, nil
}

// GetAllGuildConfigs returns every guild config, newest first.
func (c *Client) GetAllGuildConfigs(_ context.Context) ([]*types.GuildConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	configs := make([]*types.GuildConfig, 0, len(c.data.GuildConfigs))
	for _, cfg := range c.data.GuildConfigs {
		configs = append(configs, clone(cfg))
	}
	sortByCreated(configs, func(cfg *types.GuildConfig) time.Time { return cfg.CreatedAt })
	return configs, nil
}

// CreateGuildConfig stores a new guild config, filling the ID, server key,
// default texts, and creation time.
func (c *Client) CreateGuildConfig(_ context.Context, config *types.GuildConfig) (*types.GuildConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := clone(config)
	stored.ID = newID()
	if stored.ServerKey == "" {
		stored.ServerKey = storage.GenerateServerKey()
	}
	applyGuildDefaults(stored)
	stored.CreatedAt = time.Now().UTC()

	c.data.GuildConfigs[stored.ID] = stored
	if err := c.flush(); err != nil {
		delete(c.data.GuildConfigs, stored.ID)
		return nil, err
	}
	return clone(stored), nil
}

// UpdateGuildConfig applies the non-nil fields of update. Returns nil when
// the guild has no config.
func (c *Client) UpdateGuildConfig(_ context.Context, guildID string, update storage.GuildConfigUpdate) (*types.GuildConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var cfg *types.GuildConfig
	for _, candidate := range c.data.GuildConfigs {
		if candidate.GuildID == guildID {
			cfg = candidate
			break
		}
	}
	if cfg == nil {
		return nil, nil
	}

	prev := *cfg
	applyGuildUpdate(cfg, update)
	if err := c.flush(); err != nil {
		*cfg = prev
		return nil, err
	}
	return clone(cfg), nil
}

// DeleteGuildConfig removes a guild's config. Missing configs are a no-op.
func (c *Client) DeleteGuildConfig(_ context.Context, guildID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var id string
	for candidateID, cfg := range c.data.GuildConfigs {
		if cfg.GuildID == guildID {
			id = candidateID
			break
		}
	}
	if id == "" {
		return nil
	}

	removed := c.data.GuildConfigs[id]
	delete(c.data.GuildConfigs, id)
	if err := c.flush(); err != nil {
		c.data.GuildConfigs[id] = removed
		return err
	}
	return nil
}

func applyGuildDefaults(cfg *types.GuildConfig) {
	if cfg.AISystemPrompt == "" {
		cfg.AISystemPrompt = types.DefaultSystemPrompt
	}
	if cfg.WelcomeMessage == "" {
		cfg.WelcomeMessage = types.DefaultWelcomeMessage
	}
	if cfg.PanelTitle == "" {
		cfg.PanelTitle = types.DefaultPanelTitle
	}
	if cfg.PanelDescription == "" {
		cfg.PanelDescription = types.DefaultPanelDescription
	}
	if cfg.PanelButtonText == "" {
		cfg.PanelButtonText = types.DefaultPanelButtonText
	}
	if cfg.PanelColor == "" {
		cfg.PanelColor = types.DefaultPanelColor
	}
}

func applyGuildUpdate(cfg *types.GuildConfig, update storage.GuildConfigUpdate) {
	setString(&cfg.GuildName, update.GuildName)
	setString(&cfg.GuildIcon, update.GuildIcon)
	setString(&cfg.ServerKey, update.ServerKey)
	setString(&cfg.TicketCategoryID, update.TicketCategoryID)
	setString(&cfg.TicketPanelChannelID, update.TicketPanelChannelID)
	setString(&cfg.TicketPanelMessageID, update.TicketPanelMessageID)
	setString(&cfg.FeedbackChannelID, update.FeedbackChannelID)
	setString(&cfg.LogChannelID, update.LogChannelID)
	setString(&cfg.StaffRoleID, update.StaffRoleID)
	setBool(&cfg.AIEnabled, update.AIEnabled)
	setString(&cfg.AISystemPrompt, update.AISystemPrompt)
	setString(&cfg.WelcomeMessage, update.WelcomeMessage)
	setString(&cfg.PanelTitle, update.PanelTitle)
	setString(&cfg.PanelDescription, update.PanelDescription)
	setString(&cfg.PanelButtonText, update.PanelButtonText)
	setString(&cfg.PanelColor, update.PanelColor)
}
