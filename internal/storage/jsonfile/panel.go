package jsonfile

import (
	"context"
	"sort"
	"time"

	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// GetPanel returns a panel by ID, or nil when it does not exist.
func (c *Client) GetPanel(_ context.Context, id string) (*types.TicketPanel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.data.Panels[id]), nil
}

// GetPanelsByGuild lists a guild's panels, newest first.
func (c *Client) GetPanelsByGuild(_ context.Context, guildID string) ([]*types.TicketPanel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*types.TicketPanel
	for _, p := range c.data.Panels {
		if p.GuildID == guildID {
			out = append(out, clone(p))
		}
	}
	sortByCreated(out, func(p *types.TicketPanel) time.Time { return p.CreatedAt })
	return out, nil
}

// CreatePanel stores a new panel draft with default copy applied.
func (c *Client) CreatePanel(_ context.Context, panel *types.TicketPanel) (*types.TicketPanel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := clone(panel)
	stored.ID = newID()
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

	c.data.Panels[stored.ID] = stored
	if err := c.flush(); err != nil {
		delete(c.data.Panels, stored.ID)
		return nil, err
	}
	return clone(stored), nil
}

// UpdatePanel applies the non-nil fields of update. Returns nil when the
// panel does not exist.
func (c *Client) UpdatePanel(_ context.Context, id string, update storage.PanelUpdate) (*types.TicketPanel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.data.Panels[id]
	if !ok {
		return nil, nil
	}

	prev := *p
	setString(&p.ChannelID, update.ChannelID)
	setString(&p.MessageID, update.MessageID)
	setString(&p.Title, update.Title)
	setString(&p.Description, update.Description)
	setString(&p.EmbedColor, update.EmbedColor)
	setString(&p.CategoryID, update.CategoryID)
	setString(&p.WelcomeMessage, update.WelcomeMessage)
	setBool(&p.RequireReason, update.RequireReason)
	setBool(&p.IsConfigured, update.IsConfigured)

	if err := c.flush(); err != nil {
		*p = prev
		return nil, err
	}
	return clone(p), nil
}

// DeletePanel removes a panel and its buttons.
func (c *Client) DeletePanel(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data.Panels, id)
	for btnID, b := range c.data.PanelButtons {
		if b.PanelID == id {
			delete(c.data.PanelButtons, btnID)
		}
	}
	return c.flush()
}

// GetPanelButtons lists a panel's options in display order.
func (c *Client) GetPanelButtons(_ context.Context, panelID string) ([]*types.PanelButton, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*types.PanelButton
	for _, b := range c.data.PanelButtons {
		if b.PanelID == panelID {
			out = append(out, clone(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// CreatePanelButton appends a new option to a panel.
func (c *Client) CreatePanelButton(_ context.Context, button *types.PanelButton) (*types.PanelButton, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := clone(button)
	stored.ID = newID()
	if stored.Style == "" {
		stored.Style = types.ButtonStylePrimary
	}
	stored.CreatedAt = time.Now().UTC()

	c.data.PanelButtons[stored.ID] = stored
	if err := c.flush(); err != nil {
		delete(c.data.PanelButtons, stored.ID)
		return nil, err
	}
	return clone(stored), nil
}

// UpdatePanelButton applies the non-nil fields of update. Returns nil when
// the button does not exist.
func (c *Client) UpdatePanelButton(_ context.Context, id string, update storage.ButtonUpdate) (*types.PanelButton, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.data.PanelButtons[id]
	if !ok {
		return nil, nil
	}

	prev := *b
	setString(&b.Label, update.Label)
	setString(&b.Emoji, update.Emoji)
	if update.Style != nil {
		b.Style = *update.Style
	}
	if update.Order != nil {
		b.Order = *update.Order
	}

	if err := c.flush(); err != nil {
		*b = prev
		return nil, err
	}
	return clone(b), nil
}

// DeletePanelButton removes one option.
func (c *Client) DeletePanelButton(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data.PanelButtons, id)
	return c.flush()
}
