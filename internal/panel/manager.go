// Package panel implements the configurable ticket panel surface: drafts,
// option management, publication, and the reaction-based emoji capture.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/discordgw"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// MaxOptions is the Discord select menu limit.
const MaxOptions = 25

// EmojiCaptureWindow is how long the bot waits for a reaction when an admin
// is assigning an emoji to a panel option.
const EmojiCaptureWindow = 30 * time.Second

var (
	// ErrNotFound is returned when the panel does not exist.
	ErrNotFound = errors.New("panel not found")
	// ErrNoOptions is returned when publishing a panel without options.
	ErrNoOptions = errors.New("panel has no options")
	// ErrTooManyOptions is returned when the option limit is reached.
	ErrTooManyOptions = errors.New("panel option limit reached")
	// ErrInvalidColor is returned for colors that are not hex RGB.
	ErrInvalidColor = errors.New("invalid hex color")
	// ErrInvalidCategory is returned when the target channel is not a
	// category.
	ErrInvalidCategory = errors.New("channel is not a category")
)

// Manager drives panel configuration and publication.
type Manager struct {
	store  storage.Client
	gw     discordgw.Gateway
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]pendingEmoji // keyed by userID:channelID
}

type pendingEmoji struct {
	panelID  string
	buttonID string
	expires  time.Time
}

// NewManager creates a panel Manager.
func NewManager(store storage.Client, gw discordgw.Gateway, logger *zap.Logger) *Manager {
	return &Manager{
		store:   store,
		gw:      gw,
		logger:  logger.Named("panel_manager"),
		pending: make(map[string]pendingEmoji),
	}
}

// CreateDraft creates an unpublished panel bound to a channel.
func (m *Manager) CreateDraft(ctx context.Context, guildID, channelID, createdBy string) (*types.TicketPanel, error) {
	panel, err := m.store.CreatePanel(ctx, &types.TicketPanel{
		GuildID:   guildID,
		ChannelID: channelID,
		CreatedBy: createdBy,
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Panel draft created",
		zap.String("guild_id", guildID),
		zap.String("panel_id", panel.ID))
	return panel, nil
}

// Get returns a panel or ErrNotFound.
func (m *Manager) Get(ctx context.Context, panelID string) (*types.TicketPanel, error) {
	panel, err := m.store.GetPanel(ctx, panelID)
	if err != nil {
		return nil, err
	}
	if panel == nil {
		return nil, ErrNotFound
	}
	return panel, nil
}

// update applies a partial update, mapping a missing panel to ErrNotFound.
func (m *Manager) update(ctx context.Context, panelID string, upd storage.PanelUpdate) (*types.TicketPanel, error) {
	panel, err := m.store.UpdatePanel(ctx, panelID, upd)
	if err != nil {
		return nil, err
	}
	if panel == nil {
		return nil, ErrNotFound
	}
	return panel, nil
}

// SetTitle updates the embed title.
func (m *Manager) SetTitle(ctx context.Context, panelID, title string) (*types.TicketPanel, error) {
	return m.update(ctx, panelID, storage.PanelUpdate{Title: &title})
}

// SetDescription updates the embed description.
func (m *Manager) SetDescription(ctx context.Context, panelID, description string) (*types.TicketPanel, error) {
	return m.update(ctx, panelID, storage.PanelUpdate{Description: &description})
}

// SetColor updates the embed color, accepting "RRGGBB" with or without the
// leading hash.
func (m *Manager) SetColor(ctx context.Context, panelID, color string) (*types.TicketPanel, error) {
	normalized, ok := discordgw.NormalizeColor(color)
	if !ok {
		return nil, ErrInvalidColor
	}
	return m.update(ctx, panelID, storage.PanelUpdate{EmbedColor: &normalized})
}

// SetCategory points tickets from this panel at a category channel.
func (m *Manager) SetCategory(ctx context.Context, panelID, categoryID string) (*types.TicketPanel, error) {
	isCategory, err := m.gw.IsCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !isCategory {
		return nil, ErrInvalidCategory
	}
	return m.update(ctx, panelID, storage.PanelUpdate{CategoryID: &categoryID})
}

// SetWelcome updates the welcome text used inside tickets opened from this
// panel.
func (m *Manager) SetWelcome(ctx context.Context, panelID, welcome string) (*types.TicketPanel, error) {
	return m.update(ctx, panelID, storage.PanelUpdate{WelcomeMessage: &welcome})
}

// ToggleRequireReason flips whether opening a ticket asks for a motive.
func (m *Manager) ToggleRequireReason(ctx context.Context, panelID string) (*types.TicketPanel, error) {
	panel, err := m.Get(ctx, panelID)
	if err != nil {
		return nil, err
	}
	flipped := !panel.RequireReason
	return m.update(ctx, panelID, storage.PanelUpdate{RequireReason: &flipped})
}

// AddOption appends an option to the panel.
func (m *Manager) AddOption(ctx context.Context, panelID, label, emoji string, style types.ButtonStyle) (*types.PanelButton, error) {
	if _, err := m.Get(ctx, panelID); err != nil {
		return nil, err
	}

	buttons, err := m.store.GetPanelButtons(ctx, panelID)
	if err != nil {
		return nil, err
	}
	if len(buttons) >= MaxOptions {
		return nil, ErrTooManyOptions
	}

	button, err := m.store.CreatePanelButton(ctx, &types.PanelButton{
		PanelID: panelID,
		Label:   label,
		Emoji:   emoji,
		Style:   style,
		Order:   len(buttons),
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Panel option added",
		zap.String("panel_id", panelID),
		zap.String("label", label))
	return button, nil
}

// RemoveOption drops one option and compacts the order of the rest.
func (m *Manager) RemoveOption(ctx context.Context, panelID, buttonID string) error {
	if err := m.store.DeletePanelButton(ctx, buttonID); err != nil {
		return err
	}

	buttons, err := m.store.GetPanelButtons(ctx, panelID)
	if err != nil {
		return err
	}
	for i, b := range buttons {
		if b.Order != i {
			order := i
			if _, err := m.store.UpdatePanelButton(ctx, b.ID, storage.ButtonUpdate{Order: &order}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Options lists the panel's options in display order.
func (m *Manager) Options(ctx context.Context, panelID string) ([]*types.PanelButton, error) {
	return m.store.GetPanelButtons(ctx, panelID)
}

// Publish posts the panel to its channel through the channel webhook.
// Republishing an already published panel replaces the previous message.
func (m *Manager) Publish(ctx context.Context, panelID string) (*types.TicketPanel, error) {
	panel, err := m.Get(ctx, panelID)
	if err != nil {
		return nil, err
	}

	buttons, err := m.store.GetPanelButtons(ctx, panelID)
	if err != nil {
		return nil, err
	}
	if len(buttons) == 0 {
		return nil, ErrNoOptions
	}

	if panel.MessageID != "" {
		// Best effort: the old message may have been deleted by hand.
		if err := m.gw.DeleteMessage(ctx, panel.ChannelID, panel.MessageID); err != nil {
			m.logger.Debug("Failed to delete previous panel message",
				zap.String("panel_id", panelID), zap.Error(err))
		}
	}

	messageID, err := m.gw.PublishWebhookMessage(ctx, panel.ChannelID, publishMessage(panel, buttons))
	if err != nil {
		return nil, err
	}

	configured := true
	updated, err := m.update(ctx, panelID, storage.PanelUpdate{
		MessageID:    &messageID,
		IsConfigured: &configured,
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Panel published",
		zap.String("panel_id", panelID),
		zap.String("channel_id", panel.ChannelID))
	return updated, nil
}

// Delete removes the panel and, when published, its channel message.
func (m *Manager) Delete(ctx context.Context, panelID string) error {
	panel, err := m.Get(ctx, panelID)
	if err != nil {
		return err
	}

	if panel.MessageID != "" {
		if err := m.gw.DeleteMessage(ctx, panel.ChannelID, panel.MessageID); err != nil {
			m.logger.Debug("Failed to delete panel message",
				zap.String("panel_id", panelID), zap.Error(err))
		}
	}

	if err := m.store.DeletePanel(ctx, panelID); err != nil {
		return err
	}

	m.logger.Info("Panel deleted", zap.String("panel_id", panelID))
	return nil
}

// AwaitEmoji arms a capture window: the next reaction the user adds in the
// channel becomes the option's emoji.
func (m *Manager) AwaitEmoji(panelID, buttonID, userID, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[userID+":"+channelID] = pendingEmoji{
		panelID:  panelID,
		buttonID: buttonID,
		expires:  time.Now().Add(EmojiCaptureWindow),
	}
}

// HandleReaction consumes a pending capture. Returns true when the reaction
// was claimed as an option emoji.
func (m *Manager) HandleReaction(ctx context.Context, userID, channelID, emoji string) (bool, error) {
	m.mu.Lock()
	key := userID + ":" + channelID
	capture, ok := m.pending[key]
	if ok {
		delete(m.pending, key)
	}
	m.mu.Unlock()

	if !ok || time.Now().After(capture.expires) {
		return false, nil
	}

	if _, err := m.store.UpdatePanelButton(ctx, capture.buttonID, storage.ButtonUpdate{Emoji: &emoji}); err != nil {
		return false, fmt.Errorf("failed to set option emoji: %w", err)
	}

	m.logger.Info("Panel option emoji captured",
		zap.String("panel_id", capture.panelID),
		zap.String("emoji", emoji))
	return true, nil
}
