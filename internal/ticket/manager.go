// Package ticket implements the support ticket lifecycle.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/ai"
	"github.com/atendix/atendix/internal/discordgw"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// ArchiveDelay is how long an archived channel stays visible before the bot
// deletes it.
const ArchiveDelay = 5 * time.Second

// aiContextSize is how many archived messages are sent to the model as
// conversation context.
const aiContextSize = 10

var (
	// ErrNoGuildConfig is returned when the guild never ran the setup flow.
	ErrNoGuildConfig = errors.New("guild is not configured")
	// ErrNoCategory is returned when no ticket category is configured.
	ErrNoCategory = errors.New("no ticket category configured")
	// ErrInvalidCategory is returned when the configured category channel is
	// not a category.
	ErrInvalidCategory = errors.New("configured channel is not a category")
	// ErrNotTicketChannel is returned when a channel has no ticket bound.
	ErrNotTicketChannel = errors.New("channel is not a ticket")
	// ErrNotActive is returned for operations that need an open ticket.
	ErrNotActive = errors.New("ticket is not active")
	// ErrNotClosed is returned when archiving a ticket that was never closed.
	ErrNotClosed = errors.New("ticket is not closed")
	// ErrAIDisabled is returned when AI replies are unavailable for a guild.
	ErrAIDisabled = errors.New("ai assistant is disabled for this guild")
)

// ErrTicketExists reports that the user already has an active ticket.
type ErrTicketExists struct {
	ChannelID string
}

func (e *ErrTicketExists) Error() string {
	return fmt.Sprintf("user already has an active ticket in channel %s", e.ChannelID)
}

// Manager drives the ticket lifecycle: creation, claiming, closing,
// archiving, message archival, and AI replies.
type Manager struct {
	store     storage.Client
	gw        discordgw.Gateway
	ai        *ai.Client
	botUserID string
	logger    *zap.Logger
}

// NewManager creates a ticket Manager.
func NewManager(store storage.Client, gw discordgw.Gateway, aiClient *ai.Client, botUserID string, logger *zap.Logger) *Manager {
	return &Manager{
		store:     store,
		gw:        gw,
		ai:        aiClient,
		botUserID: botUserID,
		logger:    logger.Named("ticket_manager"),
	}
}

// CreateParams carries the inputs for opening a ticket.
type CreateParams struct {
	GuildID    string
	UserID     string
	UserName   string
	UserAvatar string
	// Panel is set when the ticket was opened through a published panel.
	Panel *types.TicketPanel
	// Reason is the user's free-form motive, for panels that require one.
	Reason string
}

// Create opens a ticket: a private channel under the configured category, a
// welcome message with the action buttons, and a log entry. Users hold at
// most one active ticket per guild.
func (m *Manager) Create(ctx context.Context, p CreateParams) (*types.Ticket, error) {
	cfg, err := m.store.GetGuildConfig(ctx, p.GuildID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrNoGuildConfig
	}

	existing, err := m.store.GetTicketsByUser(ctx, p.GuildID, p.UserID)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.Status.IsActive() {
			return nil, &ErrTicketExists{ChannelID: t.ChannelID}
		}
	}

	categoryID := cfg.TicketCategoryID
	if p.Panel != nil && p.Panel.CategoryID != "" {
		categoryID = p.Panel.CategoryID
	}
	if categoryID == "" {
		return nil, ErrNoCategory
	}

	isCategory, err := m.gw.IsCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !isCategory {
		return nil, ErrInvalidCategory
	}

	number, err := m.store.NextTicketNumber(ctx, p.GuildID)
	if err != nil {
		return nil, err
	}

	overwrites, err := m.channelOverwrites(p.GuildID, p.UserID, cfg.StaffRoleID)
	if err != nil {
		return nil, err
	}

	parentID, err := snowflake.Parse(categoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category id %q: %w", categoryID, err)
	}

	channelID, err := m.gw.CreateChannel(ctx, p.GuildID, discord.GuildTextChannelCreate{
		Name:                 fmt.Sprintf("ticket-%04d", number),
		ParentID:             parentID,
		Topic:                fmt.Sprintf("Ticket de %s", p.UserName),
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, err
	}

	ticket, err := m.store.CreateTicket(ctx, &types.Ticket{
		TicketNumber: number,
		GuildID:      p.GuildID,
		ChannelID:    channelID,
		UserID:       p.UserID,
		UserName:     p.UserName,
		UserAvatar:   p.UserAvatar,
		Status:       types.TicketStatusOpen,
	})
	if err != nil {
		// The channel exists but the ticket does not; drop the channel so
		// the user is not left with an orphan.
		if derr := m.gw.DeleteChannel(ctx, channelID); derr != nil {
			m.logger.Error("Failed to clean up orphaned ticket channel",
				zap.String("channel_id", channelID), zap.Error(derr))
		}
		return nil, err
	}

	welcome := cfg.WelcomeMessage
	if p.Panel != nil && p.Panel.WelcomeMessage != "" {
		welcome = p.Panel.WelcomeMessage
	}
	if _, err := m.gw.CreateMessage(ctx, channelID, welcomeMessage(ticket, welcome, p.Reason)); err != nil {
		m.logger.Error("Failed to send welcome message",
			zap.String("channel_id", channelID), zap.Error(err))
	}

	m.logToChannel(ctx, cfg, logEntry{
		title: "Ticket Aberto",
		body:  fmt.Sprintf("Ticket #%04d aberto por **%s**", ticket.TicketNumber, ticket.UserName),
		color: colorGreen,
	})

	m.logger.Info("Ticket created",
		zap.String("guild_id", p.GuildID),
		zap.String("user_id", p.UserID),
		zap.Int("number", number))

	return ticket, nil
}

// Claim assigns a staff member to a ticket and moves it to waiting.
func (m *Manager) Claim(ctx context.Context, channelID, staffID, staffName string) (*types.Ticket, error) {
	ticket, err := m.activeTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}

	status := types.TicketStatusWaiting
	updated, err := m.store.UpdateTicket(ctx, ticket.ID, storage.TicketUpdate{
		Status:    &status,
		StaffID:   &staffID,
		StaffName: &staffName,
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Ticket claimed",
		zap.String("ticket_id", ticket.ID),
		zap.String("staff_id", staffID))
	return updated, nil
}

// Close finishes a ticket. The channel stays around so staff can archive it
// when done; the feedback prompt is the caller's responsibility.
func (m *Manager) Close(ctx context.Context, channelID, byID, byName string) (*types.Ticket, error) {
	ticket, err := m.activeTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}

	status := types.TicketStatusClosed
	closedAt := time.Now().UTC()
	updated, err := m.store.UpdateTicket(ctx, ticket.ID, storage.TicketUpdate{
		Status:       &status,
		ClosedAt:     &closedAt,
		ClosedBy:     &byID,
		ClosedByName: &byName,
	})
	if err != nil {
		return nil, err
	}

	if _, err := m.gw.CreateMessage(ctx, channelID, closedMessage(updated)); err != nil {
		m.logger.Error("Failed to send closed message",
			zap.String("channel_id", channelID), zap.Error(err))
	}

	if cfg, err := m.store.GetGuildConfig(ctx, ticket.GuildID); err == nil && cfg != nil {
		m.logToChannel(ctx, cfg, logEntry{
			title: "Ticket Fechado",
			body: fmt.Sprintf("Ticket #%04d de **%s** fechado por **%s**",
				updated.TicketNumber, updated.UserName, byName),
			color: colorRed,
		})
	}

	m.logger.Info("Ticket closed",
		zap.String("ticket_id", ticket.ID),
		zap.String("closed_by", byID))
	return updated, nil
}

// Archive marks a closed ticket archived and deletes its channel after a
// short grace period.
func (m *Manager) Archive(ctx context.Context, channelID string) (*types.Ticket, error) {
	ticket, err := m.store.GetTicketByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrNotTicketChannel
	}
	if ticket.Status != types.TicketStatusClosed {
		return nil, ErrNotClosed
	}

	status := types.TicketStatusArchived
	updated, err := m.store.UpdateTicket(ctx, ticket.ID, storage.TicketUpdate{Status: &status})
	if err != nil {
		return nil, err
	}

	if _, err := m.gw.CreateMessage(ctx, channelID, archivedMessage()); err != nil {
		m.logger.Error("Failed to send archived message",
			zap.String("channel_id", channelID), zap.Error(err))
	}

	time.AfterFunc(ArchiveDelay, func() {
		deleteCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.gw.DeleteChannel(deleteCtx, channelID); err != nil {
			m.logger.Error("Failed to delete archived channel",
				zap.String("channel_id", channelID), zap.Error(err))
		}
	})

	m.logger.Info("Ticket archived", zap.String("ticket_id", ticket.ID))
	return updated, nil
}

// ToggleAI flips the ticket's AI assistant mode. Requires the guild to have
// AI enabled and a configured model.
func (m *Manager) ToggleAI(ctx context.Context, channelID string) (*types.Ticket, error) {
	ticket, err := m.activeTicket(ctx, channelID)
	if err != nil {
		return nil, err
	}

	cfg, err := m.store.GetGuildConfig(ctx, ticket.GuildID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || !cfg.AIEnabled || !m.ai.Enabled() {
		return nil, ErrAIDisabled
	}

	enabled := !ticket.AIModeEnabled
	updated, err := m.store.UpdateTicket(ctx, ticket.ID, storage.TicketUpdate{AIModeEnabled: &enabled})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Ticket AI mode toggled",
		zap.String("ticket_id", ticket.ID),
		zap.Bool("enabled", enabled))
	return updated, nil
}

// NotifyDM sends the requester a DM that staff replied to their ticket.
func (m *Manager) NotifyDM(ctx context.Context, channelID, staffName string) error {
	ticket, err := m.activeTicket(ctx, channelID)
	if err != nil {
		return err
	}

	return m.gw.SendDirectMessage(ctx, ticket.UserID, notifyMessage(ticket, staffName))
}

// Reset deletes every ticket of a guild, including the channels of active
// ones. Returns how many tickets were removed.
func (m *Manager) Reset(ctx context.Context, guildID string) (int, error) {
	tickets, err := m.store.GetTicketsByGuild(ctx, guildID)
	if err != nil {
		return 0, err
	}
	for _, t := range tickets {
		if !t.Status.IsActive() {
			continue
		}
		if err := m.gw.DeleteChannel(ctx, t.ChannelID); err != nil {
			m.logger.Warn("Failed to delete ticket channel during reset",
				zap.String("channel_id", t.ChannelID), zap.Error(err))
		}
	}

	removed, err := m.store.DeleteGuildTickets(ctx, guildID)
	if err != nil {
		return 0, err
	}

	m.logger.Info("Guild tickets reset",
		zap.String("guild_id", guildID),
		zap.Int("removed", removed))
	return removed, nil
}

// activeTicket resolves the channel to its ticket, requiring open or waiting
// status.
func (m *Manager) activeTicket(ctx context.Context, channelID string) (*types.Ticket, error) {
	ticket, err := m.store.GetTicketByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrNotTicketChannel
	}
	if !ticket.Status.IsActive() {
		return nil, ErrNotActive
	}
	return ticket, nil
}

// channelOverwrites builds the permission set of a ticket channel: hidden
// from everyone, visible to the requester, the staff role, and the bot.
func (m *Manager) channelOverwrites(guildID, userID, staffRoleID string) ([]discord.PermissionOverwrite, error) {
	everyoneID, err := snowflake.Parse(guildID)
	if err != nil {
		return nil, fmt.Errorf("invalid guild id %q: %w", guildID, err)
	}
	memberID, err := snowflake.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	memberPerms := discord.PermissionViewChannel |
		discord.PermissionSendMessages |
		discord.PermissionReadMessageHistory |
		discord.PermissionAttachFiles

	overwrites := []discord.PermissionOverwrite{
		discord.RolePermissionOverwrite{
			RoleID: everyoneID,
			Deny:   discord.PermissionViewChannel,
		},
		discord.MemberPermissionOverwrite{
			UserID: memberID,
			Allow:  memberPerms,
		},
	}

	if botID, err := snowflake.Parse(m.botUserID); err == nil {
		overwrites = append(overwrites, discord.MemberPermissionOverwrite{
			UserID: botID,
			Allow:  memberPerms | discord.PermissionManageChannels,
		})
	}

	if staffRoleID != "" {
		roleID, err := snowflake.Parse(staffRoleID)
		if err != nil {
			return nil, fmt.Errorf("invalid staff role id %q: %w", staffRoleID, err)
		}
		overwrites = append(overwrites, discord.RolePermissionOverwrite{
			RoleID: roleID,
			Allow:  memberPerms | discord.PermissionManageMessages,
		})
	}

	return overwrites, nil
}

type logEntry struct {
	title string
	body  string
	color int
}

// logToChannel mirrors lifecycle events to the configured log channel.
// Failures are logged and swallowed; logging must never break the flow.
func (m *Manager) logToChannel(ctx context.Context, cfg *types.GuildConfig, entry logEntry) {
	if cfg.LogChannelID == "" {
		return
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(entry.title).
		SetDescription(entry.body).
		SetColor(entry.color).
		SetTimestamp(time.Now()).
		Build()
	msg := discord.NewMessageCreateBuilder().SetEmbeds(embed).Build()

	if _, err := m.gw.CreateMessage(ctx, cfg.LogChannelID, msg); err != nil {
		m.logger.Warn("Failed to write log channel entry",
			zap.String("channel_id", cfg.LogChannelID), zap.Error(err))
	}
}
