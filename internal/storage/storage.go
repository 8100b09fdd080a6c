// Package storage defines the persistence facade shared by the Postgres and
// JSON-file backends.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/atendix/atendix/internal/storage/types"
)

// Client is the persistence surface the bot and the REST API are written
// against. Lookups return (nil, nil) when the record does not exist; only
// infrastructure failures surface as errors.
type Client interface {
	// Guild configuration.
	GetGuildConfig(ctx context.Context, guildID string) (*types.GuildConfig, error)
	GetGuildConfigByKey(ctx context.Context, serverKey string) (*types.GuildConfig, error)
	GetAllGuildConfigs(ctx context.Context) ([]*types.GuildConfig, error)
	CreateGuildConfig(ctx context.Context, config *types.GuildConfig) (*types.GuildConfig, error)
	UpdateGuildConfig(ctx context.Context, guildID string, update GuildConfigUpdate) (*types.GuildConfig, error)
	DeleteGuildConfig(ctx context.Context, guildID string) error

	// Tickets.
	GetTicket(ctx context.Context, id string) (*types.Ticket, error)
	GetTicketByChannel(ctx context.Context, channelID string) (*types.Ticket, error)
	GetTicketsByGuild(ctx context.Context, guildID string) ([]*types.Ticket, error)
	GetTicketsByUser(ctx context.Context, guildID, userID string) ([]*types.Ticket, error)
	CreateTicket(ctx context.Context, ticket *types.Ticket) (*types.Ticket, error)
	UpdateTicket(ctx context.Context, id string, update TicketUpdate) (*types.Ticket, error)
	NextTicketNumber(ctx context.Context, guildID string) (int, error)
	DeleteGuildTickets(ctx context.Context, guildID string) (int, error)

	// Ticket messages.
	GetTicketMessages(ctx context.Context, ticketID string) ([]*types.TicketMessage, error)
	CreateTicketMessage(ctx context.Context, message *types.TicketMessage) (*types.TicketMessage, error)

	// Feedback.
	GetFeedback(ctx context.Context, ticketID string) (*types.Feedback, error)
	GetFeedbacksByGuild(ctx context.Context, guildID string) ([]*types.Feedback, error)
	CreateFeedback(ctx context.Context, feedback *types.Feedback) (*types.Feedback, error)

	// Panels.
	GetPanel(ctx context.Context, id string) (*types.TicketPanel, error)
	GetPanelsByGuild(ctx context.Context, guildID string) ([]*types.TicketPanel, error)
	CreatePanel(ctx context.Context, panel *types.TicketPanel) (*types.TicketPanel, error)
	UpdatePanel(ctx context.Context, id string, update PanelUpdate) (*types.TicketPanel, error)
	DeletePanel(ctx context.Context, id string) error

	// Panel buttons.
	GetPanelButtons(ctx context.Context, panelID string) ([]*types.PanelButton, error)
	CreatePanelButton(ctx context.Context, button *types.PanelButton) (*types.PanelButton, error)
	UpdatePanelButton(ctx context.Context, id string, update ButtonUpdate) (*types.PanelButton, error)
	DeletePanelButton(ctx context.Context, id string) error

	// Aggregates.
	GetTicketStats(ctx context.Context, guildID string) (*types.TicketStats, error)

	// Close releases the backend's resources.
	Close() error
}

// GuildConfigUpdate carries the fields an update may touch. Nil pointers are
// left untouched, which lets the dashboard PATCH and the bot's setup flow
// share one code path.
type GuildConfigUpdate struct {
	GuildName            *string
	GuildIcon            *string
	ServerKey            *string
	TicketCategoryID     *string
	TicketPanelChannelID *string
	TicketPanelMessageID *string
	FeedbackChannelID    *string
	LogChannelID         *string
	StaffRoleID          *string
	AIEnabled            *bool
	AISystemPrompt       *string
	WelcomeMessage       *string
	PanelTitle           *string
	PanelDescription     *string
	PanelButtonText      *string
	PanelColor           *string
}

// TicketUpdate carries the mutable ticket fields.
type TicketUpdate struct {
	Status        *types.TicketStatus
	StaffID       *string
	StaffName     *string
	AIModeEnabled *bool
	ClosedAt      *time.Time
	ClosedBy      *string
	ClosedByName  *string
}

// PanelUpdate carries the mutable panel fields.
type PanelUpdate struct {
	ChannelID      *string
	MessageID      *string
	Title          *string
	Description    *string
	EmbedColor     *string
	CategoryID     *string
	WelcomeMessage *string
	RequireReason  *bool
	IsConfigured   *bool
}

// ButtonUpdate carries the mutable panel button fields.
type ButtonUpdate struct {
	Label *string
	Emoji *string
	Style *types.ButtonStyle
	Order *int
}

// GenerateServerKey returns a fresh 32-character hex dashboard key.
func GenerateServerKey() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return hex.EncodeToString(buf)
}
