// Package types defines the entities persisted by the storage backends.
package types

import (
	"time"

	"github.com/uptrace/bun"
)

// TicketStatus tracks where a ticket is in its lifecycle.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusWaiting  TicketStatus = "waiting"
	TicketStatusClosed   TicketStatus = "closed"
	TicketStatusArchived TicketStatus = "archived"
)

// IsActive reports whether the ticket still occupies the user's single
// open-ticket slot.
func (s TicketStatus) IsActive() bool {
	return s == TicketStatusOpen || s == TicketStatusWaiting
}

// ButtonStyle mirrors the four Discord button styles a panel option may use.
type ButtonStyle string

const (
	ButtonStylePrimary   ButtonStyle = "primary"
	ButtonStyleSecondary ButtonStyle = "secondary"
	ButtonStyleSuccess   ButtonStyle = "success"
	ButtonStyleDanger    ButtonStyle = "danger"
)

// ParseButtonStyle normalizes free-form style input, falling back to primary
// for anything unrecognized.
func ParseButtonStyle(s string) ButtonStyle {
	switch ButtonStyle(s) {
	case ButtonStylePrimary, ButtonStyleSecondary, ButtonStyleSuccess, ButtonStyleDanger:
		return ButtonStyle(s)
	default:
		return ButtonStylePrimary
	}
}

// Default texts applied when a guild or panel has no custom copy configured.
const (
	DefaultSystemPrompt     = "Você é um assistente de suporte amigável e profissional. Responda de forma clara e objetiva."
	DefaultWelcomeMessage   = "Bem-vindo ao suporte! Um membro da equipe irá atendê-lo em breve."
	DefaultPanelTitle       = "Sistema de Tickets"
	DefaultPanelDescription = "Clique no botão abaixo para abrir um ticket e entrar em contato com nossa equipe de suporte."
	DefaultPanelButtonText  = "Abrir Ticket"
	DefaultPanelColor       = "#5865F2"
)

// GuildConfig holds the per-server settings record. One row per Discord
// server, created on first contact with the bot.
type GuildConfig struct {
	bun.BaseModel `bun:"table:guild_configs"`

	ID                   string    `bun:",pk" json:"id"`
	GuildID              string    `bun:",notnull,unique" json:"guildId"`
	GuildName            string    `bun:",notnull" json:"guildName"`
	GuildIcon            string    `bun:",nullzero" json:"guildIcon,omitempty"`
	ServerKey            string    `bun:",notnull,unique" json:"serverKey,omitempty"`
	TicketCategoryID     string    `bun:",nullzero" json:"ticketCategoryId,omitempty"`
	TicketPanelChannelID string    `bun:",nullzero" json:"ticketPanelChannelId,omitempty"`
	TicketPanelMessageID string    `bun:",nullzero" json:"ticketPanelMessageId,omitempty"`
	FeedbackChannelID    string    `bun:",nullzero" json:"feedbackChannelId,omitempty"`
	LogChannelID         string    `bun:",nullzero" json:"logChannelId,omitempty"`
	StaffRoleID          string    `bun:",nullzero" json:"staffRoleId,omitempty"`
	AIEnabled            bool      `bun:",notnull,default:false" json:"aiEnabled"`
	AISystemPrompt       string    `bun:",type:text" json:"aiSystemPrompt"`
	WelcomeMessage       string    `bun:",type:text" json:"welcomeMessage"`
	PanelTitle           string    `bun:",type:text" json:"panelTitle"`
	PanelDescription     string    `bun:",type:text" json:"panelDescription"`
	PanelButtonText      string    `bun:",type:text" json:"panelButtonText"`
	PanelColor           string    `bun:",nullzero" json:"panelColor"`
	CreatedAt            time.Time `bun:",notnull" json:"createdAt"`
}

// Sanitized returns a copy safe to hand to dashboard clients: the server key
// never leaves the process through a read endpoint.
func (c *GuildConfig) Sanitized() GuildConfig {
	out := *c
	out.ServerKey = ""
	return out
}

// Ticket is one support request, backed by a private channel.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID            string       `bun:",pk" json:"id"`
	TicketNumber  int          `bun:",notnull" json:"ticketNumber"`
	GuildID       string       `bun:",notnull" json:"guildId"`
	ChannelID     string       `bun:",notnull,unique" json:"channelId"`
	UserID        string       `bun:",notnull" json:"userId"`
	UserName      string       `bun:",notnull" json:"userName"`
	UserAvatar    string       `bun:",nullzero" json:"userAvatar,omitempty"`
	Status        TicketStatus `bun:",type:ticket_status,notnull,default:'open'" json:"status"`
	StaffID       string       `bun:",nullzero" json:"staffId,omitempty"`
	StaffName     string       `bun:",nullzero" json:"staffName,omitempty"`
	AIModeEnabled bool         `bun:",notnull,default:false" json:"aiModeEnabled"`
	CreatedAt     time.Time    `bun:",notnull" json:"createdAt"`
	ClosedAt      *time.Time   `bun:",nullzero" json:"closedAt,omitempty"`
	ClosedBy      string       `bun:",nullzero" json:"closedBy,omitempty"`
	ClosedByName  string       `bun:",nullzero" json:"closedByName,omitempty"`
}

// TicketMessage is one archived channel message, kept for transcripts and as
// AI conversation context.
type TicketMessage struct {
	bun.BaseModel `bun:"table:ticket_messages"`

	ID           string    `bun:",pk" json:"id"`
	TicketID     string    `bun:",notnull" json:"ticketId"`
	MessageID    string    `bun:",notnull" json:"messageId"`
	AuthorID     string    `bun:",notnull" json:"authorId"`
	AuthorName   string    `bun:",notnull" json:"authorName"`
	AuthorAvatar string    `bun:",nullzero" json:"authorAvatar,omitempty"`
	Content      string    `bun:",type:text,notnull" json:"content"`
	IsBot        bool      `bun:",notnull,default:false" json:"isBot"`
	IsAI         bool      `bun:",notnull,default:false" json:"isAi"`
	CreatedAt    time.Time `bun:",notnull" json:"createdAt"`
}

// Feedback is the post-close rating a requester leaves via DM. At most one
// per ticket, enforced by an application-level lookup.
type Feedback struct {
	bun.BaseModel `bun:"table:feedbacks"`

	ID        string    `bun:",pk" json:"id"`
	TicketID  string    `bun:",notnull" json:"ticketId"`
	GuildID   string    `bun:",notnull" json:"guildId"`
	UserID    string    `bun:",notnull" json:"userId"`
	UserName  string    `bun:",notnull" json:"userName"`
	StaffID   string    `bun:",nullzero" json:"staffId,omitempty"`
	StaffName string    `bun:",nullzero" json:"staffName,omitempty"`
	Rating    int       `bun:",notnull" json:"rating"`
	Comment   string    `bun:",type:text,nullzero" json:"comment,omitempty"`
	CreatedAt time.Time `bun:",notnull" json:"createdAt"`
}

// TicketPanel is a configurable ticket-opening message bound to a guild
// channel. Unpublished drafts have IsConfigured false.
type TicketPanel struct {
	bun.BaseModel `bun:"table:ticket_panels"`

	ID             string    `bun:",pk" json:"id"`
	GuildID        string    `bun:",notnull" json:"guildId"`
	ChannelID      string    `bun:",notnull" json:"channelId"`
	MessageID      string    `bun:",nullzero" json:"messageId,omitempty"`
	CreatedBy      string    `bun:",notnull" json:"createdBy"`
	Title          string    `bun:",type:text" json:"title"`
	Description    string    `bun:",type:text" json:"description"`
	EmbedColor     string    `bun:",nullzero" json:"embedColor"`
	CategoryID     string    `bun:",nullzero" json:"categoryId,omitempty"`
	WelcomeMessage string    `bun:",type:text" json:"welcomeMessage"`
	RequireReason  bool      `bun:",notnull,default:false" json:"requireReason"`
	IsConfigured   bool      `bun:",notnull,default:false" json:"isConfigured"`
	CreatedAt      time.Time `bun:",notnull" json:"createdAt"`
}

// PanelButton is one ordered option of a panel. Deleted in cascade with its
// panel.
type PanelButton struct {
	bun.BaseModel `bun:"table:panel_buttons"`

	ID        string      `bun:",pk" json:"id"`
	PanelID   string      `bun:",notnull" json:"panelId"`
	Label     string      `bun:",type:text" json:"label"`
	Emoji     string      `bun:",nullzero" json:"emoji,omitempty"`
	Style     ButtonStyle `bun:",type:button_style,notnull,default:'primary'" json:"style"`
	Order     int         `bun:"btn_order,notnull,default:0" json:"order"`
	CreatedAt time.Time   `bun:",notnull" json:"createdAt"`
}

// TicketStats aggregates a guild's ticket and feedback counters for the
// dashboard.
type TicketStats struct {
	TotalTickets   int     `json:"totalTickets"`
	OpenTickets    int     `json:"openTickets"`
	ClosedTickets  int     `json:"closedTickets"`
	AverageRating  float64 `json:"averageRating"`
	TotalFeedbacks int     `json:"totalFeedbacks"`
}
