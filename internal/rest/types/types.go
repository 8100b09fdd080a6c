// Package types holds the request and response shapes of the dashboard API.
package types

import storagetypes "github.com/atendix/atendix/internal/storage/types"

// AuthKeyRequest carries the server key presented by a dashboard login.
type AuthKeyRequest struct {
	ServerKey string `json:"serverKey"`
}

// ValidateResponse confirms a server key and identifies the guild it
// belongs to.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Guild string `json:"guildId"`
	Name  string `json:"guildName"`
	Icon  string `json:"guildIcon,omitempty"`
}

// BotStatusResponse is the dashboard's health view of the bot.
type BotStatusResponse struct {
	Online     bool `json:"online"`
	GuildCount int  `json:"guildCount"`
}

// ConfigPatchRequest is the whitelist of guild settings the dashboard may
// change. The server key and channel bookkeeping fields are deliberately
// absent.
type ConfigPatchRequest struct {
	WelcomeMessage    *string `json:"welcomeMessage"`
	StaffRoleID       *string `json:"staffRoleId"`
	TicketCategoryID  *string `json:"ticketCategoryId"`
	LogChannelID      *string `json:"logChannelId"`
	FeedbackChannelID *string `json:"feedbackChannelId"`
	AIEnabled         *bool   `json:"aiEnabled"`
	AISystemPrompt    *string `json:"aiSystemPrompt"`
	PanelTitle        *string `json:"panelTitle"`
	PanelDescription  *string `json:"panelDescription"`
	PanelButtonText   *string `json:"panelButtonText"`
	PanelColor        *string `json:"panelColor"`
}

// PanelCreateRequest is the dashboard's shape for a new panel.
type PanelCreateRequest struct {
	ChannelID      string `json:"channelId"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	EmbedColor     string `json:"embedColor"`
	CategoryID     string `json:"categoryId"`
	WelcomeMessage string `json:"welcomeMessage"`
	RequireReason  bool   `json:"requireReason"`
}

// PanelPatchRequest carries the panel fields the dashboard may change.
type PanelPatchRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	EmbedColor     *string `json:"embedColor"`
	CategoryID     *string `json:"categoryId"`
	WelcomeMessage *string `json:"welcomeMessage"`
	RequireReason  *bool   `json:"requireReason"`
}

// ButtonCreateRequest is the dashboard's shape for a new panel option.
type ButtonCreateRequest struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Style string `json:"style"`
}

// ButtonPatchRequest carries the option fields the dashboard may change.
type ButtonPatchRequest struct {
	Label *string `json:"label"`
	Emoji *string `json:"emoji"`
	Style *string `json:"style"`
	Order *int    `json:"order"`
}

// TicketDetail pairs a ticket with its transcript.
type TicketDetail struct {
	Ticket   *storagetypes.Ticket          `json:"ticket"`
	Messages []*storagetypes.TicketMessage `json:"messages"`
}

// PanelDetail pairs a panel with its options.
type PanelDetail struct {
	Panel   *storagetypes.TicketPanel   `json:"panel"`
	Options []*storagetypes.PanelButton `json:"options"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
