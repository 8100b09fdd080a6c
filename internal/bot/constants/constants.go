// Package constants holds the command names and component custom IDs of the
// bot's admin surface. Ticket, panel, and feedback component IDs live with
// their managers.
package constants

// Slash command names.
const (
	CommandSetup     = "setup-tickets"
	CommandPanel     = "painel-ticket"
	CommandToggleAI  = "ativar-ia"
	CommandReset     = "resetar-tickets"
	CommandServerKey = "servidor-key"
)

// Setup flow component IDs.
const (
	SetupMenu                  = "setup_menu"
	SetupStaffRoleSelect       = "setup_staff_role_select"
	SetupCategorySelect        = "setup_category_select"
	SetupLogChannelSelect      = "setup_log_channel_select"
	SetupFeedbackChannelSelect = "setup_feedback_channel_select"
	SetupWelcomeModal          = "modal_setup_welcome"
	SetupWelcomeInput          = "setup_welcome_text"
)

// Setup menu option values.
const (
	SetupOptionStaffRole       = "staff_role"
	SetupOptionCategory        = "category"
	SetupOptionLogChannel      = "log_channel"
	SetupOptionFeedbackChannel = "feedback_channel"
	SetupOptionWelcome         = "welcome"
)

// Reset confirmation and key management component IDs.
const (
	ConfirmResetTickets = "confirm_reset_tickets"
	CancelResetTickets  = "cancel_reset_tickets"
	RegenerateKey       = "regenerate_key"
)

// Panel configurator component ID prefixes. The panel ID (and, where noted,
// an option ID) follows the prefix.
const (
	PanelConfigMenuPrefix     = "panel_config_menu_"
	PanelManageOptionsPrefix  = "panel_manage_options_"
	PanelAddOptionPrefix      = "panel_add_button_"
	PanelRemoveSelectPrefix   = "panel_remove_select_"
	PanelCategorySelectPrefix = "panel_category_select_"
	PanelBackPrefix           = "panel_back_config_"

	PanelTitleModalPrefix     = "modal_panel_title_"
	PanelColorModalPrefix     = "modal_panel_color_"
	PanelWelcomeModalPrefix   = "modal_panel_welcome_"
	PanelAddOptionModalPrefix = "modal_panel_add_option_"
)

// Panel configurator menu option values.
const (
	PanelActionTitle    = "title"
	PanelActionColor    = "color"
	PanelActionCategory = "category"
	PanelActionWelcome  = "welcome"
	PanelActionReason   = "reason"
	PanelActionOptions  = "options"
	PanelActionPublish  = "publish"
	PanelActionPreview  = "preview"
	PanelActionDelete   = "delete"
)

// Ticket creation component IDs driven by the bot surface. The manager owns
// the in-channel action buttons.
const (
	CreateTicketLegacy      = "criar_ticket"
	TicketReasonModalPrefix = "ticket_reason_"
	TicketReasonInput       = "ticket_reason_text"
)

// Modal input IDs shared by the panel configurator.
const (
	InputTitle       = "panel_title"
	InputDescription = "panel_description"
	InputColor       = "panel_color"
	InputWelcome     = "panel_welcome"
	InputOptionLabel = "option_label"
	InputOptionStyle = "option_style"
	InputComment     = "feedback_comment"
)
