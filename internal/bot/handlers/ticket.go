package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/bot/constants"
	"github.com/atendix/atendix/internal/panel"
	"github.com/atendix/atendix/internal/storage/types"
	"github.com/atendix/atendix/internal/ticket"
)

// CreateTicket opens a ticket from the legacy panel button, without a panel
// binding.
func (h *Handlers) CreateTicket(event *events.ComponentInteractionCreate, _ string) error {
	return h.openTicket(event, nil, "")
}

// CreateTicketFromPanel opens a ticket from a published panel's single
// button. arg is the panel ID.
func (h *Handlers) CreateTicketFromPanel(event *events.ComponentInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	p, err := h.panels.Get(ctx, arg)
	if err != nil {
		if errors.Is(err, panel.ErrNotFound) {
			return event.CreateMessage(ephemeral("Este painel não existe mais."))
		}
		return err
	}

	if p.RequireReason {
		return event.Modal(reasonModal(p.ID, ""))
	}
	return h.openTicket(event, p, "")
}

// CreateTicketFromSelect opens a ticket from a published panel's select
// menu. arg is the panel ID; the selected value is the option ID.
func (h *Handlers) CreateTicketFromSelect(event *events.ComponentInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	values := event.StringSelectMenuInteractionData().Values
	if len(values) == 0 {
		return nil
	}

	p, err := h.panels.Get(ctx, arg)
	if err != nil {
		if errors.Is(err, panel.ErrNotFound) {
			return event.CreateMessage(ephemeral("Este painel não existe mais."))
		}
		return err
	}

	option, err := h.panelOption(ctx, p.ID, values[0])
	if err != nil {
		return err
	}
	if option == nil {
		return event.CreateMessage(ephemeral("Opção não encontrada."))
	}

	if p.RequireReason {
		return event.Modal(reasonModal(p.ID, option.ID))
	}
	return h.openTicket(event, p, option.Label)
}

// panelOption resolves a selected option against the panel's stored buttons.
func (h *Handlers) panelOption(ctx context.Context, panelID, optionID string) (*types.PanelButton, error) {
	options, err := h.panels.Options(ctx, panelID)
	if err != nil {
		return nil, err
	}
	for _, option := range options {
		if option.ID == optionID {
			return option, nil
		}
	}
	return nil, nil
}

// TicketReasonModal opens the ticket once the user typed their motive. arg
// is "<panelID>" or "<panelID>_<optionID>".
func (h *Handlers) TicketReasonModal(event *events.ModalSubmitInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	panelID, _, _ := strings.Cut(arg, "_")
	p, err := h.panels.Get(ctx, panelID)
	if err != nil {
		return event.CreateMessage(ephemeral("Este painel não existe mais."))
	}

	reason := event.Data.Text(constants.TicketReasonInput)
	created, err := h.tickets.Create(ctx, ticket.CreateParams{
		GuildID:    event.GuildID().String(),
		UserID:     event.User().ID.String(),
		UserName:   event.User().EffectiveName(),
		UserAvatar: event.User().EffectiveAvatarURL(),
		Panel:      p,
		Reason:     reason,
	})
	if err != nil {
		return event.CreateMessage(ticketErrorMessage(err))
	}
	return event.CreateMessage(ephemeral(fmt.Sprintf("Seu ticket foi criado: <#%s>", created.ChannelID)))
}

// CloseTicket closes the channel's ticket and prompts the requester for
// feedback.
func (h *Handlers) CloseTicket(event *events.ComponentInteractionCreate, _ string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	closed, err := h.tickets.Close(ctx,
		event.Channel().ID().String(),
		event.User().ID.String(),
		event.User().EffectiveName())
	if err != nil {
		return h.replyTicketError(event, err)
	}

	h.feedbacks.PromptDM(ctx, closed)
	return event.CreateMessage(ephemeral("Ticket fechado."))
}

// ClaimTicket assigns the clicking staff member to the ticket.
func (h *Handlers) ClaimTicket(event *events.ComponentInteractionCreate, _ string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	claimed, err := h.tickets.Claim(ctx,
		event.Channel().ID().String(),
		event.User().ID.String(),
		event.User().EffectiveName())
	if err != nil {
		return h.replyTicketError(event, err)
	}

	return event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContentf("🙋 <@%s> assumiu o ticket #%04d.", claimed.StaffID, claimed.TicketNumber).
		Build())
}

// NotifyDM pings the requester in their DMs.
func (h *Handlers) NotifyDM(event *events.ComponentInteractionCreate, _ string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	err := h.tickets.NotifyDM(ctx, event.Channel().ID().String(), event.User().EffectiveName())
	if err != nil {
		if isTicketError(err) {
			return h.replyTicketError(event, err)
		}
		// DMs blocked is the common case, not an internal failure.
		h.logger.Debug("Failed to notify requester", zap.Error(err))
		return event.CreateMessage(ephemeral("Não foi possível enviar a DM. O usuário pode ter bloqueado mensagens diretas."))
	}
	return event.CreateMessage(ephemeral("Usuário notificado na DM."))
}

// ToggleAI flips the assistant for this ticket.
func (h *Handlers) ToggleAI(event *events.ComponentInteractionCreate, _ string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	updated, err := h.tickets.ToggleAI(ctx, event.Channel().ID().String())
	if err != nil {
		return h.replyTicketError(event, err)
	}

	if updated.AIModeEnabled {
		return event.CreateMessage(discord.NewMessageCreateBuilder().
			SetContent("🤖 Assistente de IA ativado neste ticket. Mensagens do solicitante receberão respostas automáticas.").
			Build())
	}
	return event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent("🤖 Assistente de IA desativado neste ticket.").
		Build())
}

// ArchiveTicket archives the channel's ticket.
func (h *Handlers) ArchiveTicket(event *events.ComponentInteractionCreate, _ string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.tickets.Archive(ctx, event.Channel().ID().String()); err != nil {
		return h.replyTicketError(event, err)
	}
	return event.CreateMessage(ephemeral("Ticket arquivado. O canal será excluído em instantes."))
}

// openTicket creates a ticket for the interacting user and confirms
// ephemerally.
func (h *Handlers) openTicket(event *events.ComponentInteractionCreate, p *types.TicketPanel, reason string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	created, err := h.tickets.Create(ctx, ticket.CreateParams{
		GuildID:    event.GuildID().String(),
		UserID:     event.User().ID.String(),
		UserName:   event.User().EffectiveName(),
		UserAvatar: event.User().EffectiveAvatarURL(),
		Panel:      p,
		Reason:     reason,
	})
	if err != nil {
		return event.CreateMessage(ticketErrorMessage(err))
	}
	return event.CreateMessage(ephemeral(fmt.Sprintf("Seu ticket foi criado: <#%s>", created.ChannelID)))
}

// replyTicketError maps domain errors to user-facing ephemeral replies.
func (h *Handlers) replyTicketError(event *events.ComponentInteractionCreate, err error) error {
	if !isTicketError(err) {
		h.logger.Error("Ticket interaction failed", zap.Error(err))
	}
	return event.CreateMessage(ticketErrorMessage(err))
}

func isTicketError(err error) bool {
	var exists *ticket.ErrTicketExists
	return errors.As(err, &exists) ||
		errors.Is(err, ticket.ErrNoGuildConfig) ||
		errors.Is(err, ticket.ErrNoCategory) ||
		errors.Is(err, ticket.ErrInvalidCategory) ||
		errors.Is(err, ticket.ErrNotTicketChannel) ||
		errors.Is(err, ticket.ErrNotActive) ||
		errors.Is(err, ticket.ErrNotClosed) ||
		errors.Is(err, ticket.ErrAIDisabled)
}

func ticketErrorMessage(err error) discord.MessageCreate {
	var exists *ticket.ErrTicketExists
	switch {
	case errors.As(err, &exists):
		return ephemeral(fmt.Sprintf("Você já tem um ticket aberto: <#%s>", exists.ChannelID))
	case errors.Is(err, ticket.ErrNoGuildConfig):
		return ephemeral("O sistema de tickets ainda não foi configurado. Um administrador deve usar /" + constants.CommandSetup + ".")
	case errors.Is(err, ticket.ErrNoCategory):
		return ephemeral("Nenhuma categoria de tickets está configurada.")
	case errors.Is(err, ticket.ErrInvalidCategory):
		return ephemeral("A categoria configurada não é válida. Refaça a configuração.")
	case errors.Is(err, ticket.ErrNotTicketChannel):
		return ephemeral("Este canal não é um ticket.")
	case errors.Is(err, ticket.ErrNotActive):
		return ephemeral("Este ticket já foi fechado.")
	case errors.Is(err, ticket.ErrNotClosed):
		return ephemeral("Feche o ticket antes de arquivar.")
	case errors.Is(err, ticket.ErrAIDisabled):
		return ephemeral("A IA não está ativada neste servidor. Use /" + constants.CommandToggleAI + ".")
	default:
		return ephemeral("Algo deu errado. Tente novamente em instantes.")
	}
}

// reasonModal asks for the ticket motive. The option ID rides along in the
// custom ID when the panel uses a select menu.
func reasonModal(panelID, optionID string) discord.ModalCreate {
	customID := constants.TicketReasonModalPrefix + panelID
	if optionID != "" {
		customID += "_" + optionID
	}

	return discord.NewModalCreateBuilder().
		SetCustomID(customID).
		SetTitle("Abrir Ticket").
		AddActionRow(discord.NewTextInput(constants.TicketReasonInput, discord.TextInputStyleParagraph, "Motivo do atendimento").
			WithRequired(true).
			WithMaxLength(500).
			WithPlaceholder("Descreva brevemente o que você precisa")).
		Build()
}
