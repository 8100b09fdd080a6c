package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/bot/constants"
	"github.com/atendix/atendix/internal/feedback"
)

// FeedbackRating handles a star button press on the DM prompt. arg is
// "<rating>_<ticketID>"; the comment modal carries both forward.
func (h *Handlers) FeedbackRating(event *events.ComponentInteractionCreate, arg string) error {
	ratingStr, ticketID, ok := strings.Cut(arg, "_")
	if !ok {
		return nil
	}
	rating, err := strconv.Atoi(ratingStr)
	if err != nil {
		return nil
	}

	return event.Modal(discord.NewModalCreateBuilder().
		SetCustomID(fmt.Sprintf("%s%s_%d", feedback.PrefixComment, ticketID, rating)).
		SetTitle("Avaliação do atendimento").
		AddActionRow(discord.NewTextInput(constants.InputComment, discord.TextInputStyleParagraph, "Comentário (opcional)").
			WithRequired(false).
			WithMaxLength(500).
			WithPlaceholder("Conte como foi o atendimento")).
		Build())
}

// FeedbackCommentModal records the rating and optional comment. arg is
// "<ticketID>_<rating>".
func (h *Handlers) FeedbackCommentModal(event *events.ModalSubmitInteractionCreate, arg string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	ticketID, ratingStr, ok := strings.Cut(arg, "_")
	if !ok {
		return nil
	}
	rating, err := strconv.Atoi(ratingStr)
	if err != nil {
		return nil
	}

	comment := strings.TrimSpace(event.Data.Text(constants.InputComment))
	if _, err := h.feedbacks.Submit(ctx, ticketID, rating, comment); err != nil {
		switch {
		case errors.Is(err, feedback.ErrAlreadyRated):
			return event.CreateMessage(ephemeral("Este atendimento já foi avaliado. Obrigado!"))
		case errors.Is(err, feedback.ErrInvalidRating):
			return event.CreateMessage(ephemeral("Avaliação inválida."))
		case errors.Is(err, feedback.ErrTicketNotFound):
			return event.CreateMessage(ephemeral("Não encontramos este atendimento."))
		default:
			h.logger.Error("Feedback submission failed", zap.Error(err))
			return event.CreateMessage(ephemeral("Não foi possível registrar sua avaliação. Tente novamente."))
		}
	}

	return event.CreateMessage(ephemeral(
		strings.Repeat("⭐", rating) + "\nObrigado pela sua avaliação!"))
}
