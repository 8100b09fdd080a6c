// Package feedback implements the post-close rating flow: the DM prompt,
// submission, and mirroring to the guild's feedback channel.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/discordgw"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// Component custom ID prefixes of the feedback surface. Rating buttons are
// "feedback_<rating>_<ticketID>"; the comment modal is
// "feedback_comment_<ticketID>_<rating>".
const (
	PrefixRating  = "feedback_"
	PrefixComment = "feedback_comment_"
)

var (
	// ErrTicketNotFound is returned when the rated ticket no longer exists.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrAlreadyRated is returned on a second rating for the same ticket.
	ErrAlreadyRated = errors.New("ticket already has feedback")
	// ErrInvalidRating is returned for ratings outside 1 through 5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Collector drives the feedback flow.
type Collector struct {
	store  storage.Client
	gw     discordgw.Gateway
	logger *zap.Logger
}

// NewCollector creates a feedback Collector.
func NewCollector(store storage.Client, gw discordgw.Gateway, logger *zap.Logger) *Collector {
	return &Collector{
		store:  store,
		gw:     gw,
		logger: logger.Named("feedback_collector"),
	}
}

// PromptDM asks the requester for a rating after their ticket closes. A
// failed DM is logged and swallowed; many users block DMs.
func (c *Collector) PromptDM(ctx context.Context, ticket *types.Ticket) {
	row := make([]discord.InteractiveComponent, 0, 5)
	for rating := 1; rating <= 5; rating++ {
		row = append(row, discord.NewSecondaryButton(
			strings.Repeat("⭐", rating),
			fmt.Sprintf("%s%d_%s", PrefixRating, rating, ticket.ID),
		))
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Como foi seu atendimento?").
		SetDescription(fmt.Sprintf("Seu ticket #%04d foi fechado. "+
			"Avalie o atendimento escolhendo uma nota abaixo.", ticket.TicketNumber)).
		SetColor(discordgw.DefaultEmbedColor).
		Build()

	msg := discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		AddActionRow(row...).
		Build()

	if err := c.gw.SendDirectMessage(ctx, ticket.UserID, msg); err != nil {
		c.logger.Warn("Failed to send feedback prompt",
			zap.String("ticket_id", ticket.ID),
			zap.String("user_id", ticket.UserID),
			zap.Error(err))
	}
}

// Submit records a rating with an optional comment and mirrors it to the
// guild's feedback channel. Each ticket accepts exactly one rating.
func (c *Collector) Submit(ctx context.Context, ticketID string, rating int, comment string) (*types.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	ticket, err := c.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	existing, err := c.store.GetFeedback(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRated
	}

	feedback, err := c.store.CreateFeedback(ctx, &types.Feedback{
		TicketID:  ticketID,
		GuildID:   ticket.GuildID,
		UserID:    ticket.UserID,
		UserName:  ticket.UserName,
		StaffID:   ticket.StaffID,
		StaffName: ticket.StaffName,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return nil, err
	}

	c.mirrorToChannel(ctx, ticket, feedback)

	c.logger.Info("Feedback recorded",
		zap.String("ticket_id", ticketID),
		zap.Int("rating", rating))
	return feedback, nil
}

// mirrorToChannel posts the rating to the configured feedback channel.
func (c *Collector) mirrorToChannel(ctx context.Context, ticket *types.Ticket, feedback *types.Feedback) {
	cfg, err := c.store.GetGuildConfig(ctx, ticket.GuildID)
	if err != nil || cfg == nil || cfg.FeedbackChannelID == "" {
		return
	}

	builder := discord.NewEmbedBuilder().
		SetTitle("Nova Avaliação").
		SetDescription(fmt.Sprintf("Ticket #%04d avaliado por **%s**",
			ticket.TicketNumber, feedback.UserName)).
		AddField("Nota", strings.Repeat("⭐", feedback.Rating), true).
		SetColor(discordgw.DefaultEmbedColor).
		SetTimestamp(time.Now())
	if feedback.StaffName != "" {
		builder.AddField("Atendente", feedback.StaffName, true)
	}
	if feedback.Comment != "" {
		builder.AddField("Comentário", feedback.Comment, false)
	}

	msg := discord.NewMessageCreateBuilder().SetEmbeds(builder.Build()).Build()
	if _, err := c.gw.CreateMessage(ctx, cfg.FeedbackChannelID, msg); err != nil {
		c.logger.Warn("Failed to mirror feedback",
			zap.String("channel_id", cfg.FeedbackChannelID),
			zap.Error(err))
	}
}
