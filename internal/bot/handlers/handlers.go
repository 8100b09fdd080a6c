// Package handlers implements the bot's interaction handlers. Each surface
// (setup, tickets, panels, feedback) gets its own file; routing lives in the
// bot package.
package handlers

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/feedback"
	"github.com/atendix/atendix/internal/panel"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/ticket"
)

// interactionTimeout bounds the work done for a single interaction.
const interactionTimeout = 30 * time.Second

// Handlers carries the injected services every handler works against.
type Handlers struct {
	store     storage.Client
	tickets   *ticket.Manager
	panels    *panel.Manager
	feedbacks *feedback.Collector
	logger    *zap.Logger
}

// New creates the handler set.
func New(
	store storage.Client,
	tickets *ticket.Manager,
	panels *panel.Manager,
	feedbacks *feedback.Collector,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		store:     store,
		tickets:   tickets,
		panels:    panels,
		feedbacks: feedbacks,
		logger:    logger.Named("bot_handlers"),
	}
}

// Tickets exposes the ticket manager for the message and lifecycle events
// the bot package wires directly.
func (h *Handlers) Tickets() *ticket.Manager { return h.tickets }

// Panels exposes the panel manager for the reaction event.
func (h *Handlers) Panels() *panel.Manager { return h.panels }

// Feedbacks exposes the feedback collector.
func (h *Handlers) Feedbacks() *feedback.Collector { return h.feedbacks }

func handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), interactionTimeout)
}

// ephemeral builds a plain ephemeral text response.
func ephemeral(content string) discord.MessageCreate {
	return discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build()
}

// ephemeralEmbed builds an ephemeral embed response.
func ephemeralEmbed(embed discord.Embed, rows ...discord.ContainerComponent) discord.MessageCreate {
	builder := discord.NewMessageCreateBuilder().
		SetEmbeds(embed).
		SetEphemeral(true)
	for _, row := range rows {
		builder.AddContainerComponents(row)
	}
	return builder.Build()
}
