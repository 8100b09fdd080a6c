package ticket

import (
	"context"

	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/ai"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// IncomingMessage is a channel message the bot observed.
type IncomingMessage struct {
	ChannelID    string
	MessageID    string
	AuthorID     string
	AuthorName   string
	AuthorAvatar string
	Content      string
	IsBot        bool
}

// IngestMessage archives a channel message and drives the AI assistant:
// requester messages get a model reply while AI mode is on, and a third
// party joining the conversation turns the assistant off.
func (m *Manager) IngestMessage(ctx context.Context, msg IncomingMessage) error {
	ticket, err := m.store.GetTicketByChannel(ctx, msg.ChannelID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return nil // not a ticket channel
	}
	if msg.IsBot || !ticket.Status.IsActive() {
		return nil
	}

	if _, err := m.store.CreateTicketMessage(ctx, &types.TicketMessage{
		TicketID:     ticket.ID,
		MessageID:    msg.MessageID,
		AuthorID:     msg.AuthorID,
		AuthorName:   msg.AuthorName,
		AuthorAvatar: msg.AuthorAvatar,
		Content:      msg.Content,
	}); err != nil {
		return err
	}

	if !ticket.AIModeEnabled {
		return nil
	}

	if msg.AuthorID != ticket.UserID {
		// A human took over; step the assistant aside.
		enabled := false
		if _, err := m.store.UpdateTicket(ctx, ticket.ID, storage.TicketUpdate{AIModeEnabled: &enabled}); err != nil {
			return err
		}
		if _, err := m.gw.CreateMessage(ctx, msg.ChannelID, aiNoticeMessage()); err != nil {
			m.logger.Warn("Failed to send ai notice",
				zap.String("channel_id", msg.ChannelID), zap.Error(err))
		}
		return nil
	}

	return m.replyWithAI(ctx, ticket, msg.ChannelID)
}

// replyWithAI generates and posts an assistant reply using the last archived
// messages as context.
func (m *Manager) replyWithAI(ctx context.Context, ticket *types.Ticket, channelID string) error {
	cfg, err := m.store.GetGuildConfig(ctx, ticket.GuildID)
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.AIEnabled || !m.ai.Enabled() {
		return nil
	}

	history, err := m.store.GetTicketMessages(ctx, ticket.ID)
	if err != nil {
		return err
	}
	if len(history) > aiContextSize {
		history = history[len(history)-aiContextSize:]
	}

	turns := make([]ai.Turn, 0, len(history))
	for _, msg := range history {
		role := ai.RoleUser
		if msg.IsBot || msg.IsAI {
			role = ai.RoleAssistant
		}
		turns = append(turns, ai.Turn{Role: role, Content: msg.Content})
	}

	reply, err := m.ai.Reply(ctx, cfg.AISystemPrompt, turns)
	if err != nil {
		m.logger.Error("Failed to generate ai reply",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return nil // the conversation continues without the assistant
	}

	messageID, err := m.gw.CreateMessage(ctx, channelID, assistantReply(reply))
	if err != nil {
		return err
	}

	if _, err := m.store.CreateTicketMessage(ctx, &types.TicketMessage{
		TicketID:   ticket.ID,
		MessageID:  messageID,
		AuthorID:   m.botUserID,
		AuthorName: "Assistente IA",
		Content:    reply,
		IsBot:      true,
		IsAI:       true,
	}); err != nil {
		return err
	}
	return nil
}
