package jsonfile

import (
	"context"
	"time"

	"github.com/atendix/atendix/internal/storage/types"
)

// GetFeedback returns the feedback left for a ticket, or nil when none
// exists.
func (c *Client) GetFeedback(_ context.Context, ticketID string) (*types.Feedback, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, f := range c.data.Feedbacks {
		if f.TicketID == ticketID {
			return clone(f), nil
		}
	}
	return nil, nil
}

// GetFeedbacksByGuild lists a guild's feedback entries, newest first.
func (c *Client) GetFeedbacksByGuild(_ context.Context, guildID string) ([]*types.Feedback, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*types.Feedback
	for _, f := range c.data.Feedbacks {
		if f.GuildID == guildID {
			out = append(out, clone(f))
		}
	}
	sortByCreated(out, func(f *types.Feedback) time.Time { return f.CreatedAt })
	return out, nil
}

// CreateFeedback stores a new feedback entry.
func (c *Client) CreateFeedback(_ context.Context, feedback *types.Feedback) (*types.Feedback, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := clone(feedback)
	stored.ID = newID()
	stored.CreatedAt = time.Now().UTC()

	c.data.Feedbacks[stored.ID] = stored
	if err := c.flush(); err != nil {
		delete(c.data.Feedbacks, stored.ID)
		return nil, err
	}
	return clone(stored), nil
}
