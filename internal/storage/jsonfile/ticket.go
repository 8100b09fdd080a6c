package jsonfile

import (
	"context"
	"time"

	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// GetTicket returns a ticket by ID, or nil when it does not exist.
func (c *Client) GetTicket(_ context.Context, id string) (*types.Ticket, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.data.Tickets[id]), nil
}

// GetTicketByChannel resolves the ticket that owns a Discord channel.
func (c *Client) GetTicketByChannel(_ context.Context, channelID string) (*types.Ticket, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.data.Tickets {
		if t.ChannelID == channelID {
			return clone(t), nil
		}
	}
	return nil, nil
}

// GetTicketsByGuild lists a guild's tickets, newest first.
func (c *Client) GetTicketsByGuild(_ context.Context, guildID string) ([]*types.Ticket, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*types.Ticket
	for _, t := range c.data.Tickets {
		if t.GuildID == guildID {
			out = append(out, clone(t))
		}
	}
	sortByCreated(out, func(t *types.Ticket) time.Time { return t.CreatedAt })
	return out, nil
}

// GetTicketsByUser lists a user's tickets within a guild, newest first.
func (c *Client) GetTicketsByUser(_ context.Context, guildID, userID string) ([]*types.Ticket, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*types.Ticket
	for _, t := range c.data.Tickets {
		if t.GuildID == guildID && t.UserID == userID {
			out = append(out, clone(t))
		}
	}
	sortByCreated(out, func(t *types.Ticket) time.Time { return t.CreatedAt })
	return out, nil
}

// CreateTicket stores a new ticket, filling ID, default status, and creation
// time.
func (c *Client) CreateTicket(_ context.Context, ticket *types.Ticket) (*types.Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := clone(ticket)
	stored.ID = newID()
	if stored.Status == "" {
		stored.Status = types.TicketStatusOpen
	}
	stored.CreatedAt = time.Now().UTC()

	c.data.Tickets[stored.ID] = stored
	if err := c.flush(); err != nil {
		delete(c.data.Tickets, stored.ID)
		return nil, err
	}
	return clone(stored), nil
}

// UpdateTicket applies the non-nil fields of update. Returns nil when the
// ticket does not exist.
func (c *Client) UpdateTicket(_ context.Context, id string, update storage.TicketUpdate) (*types.Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.data.Tickets[id]
	if !ok {
		return nil, nil
	}

	prev := *t
	if update.Status != nil {
		t.Status = *update.Status
	}
	setString(&t.StaffID, update.StaffID)
	setString(&t.StaffName, update.StaffName)
	setBool(&t.AIModeEnabled, update.AIModeEnabled)
	if update.ClosedAt != nil {
		at := *update.ClosedAt
		t.ClosedAt = &at
	}
	setString(&t.ClosedBy, update.ClosedBy)
	setString(&t.ClosedByName, update.ClosedByName)

	if err := c.flush(); err != nil {
		*t = prev
		return nil, err
	}
	return clone(t), nil
}

// NextTicketNumber returns one past the highest ticket number the guild has
// used, starting at 1.
func (c *Client) NextTicketNumber(_ context.Context, guildID string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	max := 0
	for _, t := range c.data.Tickets {
		if t.GuildID == guildID && t.TicketNumber > max {
			max = t.TicketNumber
		}
	}
	return max + 1, nil
}

// DeleteGuildTickets removes a guild's tickets along with their messages and
// feedback, returning how many tickets were dropped.
func (c *Client) DeleteGuildTickets(_ context.Context, guildID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := make(map[string]struct{})
	for id, t := range c.data.Tickets {
		if t.GuildID == guildID {
			removed[id] = struct{}{}
			delete(c.data.Tickets, id)
		}
	}
	for id, m := range c.data.TicketMessages {
		if _, ok := removed[m.TicketID]; ok {
			delete(c.data.TicketMessages, id)
		}
	}
	for id, f := range c.data.Feedbacks {
		if _, ok := removed[f.TicketID]; ok {
			delete(c.data.Feedbacks, id)
		}
	}

	if err := c.flush(); err != nil {
		return 0, err
	}
	return len(removed), nil
}

// GetTicketMessages lists a ticket's archived messages, oldest first.
func (c *Client) GetTicketMessages(_ context.Context, ticketID string) ([]*types.TicketMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*types.TicketMessage
	for _, m := range c.data.TicketMessages {
		if m.TicketID == ticketID {
			out = append(out, clone(m))
		}
	}
	sortByCreated(out, func(m *types.TicketMessage) time.Time { return m.CreatedAt })
	// Transcripts read top to bottom.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// CreateTicketMessage archives one channel message.
func (c *Client) CreateTicketMessage(_ context.Context, message *types.TicketMessage) (*types.TicketMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := clone(message)
	stored.ID = newID()
	stored.CreatedAt = time.Now().UTC()

	c.data.TicketMessages[stored.ID] = stored
	if err := c.flush(); err != nil {
		delete(c.data.TicketMessages, stored.ID)
		return nil, err
	}
	return clone(stored), nil
}

// GetTicketStats aggregates a guild's counters for the dashboard.
func (c *Client) GetTicketStats(_ context.Context, guildID string) (*types.TicketStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &types.TicketStats{}
	for _, t := range c.data.Tickets {
		if t.GuildID != guildID {
			continue
		}
		stats.TotalTickets++
		if t.Status.IsActive() {
			stats.OpenTickets++
		} else {
			stats.ClosedTickets++
		}
	}

	sum := 0
	for _, f := range c.data.Feedbacks {
		if f.GuildID == guildID {
			stats.TotalFeedbacks++
			sum += f.Rating
		}
	}
	if stats.TotalFeedbacks > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalFeedbacks)
	}
	return stats, nil
}
