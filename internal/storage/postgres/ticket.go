package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/types"
)

// GetTicket returns a ticket by ID, or nil when it does not exist.
func (c *Client) GetTicket(ctx context.Context, id string) (*types.Ticket, error) {
	ticket := new(types.Ticket)
	err := c.db.NewSelect().
		Model(ticket).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// GetTicketByChannel resolves the ticket that owns a Discord channel.
func (c *Client) GetTicketByChannel(ctx context.Context, channelID string) (*types.Ticket, error) {
	ticket := new(types.Ticket)
	err := c.db.NewSelect().
		Model(ticket).
		Where("channel_id = ?", channelID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket by channel: %w", err)
	}
	return ticket, nil
}

// GetTicketsByGuild lists a guild's tickets, newest first.
func (c *Client) GetTicketsByGuild(ctx context.Context, guildID string) ([]*types.Ticket, error) {
	var tickets []*types.Ticket
	err := c.db.NewSelect().
		Model(&tickets).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild tickets: %w", err)
	}
	return tickets, nil
}

// GetTicketsByUser lists a user's tickets within a guild, newest first.
func (c *Client) GetTicketsByUser(ctx context.Context, guildID, userID string) ([]*types.Ticket, error) {
	var tickets []*types.Ticket
	err := c.db.NewSelect().
		Model(&tickets).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user tickets: %w", err)
	}
	return tickets, nil
}

// CreateTicket stores a new ticket.
func (c *Client) CreateTicket(ctx context.Context, ticket *types.Ticket) (*types.Ticket, error) {
	stored := *ticket
	stored.ID = uuid.NewString()
	if stored.Status == "" {
		stored.Status = types.TicketStatusOpen
	}
	stored.CreatedAt = time.Now().UTC()

	if _, err := c.db.NewInsert().Model(&stored).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return &stored, nil
}

// UpdateTicket applies the non-nil fields of update. Returns nil when the
// ticket does not exist.
func (c *Client) UpdateTicket(ctx context.Context, id string, update storage.TicketUpdate) (*types.Ticket, error) {
	q := c.db.NewUpdate().
		Model((*types.Ticket)(nil)).
		Where("id = ?", id)

	changed := false
	set := func(column string, value any) {
		q.Set(column+" = ?", value)
		changed = true
	}
	if update.Status != nil {
		set("status", *update.Status)
	}
	if update.StaffID != nil {
		set("staff_id", *update.StaffID)
	}
	if update.StaffName != nil {
		set("staff_name", *update.StaffName)
	}
	if update.AIModeEnabled != nil {
		set("ai_mode_enabled", *update.AIModeEnabled)
	}
	if update.ClosedAt != nil {
		set("closed_at", *update.ClosedAt)
	}
	if update.ClosedBy != nil {
		set("closed_by", *update.ClosedBy)
	}
	if update.ClosedByName != nil {
		set("closed_by_name", *update.ClosedByName)
	}

	if changed {
		if _, err := q.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to update ticket: %w", err)
		}
	}
	return c.GetTicket(ctx, id)
}

// NextTicketNumber returns one past the highest ticket number the guild has
// used, starting at 1.
func (c *Client) NextTicketNumber(ctx context.Context, guildID string) (int, error) {
	var max int
	err := c.db.NewSelect().
		Model((*types.Ticket)(nil)).
		ColumnExpr("COALESCE(MAX(ticket_number), 0)").
		Where("guild_id = ?", guildID).
		Scan(ctx, &max)
	if err != nil {
		return 0, fmt.Errorf("failed to get next ticket number: %w", err)
	}
	return max + 1, nil
}

// DeleteGuildTickets removes a guild's tickets; messages and feedback go
// with them via the FK cascade.
func (c *Client) DeleteGuildTickets(ctx context.Context, guildID string) (int, error) {
	res, err := c.db.NewDelete().
		Model((*types.Ticket)(nil)).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete guild tickets: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted tickets: %w", err)
	}
	return int(affected), nil
}

// GetTicketMessages lists a ticket's archived messages, oldest first.
func (c *Client) GetTicketMessages(ctx context.Context, ticketID string) ([]*types.TicketMessage, error) {
	var messages []*types.TicketMessage
	err := c.db.NewSelect().
		Model(&messages).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket messages: %w", err)
	}
	return messages, nil
}

// CreateTicketMessage archives one channel message.
func (c *Client) CreateTicketMessage(ctx context.Context, message *types.TicketMessage) (*types.TicketMessage, error) {
	stored := *message
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()

	if _, err := c.db.NewInsert().Model(&stored).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create ticket message: %w", err)
	}
	return &stored, nil
}

// GetTicketStats aggregates a guild's counters for the dashboard.
func (c *Client) GetTicketStats(ctx context.Context, guildID string) (*types.TicketStats, error) {
	stats := new(types.TicketStats)

	err := c.db.NewSelect().
		Model((*types.Ticket)(nil)).
		ColumnExpr("COUNT(*)").
		ColumnExpr("COUNT(*) FILTER (WHERE status IN ('open', 'waiting'))").
		ColumnExpr("COUNT(*) FILTER (WHERE status IN ('closed', 'archived'))").
		Where("guild_id = ?", guildID).
		Scan(ctx, &stats.TotalTickets, &stats.OpenTickets, &stats.ClosedTickets)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket counters: %w", err)
	}

	err = c.db.NewSelect().
		Model((*types.Feedback)(nil)).
		ColumnExpr("COUNT(*)").
		ColumnExpr("COALESCE(AVG(rating), 0)").
		Where("guild_id = ?", guildID).
		Scan(ctx, &stats.TotalFeedbacks, &stats.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback counters: %w", err)
	}

	return stats, nil
}
