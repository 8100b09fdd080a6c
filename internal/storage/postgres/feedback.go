package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atendix/atendix/internal/storage/types"
)

// GetFeedback returns the feedback left for a ticket, or nil when none
// exists.
func (c *Client) GetFeedback(ctx context.Context, ticketID string) (*types.Feedback, error) {
	fb := new(types.Feedback)
	err := c.db.NewSelect().
		Model(fb).
		Where("ticket_id = ?", ticketID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return fb, nil
}

// GetFeedbacksByGuild lists a guild's feedback entries, newest first.
func (c *Client) GetFeedbacksByGuild(ctx context.Context, guildID string) ([]*types.Feedback, error) {
	var feedbacks []*types.Feedback
	err := c.db.NewSelect().
		Model(&feedbacks).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild feedbacks: %w", err)
	}
	return feedbacks, nil
}

// CreateFeedback stores a new feedback entry.
func (c *Client) CreateFeedback(ctx context.Context, feedback *types.Feedback) (*types.Feedback, error) {
	stored := *feedback
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()

	if _, err := c.db.NewInsert().Model(&stored).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return &stored, nil
}
