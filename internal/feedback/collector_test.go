package feedback_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/feedback"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/jsonfile"
	"github.com/atendix/atendix/internal/storage/types"
)

const (
	testGuildID         = "100000000000000001"
	testUserID          = "100000000000000002"
	testFeedbackChannel = "100000000000000003"
)

type fakeGateway struct {
	mu       sync.Mutex
	messages map[string][]discord.MessageCreate
	dms      map[string][]discord.MessageCreate
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		messages: make(map[string][]discord.MessageCreate),
		dms:      make(map[string][]discord.MessageCreate),
	}
}

func (g *fakeGateway) CreateChannel(_ context.Context, _ string, _ discord.GuildTextChannelCreate) (string, error) {
	return "", nil
}

func (g *fakeGateway) DeleteChannel(_ context.Context, _ string) error { return nil }

func (g *fakeGateway) IsCategory(_ context.Context, _ string) (bool, error) { return false, nil }

func (g *fakeGateway) CreateMessage(_ context.Context, channelID string, message discord.MessageCreate) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages[channelID] = append(g.messages[channelID], message)
	return fmt.Sprintf("3000000000000000%02d", len(g.messages[channelID])), nil
}

func (g *fakeGateway) UpdateMessage(_ context.Context, _, _ string, _ discord.MessageUpdate) error {
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, _, _ string) error { return nil }

func (g *fakeGateway) SendDirectMessage(_ context.Context, userID string, message discord.MessageCreate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dms[userID] = append(g.dms[userID], message)
	return nil
}

func (g *fakeGateway) PublishWebhookMessage(_ context.Context, _ string, _ discord.WebhookMessageCreate) (string, error) {
	return "", nil
}

func newTestCollector(t *testing.T) (*feedback.Collector, storage.Client, *fakeGateway) {
	t.Helper()

	store, err := jsonfile.New(filepath.Join(t.TempDir(), "storage.json"), zap.NewNop())
	require.NoError(t, err)

	gw := newFakeGateway()
	return feedback.NewCollector(store, gw, zap.NewNop()), store, gw
}

func seedClosedTicket(t *testing.T, store storage.Client) *types.Ticket {
	t.Helper()

	ctx := context.Background()
	_, err := store.CreateGuildConfig(ctx, &types.GuildConfig{
		GuildID:           testGuildID,
		GuildName:         "Test Guild",
		FeedbackChannelID: testFeedbackChannel,
	})
	require.NoError(t, err)

	ticket, err := store.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 7,
		GuildID:      testGuildID,
		ChannelID:    "200000000000000001",
		UserID:       testUserID,
		UserName:     "User",
		StaffName:    "Staff",
		Status:       types.TicketStatusClosed,
	})
	require.NoError(t, err)
	return ticket
}

func TestPromptDMSendsRatingButtons(t *testing.T) {
	t.Parallel()

	c, store, gw := newTestCollector(t)
	ticket := seedClosedTicket(t, store)

	c.PromptDM(context.Background(), ticket)
	require.Len(t, gw.dms[testUserID], 1)
}

func TestSubmitRecordsAndMirrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, store, gw := newTestCollector(t)
	ticket := seedClosedTicket(t, store)

	fb, err := c.Submit(ctx, ticket.ID, 5, "excelente atendimento")
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Rating)
	assert.Equal(t, testGuildID, fb.GuildID)
	assert.Equal(t, "Staff", fb.StaffName)
	assert.Len(t, gw.messages[testFeedbackChannel], 1)

	stored, err := store.GetFeedback(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "excelente atendimento", stored.Comment)
}

func TestSubmitRejectsSecondRating(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, store, _ := newTestCollector(t)
	ticket := seedClosedTicket(t, store)

	_, err := c.Submit(ctx, ticket.ID, 4, "")
	require.NoError(t, err)

	_, err = c.Submit(ctx, ticket.ID, 5, "")
	assert.ErrorIs(t, err, feedback.ErrAlreadyRated)
}

func TestSubmitValidatesRatingRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, store, _ := newTestCollector(t)
	ticket := seedClosedTicket(t, store)

	_, err := c.Submit(ctx, ticket.ID, 0, "")
	assert.ErrorIs(t, err, feedback.ErrInvalidRating)

	_, err = c.Submit(ctx, ticket.ID, 6, "")
	assert.ErrorIs(t, err, feedback.ErrInvalidRating)
}

func TestSubmitRequiresExistingTicket(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestCollector(t)

	_, err := c.Submit(context.Background(), "missing", 3, "")
	assert.ErrorIs(t, err, feedback.ErrTicketNotFound)
}
