package ticket_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/jsonfile"
	"github.com/atendix/atendix/internal/storage/types"
	"github.com/atendix/atendix/internal/ticket"
)

const (
	testGuildID    = "100000000000000001"
	testCategoryID = "100000000000000002"
	testUserID     = "100000000000000003"
	testStaffID    = "100000000000000004"
	testBotID      = "100000000000000005"
)

// fakeGateway records Discord calls in memory.
type fakeGateway struct {
	mu              sync.Mutex
	nextChannel     int
	categories      map[string]bool
	messages        map[string][]discord.MessageCreate
	deletedChannels []string
	dms             map[string][]discord.MessageCreate
	webhookPosts    map[string][]discord.WebhookMessageCreate
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		nextChannel:  900,
		categories:   map[string]bool{testCategoryID: true},
		messages:     make(map[string][]discord.MessageCreate),
		dms:          make(map[string][]discord.MessageCreate),
		webhookPosts: make(map[string][]discord.WebhookMessageCreate),
	}
}

func (g *fakeGateway) CreateChannel(_ context.Context, _ string, _ discord.GuildTextChannelCreate) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextChannel++
	return fmt.Sprintf("20000000000000%04d", g.nextChannel), nil
}

func (g *fakeGateway) DeleteChannel(_ context.Context, channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletedChannels = append(g.deletedChannels, channelID)
	return nil
}

func (g *fakeGateway) IsCategory(_ context.Context, channelID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.categories[channelID], nil
}

func (g *fakeGateway) CreateMessage(_ context.Context, channelID string, message discord.MessageCreate) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages[channelID] = append(g.messages[channelID], message)
	return fmt.Sprintf("3000000000000000%02d", len(g.messages[channelID])), nil
}

func (g *fakeGateway) UpdateMessage(_ context.Context, _, _ string, _ discord.MessageUpdate) error {
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, _, _ string) error {
	return nil
}

func (g *fakeGateway) SendDirectMessage(_ context.Context, userID string, message discord.MessageCreate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dms[userID] = append(g.dms[userID], message)
	return nil
}

func (g *fakeGateway) PublishWebhookMessage(_ context.Context, channelID string, message discord.WebhookMessageCreate) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.webhookPosts[channelID] = append(g.webhookPosts[channelID], message)
	return fmt.Sprintf("4000000000000000%02d", len(g.webhookPosts[channelID])), nil
}

func (g *fakeGateway) deleted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.deletedChannels...)
}

func newTestManager(t *testing.T) (*ticket.Manager, storage.Client, *fakeGateway) {
	t.Helper()

	store, err := jsonfile.New(filepath.Join(t.TempDir(), "storage.json"), zap.NewNop())
	require.NoError(t, err)

	gw := newFakeGateway()
	manager := ticket.NewManager(store, gw, nil, testBotID, zap.NewNop())
	return manager, store, gw
}

func seedGuildConfig(t *testing.T, store storage.Client) *types.GuildConfig {
	t.Helper()

	cfg, err := store.CreateGuildConfig(context.Background(), &types.GuildConfig{
		GuildID:          testGuildID,
		GuildName:        "Test Guild",
		TicketCategoryID: testCategoryID,
		StaffRoleID:      testStaffID,
	})
	require.NoError(t, err)
	return cfg
}

func TestCreateRequiresGuildConfig(t *testing.T) {
	t.Parallel()

	manager, _, _ := newTestManager(t)

	_, err := manager.Create(context.Background(), ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	assert.ErrorIs(t, err, ticket.ErrNoGuildConfig)
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, _ := newTestManager(t)
	seedGuildConfig(t, store)

	first, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.TicketNumber)
	assert.Equal(t, types.TicketStatusOpen, first.Status)
	assert.NotEmpty(t, first.ChannelID)

	_, err = manager.Close(ctx, first.ChannelID, testStaffID, "Staff")
	require.NoError(t, err)

	second, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.TicketNumber)
}

func TestCreateRejectsSecondActiveTicket(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, _ := newTestManager(t)
	seedGuildConfig(t, store)

	first, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	_, err = manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})

	var exists *ticket.ErrTicketExists
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, first.ChannelID, exists.ChannelID)
}

func TestCreateRejectsNonCategoryChannel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, gw := newTestManager(t)
	seedGuildConfig(t, store)
	gw.categories[testCategoryID] = false

	_, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	assert.ErrorIs(t, err, ticket.ErrInvalidCategory)
}

func TestCreateUsesPanelCategory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, gw := newTestManager(t)
	seedGuildConfig(t, store)

	panelCategory := "100000000000000099"
	gw.categories[panelCategory] = true

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID:  testGuildID,
		UserID:   testUserID,
		UserName: "User",
		Panel: &types.TicketPanel{
			GuildID:    testGuildID,
			CategoryID: panelCategory,
		},
	})
	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestClaimMovesTicketToWaiting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, _ := newTestManager(t)
	seedGuildConfig(t, store)

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	claimed, err := manager.Claim(ctx, created.ChannelID, testStaffID, "Staff")
	require.NoError(t, err)
	assert.Equal(t, types.TicketStatusWaiting, claimed.Status)
	assert.Equal(t, testStaffID, claimed.StaffID)
	assert.Equal(t, "Staff", claimed.StaffName)
}

func TestCloseRecordsCloser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, _ := newTestManager(t)
	seedGuildConfig(t, store)

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	closed, err := manager.Close(ctx, created.ChannelID, testStaffID, "Staff")
	require.NoError(t, err)
	assert.Equal(t, types.TicketStatusClosed, closed.Status)
	assert.Equal(t, testStaffID, closed.ClosedBy)
	require.NotNil(t, closed.ClosedAt)

	_, err = manager.Close(ctx, created.ChannelID, testStaffID, "Staff")
	assert.ErrorIs(t, err, ticket.ErrNotActive)
}

func TestArchiveDeletesChannelAfterDelay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, gw := newTestManager(t)
	seedGuildConfig(t, store)

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	_, err = manager.Close(ctx, created.ChannelID, testStaffID, "Staff")
	require.NoError(t, err)

	archived, err := manager.Archive(ctx, created.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, types.TicketStatusArchived, archived.Status)

	require.Eventually(t, func() bool {
		for _, id := range gw.deleted() {
			if id == created.ChannelID {
				return true
			}
		}
		return false
	}, ticket.ArchiveDelay+2*time.Second, 100*time.Millisecond)
}

func TestArchiveRequiresClosedTicket(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, gw := newTestManager(t)
	seedGuildConfig(t, store)

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	_, err = manager.Archive(ctx, created.ChannelID)
	assert.ErrorIs(t, err, ticket.ErrNotClosed)

	after, err := store.GetTicket(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TicketStatusOpen, after.Status)
	assert.NotContains(t, gw.deleted(), created.ChannelID)
}

func TestToggleAIRequiresGuildAI(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, _ := newTestManager(t)
	seedGuildConfig(t, store)

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	// AI client is nil in tests, so the toggle is always refused.
	_, err = manager.ToggleAI(ctx, created.ChannelID)
	assert.ErrorIs(t, err, ticket.ErrAIDisabled)
}

func TestNotifyDMReachesRequester(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, gw := newTestManager(t)
	seedGuildConfig(t, store)

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	require.NoError(t, manager.NotifyDM(ctx, created.ChannelID, "Staff"))
	assert.Len(t, gw.dms[testUserID], 1)
}

func TestResetRemovesTicketsAndChannels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, gw := newTestManager(t)
	seedGuildConfig(t, store)

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	removed, err := manager.Reset(ctx, testGuildID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Contains(t, gw.deleted(), created.ChannelID)

	n, err := store.NextTicketNumber(ctx, testGuildID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngestArchivesAndDisablesAIOnThirdParty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, _ := newTestManager(t)
	cfg := seedGuildConfig(t, store)
	_, err := store.UpdateGuildConfig(ctx, cfg.GuildID, storage.GuildConfigUpdate{})
	require.NoError(t, err)

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	aiOn := true
	_, err = store.UpdateTicket(ctx, created.ID, storage.TicketUpdate{AIModeEnabled: &aiOn})
	require.NoError(t, err)

	require.NoError(t, manager.IngestMessage(ctx, ticket.IncomingMessage{
		ChannelID:  created.ChannelID,
		MessageID:  "500000000000000001",
		AuthorID:   testStaffID,
		AuthorName: "Staff",
		Content:    "olá, posso ajudar",
	}))

	after, err := store.GetTicket(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, after.AIModeEnabled)

	messages, err := store.GetTicketMessages(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "olá, posso ajudar", messages[0].Content)
}

func TestIngestSkipsBotAndClosedTickets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store, _ := newTestManager(t)
	seedGuildConfig(t, store)

	created, err := manager.Create(ctx, ticket.CreateParams{
		GuildID: testGuildID, UserID: testUserID, UserName: "User",
	})
	require.NoError(t, err)

	require.NoError(t, manager.IngestMessage(ctx, ticket.IncomingMessage{
		ChannelID:  created.ChannelID,
		MessageID:  "500000000000000001",
		AuthorID:   testBotID,
		AuthorName: "Bot",
		Content:    "mensagem automática",
		IsBot:      true,
	}))

	messages, err := store.GetTicketMessages(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	_, err = manager.Close(ctx, created.ChannelID, testStaffID, "Staff")
	require.NoError(t, err)

	require.NoError(t, manager.IngestMessage(ctx, ticket.IncomingMessage{
		ChannelID:  created.ChannelID,
		MessageID:  "500000000000000002",
		AuthorID:   testUserID,
		AuthorName: "User",
		Content:    "ainda estou aqui",
	}))

	messages, err = store.GetTicketMessages(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestIngestIgnoresNonTicketChannels(t *testing.T) {
	t.Parallel()

	manager, _, _ := newTestManager(t)

	err := manager.IngestMessage(context.Background(), ticket.IncomingMessage{
		ChannelID:  "999999999999999999",
		MessageID:  "500000000000000001",
		AuthorID:   testUserID,
		AuthorName: "User",
		Content:    "hello",
	})
	assert.NoError(t, err)
}
