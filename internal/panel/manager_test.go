package panel_test

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

	"github.com/atendix/atendix/internal/panel"
	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/jsonfile"
	"github.com/atendix/atendix/internal/storage/types"
)

const (
	testGuildID   = "100000000000000001"
	testChannelID = "100000000000000002"
	testAdminID   = "100000000000000003"
)

type fakeGateway struct {
	mu           sync.Mutex
	categories   map[string]bool
	webhookPosts map[string][]discord.WebhookMessageCreate
	deletedMsgs  []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		categories:   make(map[string]bool),
		webhookPosts: make(map[string][]discord.WebhookMessageCreate),
	}
}

func (g *fakeGateway) CreateChannel(_ context.Context, _ string, _ discord.GuildTextChannelCreate) (string, error) {
	return "", nil
}

func (g *fakeGateway) DeleteChannel(_ context.Context, _ string) error { return nil }

func (g *fakeGateway) IsCategory(_ context.Context, channelID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.categories[channelID], nil
}

func (g *fakeGateway) CreateMessage(_ context.Context, _ string, _ discord.MessageCreate) (string, error) {
	return "", nil
}

func (g *fakeGateway) UpdateMessage(_ context.Context, _, _ string, _ discord.MessageUpdate) error {
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, _, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletedMsgs = append(g.deletedMsgs, messageID)
	return nil
}

func (g *fakeGateway) SendDirectMessage(_ context.Context, _ string, _ discord.MessageCreate) error {
	return nil
}

func (g *fakeGateway) PublishWebhookMessage(_ context.Context, channelID string, message discord.WebhookMessageCreate) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.webhookPosts[channelID] = append(g.webhookPosts[channelID], message)
	return fmt.Sprintf("4000000000000000%02d", len(g.webhookPosts[channelID])), nil
}

func newTestManager(t *testing.T) (*panel.Manager, storage.Client, *fakeGateway) {
	t.Helper()

	store, err := jsonfile.New(filepath.Join(t.TempDir(), "storage.json"), zap.NewNop())
	require.NoError(t, err)

	gw := newFakeGateway()
	return panel.NewManager(store, gw, zap.NewNop()), store, gw
}

func newDraft(t *testing.T, m *panel.Manager) *types.TicketPanel {
	t.Helper()

	draft, err := m.CreateDraft(context.Background(), testGuildID, testChannelID, testAdminID)
	require.NoError(t, err)
	return draft
}

func TestDraftStartsUnconfigured(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestManager(t)
	draft := newDraft(t, m)

	assert.False(t, draft.IsConfigured)
	assert.Empty(t, draft.MessageID)
	assert.Equal(t, types.DefaultPanelTitle, draft.Title)
}

func TestSetColorNormalizes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _, _ := newTestManager(t)
	draft := newDraft(t, m)

	updated, err := m.SetColor(ctx, draft.ID, "ff8800")
	require.NoError(t, err)
	assert.Equal(t, "#FF8800", updated.EmbedColor)

	_, err = m.SetColor(ctx, draft.ID, "laranja")
	assert.ErrorIs(t, err, panel.ErrInvalidColor)
}

func TestSetCategoryValidatesChannelType(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _, gw := newTestManager(t)
	draft := newDraft(t, m)

	category := "100000000000000050"
	gw.categories[category] = true

	updated, err := m.SetCategory(ctx, draft.ID, category)
	require.NoError(t, err)
	assert.Equal(t, category, updated.CategoryID)

	_, err = m.SetCategory(ctx, draft.ID, "100000000000000051")
	assert.ErrorIs(t, err, panel.ErrInvalidCategory)
}

func TestToggleRequireReason(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _, _ := newTestManager(t)
	draft := newDraft(t, m)

	updated, err := m.ToggleRequireReason(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, updated.RequireReason)

	updated, err = m.ToggleRequireReason(ctx, draft.ID)
	require.NoError(t, err)
	assert.False(t, updated.RequireReason)
}

func TestRemoveOptionCompactsOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _, _ := newTestManager(t)
	draft := newDraft(t, m)

	var ids []string
	for _, label := range []string{"Suporte", "Financeiro", "Outros"} {
		b, err := m.AddOption(ctx, draft.ID, label, "", types.ButtonStylePrimary)
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	require.NoError(t, m.RemoveOption(ctx, draft.ID, ids[0]))

	options, err := m.Options(ctx, draft.ID)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Financeiro", options[0].Label)
	assert.Equal(t, 0, options[0].Order)
	assert.Equal(t, "Outros", options[1].Label)
	assert.Equal(t, 1, options[1].Order)
}

func TestPublishRequiresOptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _, _ := newTestManager(t)
	draft := newDraft(t, m)

	_, err := m.Publish(ctx, draft.ID)
	assert.ErrorIs(t, err, panel.ErrNoOptions)

	unchanged, err := m.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.False(t, unchanged.IsConfigured)
}

func TestPublishMarksConfigured(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _, gw := newTestManager(t)
	draft := newDraft(t, m)

	_, err := m.AddOption(ctx, draft.ID, "Suporte", "🎫", types.ButtonStylePrimary)
	require.NoError(t, err)

	published, err := m.Publish(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, published.IsConfigured)
	assert.NotEmpty(t, published.MessageID)
	assert.Len(t, gw.webhookPosts[testChannelID], 1)
}

func TestRepublishReplacesMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _, gw := newTestManager(t)
	draft := newDraft(t, m)

	_, err := m.AddOption(ctx, draft.ID, "Suporte", "", types.ButtonStylePrimary)
	require.NoError(t, err)

	first, err := m.Publish(ctx, draft.ID)
	require.NoError(t, err)

	second, err := m.Publish(ctx, draft.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.MessageID, second.MessageID)
	assert.Contains(t, gw.deletedMsgs, first.MessageID)
	assert.Len(t, gw.webhookPosts[testChannelID], 2)
}

func TestEmojiCapture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store, _ := newTestManager(t)
	draft := newDraft(t, m)

	b, err := m.AddOption(ctx, draft.ID, "Suporte", "", types.ButtonStylePrimary)
	require.NoError(t, err)

	// No capture armed; reaction is ignored.
	claimed, err := m.HandleReaction(ctx, testAdminID, testChannelID, "🎫")
	require.NoError(t, err)
	assert.False(t, claimed)

	m.AwaitEmoji(draft.ID, b.ID, testAdminID, testChannelID)

	claimed, err = m.HandleReaction(ctx, testAdminID, testChannelID, "🎫")
	require.NoError(t, err)
	assert.True(t, claimed)

	buttons, err := store.GetPanelButtons(ctx, draft.ID)
	require.NoError(t, err)
	require.Len(t, buttons, 1)
	assert.Equal(t, "🎫", buttons[0].Emoji)

	// A capture is single use.
	claimed, err = m.HandleReaction(ctx, testAdminID, testChannelID, "🔥")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestDeletePanelRemovesMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, store, gw := newTestManager(t)
	draft := newDraft(t, m)

	_, err := m.AddOption(ctx, draft.ID, "Suporte", "", types.ButtonStylePrimary)
	require.NoError(t, err)
	published, err := m.Publish(ctx, draft.ID)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, draft.ID))
	assert.Contains(t, gw.deletedMsgs, published.MessageID)

	stored, err := store.GetPanel(ctx, draft.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
