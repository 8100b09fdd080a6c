package jsonfile_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/storage"
	"github.com/atendix/atendix/internal/storage/jsonfile"
	"github.com/atendix/atendix/internal/storage/types"
)

func newTestClient(t *testing.T) *jsonfile.Client {
	t.Helper()
	c, err := jsonfile.New(filepath.Join(t.TempDir(), "storage.json"), zap.NewNop())
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }

func TestGuildConfigLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t)

	cfg, err := c.GetGuildConfig(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, cfg)

	created, err := c.CreateGuildConfig(ctx, &types.GuildConfig{
		GuildID:   "g1",
		GuildName: "Test Guild",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Len(t, created.ServerKey, 32)
	assert.Equal(t, types.DefaultWelcomeMessage, created.WelcomeMessage)
	assert.Equal(t, types.DefaultPanelColor, created.PanelColor)
	assert.False(t, created.AIEnabled)

	byKey, err := c.GetGuildConfigByKey(ctx, created.ServerKey)
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, "g1", byKey.GuildID)

	updated, err := c.UpdateGuildConfig(ctx, "g1", storage.GuildConfigUpdate{
		AIEnabled:   ptr(true),
		StaffRoleID: ptr("role1"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.AIEnabled)
	assert.Equal(t, "role1", updated.StaffRoleID)
	assert.Equal(t, created.ServerKey, updated.ServerKey)

	missing, err := c.UpdateGuildConfig(ctx, "other", storage.GuildConfigUpdate{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTicketNumbersArePerGuild(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t)

	n, err := c.NextTicketNumber(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = c.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 1, GuildID: "g1", ChannelID: "ch1", UserID: "u1", UserName: "User",
	})
	require.NoError(t, err)
	_, err = c.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 2, GuildID: "g1", ChannelID: "ch2", UserID: "u2", UserName: "Other",
	})
	require.NoError(t, err)

	n, err = c.NextTicketNumber(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = c.NextTicketNumber(ctx, "g2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTicketUpdateAndLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t)

	created, err := c.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 1, GuildID: "g1", ChannelID: "ch1", UserID: "u1", UserName: "User",
	})
	require.NoError(t, err)
	assert.Equal(t, types.TicketStatusOpen, created.Status)

	byChannel, err := c.GetTicketByChannel(ctx, "ch1")
	require.NoError(t, err)
	require.NotNil(t, byChannel)
	assert.Equal(t, created.ID, byChannel.ID)

	closedAt := time.Now().UTC()
	updated, err := c.UpdateTicket(ctx, created.ID, storage.TicketUpdate{
		Status:       ptr(types.TicketStatusClosed),
		ClosedAt:     &closedAt,
		ClosedBy:     ptr("staff1"),
		ClosedByName: ptr("Staff"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, types.TicketStatusClosed, updated.Status)
	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, "staff1", updated.ClosedBy)

	missing, err := c.UpdateTicket(ctx, "nope", storage.TicketUpdate{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteGuildTicketsCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t)

	ticket, err := c.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 1, GuildID: "g1", ChannelID: "ch1", UserID: "u1", UserName: "User",
	})
	require.NoError(t, err)
	_, err = c.CreateTicketMessage(ctx, &types.TicketMessage{
		TicketID: ticket.ID, MessageID: "m1", AuthorID: "u1", AuthorName: "User", Content: "hello",
	})
	require.NoError(t, err)
	_, err = c.CreateFeedback(ctx, &types.Feedback{
		TicketID: ticket.ID, GuildID: "g1", UserID: "u1", UserName: "User", Rating: 5,
	})
	require.NoError(t, err)

	other, err := c.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 1, GuildID: "g2", ChannelID: "ch2", UserID: "u2", UserName: "Other",
	})
	require.NoError(t, err)

	removed, err := c.DeleteGuildTickets(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	messages, err := c.GetTicketMessages(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	fb, err := c.GetFeedback(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, fb)

	kept, err := c.GetTicket(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestTicketStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t)

	open, err := c.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 1, GuildID: "g1", ChannelID: "ch1", UserID: "u1", UserName: "User",
	})
	require.NoError(t, err)
	closed, err := c.CreateTicket(ctx, &types.Ticket{
		TicketNumber: 2, GuildID: "g1", ChannelID: "ch2", UserID: "u2", UserName: "Other",
	})
	require.NoError(t, err)
	_, err = c.UpdateTicket(ctx, closed.ID, storage.TicketUpdate{
		Status: ptr(types.TicketStatusClosed),
	})
	require.NoError(t, err)

	_, err = c.CreateFeedback(ctx, &types.Feedback{
		TicketID: closed.ID, GuildID: "g1", UserID: "u2", UserName: "Other", Rating: 4,
	})
	require.NoError(t, err)
	_, err = c.CreateFeedback(ctx, &types.Feedback{
		TicketID: open.ID, GuildID: "g1", UserID: "u1", UserName: "User", Rating: 5,
	})
	require.NoError(t, err)

	stats, err := c.GetTicketStats(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTickets)
	assert.Equal(t, 1, stats.OpenTickets)
	assert.Equal(t, 1, stats.ClosedTickets)
	assert.Equal(t, 2, stats.TotalFeedbacks)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)
}

func TestPanelButtonsKeepOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestClient(t)

	panel, err := c.CreatePanel(ctx, &types.TicketPanel{
		GuildID: "g1", ChannelID: "ch1", CreatedBy: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPanelTitle, panel.Title)
	assert.False(t, panel.IsConfigured)

	for i, label := range []string{"Suporte", "Financeiro", "Outros"} {
		_, err := c.CreatePanelButton(ctx, &types.PanelButton{
			PanelID: panel.ID, Label: label, Order: i,
		})
		require.NoError(t, err)
	}

	buttons, err := c.GetPanelButtons(ctx, panel.ID)
	require.NoError(t, err)
	require.Len(t, buttons, 3)
	assert.Equal(t, "Suporte", buttons[0].Label)
	assert.Equal(t, "Outros", buttons[2].Label)

	require.NoError(t, c.DeletePanel(ctx, panel.ID))

	buttons, err = c.GetPanelButtons(ctx, panel.ID)
	require.NoError(t, err)
	assert.Empty(t, buttons)
}

func TestDataSurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	first, err := jsonfile.New(path, zap.NewNop())
	require.NoError(t, err)
	created, err := first.CreateGuildConfig(ctx, &types.GuildConfig{
		GuildID: "g1", GuildName: "Test Guild",
	})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := jsonfile.New(path, zap.NewNop())
	require.NoError(t, err)
	cfg, err := second.GetGuildConfig(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, created.ServerKey, cfg.ServerKey)
}
