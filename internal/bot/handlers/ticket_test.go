package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendix/atendix/internal/feedback"
	"github.com/atendix/atendix/internal/panel"
	"github.com/atendix/atendix/internal/storage/jsonfile"
	"github.com/atendix/atendix/internal/storage/types"
	"github.com/atendix/atendix/internal/ticket"
)

func newTestHandlers(t *testing.T) (*Handlers, *panel.Manager) {
	t.Helper()

	store, err := jsonfile.New(filepath.Join(t.TempDir(), "storage.json"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := zap.NewNop()
	tickets := ticket.NewManager(store, nil, nil, "100000000000000005", logger)
	panels := panel.NewManager(store, nil, logger)
	feedbacks := feedback.NewCollector(store, nil, logger)
	return New(store, tickets, panels, feedbacks, logger), panels
}

func TestPanelOptionResolvesSelection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h, panels := newTestHandlers(t)

	draft, err := panels.CreateDraft(ctx,
		"100000000000000001", "200000000000000001", "300000000000000001")
	require.NoError(t, err)

	added, err := panels.AddOption(ctx, draft.ID, "Dúvidas", "", types.ButtonStylePrimary)
	require.NoError(t, err)

	option, err := h.panelOption(ctx, draft.ID, added.ID)
	require.NoError(t, err)
	require.NotNil(t, option)
	assert.Equal(t, "Dúvidas", option.Label)
}

func TestPanelOptionRejectsUnknownSelection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h, panels := newTestHandlers(t)

	draft, err := panels.CreateDraft(ctx,
		"100000000000000001", "200000000000000001", "300000000000000001")
	require.NoError(t, err)

	_, err = panels.AddOption(ctx, draft.ID, "Dúvidas", "", types.ButtonStylePrimary)
	require.NoError(t, err)

	option, err := h.panelOption(ctx, draft.ID, "900000000000000000")
	require.NoError(t, err)
	assert.Nil(t, option)
}
