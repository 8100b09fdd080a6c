package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atendix/atendix/internal/setup/config"
)

func TestRequireTokenOnlyGatesTheBot(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	assert.ErrorIs(t, cfg.RequireToken(), config.ErrTokenMissing)

	cfg.Discord.Token = "token"
	assert.NoError(t, cfg.RequireToken())
}
