package discordgw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atendix/atendix/internal/discordgw"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0x5865F2, discordgw.ParseColor("#5865F2"))
	assert.Equal(t, 0xFF0000, discordgw.ParseColor("ff0000"))
	assert.Equal(t, discordgw.DefaultEmbedColor, discordgw.ParseColor("not-a-color"))
	assert.Equal(t, discordgw.DefaultEmbedColor, discordgw.ParseColor(""))
	assert.Equal(t, discordgw.DefaultEmbedColor, discordgw.ParseColor("#FFF"))
}

func TestNormalizeColor(t *testing.T) {
	t.Parallel()

	normalized, ok := discordgw.NormalizeColor("ff8800")
	assert.True(t, ok)
	assert.Equal(t, "#FF8800", normalized)

	normalized, ok = discordgw.NormalizeColor(" #5865f2 ")
	assert.True(t, ok)
	assert.Equal(t, "#5865F2", normalized)

	_, ok = discordgw.NormalizeColor("zzzzzz")
	assert.False(t, ok)

	_, ok = discordgw.NormalizeColor("#12345")
	assert.False(t, ok)
}
