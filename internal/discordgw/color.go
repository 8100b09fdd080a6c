package discordgw

import (
	"strconv"
	"strings"
)

// DefaultEmbedColor is Discord blurple, the fallback for invalid input.
const DefaultEmbedColor = 0x5865F2

// ParseColor converts a "#RRGGBB" string to the integer Discord embeds use.
func ParseColor(hex string) int {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(trimmed) != 6 {
		return DefaultEmbedColor
	}
	value, err := strconv.ParseInt(trimmed, 16, 32)
	if err != nil {
		return DefaultEmbedColor
	}
	return int(value)
}

// NormalizeColor returns a canonical "#RRGGBB" form, or ok false when the
// input is not a valid hex color.
func NormalizeColor(input string) (string, bool) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(input), "#")
	if len(trimmed) != 6 {
		return "", false
	}
	if _, err := strconv.ParseInt(trimmed, 16, 32); err != nil {
		return "", false
	}
	return "#" + strings.ToUpper(trimmed), true
}
