package render

import (
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// parseColor converts a "#rrggbb" token into a drawing color.
func parseColor(token string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(token, "#"))
}

// rgba renders a color token with the given opacity as a CSS color.
func rgba(token string, opacity float64) string {
	c := parseColor(token)
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)", c.R, c.G, c.B, opacity)
}
