package config

import (
	"context"

	"github.com/fatih/color"
)

var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Pink   = color.New(color.FgMagenta).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
	Muted  = color.New(color.Faint).SprintFunc()

	Ctx = context.Background()

	// SeverityMap ranks the severities the backend reports.
	// Anything missing from the map ranks as low.
	SeverityMap = map[string]int{
		"high":   3,
		"medium": 2,
		"low":    1,
	}
)

// DisableColor turns off every palette entry, used by --no-color and in tests.
func DisableColor() {
	color.NoColor = true
}
