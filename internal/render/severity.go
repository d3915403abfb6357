package render

import (
	"strings"

	"github.com/kvesta/scanconsole/config"
)

// Class is the visual emphasis of a finding.
type Class int

const (
	ClassLow Class = iota
	ClassMedium
	ClassHigh
)

func (c Class) String() string {
	switch c {
	case ClassHigh:
		return "vuln-high"
	case ClassMedium:
		return "vuln-med"
	default:
		return "vuln-low"
	}
}

// SeverityClass maps a backend severity to its class, ignoring case.
// Unrecognized and empty severities are shown as low, never dropped.
func SeverityClass(severity string) Class {
	rank, ok := config.SeverityMap[strings.ToLower(strings.TrimSpace(severity))]
	if !ok {
		return ClassLow
	}

	switch rank {
	case config.SeverityMap["high"]:
		return ClassHigh
	case config.SeverityMap["medium"]:
		return ClassMedium
	}
	return ClassLow
}

// SeverityLabel is the display form of a severity.
func SeverityLabel(severity string) string {
	label := strings.ToUpper(strings.TrimSpace(severity))
	if label == "" {
		return "UNKNOWN"
	}
	return label
}

func judgeSeverity(c Class, label string) string {
	switch c {
	case ClassHigh:
		return config.Red(label)
	case ClassMedium:
		return config.Yellow(label)
	default:
		return config.Green(label)
	}
}
