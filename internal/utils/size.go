package utils

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var groupedNumberPrinter = message.NewPrinter(language.English)

// FormatFileSize converts a byte length into a human-readable lower-case unit string.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0b"
	}
	units := []string{"b", "kb", "mb", "gb", "tb", "pb"}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(units)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%db", bytes)
	}
	if value < 10 {
		formatted := fmt.Sprintf("%.1f", value)
		formatted = strings.TrimSuffix(formatted, ".0")
		return formatted + units[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, units[unitIndex])
}

// FormatGroupedInteger renders value with comma thousands separators, e.g. 12,345.
func FormatGroupedInteger(value int) string {
	return groupedNumberPrinter.Sprintf("%d", value)
}

// FormatPercent renders a percentage with one decimal place, e.g. 42.5%.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}
