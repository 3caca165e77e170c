package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	// Format converts a Summary to a formatted string.
	Format(summary *Summary) (string, error)
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) (string, error)

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) (string, error) {
	return f(summary)
}

// FormatterForPath picks a formatter from the file extension:
// .yaml and .yml give YAML, anything else Markdown.
func FormatterForPath(path string) Formatter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLFormatter()
	default:
		return NewMarkdownFormatter()
	}
}

// formatBytes formats a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
