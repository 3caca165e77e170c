package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter formats a Summary as a Markdown report.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) (string, error) {
	var b strings.Builder

	b.WriteString("# Transcoding Summary\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	if s.Error != "" {
		fmt.Fprintf(&b, "**Failed:** %s\n\n", s.Error)
	}

	b.WriteString("## Files\n\n")
	b.WriteString("| | Path | Size |\n")
	b.WriteString("|---|---|---|\n")
	fmt.Fprintf(&b, "| Input | %s | %s |\n", s.Input.Path, formatBytes(s.Input.Bytes))
	fmt.Fprintf(&b, "| Output | %s | %s |\n\n", s.Output.Path, formatBytes(s.Output.Bytes))

	b.WriteString("## Settings\n\n")
	fmt.Fprintf(&b, "- Format: %s\n", s.Settings.Format)
	if s.Settings.AudioCodec != "" {
		fmt.Fprintf(&b, "- Audio: %s, %d Hz, %s, volume %d\n",
			s.Settings.AudioCodec, s.Settings.SampleRate, s.Settings.ChannelLayout, s.Settings.Volume)
	} else {
		b.WriteString("- Audio: none\n")
	}
	if s.Settings.VideoCodec != "" {
		fmt.Fprintf(&b, "- Video: %s, %g fps, %s, %s\n",
			s.Settings.VideoCodec, s.Settings.FrameRate, s.Settings.FrameSize, s.Settings.Aspect)
	} else {
		b.WriteString("- Video: none\n")
	}
	b.WriteString("\n")

	b.WriteString("## Session\n\n")
	fmt.Fprintf(&b, "- Chunks submitted: %d\n", s.Stats.ChunksSubmitted)
	fmt.Fprintf(&b, "- Chunks received: %d\n", s.Stats.ChunksReceived)
	fmt.Fprintf(&b, "- Progress units: %d\n", s.Stats.ProgressUnits)
	fmt.Fprintf(&b, "- Duration: %s\n", s.Stats.Duration.Round(time.Millisecond))

	return b.String(), nil
}
