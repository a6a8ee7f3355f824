package format

import (
	"fmt"
	"io"
	"time"

	"offline-stenographer/internal/domain"
)

// Formatter renders a transcript into one output representation.
type Formatter interface {
	// Format writes the rendered transcript to w.
	Format(transcript domain.Transcript, w io.Writer) error
	// Extension returns the file extension including the dot.
	Extension() string
}

// New returns the formatter for kind: "txt", "md", or "docx".
func New(kind string) (Formatter, error) {
	switch kind {
	case "txt":
		return &TextFormatter{}, nil
	case "md":
		return &MarkdownFormatter{}, nil
	case "docx":
		return &DocxFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown transcript format: %s", kind)
	}
}

// Kinds lists the supported formatter kinds in render order.
func Kinds() []string {
	return []string{"txt", "md", "docx"}
}

// timestamp renders seconds as HH:MM:SS, or MM:SS under one hour.
func timestamp(sec float64) string {
	d := time.Duration(sec*1000) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// segmentPrefix renders the "[start - end] Speaker: " lead for one segment.
func segmentPrefix(s domain.TranscriptSegment) string {
	prefix := fmt.Sprintf("[%s - %s] ", timestamp(s.Start), timestamp(s.End))
	if s.Speaker != "" {
		prefix += s.Speaker + ": "
	}
	return prefix
}
