package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"offline-stenographer/internal/domain"
)

// MarkdownFormatter renders a transcript with a metadata header followed
// by timed speaker lines.
type MarkdownFormatter struct {
	// Now is injectable for deterministic headers in tests.
	Now func() time.Time
}

func (f *MarkdownFormatter) Extension() string { return ".md" }

func (f *MarkdownFormatter) Format(transcript domain.Transcript, w io.Writer) error {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	var b strings.Builder
	b.WriteString("# Transcript\n\n")

	if model := transcript.Metadata["model"]; model != "" {
		fmt.Fprintf(&b, "- Model: `%s`\n", model)
	}
	if device := transcript.Metadata["device"]; device != "" {
		fmt.Fprintf(&b, "- Device: `%s`\n", device)
	}
	if transcript.Language != "" {
		fmt.Fprintf(&b, "- Language: %s\n", transcript.Language)
	}
	if transcript.ProcessingTime > 0 {
		fmt.Fprintf(&b, "- Processing time: %s\n",
			(time.Duration(transcript.ProcessingTime*float64(time.Second))).Truncate(time.Second))
	}
	fmt.Fprintf(&b, "- Generated: %s\n", now().UTC().Format(time.RFC3339))
	b.WriteString("\n---\n\n")

	for _, s := range transcript.Segments {
		fmt.Fprintf(&b, "%s%s\n\n", segmentPrefix(s), s.Text)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
