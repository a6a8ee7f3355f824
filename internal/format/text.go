package format

import (
	"bufio"
	"io"

	"offline-stenographer/internal/domain"
)

// TextFormatter renders one timed line per segment.
type TextFormatter struct{}

func (f *TextFormatter) Extension() string { return ".txt" }

func (f *TextFormatter) Format(transcript domain.Transcript, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, s := range transcript.Segments {
		if _, err := bw.WriteString(segmentPrefix(s) + s.Text + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
