package format

import (
	"fmt"
	"io"

	"github.com/fumiama/go-docx"

	"offline-stenographer/internal/domain"
)

// DocxFormatter renders a word-processor document: a title, a short
// metadata block, then one paragraph per segment with the timing prefix
// in bold.
type DocxFormatter struct{}

func (f *DocxFormatter) Extension() string { return ".docx" }

func (f *DocxFormatter) Format(transcript domain.Transcript, w io.Writer) error {
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().AddText("Transcript").Size("36").Bold()

	if model := transcript.Metadata["model"]; model != "" {
		doc.AddParagraph().AddText("Model: " + model).Italic()
	}
	if transcript.Language != "" {
		doc.AddParagraph().AddText("Language: " + transcript.Language).Italic()
	}
	doc.AddParagraph()

	for _, s := range transcript.Segments {
		p := doc.AddParagraph()
		p.AddText(segmentPrefix(s)).Bold()
		p.AddText(s.Text)
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}
