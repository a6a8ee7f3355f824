// Package format turns WhisperX JSON artifacts into transcript documents:
// plain text, markdown, and word-processor output.
package format

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"offline-stenographer/internal/domain"
)

// whisperxDocument mirrors the JSON artifact WhisperX writes alongside
// its subtitle outputs. Word-level timing is present in the file but not
// needed here.
type whisperxDocument struct {
	Segments []whisperxSegment `json:"segments"`
	Language string            `json:"language"`
}

type whisperxSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
}

// ParseArtifact reads a WhisperX JSON artifact into a Transcript.
// Segment text is trimmed; segment order is preserved as written.
func ParseArtifact(path string) (domain.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("read transcript artifact: %w", err)
	}
	return parseArtifactBytes(data)
}

func parseArtifactBytes(data []byte) (domain.Transcript, error) {
	var doc whisperxDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Transcript{}, fmt.Errorf("parse transcript artifact: %w", err)
	}

	transcript := domain.Transcript{
		Segments: make([]domain.TranscriptSegment, 0, len(doc.Segments)),
		Language: doc.Language,
	}
	for _, s := range doc.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		transcript.Segments = append(transcript.Segments, domain.TranscriptSegment{
			Start:   s.Start,
			End:     s.End,
			Text:    text,
			Speaker: s.Speaker,
		})
	}
	return transcript, nil
}
