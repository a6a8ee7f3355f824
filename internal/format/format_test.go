package format

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offline-stenographer/internal/domain"
)

const sampleArtifact = `{
  "segments": [
    {"start": 0.0, "end": 4.5, "text": " Hello and welcome.", "speaker": "SPEAKER_00",
     "words": [{"word": "Hello", "start": 0.0, "end": 0.4}]},
    {"start": 4.5, "end": 9.0, "text": "Thanks for having me.", "speaker": "SPEAKER_01"},
    {"start": 9.0, "end": 9.2, "text": "   "}
  ],
  "language": "en"
}`

func sampleTranscript() domain.Transcript {
	return domain.Transcript{
		Segments: []domain.TranscriptSegment{
			{Start: 0, End: 4.5, Text: "Hello and welcome.", Speaker: "SPEAKER_00"},
			{Start: 4.5, End: 9, Text: "Thanks for having me.", Speaker: "SPEAKER_01"},
			{Start: 3725, End: 3730, Text: "Late segment."},
		},
		Language: "en",
		Metadata: map[string]string{"model": "large-v3", "device": "cuda"},
	}
}

// TestParseArtifact reads the WhisperX JSON shape, trimming text and
// dropping whitespace-only segments.
func TestParseArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleArtifact), 0o644))

	transcript, err := ParseArtifact(path)
	require.NoError(t, err)

	assert.Equal(t, "en", transcript.Language)
	require.Len(t, transcript.Segments, 2)
	assert.Equal(t, "Hello and welcome.", transcript.Segments[0].Text)
	assert.Equal(t, "SPEAKER_00", transcript.Segments[0].Speaker)
	assert.Equal(t, 4.5, transcript.Segments[1].Start)
}

// TestParseArtifactRejectsMalformedJSON surfaces the decode failure.
func TestParseArtifactRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := ParseArtifact(path)
	assert.Error(t, err)
}

// TestParseArtifactMissingFile surfaces the read failure.
func TestParseArtifactMissingFile(t *testing.T) {
	_, err := ParseArtifact(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

// TestTimestampRendering switches to hours only past the first hour.
func TestTimestampRendering(t *testing.T) {
	assert.Equal(t, "00:00", timestamp(0))
	assert.Equal(t, "00:59", timestamp(59.4))
	assert.Equal(t, "59:59", timestamp(3599))
	assert.Equal(t, "01:00:00", timestamp(3600))
	assert.Equal(t, "01:02:05", timestamp(3725))
}

// TestTextFormatter renders one timed line per segment.
func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextFormatter{}).Format(sampleTranscript(), &buf))

	out := buf.String()
	assert.Contains(t, out, "[00:00 - 00:04] SPEAKER_00: Hello and welcome.\n")
	assert.Contains(t, out, "[00:04 - 00:09] SPEAKER_01: Thanks for having me.\n")
	assert.Contains(t, out, "[01:02:05 - 01:02:10] Late segment.\n")
}

// TestMarkdownFormatter includes the metadata header and timed body.
func TestMarkdownFormatter(t *testing.T) {
	f := &MarkdownFormatter{Now: func() time.Time {
		return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	}}
	var buf bytes.Buffer
	require.NoError(t, f.Format(sampleTranscript(), &buf))

	out := buf.String()
	assert.Contains(t, out, "# Transcript\n")
	assert.Contains(t, out, "- Model: `large-v3`\n")
	assert.Contains(t, out, "- Device: `cuda`\n")
	assert.Contains(t, out, "- Language: en\n")
	assert.Contains(t, out, "- Generated: 2026-08-25T12:00:00Z\n")
	assert.Contains(t, out, "[00:00 - 00:04] SPEAKER_00: Hello and welcome.\n")
}

// TestDocxFormatter produces a non-empty OOXML archive.
func TestDocxFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&DocxFormatter{}).Format(sampleTranscript(), &buf))

	// A .docx file is a zip archive; check the magic header.
	require.Greater(t, buf.Len(), 4)
	assert.Equal(t, []byte("PK"), buf.Bytes()[:2])
}

// TestFactoryKnownKinds returns the matching extension per kind.
func TestFactoryKnownKinds(t *testing.T) {
	for kind, ext := range map[string]string{"txt": ".txt", "md": ".md", "docx": ".docx"} {
		f, err := New(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, ext, f.Extension())
	}
}

// TestFactoryUnknownKind yields an error and no formatter.
func TestFactoryUnknownKind(t *testing.T) {
	f, err := New("pdf")
	assert.Error(t, err)
	assert.Nil(t, f)
}
