package whisperx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassifyLogsErrorWinsOverStages flags an error even when stage
// markers appear later in the log.
func TestClassifyLogsErrorWinsOverStages(t *testing.T) {
	logs := "Loading model...\nERROR: CUDA out of memory\nPerforming transcription..."
	p := classifyLogs(logs)

	assert.Equal(t, "error", p.Status)
	assert.Equal(t, 0, p.Progress)
	assert.Equal(t, "ERROR: CUDA out of memory", p.Stage)
	assert.Equal(t, logs, p.Logs)
}

// TestClassifyLogsLastMarkerWins picks the latest stage in an
// append-only log.
func TestClassifyLogsLastMarkerWins(t *testing.T) {
	logs := "Loading model...\nDetected language: en\nPerforming transcription...\nPerforming alignment..."
	p := classifyLogs(logs)

	assert.Equal(t, "running", p.Status)
	assert.Equal(t, "Aligning transcript", p.Stage)
	assert.Equal(t, 65, p.Progress)
}

// TestClassifyLogsNoMarkerIsProcessing keeps the low-water default.
func TestClassifyLogsNoMarkerIsProcessing(t *testing.T) {
	p := classifyLogs("starting up\nwarming caches")

	assert.Equal(t, "running", p.Status)
	assert.Equal(t, "Processing", p.Stage)
	assert.Equal(t, 5, p.Progress)
}

// TestClassifyLogsMarkerCaseInsensitive matches regardless of casing.
func TestClassifyLogsMarkerCaseInsensitive(t *testing.T) {
	p := classifyLogs("PERFORMING DIARIZATION with pyannote")

	assert.Equal(t, "Identifying speakers", p.Stage)
	assert.Equal(t, 80, p.Progress)
}

// TestClassifyLogsStageTable walks each known marker.
func TestClassifyLogsStageTable(t *testing.T) {
	cases := []struct {
		line     string
		stage    string
		progress int
	}{
		{"Loading model large-v3", "Loading model", 10},
		{"Detected language: de", "Detecting language", 25},
		{"Performing transcription on audio", "Transcribing audio", 40},
		{"Performing alignment pass", "Aligning transcript", 65},
		{"Performing diarization", "Identifying speakers", 80},
		{"Writing srt output", "Writing results", 95},
	}
	for _, tc := range cases {
		p := classifyLogs(tc.line)
		assert.Equal(t, tc.stage, p.Stage, tc.line)
		assert.Equal(t, tc.progress, p.Progress, tc.line)
		assert.Equal(t, "running", p.Status, tc.line)
	}
}

// TestIdleProgress reports the no-job snapshot.
func TestIdleProgress(t *testing.T) {
	p := idleProgress()
	assert.Equal(t, "idle", p.Status)
	assert.Equal(t, 0, p.Progress)
	assert.Equal(t, "Not started", p.Stage)
	assert.Empty(t, p.Logs)
}

// TestSessionReserveRejectsSecond holds while the first is active.
func TestSessionReserveRejectsSecond(t *testing.T) {
	var s session
	assert.NoError(t, s.reserve())
	assert.ErrorIs(t, s.reserve(), ErrAlreadyRunning)

	s.clear()
	assert.NoError(t, s.reserve())
}

// TestSessionCancelBeforeActivate is a no-op until a container exists.
func TestSessionCancelBeforeActivate(t *testing.T) {
	var s session
	assert.NoError(t, s.reserve())

	_, ok := s.markCancelled()
	assert.False(t, ok)
	assert.False(t, s.wasCancelled())

	s.activate("abc123")
	id, ok := s.markCancelled()
	assert.True(t, ok)
	assert.Equal(t, "abc123", id)
	assert.True(t, s.wasCancelled())
}
