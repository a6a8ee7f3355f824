package whisperx

import "strings"

// Progress is best-effort telemetry inferred from the job's log text.
// It must never be used to decide success or failure; that decision
// comes only from the container's exit code.
type Progress struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Stage    string `json:"stage"`
	Logs     string `json:"logs,omitempty"`
}

// progressMarker maps a known log phrase to a stage and percentage.
type progressMarker struct {
	marker   string
	stage    string
	progress int
}

// Ordered marker table for WhisperX log output. Matching walks the log
// chronologically and keeps the LAST match, since the log is append-only
// and the latest marker reflects the current stage.
var progressMarkers = []progressMarker{
	{"loading model", "Loading model", 10},
	{"detected language", "Detecting language", 25},
	{"performing transcription", "Transcribing audio", 40},
	{"performing alignment", "Aligning transcript", 65},
	{"performing diarization", "Identifying speakers", 80},
	{"writing", "Writing results", 95},
}

// idleProgress is returned when no job exists.
func idleProgress() Progress {
	return Progress{Status: "idle", Progress: 0, Stage: "Not started"}
}

// classifyLogs maps a log snapshot to coarse progress. An error marker
// anywhere in the text wins over stage markers; otherwise the last
// matching stage marker determines the result; with no match the job is
// simply "running".
func classifyLogs(logs string) Progress {
	lines := strings.Split(logs, "\n")

	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "error") {
			return Progress{
				Status:   "error",
				Progress: 0,
				Stage:    strings.TrimSpace(line),
				Logs:     logs,
			}
		}
	}

	current := Progress{Status: "running", Progress: 5, Stage: "Processing", Logs: logs}
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, m := range progressMarkers {
			if strings.Contains(lower, m.marker) {
				current.Stage = m.stage
				current.Progress = m.progress
			}
		}
	}
	return current
}
