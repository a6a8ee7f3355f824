package domain

// JobStatus tracks the lifecycle of a single transcription job.
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether a status admits no further transitions.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// MediaInfo is an immutable snapshot of a probed media file.
// Width, Height, AudioCodec, and VideoCodec are zero-valued when the
// corresponding stream is absent.
type MediaInfo struct {
	Duration   float64 `json:"duration"`
	HasAudio   bool    `json:"hasAudio"`
	AudioCodec string  `json:"audioCodec,omitempty"`
	VideoCodec string  `json:"videoCodec,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Format     string  `json:"format"`
}

// PreprocessingResult reports the outcome of media preprocessing.
// Exactly one shape holds: Success with AudioFile set, or failure with
// ErrorMessage set and no audio file.
type PreprocessingResult struct {
	Success       bool       `json:"success"`
	AudioFile     string     `json:"audioFile,omitempty"`
	OriginalInfo  *MediaInfo `json:"originalInfo,omitempty"`
	ProcessedInfo *MediaInfo `json:"processedInfo,omitempty"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
}

// JobResult is the terminal outcome of one transcription run.
// OutputFiles is empty unless the job completed; ErrorMessage is set for
// failed and cancelled jobs and for the completed-with-no-artifacts case.
type JobResult struct {
	Status         JobStatus         `json:"status"`
	OutputFiles    []string          `json:"outputFiles"`
	ProcessingTime float64           `json:"processingTime"`
	ErrorMessage   string            `json:"errorMessage,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// TranscriptSegment is one timed span of recognized speech.
type TranscriptSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Speaker    string  `json:"speaker,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcript is an ordered sequence of segments plus run metadata,
// consumed by the output formatters.
type Transcript struct {
	Segments       []TranscriptSegment `json:"segments"`
	Language       string              `json:"language,omitempty"`
	ProcessingTime float64             `json:"processingTime,omitempty"`
	Metadata       map[string]string   `json:"metadata,omitempty"`
}

// Job stores the current job identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}
