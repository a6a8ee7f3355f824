package domain

// WhisperXSettings controls the transcription container invocation.
// Language "auto" means no explicit language is passed to the job.
// MinSpeakers/MaxSpeakers are only used when Diarization is enabled; empty
// strings mean no bound.
type WhisperXSettings struct {
	HFToken     string `json:"hfToken"`
	Model       string `json:"model"`
	Language    string `json:"language"`
	Device      string `json:"device"`
	Diarization bool   `json:"diarization"`
	BatchSize   int    `json:"batchSize"`
	ComputeType string `json:"computeType"`
	MinSpeakers string `json:"minSpeakers,omitempty"`
	MaxSpeakers string `json:"maxSpeakers,omitempty"`
}

// AudioSettings controls ffmpeg audio normalization.
type AudioSettings struct {
	SampleRate    int    `json:"sampleRate"`
	Channels      int    `json:"channels"`
	Codec         string `json:"codec"`
	Format        string `json:"format"`
	FFmpegTimeout int    `json:"ffmpegTimeoutSeconds"`
}

// Settings contains all user-selectable runtime configuration.
type Settings struct {
	WhisperX  WhisperXSettings `json:"whisperx"`
	Audio     AudioSettings    `json:"audio"`
	Image     string           `json:"image"`
	OutputDir string           `json:"outputDir"`
}

// Device values accepted by the transcription service.
const (
	DeviceCUDA = "cuda"
	DeviceCPU  = "cpu"
)

// LanguageAuto is the sentinel meaning "let the model detect the language".
const LanguageAuto = "auto"
