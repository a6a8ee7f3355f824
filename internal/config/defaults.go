package config

import (
	"os"
	"path/filepath"

	"offline-stenographer/internal/domain"
)

// DefaultImage is the WhisperX container image used for transcription jobs.
const DefaultImage = "ghcr.io/jim60105/whisperx:latest"

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		WhisperX: domain.WhisperXSettings{
			HFToken:     "",
			Model:       "large-v3",
			Language:    domain.LanguageAuto,
			Device:      domain.DeviceCUDA,
			Diarization: true,
			BatchSize:   16,
			ComputeType: "float16",
		},
		Audio: domain.AudioSettings{
			SampleRate:    16000,
			Channels:      1,
			Codec:         "pcm_s16le",
			Format:        "wav",
			FFmpegTimeout: 300,
		},
		Image:     DefaultImage,
		OutputDir: filepath.Join(homeDir, "Documents", "Transcripts"),
	}
}
