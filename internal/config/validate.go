package config

import (
	"fmt"
	"strconv"
	"strings"

	"offline-stenographer/internal/domain"
)

// Validate checks settings for values the pipeline cannot work with.
func Validate(cfg domain.Settings) error {
	w := cfg.WhisperX
	if !domain.IsKnownWhisperModel(w.Model) {
		return fmt.Errorf("unknown whisper model: %q", w.Model)
	}
	if w.Device != domain.DeviceCUDA && w.Device != domain.DeviceCPU {
		return fmt.Errorf("device must be %q or %q, got %q", domain.DeviceCUDA, domain.DeviceCPU, w.Device)
	}
	if w.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", w.BatchSize)
	}
	if w.ComputeType != "float16" && w.ComputeType != "float32" && w.ComputeType != "int8" {
		return fmt.Errorf("unknown compute type: %q", w.ComputeType)
	}
	if strings.TrimSpace(w.Language) == "" {
		return fmt.Errorf("language must be %q or an explicit language code", domain.LanguageAuto)
	}
	if err := validateSpeakerBounds(w.MinSpeakers, w.MaxSpeakers); err != nil {
		return err
	}

	a := cfg.Audio
	if a.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be positive, got %d", a.SampleRate)
	}
	if a.Channels < 1 {
		return fmt.Errorf("audio channels must be at least 1, got %d", a.Channels)
	}
	if a.Codec == "" {
		return fmt.Errorf("audio codec must be set")
	}
	if a.Format == "" {
		return fmt.Errorf("audio container format must be set")
	}
	if a.FFmpegTimeout <= 0 {
		return fmt.Errorf("ffmpeg timeout must be positive, got %d", a.FFmpegTimeout)
	}

	if strings.TrimSpace(cfg.Image) == "" {
		return fmt.Errorf("container image must be set")
	}
	return nil
}

// validateSpeakerBounds checks optional diarization speaker limits.
// Empty strings mean "no bound".
func validateSpeakerBounds(minRaw, maxRaw string) error {
	parse := func(label, raw string) (int, bool, error) {
		if strings.TrimSpace(raw) == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, false, fmt.Errorf("%s speakers must be a positive integer, got %q", label, raw)
		}
		return n, true, nil
	}

	minN, hasMin, err := parse("min", minRaw)
	if err != nil {
		return err
	}
	maxN, hasMax, err := parse("max", maxRaw)
	if err != nil {
		return err
	}
	if hasMin && hasMax && minN > maxN {
		return fmt.Errorf("min speakers (%d) exceeds max speakers (%d)", minN, maxN)
	}
	return nil
}
