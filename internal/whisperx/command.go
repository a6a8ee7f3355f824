package whisperx

import (
	"path/filepath"
	"strconv"
	"strings"

	"offline-stenographer/internal/domain"
)

// Container-internal mount points. These are fixed contracts with the
// WhisperX image: the host input directory appears under /audio and the
// host output directory under /results.
const (
	audioMountPath   = "/audio"
	resultsMountPath = "/results"
)

// BuildCommand constructs the WhisperX argv for one input file. The
// construction is deterministic: CPU forces float32 regardless of the
// configured compute type, and language "auto" is omitted entirely so
// the model performs its own detection.
func BuildCommand(w domain.WhisperXSettings, inputFile, device string) []string {
	computeType := w.ComputeType
	if device == domain.DeviceCPU {
		computeType = "float32"
	}

	args := []string{
		"whisperx",
		audioMountPath + "/" + filepath.Base(inputFile),
		"--model", w.Model,
		"--batch_size", strconv.Itoa(w.BatchSize),
		"--compute_type", computeType,
		"--device", device,
		"--output_dir", resultsMountPath,
	}

	if lang := normalizeLanguage(w.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if w.Diarization {
		args = append(args, "--diarize")
		if min := strings.TrimSpace(w.MinSpeakers); min != "" {
			args = append(args, "--min_speakers", min)
		}
		if max := strings.TrimSpace(w.MaxSpeakers); max != "" {
			args = append(args, "--max_speakers", max)
		}
	}

	return args
}

// normalizeLanguage maps "auto" and empty language to no CLI override.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, domain.LanguageAuto) {
		return ""
	}
	return lang
}
