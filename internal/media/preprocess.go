// Package media validates source files, probes them with ffprobe, and
// normalizes them into mono PCM audio suitable for transcription.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"offline-stenographer/internal/config"
	"offline-stenographer/internal/domain"
)

// Processor composes format validation, probing, and audio extraction.
type Processor struct {
	store           config.Store
	log             hclog.Logger
	runner          commandRunner
	stat            statFunc
	ffmpegPath      string
	ffprobePath     string
	ffmpegAvailable bool
}

// NewProcessor constructs the production processor with OS dependencies.
func NewProcessor(store config.Store, log hclog.Logger) *Processor {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	_, ffmpegErr := exec.LookPath("ffmpeg")
	_, ffprobeErr := exec.LookPath("ffprobe")

	return &Processor{
		store:           store,
		log:             log.Named("media"),
		runner:          &execRunner{},
		stat:            os.Stat,
		ffmpegPath:      "ffmpeg",
		ffprobePath:     "ffprobe",
		ffmpegAvailable: ffmpegErr == nil && ffprobeErr == nil,
	}
}

// Preprocess validates, probes, and extracts normalized audio from source
// into outputDir. The sequence short-circuits on the first failure and
// never leaves a success result without an audio file. Partial output
// written by ffmpeg on failure is not cleaned up; callers needing a clean
// slate should use a fresh scratch directory.
func (p *Processor) Preprocess(ctx context.Context, source, outputDir string) domain.PreprocessingResult {
	if valid, reason := p.ValidateFormat(source); !valid {
		return failure(nil, reason)
	}

	info := p.Probe(ctx, source)
	if info == nil {
		return failure(nil, "failed to analyze video")
	}

	if !info.HasAudio {
		return failure(info, "no audio track found in source file")
	}

	settings, err := p.store.Load()
	if err != nil {
		return failure(info, fmt.Sprintf("failed to load settings: %v", err))
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return failure(info, fmt.Sprintf("cannot create output directory: %v", err))
	}

	dest := audioDestination(source, outputDir, settings.Audio.Format)
	ok, diag := p.ExtractAudio(ctx, source, dest, settings.Audio)
	if !ok {
		return failure(info, "audio extraction failed: "+diag)
	}

	p.log.Info("audio extracted", "source", source, "audio", dest, "duration", info.Duration)
	return domain.PreprocessingResult{
		Success:      true,
		AudioFile:    dest,
		OriginalInfo: info,
	}
}

// audioDestination derives `<outputDir>/<stem>_audio.<format>`.
func audioDestination(source, outputDir, format string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "input"
	}
	return filepath.Join(outputDir, stem+"_audio."+format)
}

func failure(info *domain.MediaInfo, message string) domain.PreprocessingResult {
	return domain.PreprocessingResult{
		Success:      false,
		OriginalInfo: info,
		ErrorMessage: message,
	}
}

// NewProcessorForTests constructs a processor with injectable dependencies.
func NewProcessorForTests(
	store config.Store,
	runner commandRunner,
	stat statFunc,
	ffmpegAvailable bool,
) *Processor {
	return &Processor{
		store:           store,
		log:             hclog.NewNullLogger(),
		runner:          runner,
		stat:            stat,
		ffmpegPath:      "ffmpeg",
		ffprobePath:     "ffprobe",
		ffmpegAvailable: ffmpegAvailable,
	}
}
