package media

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"offline-stenographer/internal/domain"
)

// ExtractAudio converts source media into normalized audio at dest using a
// single ffmpeg invocation with the configured sample rate, channel count,
// codec, and container format. It returns true only for a zero exit; the
// tool's stderr is returned as diagnostic text on failure. No retries.
func (p *Processor) ExtractAudio(ctx context.Context, source, dest string, cfg domain.AudioSettings) (bool, string) {
	if !p.ffmpegAvailable {
		return false, "ffmpeg is not available on PATH"
	}

	timeout := time.Duration(cfg.FFmpegTimeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := buildExtractArgs(source, dest, cfg)
	p.log.Debug("extracting audio", "source", source, "dest", dest, "args", args)

	result, err := p.runner.Run(ctx, p.ffmpegPath, args...)
	if err != nil || result.ExitCode != 0 {
		if ctx.Err() == context.DeadlineExceeded {
			return false, fmt.Sprintf("ffmpeg timed out after %s", timeout)
		}
		return false, fmt.Sprintf("ffmpeg exited with code %d: %s", result.ExitCode, result.Stderr)
	}
	return true, ""
}

// buildExtractArgs builds the ffmpeg argv for audio normalization.
func buildExtractArgs(source, dest string, cfg domain.AudioSettings) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", source,
		"-vn",
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-c:a", cfg.Codec,
		"-f", cfg.Format,
		dest,
	}
}
