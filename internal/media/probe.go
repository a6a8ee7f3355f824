package media

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"offline-stenographer/internal/domain"
)

// ffprobe JSON wire types. Numeric fields arrive as strings.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Probe inspects a media file with a single ffprobe JSON call and returns
// the parsed snapshot, or nil when the tool is unavailable, the file is
// missing, ffprobe fails, or the output cannot be parsed. Duration is
// load-bearing downstream, so a malformed duration fails the whole probe.
func (p *Processor) Probe(ctx context.Context, path string) *domain.MediaInfo {
	if !p.ffmpegAvailable {
		p.log.Warn("ffprobe unavailable, skipping analysis", "path", path)
		return nil
	}
	if _, err := p.stat(path); err != nil {
		return nil
	}

	result, err := p.runner.Run(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if err != nil || result.ExitCode != 0 {
		p.log.Warn("ffprobe failed", "path", path, "exitCode", result.ExitCode, "stderr", result.Stderr)
		return nil
	}

	return parseProbeOutput(p, result.Stdout)
}

// parseProbeOutput converts raw ffprobe JSON into a MediaInfo snapshot.
func parseProbeOutput(p *Processor, raw string) *domain.MediaInfo {
	var out ffprobeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		p.log.Warn("cannot parse ffprobe output", "error", err)
		return nil
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
	if err != nil {
		p.log.Warn("ffprobe reported no usable duration", "raw", out.Format.Duration)
		return nil
	}

	info := &domain.MediaInfo{
		Duration: duration,
		Format:   out.Format.FormatName,
	}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		case "video":
			if info.VideoCodec == "" {
				info.VideoCodec = s.CodecName
				info.Width = s.Width
				info.Height = s.Height
			}
		}
	}
	return info
}
