// Package diagnostics validates the external machinery a transcription
// run depends on: media tools on PATH, a reachable container daemon, the
// WhisperX image, a writable output directory, and diarization
// credentials.
package diagnostics

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"

	"offline-stenographer/internal/domain"
)

// Diagnostic item IDs, stable across releases so callers can key on them.
const (
	itemFFmpeg    = "tool_ffmpeg"
	itemFFprobe   = "tool_ffprobe"
	itemDaemon    = "docker_daemon"
	itemImage     = "whisperx_image"
	itemOutputDir = "output_dir"
	itemHFToken   = "hf_token"
)

// DockerAPI is the slice of the daemon surface the checker needs.
type DockerAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
}

// Checker validates external tools, the container daemon, and required
// filesystem paths.
type Checker struct {
	docker     DockerAPI
	lookPath   func(string) (string, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker(docker DockerAPI) *Checker {
	return &Checker{
		docker:     docker,
		lookPath:   exec.LookPath,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, settings domain.Settings) domain.DiagnosticReport {
	daemon := c.checkDaemon(ctx)

	items := []domain.DiagnosticItem{
		c.checkTool("ffmpeg"),
		c.checkTool("ffprobe"),
		daemon,
		c.checkImage(ctx, settings.Image, daemon.Status == domain.DiagnosticStatusPass),
		c.checkOutputDir(settings.OutputDir),
		checkHFToken(settings.WhisperX),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// Fix remediates a fixable diagnostic item by ID. The only repairs the
// checker knows are pulling the transcription image and creating the
// output directory.
func (c *Checker) Fix(ctx context.Context, itemID string, settings domain.Settings) error {
	switch itemID {
	case itemImage:
		rc, err := c.docker.ImagePull(ctx, settings.Image, image.PullOptions{})
		if err != nil {
			return fmt.Errorf("pull image %s: %w", settings.Image, err)
		}
		defer rc.Close()
		// The pull only completes once the progress stream is drained.
		if _, err := io.Copy(io.Discard, rc); err != nil {
			return fmt.Errorf("pull image %s: %w", settings.Image, err)
		}
		return nil
	case itemOutputDir:
		if strings.TrimSpace(settings.OutputDir) == "" {
			return fmt.Errorf("output directory is not configured")
		}
		if err := c.mkdirAll(settings.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("diagnostic item is not fixable: %s", itemID)
	}
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(name string) domain.DiagnosticItem {
	path, err := c.lookPath(name)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_" + name,
			Name:    name,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    "Install FFmpeg and ensure the binary is available on PATH before starting a transcription job.",
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_" + name,
		Name:    name,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkDaemon verifies the container daemon answers a ping.
func (c *Checker) checkDaemon(ctx context.Context) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   itemDaemon,
		Name: "Docker daemon",
	}

	if _, err := c.docker.Ping(ctx); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Docker is not available: %v", err)
		item.Hint = "Start Docker Desktop or the docker service, then run diagnostics again."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "Docker daemon is reachable"
	return item
}

// checkImage verifies the transcription image is present locally. The
// check is skipped when the daemon itself is down, since the answer
// would only repeat that failure.
func (c *Checker) checkImage(ctx context.Context, imageRef string, daemonUp bool) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   itemImage,
		Name: "WhisperX image",
	}

	if !daemonUp {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Cannot check image while the Docker daemon is unreachable."
		return item
	}

	if _, _, err := c.docker.ImageInspectWithRaw(ctx, imageRef); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Image not present locally: %s", imageRef)
		item.Hint = "Pull the image before the first run; it is several gigabytes."
		item.Fixable = true
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Image present: %s", imageRef)
	return item
}

// checkOutputDir validates output directory existence and write access.
func (c *Checker) checkOutputDir(outputDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   itemOutputDir,
		Name: "Output directory",
	}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Output directory is empty."
		item.Hint = "Set an output directory where transcript files can be written."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		item.Fixable = true
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for transcript export."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

// checkHFToken validates diarization credentials. Without diarization
// the token is optional and the check always passes.
func checkHFToken(w domain.WhisperXSettings) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   itemHFToken,
		Name: "Hugging Face token",
	}

	if w.Diarization && strings.TrimSpace(w.HFToken) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "HF_TOKEN required for diarization"
		item.Hint = "Create a Hugging Face access token and accept the pyannote model terms, or disable diarization."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	if w.Diarization {
		item.Message = "Token configured for diarization"
	} else {
		item.Message = "Not required (diarization disabled)"
	}
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	docker DockerAPI,
	lookPath func(string) (string, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		docker:     docker,
		lookPath:   lookPath,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
