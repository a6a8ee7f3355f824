// Package whisperx launches and observes WhisperX transcription jobs in
// an isolated container runtime. The heavy lifting (speech recognition,
// alignment, diarization) happens inside the container; this package
// only manages its lifecycle and collects what it produces.
package whisperx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"offline-stenographer/internal/config"
	"offline-stenographer/internal/domain"
)

// stopGraceSeconds bounds how long a cancelled container may keep
// running before the runtime force-terminates it.
const stopGraceSeconds = 10

// Service owns the single in-flight transcription job. Transcribe blocks
// until the job reaches a terminal state; Cancel and Progress are safe to
// call concurrently from other goroutines.
type Service struct {
	store   config.Store
	docker  DockerAPI
	log     hclog.Logger
	session session
}

// NewService builds the transcription service. docker may come from
// NewDockerClient or a test fake.
func NewService(store config.Store, docker DockerAPI, log hclog.Logger) *Service {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Service{
		store:  store,
		docker: docker,
		log:    log.Named("whisperx"),
	}
}

// CheckRequirements verifies the service can launch a job right now:
// diarization needs an access token, and the daemon must answer a ping.
// It is cheap and never starts a container.
func (s *Service) CheckRequirements(ctx context.Context) (bool, string) {
	settings, err := s.store.Load()
	if err != nil {
		return false, fmt.Sprintf("failed to load settings: %v", err)
	}

	if settings.WhisperX.Diarization && settings.WhisperX.HFToken == "" {
		return false, "HF_TOKEN required for diarization"
	}

	if _, err := s.docker.Ping(ctx); err != nil {
		return false, fmt.Sprintf("Docker is not available: %v", err)
	}

	return true, "ready"
}

// Transcribe runs one blocking transcription job for inputFile, writing
// artifacts into outputDir. Every exit path yields a terminal JobResult
// and releases the job handle. A second concurrent call is rejected.
func (s *Service) Transcribe(ctx context.Context, inputFile, outputDir string) domain.JobResult {
	start := time.Now()

	if _, err := os.Stat(inputFile); err != nil {
		return failedResult(start, fmt.Sprintf("Input file not found: %s", inputFile))
	}

	settings, err := s.store.Load()
	if err != nil {
		return failedResult(start, fmt.Sprintf("failed to load settings: %v", err))
	}

	if ready, msg := s.CheckRequirements(ctx); !ready {
		return failedResult(start, msg)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return failedResult(start, fmt.Sprintf("cannot create output directory: %v", err))
	}

	if err := s.session.reserve(); err != nil {
		return failedResult(start, err.Error())
	}
	defer s.session.clear()

	containerID, err := s.launch(ctx, settings, inputFile, outputDir)
	if err != nil {
		return failedResult(start, fmt.Sprintf("failed to start transcription container: %v", err))
	}
	s.session.activate(containerID)
	defer s.removeContainer(containerID)

	s.log.Info("transcription container started",
		"container", shortID(containerID),
		"image", settings.Image,
		"model", settings.WhisperX.Model,
		"device", settings.WhisperX.Device,
	)

	meta := resultMetadata(settings)
	exitCode, waitErr := s.waitForExit(ctx, containerID)
	elapsed := time.Since(start).Seconds()

	if s.session.wasCancelled() || (waitErr != nil && errors.Is(waitErr, context.Canceled)) {
		s.stopContainer(containerID)
		s.log.Info("transcription cancelled", "container", shortID(containerID), "elapsed", elapsed)
		return domain.JobResult{
			Status:         domain.JobStatusCancelled,
			OutputFiles:    []string{},
			ProcessingTime: elapsed,
			ErrorMessage:   "Transcription cancelled by user",
			Metadata:       meta,
		}
	}

	if waitErr != nil {
		return failedResult(start, fmt.Sprintf("error waiting for container: %v", waitErr))
	}

	if exitCode != 0 {
		s.log.Error("transcription container failed", "container", shortID(containerID), "exitCode", exitCode)
		return domain.JobResult{
			Status:         domain.JobStatusFailed,
			OutputFiles:    []string{},
			ProcessingTime: elapsed,
			ErrorMessage:   fmt.Sprintf("Container exited with code %d", exitCode),
			Metadata:       meta,
		}
	}

	outputs := s.CollectArtifacts(ctx, containerID)
	result := domain.JobResult{
		Status:         domain.JobStatusCompleted,
		OutputFiles:    outputs,
		ProcessingTime: elapsed,
		Metadata:       meta,
	}
	if len(outputs) == 0 {
		// Zero exit with nothing to collect is still a completion; the
		// message lets callers treat it as a warning condition.
		result.OutputFiles = []string{}
		result.ErrorMessage = "Transcription completed but produced no output files"
	}
	s.log.Info("transcription completed", "container", shortID(containerID), "outputs", len(outputs), "elapsed", elapsed)
	return result
}

// Cancel requests the in-flight job to stop within the grace period.
// Without a job in flight it is a no-op, never an error.
func (s *Service) Cancel() {
	containerID, ok := s.session.markCancelled()
	if !ok {
		return
	}
	s.log.Info("cancelling transcription", "container", shortID(containerID))
	s.stopContainer(containerID)
}

// Progress returns a snapshot classification of the job's log output.
// With no job in flight it reports idle. The call never blocks longer
// than a single log read.
func (s *Service) Progress(ctx context.Context) Progress {
	containerID, ok := s.session.id()
	if !ok {
		return idleProgress()
	}
	return classifyLogs(s.snapshotLogs(ctx, containerID))
}

// launch creates and starts the transcription container: input directory
// bind-mounted read-only at /audio, output directory read-write at
// /results, token passed via environment, and all GPUs requested when
// running on a CUDA device.
func (s *Service) launch(ctx context.Context, settings domain.Settings, inputFile, outputDir string) (string, error) {
	absInput, err := filepath.Abs(inputFile)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}

	cmd := BuildCommand(settings.WhisperX, absInput, settings.WhisperX.Device)

	var env []string
	if settings.WhisperX.HFToken != "" {
		env = append(env, "HF_TOKEN="+settings.WhisperX.HFToken)
	}

	hostConfig := &container.HostConfig{
		Mounts: []mount.Mount{
			{
				Type:     mount.TypeBind,
				Source:   filepath.Dir(absInput),
				Target:   audioMountPath,
				ReadOnly: true,
			},
			{
				Type:   mount.TypeBind,
				Source: absOutput,
				Target: resultsMountPath,
			},
		},
	}
	if settings.WhisperX.Device == domain.DeviceCUDA {
		hostConfig.Resources.DeviceRequests = []container.DeviceRequest{
			{
				Driver:       "nvidia",
				Count:        -1,
				Capabilities: [][]string{{"gpu"}},
			},
		}
	}

	name := "stenographer-" + uuid.NewString()[:8]
	created, err := s.docker.ContainerCreate(ctx, &container.Config{
		Image: settings.Image,
		Cmd:   cmd,
		Env:   env,
	}, hostConfig, nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("create container: %w", err)
	}

	if err := s.docker.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		_ = s.docker.ContainerRemove(context.Background(), created.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("start container: %w", err)
	}

	return created.ID, nil
}

// waitForExit blocks until the container leaves the running state and
// returns its exit code.
func (s *Service) waitForExit(ctx context.Context, containerID string) (int64, error) {
	waitCh, errCh := s.docker.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case resp := <-waitCh:
		if resp.Error != nil {
			return resp.StatusCode, errors.New(resp.Error.Message)
		}
		return resp.StatusCode, nil
	case err := <-errCh:
		return 0, err
	}
}

// snapshotLogs reads the container's accumulated log text without
// following. Docker multiplexes stdout/stderr for non-TTY containers,
// so the frames are demuxed when present and the raw bytes used as a
// fallback.
func (s *Service) snapshotLogs(ctx context.Context, containerID string) string {
	rc, err := s.docker.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		s.log.Warn("cannot read container logs", "container", shortID(containerID), "error", err)
		return ""
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return ""
	}

	var demuxed bytes.Buffer
	if _, err := stdcopy.StdCopy(&demuxed, &demuxed, bytes.NewReader(raw)); err == nil && demuxed.Len() > 0 {
		return demuxed.String()
	}
	return string(raw)
}

// stopContainer stops with the standard grace period, using a fresh
// context so cancellation of the run context cannot abort the stop.
func (s *Service) stopContainer(containerID string) {
	timeout := stopGraceSeconds
	ctx, cancel := context.WithTimeout(context.Background(), (stopGraceSeconds+5)*time.Second)
	defer cancel()
	if err := s.docker.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		s.log.Warn("container stop failed", "container", shortID(containerID), "error", err)
	}
}

// removeContainer is best-effort cleanup after a terminal state.
func (s *Service) removeContainer(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.docker.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		s.log.Warn("container cleanup failed", "container", shortID(containerID), "error", err)
	}
}

// shortID trims a container ID for log output.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func failedResult(start time.Time, message string) domain.JobResult {
	return domain.JobResult{
		Status:         domain.JobStatusFailed,
		OutputFiles:    []string{},
		ProcessingTime: time.Since(start).Seconds(),
		ErrorMessage:   message,
	}
}

func resultMetadata(settings domain.Settings) map[string]string {
	return map[string]string{
		"model":       settings.WhisperX.Model,
		"device":      settings.WhisperX.Device,
		"language":    settings.WhisperX.Language,
		"image":       settings.Image,
		"diarization": strconv.FormatBool(settings.WhisperX.Diarization),
	}
}
