// Package pipeline composes the end-to-end transcription flow: media
// preprocessing, the containerized transcription job, artifact parsing,
// and transcript rendering, with job state and events published along
// the way.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"offline-stenographer/internal/domain"
	"offline-stenographer/internal/format"
	"offline-stenographer/internal/jobs"
	"offline-stenographer/internal/whisperx"
)

// Preprocessor normalizes input media into transcription-ready audio.
type Preprocessor interface {
	Preprocess(ctx context.Context, sourcePath, outputDir string) domain.PreprocessingResult
}

// Transcriber runs one blocking transcription job and supports
// concurrent cancel and progress calls.
type Transcriber interface {
	Transcribe(ctx context.Context, inputFile, outputDir string) domain.JobResult
	Cancel()
	Progress(ctx context.Context) whisperx.Progress
}

// Request describes one transcription run.
type Request struct {
	InputPath string
	OutputDir string
	// Formats lists transcript renditions to produce from the JSON
	// artifact: "txt", "md", "docx". Empty means raw artifacts only.
	Formats []string
}

// Result reports one finished run. ArtifactFiles are the raw container
// outputs; RenderedFiles are the formatted transcripts derived from the
// JSON artifact.
type Result struct {
	JobID         string
	Status        domain.JobStatus
	ArtifactFiles []string
	RenderedFiles []string
	Transcript    domain.Transcript
	tempDir       string
}

// Cleanup removes the scratch audio produced during preprocessing.
func (r *Result) Cleanup() error {
	if r == nil || r.tempDir == "" {
		return nil
	}

	if err := os.RemoveAll(r.tempDir); err != nil {
		return err
	}
	r.tempDir = ""
	return nil
}

// PipelineError is a stage-aware error for run failures.
type PipelineError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error formats pipeline failures for logs and UI.
func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Unwrap exposes underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Runner drives requests through the pipeline one job at a time.
type Runner struct {
	pre       Preprocessor
	svc       Transcriber
	manager   *jobs.Manager
	bus       *jobs.EventBus
	log       hclog.Logger
	mkdirTemp func(dir, pattern string) (string, error)
}

// NewRunner wires the pipeline with production dependencies.
func NewRunner(pre Preprocessor, svc Transcriber, manager *jobs.Manager, bus *jobs.EventBus, log hclog.Logger) *Runner {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Runner{
		pre:       pre,
		svc:       svc,
		manager:   manager,
		bus:       bus,
		log:       log.Named("pipeline"),
		mkdirTemp: os.MkdirTemp,
	}
}

// Run performs preprocessing, transcription, and transcript rendering
// for one request. It blocks until the job reaches a terminal state.
// Cancellation is not an error: the result carries the cancelled status.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.InputPath) == "" {
		return Result{}, &PipelineError{
			Stage:   "preprocessing",
			Message: "input media path is required",
		}
	}

	jobID := uuid.NewString()
	if err := r.manager.Start(jobID); err != nil {
		return Result{}, &PipelineError{
			Stage:   "preprocessing",
			Message: "another transcription job is already running",
			Err:     err,
		}
	}

	r.publish(jobs.Event{
		JobID:  jobID,
		Type:   jobs.EventTypeStatus,
		Status: domain.JobStatusRunning,
	})

	tempDir, err := r.mkdirTemp("", "stenographer-*")
	if err != nil {
		return Result{}, r.fail(jobID, "preprocessing", "failed to create temporary workspace", err)
	}

	r.publishStage(jobID, "Preprocessing media", 2)
	pre := r.pre.Preprocess(ctx, req.InputPath, tempDir)
	if !pre.Success {
		_ = os.RemoveAll(tempDir)
		return Result{}, r.fail(jobID, "preprocessing", pre.ErrorMessage, nil)
	}

	r.publishStage(jobID, "Starting transcription", 5)
	jobResult := r.svc.Transcribe(ctx, pre.AudioFile, req.OutputDir)

	switch jobResult.Status {
	case domain.JobStatusCancelled:
		_ = r.manager.Transition(domain.JobStatusCancelled)
		r.publish(jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeStatus,
			Status:  domain.JobStatusCancelled,
			Message: jobResult.ErrorMessage,
		})
		return Result{
			JobID:   jobID,
			Status:  domain.JobStatusCancelled,
			tempDir: tempDir,
		}, nil
	case domain.JobStatusCompleted:
		// fallthrough to rendering below
	default:
		_ = os.RemoveAll(tempDir)
		return Result{}, r.fail(jobID, "transcribing", jobResult.ErrorMessage, nil)
	}

	result := Result{
		JobID:         jobID,
		Status:        domain.JobStatusCompleted,
		ArtifactFiles: jobResult.OutputFiles,
		tempDir:       tempDir,
	}

	if len(req.Formats) > 0 {
		r.publishStage(jobID, "Rendering transcripts", 97)
		rendered, transcript, renderErr := r.render(req, jobResult)
		if renderErr != nil {
			_ = os.RemoveAll(tempDir)
			return Result{}, r.fail(jobID, "exporting", renderErr.Error(), renderErr)
		}
		result.RenderedFiles = rendered
		result.Transcript = transcript
	}

	_ = r.manager.Transition(domain.JobStatusCompleted)
	r.publish(jobs.Event{
		JobID:       jobID,
		Type:        jobs.EventTypeResult,
		Status:      domain.JobStatusCompleted,
		Message:     jobResult.ErrorMessage,
		OutputFiles: append(append([]string{}, result.ArtifactFiles...), result.RenderedFiles...),
	})
	r.log.Info("pipeline run completed",
		"job", jobID,
		"artifacts", len(result.ArtifactFiles),
		"rendered", len(result.RenderedFiles),
	)
	return result, nil
}

// Cancel requests the in-flight job to stop. Without a running job it
// is a no-op.
func (r *Runner) Cancel() {
	r.svc.Cancel()
	if err := r.manager.Cancel(); err != nil && !errors.Is(err, jobs.ErrNoRunningJob) {
		r.log.Warn("job manager cancel failed", "error", err)
	}
}

// Progress reports the current job's inferred progress.
func (r *Runner) Progress(ctx context.Context) whisperx.Progress {
	return r.svc.Progress(ctx)
}

// Events returns buffered events with sequence greater than seq.
func (r *Runner) Events(seq int64) []jobs.Event {
	return r.bus.Since(seq)
}

// render parses the run's JSON artifact and writes each requested
// rendition next to the raw artifacts.
func (r *Runner) render(req Request, jobResult domain.JobResult) ([]string, domain.Transcript, error) {
	jsonArtifact := ""
	for _, f := range jobResult.OutputFiles {
		if strings.EqualFold(filepath.Ext(f), ".json") {
			jsonArtifact = f
			break
		}
	}
	if jsonArtifact == "" {
		return nil, domain.Transcript{}, fmt.Errorf("no JSON artifact available for transcript rendering")
	}

	transcript, err := format.ParseArtifact(jsonArtifact)
	if err != nil {
		return nil, domain.Transcript{}, err
	}
	transcript.ProcessingTime = jobResult.ProcessingTime
	transcript.Metadata = jobResult.Metadata

	stem := strings.TrimSuffix(filepath.Base(req.InputPath), filepath.Ext(req.InputPath))
	if stem == "" {
		stem = "transcript"
	}

	rendered := make([]string, 0, len(req.Formats))
	for _, kind := range req.Formats {
		formatter, err := format.New(kind)
		if err != nil {
			return nil, domain.Transcript{}, err
		}

		outPath := filepath.Join(req.OutputDir, stem+formatter.Extension())
		f, err := os.Create(outPath)
		if err != nil {
			return nil, domain.Transcript{}, fmt.Errorf("create transcript file: %w", err)
		}
		if err := formatter.Format(transcript, f); err != nil {
			_ = f.Close()
			return nil, domain.Transcript{}, fmt.Errorf("render %s transcript: %w", kind, err)
		}
		if err := f.Close(); err != nil {
			return nil, domain.Transcript{}, err
		}
		rendered = append(rendered, outPath)
	}
	return rendered, transcript, nil
}

// fail transitions the job to failed and publishes an error event.
func (r *Runner) fail(jobID, stage, message string, err error) error {
	_ = r.manager.Transition(domain.JobStatusFailed)
	r.publish(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeError,
		Status:  domain.JobStatusFailed,
		Message: message,
	})
	r.log.Error("pipeline run failed", "job", jobID, "stage", stage, "error", message)
	return &PipelineError{Stage: stage, Message: message, Err: err}
}

// publishStage emits a progress event for a coarse pipeline stage.
func (r *Runner) publishStage(jobID, stage string, progress int) {
	r.publish(jobs.Event{
		JobID:    jobID,
		Type:     jobs.EventTypeProgress,
		Status:   domain.JobStatusRunning,
		Stage:    stage,
		Progress: progress,
	})
}

func (r *Runner) publish(event jobs.Event) {
	if r.bus != nil {
		r.bus.Publish(event)
	}
}

// NewRunnerForTests constructs a runner with an injectable temp dir.
func NewRunnerForTests(pre Preprocessor, svc Transcriber, manager *jobs.Manager, bus *jobs.EventBus, mkdirTemp func(dir, pattern string) (string, error)) *Runner {
	return &Runner{
		pre:       pre,
		svc:       svc,
		manager:   manager,
		bus:       bus,
		log:       hclog.NewNullLogger(),
		mkdirTemp: mkdirTemp,
	}
}
