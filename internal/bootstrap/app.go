// Package bootstrap wires the application: settings store, docker
// client, diagnostics, media preprocessing, the transcription service,
// and the pipeline runner behind one headless facade.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"offline-stenographer/internal/config"
	"offline-stenographer/internal/diagnostics"
	"offline-stenographer/internal/domain"
	"offline-stenographer/internal/jobs"
	"offline-stenographer/internal/media"
	"offline-stenographer/internal/pipeline"
	"offline-stenographer/internal/whisperx"
)

// pipelineRunner isolates the transcription pipeline behind an interface.
type pipelineRunner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	Cancel()
	Progress(ctx context.Context) whisperx.Progress
}

// App exposes the operations a front end or CLI drives: settings,
// diagnostics, and the transcription job lifecycle.
type App struct {
	Store       config.Store
	Jobs        *jobs.Manager
	Runner      pipelineRunner
	Diagnostics domain.DiagnosticReport

	checker *diagnostics.Checker
	events  *jobs.EventBus
	log     hclog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New builds the application with persisted settings and startup
// diagnostics. It fails only on unusable configuration; an unreachable
// docker daemon is reported through diagnostics, not an error here.
func New(log hclog.Logger) (*App, error) {
	if log == nil {
		log = hclog.New(&hclog.LoggerOptions{Name: "stenographer", Level: hclog.Info})
	}

	store := config.NewJSONStore(config.DefaultPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	docker, err := whisperx.NewDockerClient()
	if err != nil {
		return nil, fmt.Errorf("init docker client: %w", err)
	}

	checker := diagnostics.NewChecker(docker)
	report := checker.Run(context.Background(), settings)

	manager := jobs.NewManager()
	bus := jobs.NewEventBus(1000)
	processor := media.NewProcessor(store, log)
	service := whisperx.NewService(store, docker, log)
	runner := pipeline.NewRunner(processor, service, manager, bus, log)

	return &App{
		Store:       store,
		Jobs:        manager,
		Runner:      runner,
		Diagnostics: report,
		checker:     checker,
		events:      bus,
		log:         log,
	}, nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes
// diagnostics against the new values.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(context.Background(), normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics(ctx context.Context) (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	report := a.checker.Run(ctx, settings)
	a.mu.Lock()
	a.Diagnostics = report
	a.mu.Unlock()
	return report, nil
}

// FixDiagnostic remediates a fixable diagnostic item and reruns checks.
func (a *App) FixDiagnostic(ctx context.Context, itemID string) (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	if err := a.checker.Fix(ctx, itemID, settings); err != nil {
		return domain.DiagnosticReport{}, err
	}
	return a.RefreshDiagnostics(ctx)
}

// StartTranscription runs one job asynchronously. The job's identity
// and progress are observable through CurrentJob, JobEvents, and
// GetProgress.
func (a *App) StartTranscription(inputPath string, formats []string) error {
	settings, err := a.Store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if a.Jobs.IsRunning() {
		return jobs.ErrJobAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	go func() {
		defer a.clearCancel()

		result, err := a.Runner.Run(ctx, pipeline.Request{
			InputPath: inputPath,
			OutputDir: settings.OutputDir,
			Formats:   formats,
		})
		if err != nil {
			a.log.Error("transcription job failed", "input", inputPath, "error", err)
			return
		}
		if cleanupErr := result.Cleanup(); cleanupErr != nil {
			a.log.Warn("cleanup temporary files", "error", cleanupErr)
		}
	}()
	return nil
}

// CancelTranscription cancels the currently running job, if any.
func (a *App) CancelTranscription() error {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()

	if cancel == nil && !a.Jobs.IsRunning() {
		return jobs.ErrNoRunningJob
	}

	a.Runner.Cancel()
	if cancel != nil {
		cancel()
	}
	return nil
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// GetProgress reports the running job's inferred progress snapshot.
func (a *App) GetProgress(ctx context.Context) whisperx.Progress {
	return a.Runner.Progress(ctx)
}

// clearCancel drops the cancellation handle after a job finishes.
func (a *App) clearCancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancel = nil
}

// NewAppForTests wires an app from injectable parts, skipping docker
// client construction and startup diagnostics.
func NewAppForTests(store config.Store, runner pipelineRunner, manager *jobs.Manager, bus *jobs.EventBus) *App {
	return &App{
		Store:  store,
		Jobs:   manager,
		Runner: runner,
		events: bus,
		log:    hclog.NewNullLogger(),
	}
}

// normalizeSettings trims user inputs and applies the language default.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.Image = strings.TrimSpace(settings.Image)
	settings.WhisperX.Language = strings.TrimSpace(settings.WhisperX.Language)
	if settings.WhisperX.Language == "" {
		settings.WhisperX.Language = domain.LanguageAuto
	}
	return settings
}
