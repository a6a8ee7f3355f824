package diagnostics

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"

	"offline-stenographer/internal/config"
	"offline-stenographer/internal/domain"
)

// fakeDockerAPI simulates the daemon calls the checker makes.
type fakeDockerAPI struct {
	pingErr    error
	inspectErr error
	pullErr    error
	pulled     []string
}

func (f *fakeDockerAPI) Ping(ctx context.Context) (types.Ping, error) {
	return types.Ping{}, f.pingErr
}

func (f *fakeDockerAPI) ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
	return types.ImageInspect{}, nil, f.inspectErr
}

func (f *fakeDockerAPI) ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error) {
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	f.pulled = append(f.pulled, refStr)
	return io.NopCloser(strings.NewReader("{}")), nil
}

func healthySettings(t *testing.T) domain.Settings {
	t.Helper()
	settings := config.DefaultSettings()
	settings.OutputDir = filepath.Join(t.TempDir(), "output")
	settings.WhisperX.HFToken = "token"
	return settings
}

func newTestChecker(docker DockerAPI, lookPath func(string) (string, error)) *Checker {
	return NewCheckerForTests(docker, lookPath, os.MkdirAll, os.CreateTemp, os.Remove)
}

func toolOnPath(name string) (string, error) { return "/usr/local/bin/" + name, nil }

// TestCheckerRunAllPass validates happy-path diagnostics report.
func TestCheckerRunAllPass(t *testing.T) {
	checker := newTestChecker(&fakeDockerAPI{}, toolOnPath)

	report := checker.Run(context.Background(), healthySettings(t))

	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	if len(report.Items) != 6 {
		t.Fatalf("items = %d, want 6", len(report.Items))
	}
}

// TestCheckerRunMissingTools validates failure reporting for PATH checks.
func TestCheckerRunMissingTools(t *testing.T) {
	checker := newTestChecker(&fakeDockerAPI{}, func(string) (string, error) {
		return "", errors.New("not found")
	})

	report := checker.Run(context.Background(), healthySettings(t))

	if !report.HasFailures {
		t.Fatal("expected failures")
	}
	assertStatusByID(t, report, itemFFmpeg, domain.DiagnosticStatusFail)
	assertStatusByID(t, report, itemFFprobe, domain.DiagnosticStatusFail)
}

// TestCheckerRunDaemonDown fails daemon and image checks together.
func TestCheckerRunDaemonDown(t *testing.T) {
	docker := &fakeDockerAPI{pingErr: errors.New("connection refused")}
	checker := newTestChecker(docker, toolOnPath)

	report := checker.Run(context.Background(), healthySettings(t))

	assertStatusByID(t, report, itemDaemon, domain.DiagnosticStatusFail)
	assertStatusByID(t, report, itemImage, domain.DiagnosticStatusFail)
	daemon := itemByID(t, report, itemDaemon)
	if !strings.Contains(daemon.Message, "Docker is not available") {
		t.Fatalf("daemon message = %q", daemon.Message)
	}
}

// TestCheckerRunMissingImageIsFixable marks the item for remediation.
func TestCheckerRunMissingImageIsFixable(t *testing.T) {
	docker := &fakeDockerAPI{inspectErr: errors.New("no such image")}
	checker := newTestChecker(docker, toolOnPath)

	report := checker.Run(context.Background(), healthySettings(t))

	item := itemByID(t, report, itemImage)
	if item.Status != domain.DiagnosticStatusFail {
		t.Fatalf("status = %s, want fail", item.Status)
	}
	if !item.Fixable {
		t.Fatal("missing image should be fixable")
	}
}

// TestCheckerRunMissingToken fails only when diarization is enabled.
func TestCheckerRunMissingToken(t *testing.T) {
	settings := healthySettings(t)
	settings.WhisperX.HFToken = ""

	settings.WhisperX.Diarization = true
	report := newTestChecker(&fakeDockerAPI{}, toolOnPath).Run(context.Background(), settings)
	item := itemByID(t, report, itemHFToken)
	if item.Status != domain.DiagnosticStatusFail {
		t.Fatalf("status = %s, want fail with diarization on", item.Status)
	}
	if item.Message != "HF_TOKEN required for diarization" {
		t.Fatalf("message = %q", item.Message)
	}

	settings.WhisperX.Diarization = false
	report = newTestChecker(&fakeDockerAPI{}, toolOnPath).Run(context.Background(), settings)
	assertStatusByID(t, report, itemHFToken, domain.DiagnosticStatusPass)
}

// TestCheckerRunEmptyOutputDir validates the filesystem check.
func TestCheckerRunEmptyOutputDir(t *testing.T) {
	settings := healthySettings(t)
	settings.OutputDir = ""

	report := newTestChecker(&fakeDockerAPI{}, toolOnPath).Run(context.Background(), settings)
	assertStatusByID(t, report, itemOutputDir, domain.DiagnosticStatusFail)
}

// TestFixPullsMissingImage drains the pull stream to completion.
func TestFixPullsMissingImage(t *testing.T) {
	docker := &fakeDockerAPI{}
	checker := newTestChecker(docker, toolOnPath)
	settings := healthySettings(t)

	if err := checker.Fix(context.Background(), itemImage, settings); err != nil {
		t.Fatalf("fix image: %v", err)
	}
	if len(docker.pulled) != 1 || docker.pulled[0] != settings.Image {
		t.Fatalf("pulled = %v, want [%s]", docker.pulled, settings.Image)
	}
}

// TestFixCreatesOutputDir repairs the directory item.
func TestFixCreatesOutputDir(t *testing.T) {
	checker := newTestChecker(&fakeDockerAPI{}, toolOnPath)
	settings := healthySettings(t)
	settings.OutputDir = filepath.Join(t.TempDir(), "deep", "output")

	if err := checker.Fix(context.Background(), itemOutputDir, settings); err != nil {
		t.Fatalf("fix output dir: %v", err)
	}
	if _, err := os.Stat(settings.OutputDir); err != nil {
		t.Fatalf("output dir not created: %v", err)
	}
}

// TestFixRejectsUnknownItem refuses non-fixable IDs.
func TestFixRejectsUnknownItem(t *testing.T) {
	checker := newTestChecker(&fakeDockerAPI{}, toolOnPath)

	if err := checker.Fix(context.Background(), itemFFmpeg, healthySettings(t)); err == nil {
		t.Fatal("expected error for non-fixable item")
	}
}

// assertStatusByID checks status for one diagnostic item by ID.
func assertStatusByID(t *testing.T, report domain.DiagnosticReport, id string, want domain.DiagnosticStatus) {
	t.Helper()
	item := itemByID(t, report, id)
	if item.Status != want {
		t.Fatalf("item %s: got %s, want %s", id, item.Status, want)
	}
}

// itemByID finds one diagnostic item by ID.
func itemByID(t *testing.T, report domain.DiagnosticReport, id string) domain.DiagnosticItem {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("diagnostic item not found: %s", id)
	return domain.DiagnosticItem{}
}
