// Command stenographer transcribes one media file into text documents
// using a local WhisperX container.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"offline-stenographer/internal/bootstrap"
	"offline-stenographer/internal/domain"
	"offline-stenographer/internal/jobs"
)

func main() {
	os.Exit(run())
}

func run() int {
	diagnose := flag.Bool("diagnose", false, "run startup diagnostics and exit")
	formats := flag.String("formats", "txt", "comma-separated transcript formats: txt,md,docx")
	output := flag.String("output", "", "output directory (overrides configured default)")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <media file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := hclog.Info
	if *verbose {
		level = hclog.Debug
	}
	log := hclog.New(&hclog.LoggerOptions{Name: "stenographer", Level: level})

	app, err := bootstrap.New(log)
	if err != nil {
		log.Error("startup failed", "error", err)
		return 1
	}

	if *diagnose {
		return printDiagnostics(app)
	}

	input := flag.Arg(0)
	if input == "" {
		flag.Usage()
		return 2
	}

	if *output != "" {
		settings, err := app.GetSettings()
		if err != nil {
			log.Error("load settings", "error", err)
			return 1
		}
		settings.OutputDir = *output
		if _, err := app.SaveSettings(settings); err != nil {
			log.Error("save settings", "error", err)
			return 1
		}
	}

	kinds := splitFormats(*formats)
	if err := app.StartTranscription(input, kinds); err != nil {
		log.Error("start transcription", "error", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	status := watch(app, log, sigCh)
	switch status {
	case domain.JobStatusCompleted:
		return 0
	case domain.JobStatusCancelled:
		return 130
	default:
		return 1
	}
}

// watch polls job events until the job reaches a terminal state,
// forwarding an interrupt as a cancellation request.
func watch(app *bootstrap.App, log hclog.Logger, sigCh <-chan os.Signal) domain.JobStatus {
	var seq int64
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Info("cancellation requested")
			if err := app.CancelTranscription(); err != nil {
				log.Warn("cancel failed", "error", err)
			}
		case <-ticker.C:
			for _, event := range app.JobEvents(seq) {
				seq = event.Seq
				printEvent(log, event)
			}

			job := app.CurrentJob()
			if job.Status.IsTerminal() {
				// Drain events published on the way out.
				for _, event := range app.JobEvents(seq) {
					seq = event.Seq
					printEvent(log, event)
				}
				return job.Status
			}

			if job.Status == domain.JobStatusRunning {
				p := app.GetProgress(context.Background())
				log.Debug("progress", "stage", p.Stage, "percent", p.Progress)
			}
		}
	}
}

func printEvent(log hclog.Logger, event jobs.Event) {
	switch event.Type {
	case jobs.EventTypeError:
		log.Error(event.Message, "job", event.JobID)
	case jobs.EventTypeProgress:
		log.Info(event.Stage, "percent", event.Progress)
	case jobs.EventTypeResult:
		log.Info("transcription finished", "job", event.JobID)
		for _, f := range event.OutputFiles {
			fmt.Println(f)
		}
	default:
		if event.Message != "" {
			log.Info(event.Message, "status", string(event.Status))
		}
	}
}

func printDiagnostics(app *bootstrap.App) int {
	report := app.GetDiagnostics()
	for _, item := range report.Items {
		marker := "ok"
		if item.Status == domain.DiagnosticStatusFail {
			marker = "FAIL"
		}
		fmt.Printf("[%s] %-20s %s\n", marker, item.Name, item.Message)
		if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
			fmt.Printf("       hint: %s\n", item.Hint)
		}
	}
	if report.HasFailures {
		return 1
	}
	return 0
}

func splitFormats(raw string) []string {
	var kinds []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			kinds = append(kinds, part)
		}
	}
	return kinds
}
