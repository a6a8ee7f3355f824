package whisperx

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// artifactExtensions is the fixed, ordered set of recognized output
// kinds. Collection preserves this group order, then filesystem order
// within each group.
var artifactExtensions = []string{".txt", ".json", ".srt", ".vtt", ".tsv"}

// CollectArtifacts resolves the job's host-visible output directory from
// its /results bind mount and returns the recognized files found there.
// A job without a /results mount yields an empty slice: that is a valid
// outcome (misconfigured job), not an error, and is surfaced upstream as
// a completed-with-no-artifacts result.
func (s *Service) CollectArtifacts(ctx context.Context, containerID string) []string {
	info, err := s.docker.ContainerInspect(ctx, containerID)
	if err != nil {
		s.log.Warn("cannot inspect container for artifact collection", "container", containerID, "error", err)
		return nil
	}

	for _, m := range info.Mounts {
		if m.Destination == resultsMountPath {
			return collectFromDir(m.Source)
		}
	}

	s.log.Warn("container has no results mount", "container", containerID)
	return nil
}

// collectFromDir scans dir non-recursively for recognized extensions.
// File contents are never inspected.
func collectFromDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var found []string
	for _, ext := range artifactExtensions {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				found = append(found, filepath.Join(dir, entry.Name()))
			}
		}
	}
	return found
}
