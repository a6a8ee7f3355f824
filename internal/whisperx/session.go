package whisperx

import (
	"errors"
	"sync"
)

// ErrAlreadyRunning is returned when a second transcription is started
// while one is in flight.
var ErrAlreadyRunning = errors.New("transcription already running")

// session is the single mutable handle to the in-flight container,
// shared between the goroutine driving Transcribe and concurrent
// Cancel/Progress callers. All access goes through these atomic
// operations; there is no package-level state.
type session struct {
	mu          sync.Mutex
	active      bool
	containerID string
	cancelled   bool
}

// reserve claims the session before any container exists, so a racing
// cancel cannot interleave with a launch. It fails when a job is already
// in flight.
func (s *session) reserve() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrAlreadyRunning
	}
	s.active = true
	s.containerID = ""
	s.cancelled = false
	return nil
}

// activate records the launched container for the reserved session.
func (s *session) activate(containerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containerID = containerID
}

// id returns the current container ID, if any.
func (s *session) id() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containerID, s.active && s.containerID != ""
}

// markCancelled flags the in-flight job as user-cancelled and returns
// its container ID. ok is false when no container is in flight.
func (s *session) markCancelled() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.containerID == "" {
		return "", false
	}
	s.cancelled = true
	return s.containerID, true
}

// wasCancelled reports whether the current job saw a cancel request.
func (s *session) wasCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// clear releases the handle once the job reaches a terminal state.
func (s *session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.containerID = ""
}
