package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"offline-stenographer/internal/domain"
)

// Store defines persistence operations for app settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// JSONStore persists settings in a single JSON file on disk.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed settings store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".offline-stenographer", "config.json")
}

// Path returns the backing file location.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads settings from disk or returns defaults when missing.
func (s *JSONStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}

		return domain.Settings{}, err
	}

	var cfg domain.Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.Settings{}, err
	}

	return cfg, nil
}

// Save validates settings and writes them as indented JSON, creating
// parent directories as needed.
func (s *JSONStore) Save(cfg domain.Settings) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}

// Reset discards persisted settings and writes defaults back.
func (s *JSONStore) Reset() (domain.Settings, error) {
	cfg := DefaultSettings()
	if err := s.Save(cfg); err != nil {
		return domain.Settings{}, err
	}
	return cfg, nil
}

// WhisperXUpdate carries a partial update for WhisperX settings. Nil
// fields leave the current value unchanged.
type WhisperXUpdate struct {
	HFToken     *string
	Model       *string
	Language    *string
	Device      *string
	Diarization *bool
	BatchSize   *int
	ComputeType *string
	MinSpeakers *string
	MaxSpeakers *string
}

// UpdateWhisperX applies a partial update, validates the merged result,
// and persists it. Invalid updates leave the stored settings untouched.
func (s *JSONStore) UpdateWhisperX(update WhisperXUpdate) (domain.Settings, error) {
	cfg, err := s.Load()
	if err != nil {
		return domain.Settings{}, err
	}

	w := &cfg.WhisperX
	if update.HFToken != nil {
		w.HFToken = *update.HFToken
	}
	if update.Model != nil {
		w.Model = *update.Model
	}
	if update.Language != nil {
		w.Language = *update.Language
	}
	if update.Device != nil {
		w.Device = *update.Device
	}
	if update.Diarization != nil {
		w.Diarization = *update.Diarization
	}
	if update.BatchSize != nil {
		w.BatchSize = *update.BatchSize
	}
	if update.ComputeType != nil {
		w.ComputeType = *update.ComputeType
	}
	if update.MinSpeakers != nil {
		w.MinSpeakers = *update.MinSpeakers
	}
	if update.MaxSpeakers != nil {
		w.MaxSpeakers = *update.MaxSpeakers
	}

	if err := s.Save(cfg); err != nil {
		return domain.Settings{}, err
	}
	return cfg, nil
}
