package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SessionState is what the CLI remembers between invocations.
type SessionState struct {
	UserID         string    `json:"user_id"`
	Language       string    `json:"language"`
	LastConcept    string    `json:"last_concept,omitempty"`
	LastComplexity string    `json:"last_complexity,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Touch records a problem selection.
func (s *SessionState) Touch(concept, complexity string) {
	s.LastConcept = concept
	if complexity != "" {
		s.LastComplexity = complexity
	}
	s.UpdatedAt = time.Now()
}

func Load(path string) (SessionState, error) {
	var st SessionState
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, fmt.Errorf("read session state failed: %w", err)
	}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parse session state failed: %w", err)
	}
	return st, nil
}

func Save(path string, st SessionState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session state dir failed: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session state failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session state failed: %w", err)
	}
	return nil
}

func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session state failed: %w", err)
	}
	return nil
}
