// Package history persists a conversation and its pending-action ledger to
// disk so a chat session can be resumed.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stewardhq/steward"
)

// Session is one resumable conversation. The ledger holds every action the
// assistant has proposed, in every status; the client owns all status
// transitions.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []steward.Message
	Ledger    []steward.PendingAction
}

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version   int                     `json:"version"`
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	Messages  []steward.Message       `json:"messages"`
	Ledger    []steward.PendingAction `json:"ledger"`
}

// MarshalSession serializes a Session to JSON in v1 envelope format.
func MarshalSession(s Session) ([]byte, error) {
	env := envelope{
		Version:   1,
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  s.Messages,
		Ledger:    s.Ledger,
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes a Session from JSON in v1 envelope format.
func UnmarshalSession(data []byte) (Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	return Session{
		ID:        env.ID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Messages:  env.Messages,
		Ledger:    env.Ledger,
	}, nil
}

// Save writes a Session to a JSON file, creating parent directories as
// needed. The write is atomic: a partial write never clobbers an existing
// session file.
func Save(path string, s Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Session from a JSON file.
func Load(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}

// DefaultPath returns the conventional on-disk location for a session id.
func DefaultPath(id string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".steward", "sessions", id+".json"), nil
}
