// Package storage persists the summary artifact consumed by the frontend
// and the cross-run seen-articles bookkeeping.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"technews/internal/news"
)

// PayloadStore writes the full summary document to a single JSON file.
// Every run replaces the file wholesale; there is no merge and no history.
type PayloadStore struct {
	path string
}

func NewPayloadStore(path string) *PayloadStore {
	return &PayloadStore{path: path}
}

func (s *PayloadStore) Path() string {
	return s.path
}

// Save serializes the payload and writes it in one shot, creating the
// parent directory if needed. A marshal or write failure leaves any
// previous artifact untouched.
func (s *PayloadStore) Save(payload news.Payload) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write payload file: %w", err)
	}
	return nil
}

// LoadExisting reads the artifact back, tolerating a missing file by
// returning an empty payload. Unknown top-level keys survive the round
// trip via Payload.Extra.
func (s *PayloadStore) LoadExisting() (news.Payload, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return news.EmptyPayload(), nil
		}
		return news.Payload{}, fmt.Errorf("failed to read payload file: %w", err)
	}

	var payload news.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return news.Payload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
