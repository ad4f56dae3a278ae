package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Daily stores one JSON document per trading date under a directory.
//
// The document is the sole mutable root for its date. Callers that perform a
// read-modify-write cycle must hold the document lock via WithLock so that
// concurrent invocations for the same date cannot race.
type Daily struct {
	dir string
}

// NewDaily creates a document store rooted at dir.
func NewDaily(dir string) *Daily {
	return &Daily{dir: dir}
}

// Path returns the document path for a date.
func (d *Daily) Path(date string) string {
	return filepath.Join(d.dir, date+".json")
}

// Load reads the document for a date. Returns (nil, nil) when no document
// exists yet; absence is an expected state, not an error.
func (d *Daily) Load(date string) (*Document, error) {
	data, err := os.ReadFile(d.Path(date))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("load daily document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse daily document %s: %w", d.Path(date), err)
	}
	return &doc, nil
}

// Save writes the document for a date, creating the directory if needed.
func (d *Daily) Save(date string, doc *Document) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("save daily document: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode daily document: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(d.Path(date), data, 0o644); err != nil {
		return fmt.Errorf("save daily document: %w", err)
	}
	return nil
}

// WithLock runs fn while holding the exclusive lock for a date's document.
func (d *Daily) WithLock(date string, fn func() error) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("lock daily document: %w", err)
	}
	release, err := acquireLock(d.Path(date)+".lock", defaultLockTimeout)
	if err != nil {
		return fmt.Errorf("lock daily document for %s: %w", date, err)
	}
	defer release()
	return fn()
}
