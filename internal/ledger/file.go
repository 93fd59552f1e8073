// Package ledger stores append-only JSON Lines records: the arbitrage
// opportunity log and the simulated paper-trading portfolio.
package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/theirongolddev/reefboard/internal/jsonl"
)

// ErrMissingFields marks a write request without its required fields.
var ErrMissingFields = errors.New("ledger: missing required fields")

// File is a JSON Lines file that is only ever appended to.
type File struct {
	Path string

	mu sync.Mutex
}

// Open returns a ledger at path. The file is created on first Append.
func Open(path string) *File {
	return &File{Path: path}
}

// Append writes v as one JSON line.
func (f *File) Append(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding ledger entry: %w", err)
	}
	line = append(line, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	fh, err := os.OpenFile(f.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	if _, err := fh.Write(line); err != nil {
		_ = fh.Close()
		return fmt.Errorf("appending ledger entry: %w", err)
	}
	return fh.Close()
}

// maxLineBytes bounds a single ledger line. Longer lines are skipped.
const maxLineBytes = 1024 * 1024

// All returns every well-formed line in file order. A missing file is an
// empty ledger. Lines that are not valid JSON are logged and skipped.
func (f *File) All() ([]json.RawMessage, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer func() { _ = fh.Close() }()

	entries := []json.RawMessage{}
	err = jsonl.Each(fh, maxLineBytes, func(lineNo int, line []byte, err error) {
		if errors.Is(err, jsonl.ErrLineTooLong) {
			slog.Warn("skipping oversized ledger line", "path", f.Path, "line", lineNo)
			return
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			return
		}
		if !json.Valid(line) {
			slog.Warn("skipping malformed ledger line", "path", f.Path, "line", lineNo)
			return
		}
		entries = append(entries, json.RawMessage(bytes.Clone(line)))
	})
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return entries, nil
}

// Recent returns up to n entries, newest first.
func (f *File) Recent(n int) ([]json.RawMessage, error) {
	all, err := f.All()
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	out := make([]json.RawMessage, len(all))
	for i, e := range all {
		out[len(all)-1-i] = e
	}
	return out, nil
}
