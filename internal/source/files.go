package source

import (
	"context"
	"errors"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/reefboard/internal/jsonl"
	"github.com/theirongolddev/reefboard/internal/model"
)

// rawEntry is one line of an agent session transcript.
type rawEntry struct {
	Type    string      `json:"type"`
	Message *rawMessage `json:"message,omitempty"`
}

type rawMessage struct {
	Model string    `json:"model"`
	Usage *rawUsage `json:"usage,omitempty"`
}

type rawUsage struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
}

// DiscoveredFile is a transcript found under the agents directory.
type DiscoveredFile struct {
	Path    string
	AgentID string
	Stem    string // file name without .jsonl
	ModTime time.Time
}

// SessionFiles lists sessions from <Dir>/<agentId>/sessions/*.jsonl.
type SessionFiles struct {
	Dir string
	Now func() time.Time
}

// NewSessionFiles returns a lister rooted at dir.
func NewSessionFiles(dir string) *SessionFiles {
	return &SessionFiles{Dir: dir, Now: time.Now}
}

// ListSessions parses every transcript and emits one record per
// (file, model) pair. Unreadable files are skipped.
func (f *SessionFiles) ListSessions(ctx context.Context) ([]model.SessionRecord, error) {
	files, err := ScanAgentsDir(f.Dir)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	records := []model.SessionRecord{}
	for _, df := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := ParseSessionFile(df, now())
		if err != nil {
			slog.Warn("skipping session file", "path", df.Path, "err", err)
			continue
		}
		records = append(records, recs...)
	}
	return records, nil
}

// ScanAgentsDir discovers session transcripts. A missing directory yields
// no files and no error.
func ScanAgentsDir(dir string) ([]DiscoveredFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []DiscoveredFile
	for _, agent := range entries {
		if !agent.IsDir() {
			continue
		}
		sessionDir := filepath.Join(dir, agent.Name(), "sessions")
		sessions, err := os.ReadDir(sessionDir)
		if err != nil {
			continue
		}
		for _, s := range sessions {
			name := s.Name()
			if s.IsDir() || !strings.HasSuffix(name, ".jsonl") {
				continue
			}
			info, err := s.Info()
			if err != nil {
				continue
			}
			files = append(files, DiscoveredFile{
				Path:    filepath.Join(sessionDir, name),
				AgentID: agent.Name(),
				Stem:    strings.TrimSuffix(name, ".jsonl"),
				ModTime: info.ModTime(),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// maxTranscriptLine bounds a single transcript line. Longer lines are skipped.
const maxTranscriptLine = 4 * 1024 * 1024

// ParseSessionFile sums message usage per model in a transcript.
// Malformed lines are skipped. Models keep first-seen order.
func ParseSessionFile(df DiscoveredFile, now time.Time) ([]model.SessionRecord, error) {
	fh, err := os.Open(df.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	key := "agent:" + df.AgentID + ":" + df.Stem
	ageMs := max(now.Sub(df.ModTime).Milliseconds(), 0)

	index := make(map[string]int)
	var records []model.SessionRecord

	err = jsonl.Each(fh, maxTranscriptLine, func(lineNo int, line []byte, err error) {
		if errors.Is(err, jsonl.ErrLineTooLong) {
			slog.Debug("skipping oversized transcript line", "path", df.Path, "line", lineNo)
			return
		}
		if len(line) == 0 {
			return
		}

		var entry rawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return
		}
		if entry.Type != "message" || entry.Message == nil || entry.Message.Usage == nil {
			return
		}

		name := entry.Message.Model
		if name == "" {
			name = "unknown"
		}
		i, ok := index[name]
		if !ok {
			i = len(records)
			index[name] = i
			records = append(records, model.SessionRecord{
				Key:   key,
				Kind:  "transcript",
				Model: name,
				AgeMs: ageMs,
			})
		}
		u := entry.Message.Usage
		r := &records[i]
		r.InputTokens += u.Input
		r.OutputTokens += u.Output
		r.TotalTokens += u.Input + u.Output
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
