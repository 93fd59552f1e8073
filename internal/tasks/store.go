// Package tasks keeps the to-do list in a JSON file.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors.
var (
	ErrNotFound     = errors.New("tasks: task not found")
	ErrTitleMissing = errors.New("tasks: title is required")
	ErrIDMissing    = errors.New("tasks: id is required")
)

// DefaultPriority is assigned to tasks created without one.
const DefaultPriority = "medium"

// Task is one to-do item.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
	CreatedAt string `json:"created_at"`
}

// Patch holds the fields of a partial update. Nil fields are left alone.
type Patch struct {
	ID        string  `json:"id"`
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
	Priority  *string `json:"priority"`
}

// Store reads and rewrites the task file. Writes are serialized.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// Open returns a store backed by path.
func Open(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// List returns all tasks. A missing or unreadable file is an empty list.
func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Create appends a new task.
func (s *Store) Create(title, priority string) (Task, error) {
	if title == "" {
		return Task{}, ErrTitleMissing
	}
	if priority == "" {
		priority = DefaultPriority
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:        uuid.NewString(),
		Title:     title,
		Completed: false,
		Priority:  priority,
		CreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	}
	list := append(s.load(), t)
	if err := s.save(list); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Update applies p to the task with p.ID.
func (s *Store) Update(p Patch) (Task, error) {
	if p.ID == "" {
		return Task{}, ErrIDMissing
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	for i := range list {
		if list[i].ID != p.ID {
			continue
		}
		if p.Title != nil {
			list[i].Title = *p.Title
		}
		if p.Completed != nil {
			list[i].Completed = *p.Completed
		}
		if p.Priority != nil {
			list[i].Priority = *p.Priority
		}
		if err := s.save(list); err != nil {
			return Task{}, err
		}
		return list[i], nil
	}
	return Task{}, ErrNotFound
}

// Delete removes the task with id.
func (s *Store) Delete(id string) error {
	if id == "" {
		return ErrIDMissing
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	kept := list[:0]
	for _, t := range list {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(list) {
		return ErrNotFound
	}
	return s.save(kept)
}

func (s *Store) load() []Task {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("reading tasks", "path", s.path, "err", err)
		}
		return []Task{}
	}
	var list []Task
	if err := json.Unmarshal(data, &list); err != nil {
		slog.Warn("parsing tasks", "path", s.path, "err", err)
		return []Task{}
	}
	if list == nil {
		return []Task{}
	}
	return list
}

func (s *Store) save(list []Task) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating tasks dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing tasks: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing tasks file: %w", err)
	}
	return nil
}
