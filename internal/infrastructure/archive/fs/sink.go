package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/rezkam/ledger/internal/domain"
)

// Sink is a filesystem-backed archive. Object names map to paths below baseDir.
type Sink struct {
	baseDir string
	mu      sync.RWMutex
}

// NewSink creates a new filesystem sink rooted at baseDir.
func NewSink(baseDir string) (*Sink, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Sink{baseDir: baseDir}, nil
}

func (s *Sink) filePath(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: object name %q", domain.ErrInvalidID, name)
	}
	return filepath.Join(s.baseDir, clean), nil
}

// Put writes data to a temporary file and renames it into place.
func (s *Sink) Put(ctx context.Context, name string, data []byte) error {
	path, err := s.filePath(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Get reads the file stored under name.
func (s *Sink) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := s.filePath(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// List walks the base directory and returns slash-separated names under prefix.
func (s *Sink) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	slices.Sort(names)
	return names, nil
}

// Close is a no-op; files are closed after each operation.
func (s *Sink) Close() error {
	return nil
}
