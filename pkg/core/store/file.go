package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"screener_valuation/pkg/core/analysis"
)

var safeID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileRepo keeps one JSON file per report in a directory.
type FileRepo struct {
	dir string
	mu  sync.RWMutex
}

// NewFileRepo creates dir when missing. An empty dir uses .cache/reports.
func NewFileRepo(dir string) (*FileRepo, error) {
	if dir == "" {
		dir = filepath.Join(".cache", "reports")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report dir: %w", err)
	}
	return &FileRepo{dir: dir}, nil
}

func (r *FileRepo) path(id string) (string, error) {
	if !safeID.MatchString(id) {
		return "", fmt.Errorf("invalid report id %q", id)
	}
	return filepath.Join(r.dir, id+".json"), nil
}

// Save writes the report atomically through a temp file.
func (r *FileRepo) Save(ctx context.Context, rep *analysis.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(rep)
	if err != nil {
		return err
	}
	path, err := r.path(rep.ID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Get loads one report.
func (r *FileRepo) Get(ctx context.Context, id string) (*analysis.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.path(id)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}

	r.mu.RLock()
	data, err := os.ReadFile(path)
	r.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return decode(data)
}

// List reads every report in the directory, newest first.
func (r *FileRepo) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	var out []analysis.Summary
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read report: %w", err)
		}
		rep, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out = append(out, rep.Summarize())
	}
	return newestFirst(out, limit), nil
}

// Close is a no-op.
func (r *FileRepo) Close() error { return nil }

func newestFirst(list []analysis.Summary, limit int) []analysis.Summary {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if n := listLimit(limit); len(list) > n {
		list = list[:n]
	}
	return list
}
