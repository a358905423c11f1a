package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

type viewsFile struct {
	Views []View `json:"views"`
}

// FilePersister keeps every view in one JSON file, rewritten on each change.
type FilePersister struct {
	mu   sync.Mutex
	path string
}

// NewFilePersister creates a persister writing to path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the backing file path.
func (p *FilePersister) Path() string { return p.path }

func (p *FilePersister) Get(_ context.Context, pageType string) ([]View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.read()
	if err != nil {
		return nil, err
	}
	var out []View
	for _, v := range f.Views {
		if v.PageType == pageType {
			out = append(out, v)
		}
	}
	return out, nil
}

func (p *FilePersister) Put(_ context.Context, v View) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.read()
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(f.Views, func(existing View) bool {
		return existing.PageType == v.PageType && existing.ID == v.ID
	})
	if idx >= 0 {
		f.Views[idx] = v
	} else {
		f.Views = append(f.Views, v)
	}
	return p.write(f)
}

func (p *FilePersister) Delete(_ context.Context, pageType, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.read()
	if err != nil {
		return err
	}
	f.Views = slices.DeleteFunc(f.Views, func(v View) bool {
		return v.PageType == pageType && v.ID == id
	})
	return p.write(f)
}

func (p *FilePersister) read() (viewsFile, error) {
	var f viewsFile
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("failed to read views file: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to parse views file: %w", err)
	}
	return f, nil
}

func (p *FilePersister) write(f viewsFile) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create views dir: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal views: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write views: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("failed to replace views file: %w", err)
	}
	return nil
}
