package views

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"pipeline/internal/table"
)

// Persister stores whole view records keyed by (page type, id).
type Persister interface {
	Get(ctx context.Context, pageType string) ([]View, error)
	Put(ctx context.Context, v View) error
	Delete(ctx context.Context, pageType, id string) error
}

// DefaultCacheSize is the number of page types whose view lists are cached.
const DefaultCacheSize = 16

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCacheSize overrides DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(s *Store) { s.cacheSize = n }
}

// Store is the process-wide registry of saved views. It is safe for
// concurrent use.
type Store struct {
	mu        sync.Mutex
	persister Persister
	cache     *lru.Cache[string, []View]
	cacheSize int
	now       func() time.Time
}

// NewStore creates a store backed by p.
func NewStore(p Persister, opts ...Option) (*Store, error) {
	s := &Store{persister: p, cacheSize: DefaultCacheSize, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	cache, err := lru.New[string, []View](max(s.cacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to create views cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// SaveView creates a view, or overwrites the view of the same name and page
// type keeping its id. The returned previous view is non-nil on overwrite.
func (s *Store) SaveView(ctx context.Context, name, pageType string, state table.ViewState) (View, *View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return View{}, nil, table.NewError(table.CodeValidation, "view name is required")
	}
	if pageType == "" {
		return View{}, nil, table.NewError(table.CodeValidation, "page type is required")
	}
	if len(state.Columns) == 0 {
		return View{}, nil, table.NewError(table.CodeValidation, "view has no columns")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.list(ctx, pageType)
	if err != nil {
		return View{}, nil, err
	}

	now := s.now().UTC()
	v := View{
		ID:        uuid.NewString(),
		Name:      name,
		PageType:  pageType,
		Columns:   slices.Clone(state.Columns),
		Sort:      state.Sort,
		Filters:   slices.Clone(state.Filters),
		CreatedAt: now,
		UpdatedAt: now,
	}
	var prev *View
	idx := slices.IndexFunc(list, func(existing View) bool { return existing.Name == name })
	if idx >= 0 {
		old := list[idx].clone()
		prev = &old
		v.ID = old.ID
		v.CreatedAt = old.CreatedAt
	}

	if err := s.persister.Put(ctx, v); err != nil {
		return View{}, nil, fmt.Errorf("failed to save view: %w", err)
	}
	if idx >= 0 {
		list[idx] = v
	} else {
		list = append(list, v)
	}
	s.cache.Add(pageType, list)
	return v.clone(), prev, nil
}

// Restore writes v back as-is, used to undo a delete or an overwrite.
func (s *Store) Restore(ctx context.Context, v View) error {
	if v.ID == "" || v.PageType == "" {
		return table.NewError(table.CodeValidation, "view id and page type are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.list(ctx, v.PageType)
	if err != nil {
		return err
	}
	if err := s.persister.Put(ctx, v); err != nil {
		return fmt.Errorf("failed to restore view: %w", err)
	}
	list = slices.DeleteFunc(list, func(existing View) bool { return existing.ID == v.ID })
	s.cache.Add(v.PageType, append(list, v.clone()))
	return nil
}

// LoadView returns the view with id in pageType.
func (s *Store) LoadView(ctx context.Context, pageType, id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.list(ctx, pageType)
	if err != nil {
		return View{}, err
	}
	for _, v := range list {
		if v.ID == id {
			return v.clone(), nil
		}
	}
	return View{}, notFound(pageType, id)
}

// ListViews returns the views of pageType sorted by name.
func (s *Store) ListViews(ctx context.Context, pageType string) ([]View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.list(ctx, pageType)
	if err != nil {
		return nil, err
	}
	out := cloneAll(list)
	slices.SortFunc(out, func(a, b View) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteView removes a view and returns it.
func (s *Store) DeleteView(ctx context.Context, pageType, id string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.list(ctx, pageType)
	if err != nil {
		return View{}, err
	}
	idx := slices.IndexFunc(list, func(v View) bool { return v.ID == id })
	if idx < 0 {
		return View{}, notFound(pageType, id)
	}
	deleted := list[idx]
	if err := s.persister.Delete(ctx, pageType, id); err != nil {
		return View{}, fmt.Errorf("failed to delete view: %w", err)
	}
	s.cache.Add(pageType, slices.Delete(slices.Clone(list), idx, idx+1))
	return deleted.clone(), nil
}

// list returns the cached list for pageType, loading it on a miss. Callers
// hold s.mu and must not mutate the returned slice's elements in place.
func (s *Store) list(ctx context.Context, pageType string) ([]View, error) {
	if cached, ok := s.cache.Get(pageType); ok {
		return slices.Clone(cached), nil
	}
	loaded, err := s.persister.Get(ctx, pageType)
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}
	s.cache.Add(pageType, cloneAll(loaded))
	return cloneAll(loaded), nil
}

func notFound(pageType, id string) error {
	return table.WithMetadata(table.CodeNotFound, "view not found", map[string]string{
		"page_type": pageType,
		"id":        id,
	})
}
