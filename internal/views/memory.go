package views

import (
	"context"
	"sync"
)

// MemoryPersister keeps views in process memory.
type MemoryPersister struct {
	mu    sync.Mutex
	views map[string]map[string]View
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{views: make(map[string]map[string]View)}
}

func (p *MemoryPersister) Get(_ context.Context, pageType string) ([]View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]View, 0, len(p.views[pageType]))
	for _, v := range p.views[pageType] {
		out = append(out, v.clone())
	}
	return out, nil
}

func (p *MemoryPersister) Put(_ context.Context, v View) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	byID, ok := p.views[v.PageType]
	if !ok {
		byID = make(map[string]View)
		p.views[v.PageType] = byID
	}
	byID[v.ID] = v.clone()
	return nil
}

func (p *MemoryPersister) Delete(_ context.Context, pageType, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.views[pageType], id)
	return nil
}
