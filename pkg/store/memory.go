package store

import (
	"context"
	"sync"

	"github.com/matzehuels/storyweaver/pkg/errors"
	"github.com/matzehuels/storyweaver/pkg/project"
)

// Memory keeps projects in process memory. Projects are copied on the way
// in and out, so callers never share state with the store.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]*project.Project
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{projects: make(map[string]*project.Project)}
}

func (m *Memory) Get(_ context.Context, id string) (*project.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, notFound(id)
	}
	return p.Clone(), nil
}

func (m *Memory) Put(_ context.Context, p *project.Project) error {
	if err := errors.ValidateProjectID(p.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return notFound(id)
	}
	delete(m.projects, id)
	return nil
}

func (m *Memory) List(context.Context) ([]project.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]project.Summary, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p.Summarize())
	}
	sortSummaries(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }
