package launcher

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry tracks in-flight launches by launch ID. Children remove
// themselves when they exit.
type Registry struct {
	children map[string]*Child
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		children: make(map[string]*Child),
	}
}

func (r *Registry) add(child *Child) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.children[child.ID] = child
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.children, id)
}

// Get retrieves an in-flight launch by ID
func (r *Registry) Get(id string) (*Child, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	child, ok := r.children[id]
	if !ok {
		return nil, fmt.Errorf("launch not found: %s", id)
	}
	return child, nil
}

// List returns all in-flight launches, oldest first
func (r *Registry) List() []*Child {
	r.mu.RLock()
	defer r.mu.RUnlock()

	children := make([]*Child, 0, len(r.children))
	for _, child := range r.children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].StartedAt.Before(children[j].StartedAt)
	})
	return children
}

// Len returns the number of in-flight launches
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.children)
}

// TerminateAll kills every in-flight launch and waits for each to settle.
func (r *Registry) TerminateAll(logger *slog.Logger) {
	for _, child := range r.List() {
		if err := child.Kill(); err != nil {
			logger.Warn("failed to kill launch", "launch_id", child.ID, "pid", child.PID, "error", err)
		}
		<-child.Done()
	}
}
