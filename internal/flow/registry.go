package flow

import (
	"fmt"
	"sort"
	"sync"

	"github.com/devfury/ezcaretech-auth/internal/core"
)

// Registry holds authenticator factories by provider id
type Registry struct {
	mu        sync.RWMutex
	factories map[string]core.AuthenticatorFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]core.AuthenticatorFactory)}
}

// Register adds factory. Registering the same id twice is an error.
func (r *Registry) Register(factory core.AuthenticatorFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := factory.ID()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, id)
	}
	r.factories[id] = factory
	return nil
}

// Get returns the factory registered under id
func (r *Registry) Get(id string) (core.AuthenticatorFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// IDs returns the registered provider ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
