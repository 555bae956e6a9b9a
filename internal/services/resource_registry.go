package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FinderFunc loads a stored record as a generic document. It returns nil, nil when the record does
// not exist.
type FinderFunc func(ctx context.Context, id string) (map[string]any, error)

// ResourceRegistry maps collection names to typed finders. It is populated once at startup and
// answers the audit middleware's pre-update snapshot lookups.
type ResourceRegistry struct {
	mu      sync.RWMutex
	finders map[string]FinderFunc
}

// NewResourceRegistry returns an empty registry.
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{finders: make(map[string]FinderFunc)}
}

// Register binds finder to collection. Each collection can be registered once.
func (r *ResourceRegistry) Register(collection string, finder FinderFunc) error {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return fmt.Errorf("resource registry: collection name is required")
	}
	if finder == nil {
		return fmt.Errorf("resource registry: finder for %q is nil", collection)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.finders[collection]; exists {
		return fmt.Errorf("resource registry: collection %q already registered", collection)
	}
	r.finders[collection] = finder
	return nil
}

// Find loads the record id from collection.
func (r *ResourceRegistry) Find(ctx context.Context, collection, id string) (map[string]any, error) {
	r.mu.RLock()
	finder, ok := r.finders[collection]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotRegistered, collection)
	}
	return finder(ensureContext(ctx), id)
}

// Collections lists registered collection names in order.
func (r *ResourceRegistry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.finders))
	for name := range r.finders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
