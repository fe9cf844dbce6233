package core

import (
	"fmt"
	"sort"

	"golang.org/x/exp/constraints"
)

// Registry hands out identifiers for owned values. Identifiers start at 1 and
// are never reused for the lifetime of the registry, so zero always means
// "no value" and a stale identifier can never alias a newer owner.
type Registry[H constraints.Unsigned, V any] struct {
	next   H
	owners map[H]V
}

func NewRegistry[H constraints.Unsigned, V any]() *Registry[H, V] {
	return &Registry[H, V]{
		owners: make(map[H]V),
	}
}

// Acquire stores owner and returns its new identifier.
func (r *Registry[H, V]) Acquire(owner V) H {
	r.next++
	r.owners[r.next] = owner
	return r.next
}

func (r *Registry[H, V]) Get(id H) (V, bool) {
	v, ok := r.owners[id]
	return v, ok
}

// Replace swaps the owner of an existing identifier.
func (r *Registry[H, V]) Replace(id H, owner V) error {
	if _, ok := r.owners[id]; !ok {
		return fmt.Errorf("registry: id '%d' is not in use", id)
	}
	r.owners[id] = owner
	return nil
}

func (r *Registry[H, V]) Release(id H) (V, error) {
	v, ok := r.owners[id]
	if !ok {
		return v, fmt.Errorf("registry: id '%d' is not in use. Nothing was done", id)
	}
	delete(r.owners, id)
	return v, nil
}

func (r *Registry[H, V]) Len() int {
	return len(r.owners)
}

// Descending returns every live identifier, newest first.
func (r *Registry[H, V]) Descending() []H {
	ids := make([]H, 0, len(r.owners))
	for id := range r.owners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}
