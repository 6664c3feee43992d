package store

import (
	"sort"
	"sync"

	"github.com/Dosada05/league-portal/models"
)

// Entity is anything the store can key by id.
type Entity interface {
	EntityID() string
}

// Snapshot is the complete, ordered content of one collection at a version.
type Snapshot[T any] struct {
	Kind    models.Kind
	Version uint64
	Items   []T
}

// collection is not safe on its own: the Store takes mu before calling any
// method, so a reader never sees a half-applied mutation.
type collection[T Entity] struct {
	kind    models.Kind
	mu      sync.RWMutex
	items   map[string]T
	version uint64
	less    func(a, b T) bool
}

func newCollection[T Entity](kind models.Kind, less func(a, b T) bool) *collection[T] {
	return &collection[T]{
		kind:  kind,
		items: make(map[string]T),
		less:  less,
	}
}

func (c *collection[T]) get(id string) (T, bool) {
	item, ok := c.items[id]
	return item, ok
}

func (c *collection[T]) put(item T) {
	c.items[item.EntityID()] = item
}

func (c *collection[T]) remove(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

func (c *collection[T]) clear() int {
	n := len(c.items)
	c.items = make(map[string]T)
	return n
}

func (c *collection[T]) touch() {
	c.version++
}

func (c *collection[T]) list() []T {
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if c.less != nil {
			if c.less(out[i], out[j]) {
				return true
			}
			if c.less(out[j], out[i]) {
				return false
			}
		}
		return out[i].EntityID() < out[j].EntityID()
	})
	return out
}

func (c *collection[T]) snapshot() Snapshot[T] {
	return Snapshot[T]{Kind: c.kind, Version: c.version, Items: c.list()}
}
