package store

import (
	"context"
	"encoding/json"

	"github.com/Dosada05/league-portal/models"
)

// Record is one entity to upsert.
type Record struct {
	Kind models.Kind
	ID   string
	Data any
}

// Ref identifies one entity to delete.
type Ref struct {
	Kind models.Kind
	ID   string
}

// Change is a single logical mutation. A Persister applies it atomically.
type Change struct {
	Upserts []Record
	Deletes []Ref
}

func (c *Change) upsert(kind models.Kind, e Entity) {
	c.Upserts = append(c.Upserts, Record{Kind: kind, ID: e.EntityID(), Data: e})
}

func (c *Change) delete(kind models.Kind, id string) {
	c.Deletes = append(c.Deletes, Ref{Kind: kind, ID: id})
}

func (c Change) Empty() bool {
	return len(c.Upserts) == 0 && len(c.Deletes) == 0
}

// Persister is the durable backing of the store. Apply must be all-or-nothing.
type Persister interface {
	Apply(ctx context.Context, change Change) error
	LoadAll(ctx context.Context) (map[models.Kind][]json.RawMessage, error)
}
