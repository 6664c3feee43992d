package replica

import (
	"sort"
	"sync"

	"github.com/Dosada05/league-portal/models"
)

type Counter string

const (
	CounterViews Counter = "views"
	CounterLikes Counter = "likes"
)

// Ticket identifies one optimistic increment until it is confirmed or fails.
type Ticket struct {
	ClipID  string
	Counter Counter
	seq     uint64
}

// tally is one counter of one clip. server is the last value the server
// reported. pending holds the value shown for each increment still in
// flight. held keeps an optimistic value the server has not yet reflected
// until the next authoritative snapshot. confirmedAt is the clips version of
// the newest confirmation; snapshots older than it cannot lower the tally.
// base is the value the last snapshot's aggregate totals counted.
type tally struct {
	server      int64
	pending     map[uint64]int64
	held        int64
	confirmedAt uint64
	base        int64
}

// replace installs value from a snapshot taken at version.
func (t *tally) replace(value int64, version uint64) {
	t.base = value
	if t.confirmedAt > version {
		t.server = max(t.server, value)
		return
	}
	t.server, t.held, t.confirmedAt = value, 0, 0
}

func (t *tally) display() int64 {
	v := max(t.server, t.held)
	for _, floor := range t.pending {
		v = max(v, floor)
	}
	return v
}

type clipTally struct {
	views tally
	likes tally
}

func (c *clipTally) get(counter Counter) *tally {
	if counter == CounterLikes {
		return &c.likes
	}
	return &c.views
}

// CounterArena holds the interactive counters of every clip. Two writers
// touch it: optimistic increments from the local user, and server values
// from pushes, polls and request confirmations. Server values always
// overwrite; they are never added to the optimistic value. Only an
// authoritative snapshot may move a displayed counter down.
type CounterArena struct {
	mu    sync.Mutex
	clips map[string]*clipTally
	seq   uint64
}

func NewCounterArena() *CounterArena {
	return &CounterArena{clips: make(map[string]*clipTally)}
}

func (a *CounterArena) clipLocked(id string) *clipTally {
	c, ok := a.clips[id]
	if !ok {
		c = &clipTally{}
		a.clips[id] = c
	}
	return c
}

// Begin records an optimistic increment and returns the value to show.
func (a *CounterArena) Begin(clipID string, counter Counter) (Ticket, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t := a.clipLocked(clipID).get(counter)
	a.seq++
	if t.pending == nil {
		t.pending = make(map[uint64]int64)
	}
	shown := t.display() + 1
	t.pending[a.seq] = shown
	return Ticket{ClipID: clipID, Counter: counter, seq: a.seq}, shown
}

// Confirm applies the value the server persisted for tk at the given clips
// version. A confirmation below what was shown means the increment has not
// landed yet as far as this client can tell; the optimistic value stays
// until the next snapshot.
func (a *CounterArena) Confirm(tk Ticket, persisted int64, version uint64) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.clips[tk.ClipID]
	if !ok {
		return persisted
	}
	t := c.get(tk.Counter)
	shown, inFlight := t.pending[tk.seq]
	delete(t.pending, tk.seq)
	t.server = max(t.server, persisted)
	t.confirmedAt = max(t.confirmedAt, version)
	if inFlight && persisted < shown {
		t.held = max(t.held, shown)
	}
	return t.display()
}

// Fail keeps the optimistic value of tk on screen until the next snapshot.
func (a *CounterArena) Fail(tk Ticket) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.clips[tk.ClipID]
	if !ok {
		return 0
	}
	t := c.get(tk.Counter)
	if shown, inFlight := t.pending[tk.seq]; inFlight {
		delete(t.pending, tk.seq)
		t.held = max(t.held, shown)
	}
	return t.display()
}

// Forget drops tk without keeping its value, for a clip the server no
// longer has.
func (a *CounterArena) Forget(tk Ticket) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.clips[tk.ClipID]; ok {
		delete(c.get(tk.Counter).pending, tk.seq)
	}
}

// Replace installs an authoritative snapshot read at version. Held
// optimistic values are dropped and clips missing from the snapshot are
// removed; increments still in flight keep their floor until they resolve.
// A counter confirmed at a newer version than the snapshot keeps its
// confirmed value.
func (a *CounterArena) Replace(counters []models.ClipCounter, version uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[string]bool, len(counters))
	for _, sc := range counters {
		seen[sc.ID] = true
		c := a.clipLocked(sc.ID)
		c.views.replace(sc.Views, version)
		c.likes.replace(sc.Likes, version)
	}
	for id, c := range a.clips {
		if seen[id] {
			continue
		}
		c.views.base, c.likes.base = 0, 0
		if len(c.views.pending) > 0 || len(c.likes.pending) > 0 {
			continue
		}
		if c.views.confirmedAt > version || c.likes.confirmedAt > version {
			continue
		}
		delete(a.clips, id)
	}
}

// rebase forgets confirmation versions, which belong to a server run that
// has ended.
func (a *CounterArena) rebase() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.clips {
		c.views.confirmedAt = 0
		c.likes.confirmedAt = 0
	}
}

// Get returns the displayed counters of one clip.
func (a *CounterArena) Get(clipID string) (models.ClipCounter, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.clips[clipID]
	if !ok {
		return models.ClipCounter{}, false
	}
	return models.ClipCounter{ID: clipID, Views: c.views.display(), Likes: c.likes.display()}, true
}

// All returns displayed counters ordered by clip id.
func (a *CounterArena) All() []models.ClipCounter {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.ClipCounter, 0, len(a.clips))
	for id, c := range a.clips {
		out = append(out, models.ClipCounter{ID: id, Views: c.views.display(), Likes: c.likes.display()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Drift is how far the displayed counters run ahead of the ones the last
// snapshot's aggregate totals were computed from.
func (a *CounterArena) Drift() (views, likes int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.clips {
		views += c.views.display() - c.views.base
		likes += c.likes.display() - c.likes.base
	}
	return views, likes
}

func counterValue(c models.ClipCounter, counter Counter) int64 {
	if counter == CounterLikes {
		return c.Likes
	}
	return c.Views
}
