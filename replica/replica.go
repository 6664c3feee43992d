// Package replica keeps a local, versioned copy of the league that follows
// the server through pushed snapshots and periodic polls.
package replica

import (
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/Dosada05/league-portal/broadcast"
	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/standings"
)

type Topic string

const (
	TopicTeams      Topic = "teams"
	TopicClubs      Topic = "clubs"
	TopicPlayers    Topic = "players"
	TopicMatches    Topic = "matches"
	TopicClipStats  Topic = "clip-stats"
	TopicPlayoffs   Topic = "playoffs"
	TopicStandings  Topic = "standings"
	TopicPlayerStat Topic = "player-stat"
)

// Event tells listeners what changed. Stat is set only for TopicPlayerStat.
type Event struct {
	Topic   Topic
	Version uint64
	Stat    *models.PlayerStatChange
}

type Listener func(Event)

// Replica is the single owner of a client's league state. Each kind is
// replaced wholesale by a snapshot at least as new as the one it holds;
// older snapshots are ignored. A snapshot from a new server epoch resets
// every version held, so a restarted server's state is taken even though
// its versions count from zero again. Listeners run on the applying
// goroutine, after the lock is released.
type Replica struct {
	mu             sync.RWMutex
	epoch          string
	teams          Collection[models.Team]
	clubs          Collection[models.Club]
	players        Collection[models.Player]
	matches        Collection[models.Match]
	bracket        *models.Bracket
	bracketVersion uint64
	clipStats      models.ClipStats
	clipVersion    uint64

	rules       standings.Rules
	limit       int
	table       []models.StandingsRow
	scorers     []models.LeaderboardEntry
	assisters   []models.LeaderboardEntry
	totals      models.LeaderboardTotals
	counters    *CounterArena
	listenersMu sync.RWMutex
	listeners   []Listener
}

// New returns an empty replica. limit bounds the cached leaderboards.
func New(rules standings.Rules, limit int) *Replica {
	r := &Replica{
		rules:    rules,
		limit:    limit,
		counters: NewCounterArena(),
	}
	r.recomputeLocked()
	return r
}

// OnChange registers l for every future change.
func (r *Replica) OnChange(l Listener) {
	r.listenersMu.Lock()
	r.listeners = append(r.listeners, l)
	r.listenersMu.Unlock()
}

func (r *Replica) emit(events ...Event) {
	r.listenersMu.RLock()
	listeners := r.listeners
	r.listenersMu.RUnlock()
	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}

// admitLocked reports whether a read stamped st may replace state held at
// version held. An unstamped epoch is taken to be the current one.
func (r *Replica) admitLocked(st Stamp, held uint64) bool {
	if st.Epoch != "" && st.Epoch != r.epoch {
		r.rebaseLocked(st.Epoch)
		return true
	}
	return st.Version >= held
}

// rebaseLocked enters a new server epoch. The data held stays on display
// until the new epoch's snapshots replace it.
func (r *Replica) rebaseLocked(epoch string) {
	r.epoch = epoch
	r.teams.Version = 0
	r.clubs.Version = 0
	r.players.Version = 0
	r.matches.Version = 0
	r.bracketVersion = 0
	r.clipVersion = 0
	r.counters.rebase()
}

func replace[T any](r *Replica, c *Collection[T], next Collection[T]) bool {
	if !r.admitLocked(next.Stamp, c.Version) {
		return false
	}
	if next.Items == nil {
		next.Items = []T{}
	}
	next.Epoch = r.epoch
	*c = next
	return true
}

func (r *Replica) ApplyTeams(next Collection[models.Team]) bool {
	r.mu.Lock()
	ok := replace(r, &r.teams, next)
	if ok {
		r.recomputeLocked()
	}
	r.mu.Unlock()
	if ok {
		r.emit(Event{Topic: TopicTeams, Version: next.Version}, Event{Topic: TopicStandings, Version: r.LeagueVersion()})
	}
	return ok
}

func (r *Replica) ApplyClubs(next Collection[models.Club]) bool {
	r.mu.Lock()
	ok := replace(r, &r.clubs, next)
	r.mu.Unlock()
	if ok {
		r.emit(Event{Topic: TopicClubs, Version: next.Version})
	}
	return ok
}

func (r *Replica) ApplyPlayers(next Collection[models.Player]) bool {
	r.mu.Lock()
	ok := replace(r, &r.players, next)
	if ok {
		r.recomputeLocked()
	}
	r.mu.Unlock()
	if ok {
		r.emit(Event{Topic: TopicPlayers, Version: next.Version}, Event{Topic: TopicStandings, Version: r.LeagueVersion()})
	}
	return ok
}

func (r *Replica) ApplyMatches(next Collection[models.Match]) bool {
	r.mu.Lock()
	ok := replace(r, &r.matches, next)
	if ok {
		r.recomputeLocked()
	}
	r.mu.Unlock()
	if ok {
		r.emit(Event{Topic: TopicMatches, Version: next.Version}, Event{Topic: TopicStandings, Version: r.LeagueVersion()})
	}
	return ok
}

// ApplyBracket installs the playoff bracket; nil means none is drawn.
func (r *Replica) ApplyBracket(st Stamp, b *models.Bracket) bool {
	r.mu.Lock()
	if !r.admitLocked(st, r.bracketVersion) {
		r.mu.Unlock()
		return false
	}
	r.bracket, r.bracketVersion = b, st.Version
	r.mu.Unlock()
	r.emit(Event{Topic: TopicPlayoffs, Version: st.Version})
	return true
}

// ApplyClipStats installs an authoritative counter snapshot. It replaces
// every counter, including ones this client bumped optimistically, except
// where a confirmation newer than the snapshot has been seen.
func (r *Replica) ApplyClipStats(st Stamp, snap models.ClipStatsSnapshot) bool {
	r.mu.Lock()
	if !r.admitLocked(st, r.clipVersion) {
		r.mu.Unlock()
		return false
	}
	r.clipStats, r.clipVersion = snap.Stats, st.Version
	r.counters.Replace(snap.Counters, st.Version)
	r.mu.Unlock()
	r.emit(Event{Topic: TopicClipStats, Version: st.Version})
	return true
}

// confirm settles tk with the count the server persisted, read at st.
func (r *Replica) confirm(tk Ticket, persisted int64, st Stamp) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st.Epoch != "" && st.Epoch != r.epoch {
		r.rebaseLocked(st.Epoch)
	}
	return r.counters.Confirm(tk, persisted, st.Version)
}

// ApplySettings swaps the scoring rules and recomputes the table.
func (r *Replica) ApplySettings(s models.Settings) {
	r.mu.Lock()
	r.rules = standings.RulesFromSettings(s)
	r.recomputeLocked()
	r.mu.Unlock()
	r.emit(Event{Topic: TopicStandings, Version: r.LeagueVersion()})
}

// ApplyMessage routes one pushed frame to the kind it carries.
func (r *Replica) ApplyMessage(msg broadcast.Message) error {
	switch msg.Type {
	case broadcast.TypeTeamsUpdate:
		return applyPushed(msg, r.ApplyTeams)
	case broadcast.TypeClubsUpdate:
		return applyPushed(msg, r.ApplyClubs)
	case broadcast.TypePlayersUpdate:
		return applyPushed(msg, r.ApplyPlayers)
	case broadcast.TypeMatchesUpdate:
		return applyPushed(msg, r.ApplyMatches)
	case broadcast.TypeStatsUpdate:
		var snap models.ClipStatsSnapshot
		if err := json.Unmarshal(msg.Payload, &snap); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		r.ApplyClipStats(Stamp{Epoch: msg.Epoch, Version: msg.Version}, snap)
	case broadcast.TypeBracketUpdate:
		var b *models.Bracket
		if err := json.Unmarshal(msg.Payload, &b); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		r.ApplyBracket(Stamp{Epoch: msg.Epoch, Version: msg.Version}, b)
	case broadcast.TypePlayerStatsChanged:
		var change models.PlayerStatChange
		if err := json.Unmarshal(msg.Payload, &change); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		r.emit(Event{Topic: TopicPlayerStat, Stat: &change})
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func applyPushed[T any](msg broadcast.Message, apply func(Collection[T]) bool) error {
	var items []T
	if err := json.Unmarshal(msg.Payload, &items); err != nil {
		return fmt.Errorf("decode %s: %w", msg.Type, err)
	}
	apply(Collection[T]{Stamp: Stamp{Epoch: msg.Epoch, Version: msg.Version}, Items: items})
	return nil
}

func (r *Replica) recomputeLocked() {
	r.table = standings.Compute(r.teams.Items, r.matches.Items, r.rules)
	// Both metrics are known to the engine, so neither call can fail.
	r.scorers, _ = standings.Leaderboard(r.players.Items, standings.MetricGoals, r.limit)
	r.assisters, _ = standings.Leaderboard(r.players.Items, standings.MetricAssists, r.limit)
	r.totals = standings.Totals(r.players.Items, r.matches.Items)
}

func cloneCollection[T any](c Collection[T]) Collection[T] {
	items := make([]T, len(c.Items))
	copy(items, c.Items)
	return Collection[T]{Stamp: c.Stamp, Items: items}
}

func (r *Replica) Teams() Collection[models.Team] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneCollection(r.teams)
}

func (r *Replica) Clubs() Collection[models.Club] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneCollection(r.clubs)
}

func (r *Replica) Players() Collection[models.Player] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneCollection(r.players)
}

func (r *Replica) Matches() Collection[models.Match] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneCollection(r.matches)
}

func (r *Replica) Bracket() (*models.Bracket, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.bracket == nil {
		return nil, r.bracketVersion
	}
	b := *r.bracket
	return &b, r.bracketVersion
}

// Epoch is the server run the held versions belong to.
func (r *Replica) Epoch() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.epoch
}

// LeagueVersion moves whenever teams, players or matches do.
func (r *Replica) LeagueVersion() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.teams.Version + r.players.Version + r.matches.Version
}

func (r *Replica) Standings() []models.StandingsRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.StandingsRow, len(r.table))
	copy(out, r.table)
	return out
}

// Leaderboard returns the cached ranking for metric.
func (r *Replica) Leaderboard(metric standings.Metric) ([]models.LeaderboardEntry, models.LeaderboardTotals) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.scorers
	if metric == standings.MetricAssists {
		src = r.assisters
	}
	out := make([]models.LeaderboardEntry, len(src))
	copy(out, src)
	return out, r.totals
}

// ClipStats returns the aggregate as displayed: the server's totals plus any
// optimistic increments not yet reflected by a snapshot.
func (r *Replica) ClipStats() (models.ClipStats, uint64) {
	r.mu.RLock()
	stats, version := r.clipStats, r.clipVersion
	r.mu.RUnlock()
	views, likes := r.counters.Drift()
	stats.TotalViews += views
	stats.TotalLikes += likes
	return stats, version
}

func (r *Replica) Counter(clipID string) (models.ClipCounter, bool) {
	return r.counters.Get(clipID)
}

func (r *Replica) Counters() []models.ClipCounter {
	return r.counters.All()
}

// Arena exposes the counters for the optimistic protocol.
func (r *Replica) Arena() *CounterArena {
	return r.counters
}

func (r *Replica) notifyCounters() {
	r.mu.RLock()
	version := r.clipVersion
	r.mu.RUnlock()
	r.emit(Event{Topic: TopicClipStats, Version: version})
}
