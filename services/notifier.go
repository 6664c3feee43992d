package services

import (
	"log/slog"

	"github.com/Dosada05/league-portal/broadcast"
	"github.com/Dosada05/league-portal/metrics"
	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/store"
)

// Publisher is the broadcast side of the gateway. *broadcast.Hub satisfies it.
type Publisher interface {
	Publish(channel broadcast.Channel, msgType string, version uint64, payload any)
}

// Notifier turns a committed store mutation into one snapshot per affected
// channel. Snapshots are read after the commit, so they are never partial.
type Notifier struct {
	store  *store.Store
	pub    Publisher
	logger *slog.Logger
}

func NewNotifier(st *store.Store, pub Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{store: st, pub: pub, logger: logger}
}

func (n *Notifier) Emit(m store.Mutation) {
	for _, kind := range m.Kinds {
		n.emitKind(kind)
	}
}

func (n *Notifier) emitKind(kind models.Kind) {
	channel, msgType, ok := broadcast.ChannelForKind(kind)
	if !ok {
		return
	}
	var (
		payload any
		version uint64
	)
	switch kind {
	case models.KindTeams:
		snap := n.store.Teams()
		payload, version = snap.Items, snap.Version
	case models.KindClubs:
		snap := n.store.Clubs()
		payload, version = snap.Items, snap.Version
	case models.KindPlayers:
		snap := n.store.Players()
		payload, version = snap.Items, snap.Version
	case models.KindMatches:
		snap := n.store.Matches()
		payload, version = snap.Items, snap.Version
	case models.KindClips:
		payload, version = n.store.ClipStats()
	case models.KindPlayoffs:
		b, v, exists := n.store.Bracket()
		version = v
		if exists {
			payload = b
		}
	}
	n.pub.Publish(channel, msgType, version, payload)
	n.logger.Debug("snapshot published", slog.String("channel", string(channel)), slog.Uint64("version", version))
}

// PlayerStatChanged sends the notification-only event for a goals or
// assists change.
func (n *Notifier) PlayerStatChanged(change models.PlayerStatChange) {
	n.pub.Publish(broadcast.ChannelPlayerStatChanged, broadcast.TypePlayerStatsChanged, 0, change)
}

func recordMutation(kind models.Kind, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.Mutations.WithLabelValues(string(kind), op, result).Inc()
}
