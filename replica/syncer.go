package replica

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-portal/broadcast"
	"github.com/Dosada05/league-portal/standings"
)

type Options struct {
	RequestTimeout        time.Duration
	StatsPollInterval     time.Duration
	StandingsPollInterval time.Duration
	ReconnectMin          time.Duration
	ReconnectMax          time.Duration
	Channels              []broadcast.Channel
	LeaderboardLimit      int
}

func DefaultOptions() Options {
	return Options{
		RequestTimeout:        10 * time.Second,
		StatsPollInterval:     1500 * time.Millisecond,
		StandingsPollInterval: 10 * time.Second,
		ReconnectMin:          500 * time.Millisecond,
		ReconnectMax:          30 * time.Second,
		Channels:              broadcast.AllChannels,
		LeaderboardLimit:      10,
	}
}

// Syncer keeps a Replica current. Pushes replace kinds as they arrive;
// pollers correct counters and the league on fixed intervals whether or not
// the subscription is up. While it is down the syncer is degraded and lives
// on polls alone.
type Syncer struct {
	api     *APIClient
	replica *Replica
	sub     *Subscriber
	opts    Options
	logger  *slog.Logger
}

func NewSyncer(baseURL string, opts Options, logger *slog.Logger) (*Syncer, error) {
	if len(opts.Channels) == 0 {
		opts.Channels = broadcast.AllChannels
	}
	api, err := NewAPIClient(baseURL, opts.RequestTimeout, logger)
	if err != nil {
		return nil, err
	}
	return &Syncer{
		api:     api,
		replica: New(standings.DefaultRules(), opts.LeaderboardLimit),
		sub:     NewSubscriber(api.WebSocketURL(opts.Channels), opts.ReconnectMin, opts.ReconnectMax, logger),
		opts:    opts,
		logger:  logger.With("component", "replica_syncer"),
	}, nil
}

func (s *Syncer) Replica() *Replica {
	return s.replica
}

// Degraded reports whether the syncer is running on polls only.
func (s *Syncer) Degraded() bool {
	return !s.sub.Connected()
}

func (s *Syncer) subscribed(chs ...broadcast.Channel) bool {
	for _, ch := range chs {
		if slices.Contains(s.opts.Channels, ch) {
			return true
		}
	}
	return false
}

// Run fetches everything once, then subscribes and polls until ctx ends.
func (s *Syncer) Run(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("initial fetch incomplete, continuing with partial state", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.sub.Run(gctx, syncHandler{s})
	})
	if s.subscribed(broadcast.ChannelClipStats) {
		g.Go(func() error {
			return s.poll(gctx, "clip-stats", s.opts.StatsPollInterval, s.pollClipStats)
		})
	}
	if s.subscribed(broadcast.ChannelTeams, broadcast.ChannelPlayers, broadcast.ChannelMatches) {
		g.Go(func() error {
			return s.poll(gctx, "league", s.opts.StandingsPollInterval, s.pollLeague)
		})
	}
	return g.Wait()
}

// Refresh re-reads every subscribed kind in parallel. Kinds that arrive are
// applied even when others fail; the first failure is returned.
func (s *Syncer) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		settings, err := s.api.Settings(ctx)
		if err != nil {
			return err
		}
		s.replica.ApplySettings(settings)
		return nil
	})
	if s.subscribed(broadcast.ChannelTeams) {
		g.Go(func() error {
			c, err := s.api.Teams(ctx)
			if err == nil {
				s.replica.ApplyTeams(c)
			}
			return err
		})
	}
	if s.subscribed(broadcast.ChannelClubs) {
		g.Go(func() error {
			c, err := s.api.Clubs(ctx)
			if err == nil {
				s.replica.ApplyClubs(c)
			}
			return err
		})
	}
	if s.subscribed(broadcast.ChannelPlayers) {
		g.Go(func() error {
			c, err := s.api.Players(ctx)
			if err == nil {
				s.replica.ApplyPlayers(c)
			}
			return err
		})
	}
	if s.subscribed(broadcast.ChannelMatches) {
		g.Go(func() error {
			c, err := s.api.Matches(ctx)
			if err == nil {
				s.replica.ApplyMatches(c)
			}
			return err
		})
	}
	if s.subscribed(broadcast.ChannelClipStats) {
		g.Go(func() error { return s.pollClipStats(ctx) })
	}
	if s.subscribed(broadcast.ChannelPlayoffs) {
		g.Go(func() error {
			b, stamp, err := s.api.Bracket(ctx)
			if err == nil {
				s.replica.ApplyBracket(stamp, b)
			}
			return err
		})
	}
	return g.Wait()
}

func (s *Syncer) poll(ctx context.Context, name string, every time.Duration, fn func(context.Context) error) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				s.logger.Debug("poll failed", "poll", name, "error", err, "degraded", s.Degraded())
			}
		}
	}
}

func (s *Syncer) pollClipStats(ctx context.Context) error {
	snap, stamp, err := s.api.ClipStats(ctx)
	if err != nil {
		return err
	}
	s.replica.ApplyClipStats(stamp, snap)
	return nil
}

// pollLeague re-reads what standings and leaderboards derive from.
func (s *Syncer) pollLeague(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		c, err := s.api.Teams(ctx)
		if err == nil {
			s.replica.ApplyTeams(c)
		}
		return err
	})
	g.Go(func() error {
		c, err := s.api.Players(ctx)
		if err == nil {
			s.replica.ApplyPlayers(c)
		}
		return err
	})
	g.Go(func() error {
		c, err := s.api.Matches(ctx)
		if err == nil {
			s.replica.ApplyMatches(c)
		}
		return err
	})
	return g.Wait()
}

// Like shows the like at once, sends it, then repairs the shown count from
// the server's answer. On failure the optimistic count stays until the next
// clip-stats snapshot. The returned count is what should be displayed.
func (s *Syncer) Like(ctx context.Context, clipID string) (int64, error) {
	return s.increment(ctx, clipID, CounterLikes, s.api.Like)
}

// View is Like for the view counter.
func (s *Syncer) View(ctx context.Context, clipID string) (int64, error) {
	return s.increment(ctx, clipID, CounterViews, s.api.View)
}

func (s *Syncer) increment(ctx context.Context, clipID string, counter Counter, send func(context.Context, string) (int64, Stamp, error)) (int64, error) {
	arena := s.replica.Arena()
	tk, shown := arena.Begin(clipID, counter)
	s.replica.notifyCounters()

	persisted, stamp, err := send(ctx, clipID)
	switch {
	case err == nil:
		shown = s.replica.confirm(tk, persisted, stamp)
	case IsNotFound(err):
		arena.Forget(tk)
		shown = 0
		if c, ok := arena.Get(clipID); ok {
			shown = counterValue(c, counter)
		}
	default:
		shown = arena.Fail(tk)
		s.logger.Warn("counter update failed, keeping optimistic value",
			"clip_id", clipID, "counter", counter, "shown", shown, "error", err)
	}
	s.replica.notifyCounters()
	return shown, err
}

type syncHandler struct {
	s *Syncer
}

// OnConnect refetches everything: frames missed while disconnected are gone.
// Frames arriving meanwhile are applied as they come; the version gate keeps
// whichever of a push and a fetched snapshot is newer.
func (h syncHandler) OnConnect(ctx context.Context) {
	if err := h.s.Refresh(ctx); err != nil {
		h.s.logger.Warn("refetch after connect incomplete", "error", err)
	}
}

func (h syncHandler) OnMessage(msg broadcast.Message) {
	if err := h.s.replica.ApplyMessage(msg); err != nil {
		h.s.logger.Warn("pushed frame rejected", "type", msg.Type, "error", err)
	}
}

func (h syncHandler) OnDisconnect(err error) {
	h.s.logger.Warn("subscription down, polling only", "error", err)
}
