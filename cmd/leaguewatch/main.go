// Command leaguewatch follows a running league server through a client
// replica and logs standings and clip stats as they change.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Dosada05/league-portal/config"
	"github.com/Dosada05/league-portal/logging"
	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/replica"
	"github.com/Dosada05/league-portal/standings"
	"github.com/Dosada05/league-portal/supervisor"
)

func main() {
	if err := run(); err != nil {
		slog.Error("leaguewatch failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWatch()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	syncer, err := replica.NewSyncer(cfg.ServerURL, replica.Options{
		RequestTimeout:        cfg.RequestTimeout,
		StatsPollInterval:     cfg.StatsPollInterval,
		StandingsPollInterval: cfg.StandingsPollInterval,
		ReconnectMin:          cfg.ReconnectMin,
		ReconnectMax:          cfg.ReconnectMax,
		Channels:              cfg.SubscribedChannels(),
		LeaderboardLimit:      cfg.LeaderboardLimit,
	}, logger)
	if err != nil {
		return err
	}

	w := &watcher{replica: syncer.Replica(), logger: logger}
	syncer.Replica().OnChange(w.handle)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree := supervisor.NewTree("leaguewatch", logger, supervisor.DefaultTreeConfig())
	tree.AddCore(supervisor.NewFuncService("replica-syncer", syncer.Run))

	logger.Info("following league", slog.String("server", cfg.ServerURL), slog.Int("channels", len(cfg.SubscribedChannels())))
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor stopped: %w", err)
	}
	return nil
}

// watcher logs only when what it would print actually differs.
type watcher struct {
	replica *replica.Replica
	logger  *slog.Logger

	mu            sync.Mutex
	leagueVersion uint64
	stats         models.ClipStats
}

func (w *watcher) handle(ev replica.Event) {
	switch ev.Topic {
	case replica.TopicStandings:
		w.logStandings(ev.Version)
	case replica.TopicClipStats:
		w.logStats()
	case replica.TopicPlayerStat:
		w.logger.Info("player stat changed",
			slog.String("player", ev.Stat.PlayerName),
			slog.String("stat", string(ev.Stat.StatType)),
			slog.Int("value", ev.Stat.Value))
	case replica.TopicPlayoffs:
		if b, _ := w.replica.Bracket(); b != nil && b.Champion() != nil {
			w.logger.Info("playoff champion decided", slog.String("team_id", *b.Champion()))
		}
	}
}

func (w *watcher) logStandings(version uint64) {
	w.mu.Lock()
	if version == w.leagueVersion {
		w.mu.Unlock()
		return
	}
	w.leagueVersion = version
	w.mu.Unlock()

	table := w.replica.Standings()
	scorers, totals := w.replica.Leaderboard(standings.MetricGoals)
	w.logger.Info("standings updated",
		slog.Uint64("version", version),
		slog.Int("teams", len(table)),
		slog.Int("finished_matches", totals.FinishedMatches),
		slog.Float64("avg_goals", totals.AverageGoalsPerMatch))
	for _, row := range table {
		w.logger.Info("table",
			slog.Int("pos", row.Position),
			slog.String("team", row.TeamName),
			slog.Int("pts", row.Points),
			slog.Int("gd", row.GoalDifference),
			slog.String("zone", string(row.Zone)))
	}
	if len(scorers) > 0 {
		w.logger.Info("top scorer", slog.String("player", scorers[0].PlayerName), slog.Int("goals", scorers[0].Value))
	}
}

func (w *watcher) logStats() {
	stats, version := w.replica.ClipStats()
	w.mu.Lock()
	if stats == w.stats {
		w.mu.Unlock()
		return
	}
	w.stats = stats
	w.mu.Unlock()

	w.logger.Info("clip stats",
		slog.Uint64("version", version),
		slog.Int("clips", stats.TotalClips),
		slog.Int64("views", stats.TotalViews),
		slog.Int64("likes", stats.TotalLikes))
}
