package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dosada05/league-portal/handlers"
	"github.com/Dosada05/league-portal/middleware"
	"github.com/Dosada05/league-portal/services"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Team      *handlers.TeamHandler
	Club      *handlers.ClubHandler
	Player    *handlers.PlayerHandler
	Match     *handlers.MatchHandler
	Clip      *handlers.ClipHandler
	Standings *handlers.StandingsHandler
	Playoff   *handlers.PlayoffHandler
	Admin     *handlers.AdminHandler
	Dashboard *handlers.DashboardHandler
	WebSocket *handlers.WebSocketHandler
}

type Options struct {
	AllowedOrigins []string
	// CounterRateLimit is the per-IP budget per minute for views, likes and
	// uploads. Zero disables the limit.
	CounterRateLimit int
	RequestTimeout   time.Duration
	// Epoch is sent on every API response so clients can tell a restarted
	// server's versions from the previous run's.
	Epoch string
	// UploadDir is served under /uploads when the local uploader is in use.
	UploadDir string
	Logger    *slog.Logger
}

func SetupRoutes(router *chi.Mux, h Handlers, auth services.AuthService, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{handlers.VersionHeader, handlers.EpochHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/ws", h.WebSocket.ServeWs)
	if opts.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir)))
		router.Handle("/uploads/*", fs)
	}

	limit := rateLimit(opts.CounterRateLimit)
	admin := func(r chi.Router) {
		r.Use(middleware.Authenticate(auth))
		r.Use(middleware.Authorize(auth, services.RoleAdmin))
	}

	router.Route("/api", func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
		}
		if opts.Epoch != "" {
			r.Use(chiMiddleware.SetHeader(handlers.EpochHeader, opts.Epoch))
		}

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.Team.List)
			r.Get("/{teamID}", h.Team.GetByID)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Post("/", h.Team.Create)
				r.Put("/{teamID}", h.Team.Update)
				r.Delete("/{teamID}", h.Team.Delete)
				r.With(limit).Post("/{teamID}/logo", h.Team.UploadLogo)
			})
		})

		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", h.Club.List)
			r.Get("/{clubID}", h.Club.GetByID)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Post("/", h.Club.Create)
				r.Put("/{clubID}", h.Club.Update)
				r.Delete("/{clubID}", h.Club.Delete)
				r.With(limit).Post("/{clubID}/logo", h.Club.UploadLogo)
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.List)
			r.Get("/{playerID}", h.Player.GetByID)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Post("/", h.Player.Create)
				r.Put("/{playerID}", h.Player.Update)
				r.Delete("/{playerID}", h.Player.Delete)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.Match.List)
			r.Get("/{matchID}", h.Match.GetByID)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Post("/", h.Match.Create)
				r.Post("/bulk", h.Match.CreateBulk)
				r.Post("/generate", h.Match.Generate)
				r.Delete("/", h.Match.DeleteAll)
				r.Put("/{matchID}", h.Match.Update)
				r.Delete("/{matchID}", h.Match.Delete)
			})
		})

		r.Route("/clips", func(r chi.Router) {
			r.Get("/", h.Clip.List)
			r.Get("/counters", h.Clip.Counters)
			r.Get("/{clipID}", h.Clip.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(limit)
				r.Post("/{clipID}/view", h.Clip.View)
				r.Post("/{clipID}/like", h.Clip.Like)
			})

			r.Group(func(r chi.Router) {
				admin(r)
				r.With(limit).Post("/", h.Clip.Upload)
				r.Delete("/{clipID}", h.Clip.Delete)
			})
		})

		r.Get("/stats", h.Clip.Stats)
		r.Get("/standings", h.Standings.Standings)
		r.Get("/leaderboard", h.Standings.Leaderboard)
		r.Get("/settings", h.Standings.Settings)

		r.Route("/playoffs", func(r chi.Router) {
			r.Get("/bracket", h.Playoff.GetBracket)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Post("/bracket", h.Playoff.CreateBracket)
				r.Delete("/bracket", h.Playoff.DeleteBracket)
				r.Put("/matches/{matchID}", h.Playoff.RecordResult)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(limit).Post("/login", h.Admin.Login)

			r.Group(func(r chi.Router) {
				admin(r)
				r.Delete("/cleanup", h.Admin.Cleanup)
			})
		})

		r.Get("/dashboard", h.Dashboard.Stats)
	})
}

func rateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
		}),
	)
}
