package replica

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-portal/broadcast"
	"github.com/Dosada05/league-portal/metrics"
	"github.com/Dosada05/league-portal/models"
)

const (
	versionHeader   = "X-Collection-Version"
	epochHeader     = "X-Server-Epoch"
	maxResponseSize = 16 << 20
)

// Stamp places a read in the server's history. Versions only compare within
// one epoch; a server restart begins a new epoch counting from zero.
type Stamp struct {
	Epoch   string
	Version uint64
}

// Collection is one kind as the server last described it.
type Collection[T any] struct {
	Stamp
	Items []T
}

type response struct {
	body  []byte
	stamp Stamp
}

// APIClient reads league collections over HTTP. Every call is bounded by the
// client timeout and goes through a circuit breaker so a dead server is not
// hammered by the pollers.
type APIClient struct {
	base   *url.URL
	http   *http.Client
	cb     *gobreaker.CircuitBreaker[response]
	logger *slog.Logger
}

func NewAPIClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*APIClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}

	logger = logger.With("component", "replica_client")
	cb := gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:        "league-api",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return !serverFault(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &APIClient{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		cb:     cb,
		logger: logger,
	}, nil
}

// WebSocketURL is the subscription endpoint for channels on the same host.
func (c *APIClient) WebSocketURL(channels []broadcast.Channel) string {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	if len(channels) > 0 {
		names := make([]string, len(channels))
		for i, ch := range channels {
			names[i] = string(ch)
		}
		u.RawQuery = url.Values{"channels": {strings.Join(names, ",")}}.Encode()
	}
	return u.String()
}

func (c *APIClient) do(ctx context.Context, op, method, path string) (response, error) {
	res, err := c.cb.Execute(func() (response, error) {
		return c.roundTrip(ctx, method, path)
	})
	if err != nil {
		metrics.ReplicaFetches.WithLabelValues(op, "error").Inc()
		return response{}, &TransportError{Op: op, Err: err}
	}
	metrics.ReplicaFetches.WithLabelValues(op, "ok").Inc()
	return res, nil
}

func (c *APIClient) roundTrip(ctx context.Context, method, path string) (response, error) {
	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return response{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Code: resp.StatusCode}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			se.Message = envelope.Error
		}
		return response{}, se
	}

	stamp := Stamp{Epoch: resp.Header.Get(epochHeader)}
	if raw := resp.Header.Get(versionHeader); raw != "" {
		if stamp.Version, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return response{}, fmt.Errorf("bad %s header %q", versionHeader, raw)
		}
	}
	return response{body: body, stamp: stamp}, nil
}

func fetch[T any](ctx context.Context, c *APIClient, op, path string) (T, Stamp, error) {
	var out T
	res, err := c.do(ctx, op, http.MethodGet, path)
	if err != nil {
		return out, Stamp{}, err
	}
	if err := json.Unmarshal(res.body, &out); err != nil {
		return out, Stamp{}, &TransportError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return out, res.stamp, nil
}

func fetchCollection[T any](ctx context.Context, c *APIClient, op, path string) (Collection[T], error) {
	items, stamp, err := fetch[[]T](ctx, c, op, path)
	if err != nil {
		return Collection[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	return Collection[T]{Stamp: stamp, Items: items}, nil
}

func (c *APIClient) Teams(ctx context.Context) (Collection[models.Team], error) {
	return fetchCollection[models.Team](ctx, c, "teams", "/api/teams")
}

func (c *APIClient) Clubs(ctx context.Context) (Collection[models.Club], error) {
	return fetchCollection[models.Club](ctx, c, "clubs", "/api/clubs")
}

func (c *APIClient) Players(ctx context.Context) (Collection[models.Player], error) {
	return fetchCollection[models.Player](ctx, c, "players", "/api/players")
}

func (c *APIClient) Matches(ctx context.Context) (Collection[models.Match], error) {
	return fetchCollection[models.Match](ctx, c, "matches", "/api/matches")
}

func (c *APIClient) Settings(ctx context.Context) (models.Settings, error) {
	s, _, err := fetch[models.Settings](ctx, c, "settings", "/api/settings")
	return s, err
}

// Bracket returns nil when no bracket has been drawn.
func (c *APIClient) Bracket(ctx context.Context) (*models.Bracket, Stamp, error) {
	return fetch[*models.Bracket](ctx, c, "bracket", "/api/playoffs/bracket")
}

// ClipStats reads the aggregate and the per-clip counters in parallel. The
// two reads are separate requests, so the lower of their versions is
// reported: a later snapshot always replaces the result. Reads that straddle
// a server restart are rejected.
func (c *APIClient) ClipStats(ctx context.Context) (models.ClipStatsSnapshot, Stamp, error) {
	var snap models.ClipStatsSnapshot
	var statsStamp, countStamp Stamp
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Stats, statsStamp, err = fetch[models.ClipStats](gctx, c, "stats", "/api/stats")
		return err
	})
	g.Go(func() error {
		var err error
		snap.Counters, countStamp, err = fetch[[]models.ClipCounter](gctx, c, "counters", "/api/clips/counters")
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ClipStatsSnapshot{}, Stamp{}, err
	}
	if statsStamp.Epoch != countStamp.Epoch {
		return models.ClipStatsSnapshot{}, Stamp{}, &TransportError{Op: "clip-stats", Err: errors.New("server restarted between reads")}
	}
	return snap, Stamp{Epoch: statsStamp.Epoch, Version: min(statsStamp.Version, countStamp.Version)}, nil
}

// Like registers a like and returns the count the server persisted with the
// clips version that count belongs to.
func (c *APIClient) Like(ctx context.Context, clipID string) (int64, Stamp, error) {
	return c.increment(ctx, "like", clipID, "likes")
}

// View registers a view and returns the count the server persisted.
func (c *APIClient) View(ctx context.Context, clipID string) (int64, Stamp, error) {
	return c.increment(ctx, "view", clipID, "views")
}

func (c *APIClient) increment(ctx context.Context, op, clipID, field string) (int64, Stamp, error) {
	if clipID == "" {
		return 0, Stamp{}, &TransportError{Op: op, Err: errors.New("empty clip id")}
	}
	res, err := c.do(ctx, op, http.MethodPost, "/api/clips/"+url.PathEscape(clipID)+"/"+op)
	if err != nil {
		return 0, Stamp{}, err
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(res.body, &body); err != nil {
		return 0, Stamp{}, &TransportError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	var value int64
	if err := json.Unmarshal(body[field], &value); err != nil {
		return 0, Stamp{}, &TransportError{Op: op, Err: fmt.Errorf("decode %s: %w", field, err)}
	}
	return value, res.stamp, nil
}
