// Package server exposes tutoring sessions over a JSON HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/parlo/internal/llm"
	"github.com/abhisek/parlo/internal/logging"
	"github.com/abhisek/parlo/internal/metrics"
	"github.com/abhisek/parlo/internal/scenario"
	"github.com/abhisek/parlo/internal/store"
	"github.com/abhisek/parlo/internal/tutor"
)

// Registry defaults used when the matching Config field is zero.
const (
	DefaultIdleTimeout    = 2 * time.Hour
	DefaultEndedRetention = 15 * time.Minute
	DefaultMaxSessions    = 1000
)

// Config wires the server's dependencies. Metrics and Gatherer are optional.
type Config struct {
	Provider llm.Provider
	Sessions store.SessionRepo
	Catalog  *scenario.Catalog
	Tutor    tutor.Config
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	// IdleTimeout evicts a live session nobody has touched for this long.
	// Its store row is closed without a summary.
	IdleTimeout time.Duration

	// EndedRetention keeps an ended session so its summary can be read again.
	EndedRetention time.Duration

	// MaxSessions caps the registry. The least recently used entry goes first.
	MaxSessions int
}

type entry struct {
	sess     *tutor.Session
	storeID  int64
	lastSeen time.Time
	ended    bool
}

// Server keeps one tutor.Session per session key.
type Server struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// New creates a server with an empty session registry.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.EndedRetention <= 0 {
		cfg.EndedRetention = DefaultEndedRetention
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/scenarios", s.listScenarios)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Post("/turns", s.sendTurn)
				r.Post("/end", s.endSession)
				r.Get("/mistakes", s.listMistakes)
			})
		})
	})
	return r
}

// requestLogger logs each request and records HTTP metrics by route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithRequestID(r.Context(), chimiddleware.GetReqID(r.Context()))
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		if m := s.cfg.Metrics; m != nil {
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
		}
		logging.FromContext(ctx, s.logger).Info("http request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", elapsed))
	})
}

// register adds a started session, evicting expired entries and, when the
// registry is full, the least recently used one.
func (s *Server) register(ctx context.Context, key string, sess *tutor.Session) {
	storeID := sess.StoreID()

	s.mu.Lock()
	now := s.now()
	evicted := s.expiredLocked(now)
	for len(s.sessions) >= s.cfg.MaxSessions {
		evicted = append(evicted, s.evictOldestLocked())
	}
	s.sessions[key] = &entry{sess: sess, storeID: storeID, lastSeen: now}
	s.mu.Unlock()

	s.closeEvicted(ctx, evicted)
}

// lookup returns the session for key and marks it as used.
func (s *Server) lookup(key string) (*tutor.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[key]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(e, now) {
		// Left for the next sweep to close.
		return nil, false
	}
	e.lastSeen = now
	return e.sess, true
}

// markEnded starts the retention window of an ended session.
func (s *Server) markEnded(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[key]; ok {
		e.ended = true
		e.lastSeen = s.now()
	}
}

// Prune drops expired sessions and returns how many were removed. Live
// sessions that idled out have their store rows closed.
func (s *Server) Prune(ctx context.Context) int {
	s.mu.Lock()
	evicted := s.expiredLocked(s.now())
	s.mu.Unlock()

	s.closeEvicted(ctx, evicted)
	return len(evicted)
}

// Len returns the number of registered sessions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) expired(e *entry, now time.Time) bool {
	ttl := s.cfg.IdleTimeout
	if e.ended {
		ttl = s.cfg.EndedRetention
	}
	return now.Sub(e.lastSeen) > ttl
}

func (s *Server) expiredLocked(now time.Time) []*entry {
	var out []*entry
	for key, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, key)
			out = append(out, e)
		}
	}
	return out
}

func (s *Server) evictOldestLocked() *entry {
	var (
		oldestKey string
		oldest    *entry
	)
	for key, e := range s.sessions {
		if oldest == nil || e.lastSeen.Before(oldest.lastSeen) {
			oldestKey, oldest = key, e
		}
	}
	delete(s.sessions, oldestKey)
	return oldest
}

// closeEvicted ends the store rows of evicted sessions that never ended.
// It runs without s.mu held.
func (s *Server) closeEvicted(ctx context.Context, evicted []*entry) {
	for _, e := range evicted {
		if e.ended {
			continue
		}
		if err := s.cfg.Sessions.EndSession(ctx, e.storeID); err != nil {
			s.logger.Warn("close evicted session",
				slog.Int64("session_id", e.storeID),
				slog.Any("error", err))
			continue
		}
		s.logger.Info("evicted idle session", slog.Int64("session_id", e.storeID))
	}
}

func (s *Server) newSession(userID string) *tutor.Session {
	opts := []tutor.Option{tutor.WithLogger(s.logger)}
	if s.cfg.Metrics != nil {
		opts = append(opts, tutor.WithObserver(s.cfg.Metrics.SessionObserver()))
	}
	return tutor.NewSession(userID, s.cfg.Provider, s.cfg.Sessions, s.cfg.Tutor, opts...)
}
