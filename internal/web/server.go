// Package web provides the HTTP server and handlers for the Elucidate
// dream questionnaire.
package web

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/roasbeef/elucidate/internal/diary"
	"github.com/roasbeef/elucidate/internal/interpret"
	"github.com/roasbeef/elucidate/internal/questionnaire"
	"github.com/roasbeef/elucidate/internal/ratelimit"
	"github.com/roasbeef/elucidate/internal/session"
)

// Per-route request ceilings, per client IP per minute.
const (
	startRateLimit    = 10
	questionRateLimit = 30
	reviewRateLimit   = 15
)

// DiaryStore is the persistence seam for the dream diary. The SQLite store
// is the production implementation; tests inject an in-memory fake.
type DiaryStore interface {
	Append(ctx context.Context, sessionID, prompt, interpretation string) error
	ListBySession(ctx context.Context, sessionID string) ([]diary.Entry, error)
}

// Config holds configuration for the web server.
type Config struct {
	Addr string

	// SecretKey signs session cookies. Empty means a random per-process
	// key.
	SecretKey string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr: ":8080",
	}
}

// Server is the HTTP server for the questionnaire wizard.
type Server struct {
	sessions session.Store
	cookies  *session.CookieCodec
	interp   *interpret.Service
	jobs     *interpret.Manager
	diary    DiaryStore
	hub      *Hub

	tmpl *template.Template
	mux  *http.ServeMux
	srv  *http.Server
	addr string
	log  *slog.Logger

	limiters []*ratelimit.Limiter
}

// NewServer creates a new web server wiring the wizard handlers together.
func NewServer(cfg *Config, sessions session.Store, interp *interpret.Service,
	jobs *interpret.Manager, diaryStore DiaryStore,
	log *slog.Logger) (*Server, error) {

	if log == nil {
		log = slog.Default()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		sessions: sessions,
		cookies:  session.NewCookieCodec(cfg.SecretKey),
		interp:   interp,
		jobs:     jobs,
		diary:    diaryStore,
		hub:      NewHub(log),
		tmpl:     tmpl,
		mux:      http.NewServeMux(),
		addr:     cfg.Addr,
		log:      log,
	}

	// Completed jobs feed the diary and wake any loading page waiting on
	// them.
	jobs.SetOnComplete(s.onJobComplete)

	s.registerRoutes()

	return s, nil
}

// registerRoutes wires every wizard route, applying per-route rate limits.
func (s *Server) registerRoutes() {
	limited := func(perMinute int, h http.HandlerFunc) http.HandlerFunc {
		l := ratelimit.NewPerMinute(perMinute, s.log)
		s.limiters = append(s.limiters, l)
		return l.Middleware(h)
	}

	s.mux.HandleFunc("/", s.handleHome)
	s.mux.HandleFunc("/start", limited(startRateLimit, s.handleStart))
	s.mux.HandleFunc("/question", limited(questionRateLimit, s.handleQuestion))
	s.mux.HandleFunc("/review", limited(reviewRateLimit, s.handleReview))
	s.mux.HandleFunc("/loading", s.handleLoading)
	s.mux.HandleFunc("/result", s.handleResult)
	s.mux.HandleFunc("/diary", s.handleDiary)

	// Completion signals for the loading step.
	s.mux.HandleFunc("/api/v1/jobs/", s.handleJobStatus)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info("Starting web server", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	for _, l := range s.limiters {
		l.Close()
	}

	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// onJobComplete runs after each generation job finishes: append the diary
// entry for real interpretations, then push the completion signal.
func (s *Server) onJobComplete(job interpret.Job) {
	// Fallback responses are not part of the visitor's diary.
	if job.Text != interpret.FallbackMessage {
		ctx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second,
		)
		defer cancel()

		err := s.diary.Append(ctx, job.SessionID, job.Prompt, job.Text)
		if err != nil {
			s.log.Error("Failed to append diary entry",
				"session_id", job.SessionID, "err", err)
		}
	}

	s.hub.NotifyDone(job.ID)
}

// state returns the visitor's wizard state, defaulting to a fresh one when
// none exists yet.
func (s *Server) state(r *http.Request, sessionID string) session.State {
	if st, ok := s.sessions.Get(r.Context(), sessionID); ok {
		return st
	}

	return session.NewState(questionnaire.Count())
}

// render executes the named page template, logging failures.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("Failed to render template",
			"template", name, "err", err)
	}
}
