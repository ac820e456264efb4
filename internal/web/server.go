package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"StakePilot/internal/ledger"
	"StakePilot/internal/tracker"
)

// Server exposes a small read-only HTTP API over the derived state for
// dashboards and health checks. All mutation goes through the bot itself.
type Server struct {
	ledger  *ledger.Ledger
	tracker *tracker.Tracker
	http    *http.Server
}

// New builds the server on addr.
func New(addr string, lg *ledger.Ledger, tr *tracker.Tracker) *Server {
	s := &Server{ledger: lg, tracker: tr}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/events", s.handleEvents)
		r.Get("/active-bet", s.handleActiveBet)
		r.Get("/history", s.handleHistory)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves in a background goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] http server listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.ledger.Stats()
	if err != nil {
		writeError(w, err)
		return
	}
	nextStake, err := s.ledger.NextStake()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ledger.Stats
		NextStake string `json:"next_stake"`
	}{Stats: stats, NextStake: nextStake.String()})
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	events, err := s.ledger.Events()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleActiveBet(w http.ResponseWriter, _ *http.Request) {
	bet, err := s.tracker.ActiveBet()
	if err != nil {
		writeError(w, err)
		return
	}
	if bet == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, bet)
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	bets, err := s.tracker.History()
	if err != nil {
		writeError(w, err)
		return
	}
	if bets == nil {
		bets = []tracker.SettledBet{}
	}
	writeJSON(w, http.StatusOK, bets)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	log.Printf("[ERROR] api: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
