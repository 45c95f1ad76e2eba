// Package host is the bridge between the engine and its embedding host: a
// chi control API, a websocket hub that streams published frames to
// presenters and accepts input messages back, and prometheus metrics.
package host

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"zap-engine/internal/config"
	"zap-engine/internal/engine"
)

// Server wires the control API and the frame hub around a runner.
type Server struct {
	runner *engine.Runner
	hub    *Hub
	cfg    config.HostConfig
	router chi.Router
}

// NewServer builds the server and its routes.
func NewServer(runner *engine.Runner, cfg config.HostConfig) *Server {
	s := &Server{
		runner: runner,
		hub:    NewHub(runner, cfg),
		cfg:    cfg,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/state", s.handleState)
	r.Post("/api/input", s.handleInput)
	r.Post("/api/stop", s.handleStop)
	r.Post("/api/resume", s.handleResume)
	r.Get("/ws", s.hub.HandleWS)

	s.router = r
	return s
}

// Hub exposes the frame hub so the runner's OnFrame hook can broadcast.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Router exposes the chi router (tests mount it on httptest servers).
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves the control API. Blocks.
func (s *Server) Start(addr string) error {
	log.Printf("🌐 Host API on http://localhost%s (ws: /ws)", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":      true,
		"running": s.runner.Running(),
		"frame":   s.runner.Frame(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	ctx := s.runner.Ctx()
	sent, dropped := s.hub.Stats()
	writeJSON(w, map[string]any{
		"frame":      s.runner.Frame(),
		"running":    s.runner.Running(),
		"entities":   ctx.Scene.Len(),
		"particles":  ctx.Effects.ParticleCount(),
		"lights":     ctx.Lights.Len(),
		"presenters": s.hub.ClientCount(),
		"framesSent": sent,
		"framesDropped": dropped,
	})
}

// handleInput injects a single host message over plain HTTP, handy for
// curl-driven debugging and hosts that skip the websocket.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var msg HostMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "bad message", http.StatusBadRequest)
		return
	}
	switch msg.Type {
	case MsgStop:
		s.runner.Stop()
	case MsgResume:
		s.runner.Start()
	default:
		ev, ok, err := msg.ToInputEvent()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if ok {
			s.runner.PushInput(ev)
		}
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.runner.Stop()
	writeJSON(w, map[string]any{"ok": true, "running": false})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.runner.Start()
	writeJSON(w, map[string]any{"ok": true, "running": true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ writeJSON: %v", err)
	}
}
