// Package devtools serves a read-only HTTP inspection surface over a
// registry: what styles, components, and environment values exist, their
// current contents, and a websocket stream of env value updates. It is off
// unless started explicitly; nothing in the library depends on it.
package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cascade-ui/cascade/pkg/registry"
)

// Server exposes a registry for inspection.
type Server struct {
	reg    *registry.Registry
	logger *slog.Logger

	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New creates a devtools server over reg.
func New(reg *registry.Registry) *Server {
	return &Server{
		reg:    reg,
		logger: slog.Default().With("component", "devtools"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local inspection tool; cross-origin pages may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/registry", func(r chi.Router) {
		r.Get("/styles", s.handleStyles)
		r.Get("/components", s.handleComponents)
		r.Get("/env", s.handleEnv)
	})
	r.Get("/watch", s.handleWatch)
	return r
}

// Start begins serving on addr. It blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("devtools listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleStyles(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]any)
	for _, name := range s.reg.StyleNames() {
		if table, ok := s.reg.Style(name); ok {
			out[name] = jsonSafe(map[string]any(table))
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleComponents(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]any)
	for _, name := range s.reg.ComponentNames() {
		comp, ok := s.reg.Component(name)
		if !ok {
			continue
		}
		table, err := comp.Inspect()
		if err != nil {
			out[name] = map[string]any{"error": err.Error()}
			continue
		}
		out[name] = jsonSafe(map[string]any(table))
	}
	writeJSON(w, out)
}

func (s *Server) handleEnv(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]any)
	for _, name := range s.reg.EnvNames() {
		if v, ok := s.reg.Env(name); ok {
			out[name] = jsonSafe(v.Get())
		}
	}
	writeJSON(w, out)
}

// watchEvent is one frame of the env update stream.
type watchEvent struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	env, ok := s.reg.Env(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown env value %q", name), http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The subscriber fires on whatever goroutine calls Set; updates are
	// handed to this handler through a buffered channel so the socket has a
	// single writer.
	updates := make(chan any, 16)
	unsubscribe := env.Bind(func(v any) {
		select {
		case updates <- v:
		default:
			s.logger.Warn("watch stream lagging, dropping update", "name", name)
		}
	})
	defer unsubscribe()

	// Reader goroutine, only to detect the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case v := <-updates:
			if err := conn.WriteJSON(watchEvent{Name: name, Value: jsonSafe(v)}); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// jsonSafe converts arbitrary registry values into something the JSON
// encoder accepts. Functions, reactive handles, and widget handles render as
// their string form.
func jsonSafe(v any) any {
	switch val := v.(type) {
	case nil, bool, string, int, int64, uint, float32, float64:
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = jsonSafe(e)
		}
		return out
	case registry.Config:
		return jsonSafe(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = jsonSafe(e)
		}
		return out
	default:
		if _, err := json.Marshal(val); err == nil {
			return val
		}
		return fmt.Sprintf("%v", val)
	}
}
