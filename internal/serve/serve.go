// Package serve exposes stored geometry over the three read-only endpoints
// the simulation fetches from.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/store"
	"github.com/msalah0e/lattice/internal/ui"
)

// Config holds server configuration.
type Config struct {
	Addr    string
	Name    string // stored geometry to serve
	LogFile string // request log; empty disables logging
	Verbose bool
}

// RequestLog represents a logged request.
type RequestLog struct {
	Timestamp time.Time `json:"ts"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	Duration  float64   `json:"duration_ms"`
	Bytes     int       `json:"bytes"`
}

// Stats tracks request counts.
type Stats struct {
	TotalRequests int64            `json:"total_requests"`
	Failures      int64            `json:"failures"`
	StartedAt     time.Time        `json:"started_at"`
	ByPath        map[string]int64 `json:"by_path"`
}

// Server serves one named geometry from a store.
type Server struct {
	cfg     Config
	store   store.Store
	logFile *os.File
	mu      sync.Mutex
	stats   Stats
}

// New creates a server over an initialised store.
func New(cfg Config, st store.Store) *Server {
	if cfg.Name == "" {
		cfg.Name = store.DefaultName
	}
	return &Server{
		cfg:   cfg,
		store: st,
		stats: Stats{
			StartedAt: time.Now(),
			ByPath:    make(map[string]int64),
		},
	}
}

// Seed stores g under the served name unless a geometry is already there.
// It reports whether it wrote.
func (s *Server) Seed(ctx context.Context, g *geometry.Geometry) (bool, error) {
	_, ok, err := s.store.LoadGeometry(ctx, s.cfg.Name)
	if err != nil || ok {
		return false, err
	}
	if err := s.store.SaveGeometry(ctx, store.FromGeometry(s.cfg.Name, g)); err != nil {
		return false, fmt.Errorf("seed geometry: %w", err)
	}
	return true, nil
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(geometry.PathNodes, s.logged(s.handleNodes))
	mux.HandleFunc(geometry.PathStructuralEdges, s.logged(s.handleEdges))
	mux.HandleFunc(geometry.PathGridState, s.logged(s.handleGridState))
	mux.HandleFunc("/lattice/status", s.handleStatus)
	mux.HandleFunc("/lattice/stats", s.handleStats)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.cfg.LogFile != "" {
		_ = os.MkdirAll(filepath.Dir(s.cfg.LogFile), 0o755)
		f, err := os.OpenFile(s.cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		s.logFile = f
		defer f.Close()
	}

	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) record(ctx context.Context) (store.Record, bool, error) {
	return s.store.LoadGeometry(ctx, s.cfg.Name)
}

// payload loads the served record and renders one resource from it.
func (s *Server) payload(w http.ResponseWriter, r *http.Request, render func(store.Record) ([]byte, error)) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rec, ok, err := s.record(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, fmt.Sprintf("geometry %q not found", s.cfg.Name), http.StatusNotFound)
		return
	}
	data, err := render(rec)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	s.payload(w, r, func(rec store.Record) ([]byte, error) { return geometry.EncodeNodes(rec.Nodes) })
}

func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	s.payload(w, r, func(rec store.Record) ([]byte, error) { return geometry.EncodeEdges(rec.Edges) })
}

// handleGridState serves the boundary radius. Clients currently ignore it.
func (s *Server) handleGridState(w http.ResponseWriter, r *http.Request) {
	s.payload(w, r, func(rec store.Record) ([]byte, error) { return geometry.EncodeGridState(rec.GridState) })
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "running",
		"geometry": s.cfg.Name,
		"addr":     s.cfg.Addr,
		"uptime":   time.Since(s.stats.StartedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.stats)
}

// StatsSnapshot returns a copy of the request counters.
func (s *Server) StatsSnapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.ByPath = make(map[string]int64, len(s.stats.ByPath))
	for k, v := range s.stats.ByPath {
		out.ByPath[k] = v
	}
	return out
}

func (s *Server) logged(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}
		h(rec, r)

		entry := RequestLog{
			Timestamp: start,
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    rec.status(),
			Duration:  float64(time.Since(start).Microseconds()) / 1000,
			Bytes:     rec.bytes,
		}

		s.mu.Lock()
		s.stats.TotalRequests++
		s.stats.ByPath[r.URL.Path]++
		if entry.Status >= 400 {
			s.stats.Failures++
		}
		if s.logFile != nil {
			_ = json.NewEncoder(s.logFile).Encode(entry)
		}
		s.mu.Unlock()

		if s.cfg.Verbose {
			ui.Logf("%s %s → %d (%.1fms)", r.Method, r.URL.Path, entry.Status, entry.Duration)
		}
	}
}

// ReadLogs returns the most recent n entries of a request log.
func ReadLogs(path string, n int) ([]RequestLog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var all []RequestLog
	dec := json.NewDecoder(f)
	for dec.More() {
		var entry RequestLog
		if err := dec.Decode(&entry); err != nil {
			break
		}
		all = append(all, entry)
	}

	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// LogPath is the default request log location.
func LogPath() string {
	return filepath.Join(config.ConfigDir(), "serve.jsonl")
}

// responseRecorder captures the status code and body size.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) status() int {
	if r.statusCode == 0 {
		return http.StatusOK
	}
	return r.statusCode
}
