package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmaher42/athens/internal/logger"
	"github.com/dmaher42/athens/internal/metrics"
	"github.com/dmaher42/athens/pkg/collision"
	"github.com/dmaher42/athens/pkg/scene2d"
	"github.com/dmaher42/athens/pkg/validation"
)

// Server exposes one collision.Geometry over HTTP.
type Server struct {
	geometry    *collision.Geometry
	configCheck *validation.Report
	port        int
	log         *slog.Logger
}

// New creates a server for g. configCheck is the configuration report
// merged into /api/validation; it may be nil.
func New(g *collision.Geometry, configCheck *validation.Report, port int) *Server {
	return &Server{
		geometry:    g,
		configCheck: configCheck,
		port:        port,
		log:         logger.L(),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/walkable", s.handleWalkable)
	mux.HandleFunc("GET /api/locations", s.handleLocations)
	mux.HandleFunc("GET /api/scene", s.handleScene)
	mux.HandleFunc("GET /api/validation", s.handleValidation)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("POST /api/slope", s.handleSlope)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /{$}", s.handleIndex)

	return logger.AccessMiddleware(s.log)(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server_start", "addr", "http://localhost"+srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("server_stop")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Reload loads the configured source and records load metrics.
func (s *Server) Reload(ctx context.Context) (*collision.CityModel, error) {
	start := time.Now()
	m, err := s.geometry.Load(ctx, collision.LoadOptions{})
	metrics.LoadDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.LoadFailuresTotal.Inc()
		return nil, err
	}
	for layer, n := range m.Counts() {
		metrics.Polygons.WithLabelValues(string(layer)).Set(float64(n))
	}
	return m, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>walkmap</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>walkmap</h1>
<p>Query <code>/api/walkable?x=0&amp;y=0</code> or fetch <code>/api/scene</code> for the collision layers.</p>
</div>
</body></html>`)
}

type walkableResponse struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Walkable bool    `json:"walkable"`
	Reason   string  `json:"reason,omitempty"`
	Snapshot string  `json:"snapshot,omitempty"`
}

func (s *Server) handleWalkable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "x and y must be numbers")
		return
	}

	v := s.geometry.Probe(x, y)
	metrics.QueriesTotal.Inc()
	if !v.Walkable {
		metrics.BlockedTotal.WithLabelValues(v.Reason).Inc()
	}

	resp := walkableResponse{X: x, Y: y, Walkable: v.Walkable, Reason: v.Reason}
	if m := s.geometry.Snapshot(); m != nil {
		resp.Snapshot = m.ID
	}
	// NaN and Inf are not representable in JSON.
	if v.Reason == collision.ReasonNonFinite {
		resp.X, resp.Y = 0, 0
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLocations(w http.ResponseWriter, _ *http.Request) {
	locs := s.geometry.Locations()
	if locs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, locs)
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	m := s.geometry.Snapshot()
	if m == nil {
		writeError(w, http.StatusServiceUnavailable, "geometry not loaded")
		return
	}
	writeJSON(w, http.StatusOK, scene2d.Assemble(m))
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	report := validation.NewReport()
	report.Merge(s.configCheck)
	report.Merge(s.geometry.Report())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	m, err := s.Reload(r.Context())
	if err != nil {
		s.log.Warn("reload_failed", "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	counts := make(map[string]int)
	for layer, n := range m.Counts() {
		counts[string(layer)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot": m.ID,
		"counts":   counts,
		"warnings": len(m.Report.Warnings),
	})
}

type slopeRequest struct {
	// Slope is a constant slope for every cliff zone; null detaches the
	// sampler. A missing threshold keeps the current one.
	Slope     *float64 `json:"slope"`
	Threshold *float64 `json:"threshold"`
}

func (s *Server) handleSlope(w http.ResponseWriter, r *http.Request) {
	var req slopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	threshold := collision.KeepThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if req.Slope == nil {
		s.geometry.SetSlopeMap(nil, threshold)
	} else {
		s.geometry.SetSlopeMap(collision.ConstantSlope(*req.Slope), threshold)
	}
	s.log.Info("slope_map_set", "attached", s.geometry.HasSlopeMap(), "threshold", s.geometry.SlopeThreshold())
	writeJSON(w, http.StatusOK, map[string]any{
		"attached":  s.geometry.HasSlopeMap(),
		"threshold": s.geometry.SlopeThreshold(),
	})
}
