package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/waste-to-wealth/server/internal/agent/model"
	"github.com/waste-to-wealth/server/internal/metrics"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Runner runs one query through the analysis pipeline.
type Runner interface {
	Run(ctx context.Context, in model.QueryInput) (model.WasteQueryState, error)
}

// Server exposes the pipeline over HTTP.
type Server struct {
	runner Runner
	ledger model.UsageLedger
	now    func() time.Time
	mux    *http.ServeMux
}

// NewServer registers the routes. ledger may be nil, in which case the usage
// endpoint answers 503.
func NewServer(runner Runner, ledger model.UsageLedger) (*Server, error) {
	if runner == nil {
		return nil, errors.New("runner is nil")
	}
	s := &Server{
		runner: runner,
		ledger: ledger,
		now:    time.Now,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/usage", s.handleUsage)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", metrics.Handler())
	return s, nil
}

// Handler returns the mux wrapped in the request id, CORS and metrics middleware.
func (s *Server) Handler() http.Handler {
	return withRequestID(withCORS(withMetrics(s.mux)))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logx.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logx.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
