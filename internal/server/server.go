// Package server serves a rendered report directory over HTTP for a bounded
// time, with health and metrics endpoints next to the files.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAddress = "0.0.0.0:9090"
	DefaultUptime  = time.Hour

	shutdownTimeout = 5 * time.Second
)

// Server is the report file server.
type Server struct {
	Dir     string
	Address string

	// Uptime bounds how long the server runs. Zero means until the context
	// is cancelled.
	Uptime time.Duration

	Metrics *Metrics
}

func New(dir, address string, uptime time.Duration, metrics *Metrics) *Server {
	if address == "" {
		address = DefaultAddress
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		Dir:     dir,
		Address: address,
		Uptime:  uptime,
		Metrics: metrics,
	}
}

// Handler routes "/" to the report files, plus /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s.instrument("files", http.FileServer(http.Dir(s.Dir))))
	mux.Handle("/metrics", s.instrument("metrics", s.Metrics.Handler()))
	mux.Handle("/healthz", s.instrument("healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "ok")
	})))
	return mux
}

// Run serves until ctx is done or the uptime elapses, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.Uptime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Uptime)
		defer cancel()
	}

	srv := &http.Server{
		Addr:              s.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("The report server is available in http://%s, open your browser and navigate to results.", s.Address)
		if s.Uptime > 0 {
			log.Infof("The server will stop in %s.", s.Uptime)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to start the report server at address %s: %w", s.Address, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Stopping the report server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(handler string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.Metrics.requests.WithLabelValues(handler, strconv.Itoa(rec.code)).Inc()
		log.Debugf("%s %s %d", r.Method, r.URL.Path, rec.code)
	})
}
