// Package server exposes the mirrored emoji over HTTP.
package server

import (
	"context"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/emoji-mirror/pkg/errors"
	"github.com/sidkik/emoji-mirror/pkg/store"
)

// opsPrefix is where the operational endpoints live. Emoji names never
// contain a slash, so this can't collide with a mirrored file.
const opsPrefix = "/-/"

const shutdownTimeout = 10 * time.Second

// Trigger starts a synchronization pass in the background. It returns false
// if a pass is already running.
type Trigger func(ctx context.Context) bool

// Config configures the HTTP server.
type Config struct {
	// Address is the address to listen on, e.g. ":3000".
	Address string

	// BasePath is the URL path the data directory is served under.
	BasePath string

	// Fs and Dir locate the files to serve.
	Fs  afero.Fs
	Dir string

	// Gatherer provides the metrics served at /-/metrics. Defaults to the
	// global Prometheus registry.
	Gatherer prometheus.Gatherer

	// Trigger handles POST /-/refresh. The endpoint is disabled if nil.
	Trigger Trigger
}

// Server serves the data directory as static files.
type Server struct {
	config Config

	// ctx outlives individual requests, so that passes started by
	// /-/refresh aren't cancelled when the request completes.
	ctx context.Context
}

// New creates a Server.
func New(config Config) *Server {
	config.BasePath = normalizeBasePath(config.BasePath)
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{config: config, ctx: context.Background()}
}

// Handler returns the router for all endpoints.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	ops := router.PathPrefix(opsPrefix).Subrouter()
	ops.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet, http.MethodHead)
	ops.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	if s.config.Trigger != nil {
		ops.HandleFunc("/refresh", s.refresh).Methods(http.MethodPost)
	}

	files := http.FileServer(onlyFiles{afero.NewHttpFs(s.config.Fs).Dir(s.config.Dir)})
	router.PathPrefix(s.config.BasePath).Methods(http.MethodGet, http.MethodHead).Handler(
		http.StripPrefix(strings.TrimSuffix(s.config.BasePath, "/"), files))
	return router
}

// Run serves requests until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.ctx = ctx
	httpServer := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"address":  s.config.Address,
			"basePath": s.config.BasePath,
		}).Info("Serving emoji")
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return errors.WithContext(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.WithContext(err, "shutdown")
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) refresh(w http.ResponseWriter, _ *http.Request) {
	if !s.config.Trigger(s.ctx) {
		http.Error(w, "a synchronization pass is already running", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func normalizeBasePath(basePath string) string {
	basePath = path.Clean("/" + basePath)
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

// onlyFiles hides directories, so that the data directory can't be listed,
// and files that aren't mirrored emoji or the index, such as in-progress
// downloads.
type onlyFiles struct {
	fs http.FileSystem
}

func (fs onlyFiles) Open(name string) (http.File, error) {
	if base := path.Base(name); base != store.IndexFileName && store.ValidName(base) != nil {
		return nil, os.ErrNotExist
	}

	f, err := fs.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
