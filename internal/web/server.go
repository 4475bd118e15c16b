package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the Pocket web UI.
func NewServer(st *store.Store, cfg *config.Config, log *logger.Logger, version, bind string, port int) (*http.Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "web")

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("template sub-FS: %w", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static sub-FS: %w", err)
	}

	renderer, err := NewRenderer(templateSub, version, log)
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		st:       st,
		cfg:      cfg,
		log:      log,
		renderer: renderer,
	}

	return &http.Server{
		Addr:              net.JoinHostPort(bind, strconv.Itoa(port)),
		Handler:           h.Routes(staticSub),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Routes builds the route table wrapped in the middleware chain.
func (h *Handlers) Routes(static fs.FS) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/capsules", http.StatusFound)
	})
	mux.HandleFunc("GET /capsules", h.HandleLibrary)
	mux.HandleFunc("GET /capsules/new", h.HandleNew)
	mux.HandleFunc("POST /capsules", h.HandleCreate)
	mux.HandleFunc("POST /capsules/draft", h.HandleDraft)
	mux.HandleFunc("POST /capsules/import", h.HandleImport)
	mux.HandleFunc("GET /capsules/{id}", h.HandleLearn)
	mux.HandleFunc("POST /capsules/{id}", h.HandleUpdate)
	mux.HandleFunc("GET /capsules/{id}/edit", h.HandleEdit)
	mux.HandleFunc("GET /capsules/{id}/export", h.HandleExport)
	mux.HandleFunc("DELETE /capsules/{id}", h.HandleDelete)
	mux.HandleFunc("POST /capsules/{id}/delete", h.HandleDelete)
	mux.HandleFunc("POST /capsules/{id}/known/{index}", h.HandleKnown)
	mux.HandleFunc("POST /capsules/{id}/quiz", h.HandleQuiz)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	return requestLogger(h.log, securityHeaders(mux))
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger logs every request at debug level with its status and duration.
func requestLogger(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("pocket UI running", "url", "http://"+srv.Addr)
	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("server is binding to all interfaces and may be accessible from the network", "addr", srv.Addr)
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
