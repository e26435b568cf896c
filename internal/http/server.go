// Package http exposes the budget API: one /api/entries endpoint
// dispatched on method plus action, health probes, and the embedded
// front end.
package http

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"budget/internal/ledger"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	appweb "budget/web"
)

type Options struct {
	Debug        bool
	RateLimitRPM int
	TrustedProxy bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	http.Server

	repo    *ledger.Repository
	debug   bool
	limiter *ratelimit.Limiter
}

func NewServer(addr string, repo *ledger.Repository, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			Handler:        mux,
			ReadTimeout:    opts.ReadTimeout,
			WriteTimeout:   opts.WriteTimeout,
			MaxHeaderBytes: 1 << 20,
		},
		repo:  repo,
		debug: opts.Debug,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitRPM,
		}),
	}

	extractor := security.NewIPExtractor(opts.TrustedProxy)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(extractor.ExtractClientIP)

	api := s.limitMutations(extractor.ExtractClientIP, http.HandlerFunc(s.handleEntries))
	mux.Handle("/api/entries", tracer.Middleware(headers.Middleware(api)))

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Static front end from the embedded FS
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.FileServer(http.FS(sub))
		mux.Handle("/", headers.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		})))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	return s
}

// limitMutations rate limits POSTs per client IP. Reads pass through.
func (s *Server) limitMutations(extractIP func(*http.Request) string, next http.Handler) http.Handler {
	limited := s.limiter.Middleware(extractIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	cmd, err := parseCommand(r)
	if err != nil {
		var derr *dispatchError
		if errors.As(err, &derr) {
			writeError(w, derr.status, derr.message, nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	cmd.execute(w, r, s)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Shutdown stops background helpers and then drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
