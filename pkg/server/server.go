// Package server serves a template store over HTTP.
//
// The server is read-only. It lets a team browse the cells a build has
// published without access to the store itself:
//
//	GET /healthz                  liveness
//	GET /version                  build information
//	GET /templates                every record, sorted by cell
//	GET /templates/{cell}         one record as JSON
//	GET /templates/{cell}/svg     boundary and pin preview
//
// Errors are JSON objects with a code and a message. A missing cell is 404;
// anything else the store reports is 500.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cellforge/pkg/buildinfo"
	"github.com/matzehuels/cellforge/pkg/cache"
	"github.com/matzehuels/cellforge/pkg/errors"
	"github.com/matzehuels/cellforge/pkg/export"
	"github.com/matzehuels/cellforge/pkg/observability"
	"github.com/matzehuels/cellforge/pkg/templatedb"
)

// PreviewTTL is how long rendered previews stay cached.
const PreviewTTL = 24 * time.Hour

// Server answers template queries from a store.
type Server struct {
	store  templatedb.Store
	cache  cache.Cache
	logger *log.Logger
	svg    []export.SVGOption
	router chi.Router
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithCache caches SVG previews.
func WithCache(c cache.Cache) Option { return func(s *Server) { s.cache = c } }

// WithSVGOptions configures preview rendering.
func WithSVGOptions(opts ...export.SVGOption) Option {
	return func(s *Server) { s.svg = append(s.svg, opts...) }
}

// New returns a server over store. The caller keeps ownership of store.
func New(store templatedb.Store, opts ...Option) *Server {
	s := &Server{store: store, cache: cache.NewNullCache()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/healthz", s.health)
	r.Get("/version", s.version)
	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.listTemplates)
		r.Get("/{cell}", s.getTemplate)
		r.Get("/{cell}/svg", s.previewTemplate)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains open
// requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving templates", "addr", addr, "store", templatedb.Backend(s.store))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status,
			"bytes", ww.BytesWritten(), "elapsed", elapsed.Round(time.Microsecond), "id", middleware.GetReqID(r.Context()))
	})
}

// Summary is one entry of the template listing.
type Summary struct {
	Cell    string         `json:"cell"`
	Library string         `json:"library"`
	Bounds  templatedb.Box `json:"bounds"`
	Pins    []string       `json:"pins"`
	Digest  string         `json:"digest,omitempty"`
}

func summarize(rec templatedb.Record) Summary {
	pins := make([]string, len(rec.Pins))
	for i, p := range rec.Pins {
		pins[i] = p.Name
	}
	return Summary{Cell: rec.Cell, Library: rec.Library, Bounds: rec.Bounds, Pins: pins, Digest: rec.Digest}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]Summary, len(recs))
	for i, rec := range recs {
		out[i] = summarize(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "cell"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) previewTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := s.store.Get(ctx, chi.URLParam(r, "cell"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	key := cache.Key("svg", rec.Seal().Digest)
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("preview cache read failed", "cell", rec.Cell, "err", err)
	}
	if !hit {
		var buf bytes.Buffer
		if err := export.NewSVG(s.svg...).ExportRecord(rec, &buf); err != nil {
			s.writeError(w, err)
			return
		}
		data = buf.Bytes()
		if err := s.cache.Set(ctx, key, data, PreviewTTL); err != nil {
			s.logger.Warn("preview cache write failed", "cell", rec.Cell, "err", err)
		}
	}
	status := "miss"
	if hit {
		status = "hit"
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Cache", status)
	_, _ = w.Write(data)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, ErrorBody{Code: string(code), Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
