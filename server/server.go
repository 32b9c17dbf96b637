// Package server exposes the search and recommendation operations over
// HTTP. Every response is JSON; errors carry their code so callers can
// distinguish bad input from provider trouble.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/alumnet/semsearch/errors"
	"github.com/alumnet/semsearch/logging"
	"github.com/alumnet/semsearch/recommend"
	"github.com/alumnet/semsearch/search"
)

// Server wires the HTTP surface to the search service and the
// recommendation engine.
type Server struct {
	searcher *search.Service
	engine   *recommend.Engine
	log      *logging.Logger
	http     *http.Server
}

// Config assembles a Server.
type Config struct {
	Addr     string
	Searcher *search.Service
	Engine   *recommend.Engine
	Logger   *logging.Logger
}

// New creates a Server listening on cfg.Addr.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	s := &Server{
		searcher: cfg.Searcher,
		engine:   cfg.Engine,
		log:      log.WithComponent("server"),
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/index", s.handleIndex)
	mux.HandleFunc("POST /v1/index-bulk", s.handleIndexBulk)
	mux.HandleFunc("GET /v1/search", s.handleSearch)
	mux.HandleFunc("POST /v1/recommendations/jobs", s.handleRecommendJobs)
	mux.HandleFunc("POST /v1/recommendations/resume", s.handleRecommendResume)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.withRequestLog(mux)
}

// Handler returns the full HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving HTTP until Stop is called.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", map[string]interface{}{"addr": s.http.Addr})
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// withRequestLog assigns a trace ID to each request and logs its outcome.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := r.Header.Get("X-Trace-Id")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		w.Header().Set("X-Trace-Id", traceID)

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.log.WithTraceID(traceID).RequestCompleted(r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req search.IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput("malformed request body"))
		return
	}
	if err := s.searcher.Index(r.Context(), req); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":   true,
		"id":   req.ID,
		"type": req.Type,
	})
}

func (s *Server) handleIndexBulk(w http.ResponseWriter, r *http.Request) {
	var reqs []search.IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		s.writeError(w, errors.InvalidInput("malformed request body"))
		return
	}
	if err := s.searcher.IndexBulk(r.Context(), reqs); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":      true,
		"indexed": len(reqs),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}

	results, err := s.searcher.Search(r.Context(), q.Get("q"), search.Options{
		TopK: limit,
		Type: q.Get("type"),
		Mode: q.Get("mode"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleRecommendJobs(w http.ResponseWriter, r *http.Request) {
	var profile recommend.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		s.writeError(w, errors.InvalidInput("malformed request body"))
		return
	}
	jobs, err := s.engine.RecommendJobs(r.Context(), profile)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

func (s *Server) handleRecommendResume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput("malformed request body"))
		return
	}
	matches, err := s.engine.SuggestJobsForResume(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("response_encode_failed", map[string]interface{}{"error": err.Error()})
	}
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.Code(err)

	var resp errorResponse
	resp.Error.Code = code.String()
	resp.Error.Message = err.Error()
	resp.Error.Retryable = errors.IsRetryable(err)

	s.writeJSON(w, statusFor(code), resp)
}

// statusFor maps error codes to HTTP status.
func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeDimensionMismatch:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConfigMissing, errors.ErrCodeConfigInvalid, errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeEmbeddingFailed, errors.ErrCodeEmbeddingTimeout:
		return http.StatusBadGateway
	case errors.ErrCodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
