package server

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/esporykhin/ai-product-framework/generator"
	"github.com/esporykhin/ai-product-framework/metrics"
	"github.com/esporykhin/ai-product-framework/workspace"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const maxBodyBytes = 4 << 20

type Server struct {
	ws        *workspace.Service
	log       *zap.Logger
	metrics   *metrics.Metrics
	preview   *template.Template
	aiTimeout time.Duration
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithAITimeout bounds every model call made on behalf of a request.
func WithAITimeout(d time.Duration) Option { return func(s *Server) { s.aiTimeout = d } }

func New(ws *workspace.Service, opts ...Option) (*Server, error) {
	if ws == nil {
		return nil, errors.New("workspace required")
	}
	tmpl, err := template.ParseFS(embeddedTemplates, "templates/preview.html")
	if err != nil {
		return nil, err
	}
	s := &Server{
		ws:        ws,
		log:       zap.NewNop(),
		preview:   tmpl,
		aiTimeout: 120 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/state", s.handleStateGet)
	mux.HandleFunc("PUT /api/state", s.handleStatePut)
	mux.HandleFunc("PUT /api/context", s.handleContextPut)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/export.md", s.handleExportMarkdown)
	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export.html", s.handleExportHTML)

	mux.HandleFunc("POST /api/problems", s.handleProblemCreate)
	mux.HandleFunc("PUT /api/problems/{id}", s.handleProblemUpdate)
	mux.HandleFunc("DELETE /api/problems/{id}", s.handleProblemDelete)
	mux.HandleFunc("POST /api/problems/{id}/active", s.handleProblemActivate)
	mux.HandleFunc("POST /api/problems/{id}/focus", s.handleFocus)
	mux.HandleFunc("POST /api/problems/{id}/gtm", s.handleGTM)
	mux.HandleFunc("POST /api/problems/{id}/research", s.handleResearch)
	mux.HandleFunc("DELETE /api/problems/{id}/research/{rid}", s.handleResearchDelete)

	mux.HandleFunc("POST /api/strategy", s.handleStrategy)
	mux.HandleFunc("POST /api/validation", s.handleValidation)
	mux.HandleFunc("PUT /api/validation/{id}", s.handleValidationAnswer)

	mux.HandleFunc("GET /api/chats", s.handleChatList)
	mux.HandleFunc("POST /api/chats", s.handleChatCreate)
	mux.HandleFunc("GET /api/chats/{id}", s.handleChatGet)
	mux.HandleFunc("POST /api/chats/{id}", s.handleChatAsk)
	mux.HandleFunc("DELETE /api/chats/{id}", s.handleChatDelete)
	mux.HandleFunc("POST /api/chats/{id}/active", s.handleChatActivate)

	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /{$}", s.handlePreview)

	return s.logMiddleware(mux)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type errorResp struct {
	Error string `json:"error"`
}

// writeError maps domain errors to status codes; anything unknown gets
// fallback.
func (s *Server) writeError(w http.ResponseWriter, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, workspace.ErrProblemNotFound), errors.Is(err, workspace.ErrQuestionMissing),
		errors.Is(err, workspace.ErrChatNotFound):
		status = http.StatusNotFound
	case errors.Is(err, generator.ErrEmptyQuestion):
		status = http.StatusBadRequest
	case errors.Is(err, workspace.ErrNoHypotheses), errors.Is(err, generator.ErrNoProblemStatement):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, workspace.ErrImportFailed):
		status = http.StatusBadRequest
	case errors.Is(err, workspace.ErrNoAgent):
		status = http.StatusServiceUnavailable
	case errors.Is(err, generator.ErrEmptyOutput):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResp{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		took := time.Since(start)
		s.metrics.ObserveRequest(r.Method, route, rec.status, took)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("took", took),
		)
	})
}
