// Package api exposes the conversion pipeline over HTTP.
//
// Routes:
//
//	GET  /health           liveness probe
//	POST /convert          draw.io XML body -> hierarchical document JSON
//	POST /terraform-to-xml {"terraform": ...} -> draw.io XML
//	POST /validate         {"terraform": ...} -> validation verdict JSON
//	GET  /metrics          Prometheus exposition
//
// Responses are all-or-nothing: a request either yields the full result or
// an error object, never a partial document.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/autoclouddeploy/archmap/pkg/errors"
	"github.com/autoclouddeploy/archmap/pkg/genai"
	"github.com/autoclouddeploy/archmap/pkg/pipeline"
	"github.com/autoclouddeploy/archmap/pkg/terraform"
)

// maxBodyBytes caps request bodies. Diagrams and Terraform modules are small;
// anything larger is abuse.
const maxBodyBytes = 10 << 20

// Converter turns diagram XML into a structured document.
type Converter interface {
	Convert(ctx context.Context, data []byte, opts pipeline.Options) (*pipeline.Result, error)
}

// Validator validates the Terraform configuration under a directory.
type Validator interface {
	Validate(ctx context.Context, dir string) (*terraform.Result, error)
}

// Server handles archmap HTTP requests.
type Server struct {
	converter Converter
	gen       genai.Generator
	validator Validator
	metrics   *Metrics
	logger    *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithGenerator enables /terraform-to-xml backed by gen.
func WithGenerator(gen genai.Generator) Option {
	return func(s *Server) { s.gen = gen }
}

// WithValidator enables /validate backed by v.
func WithValidator(v Validator) Option {
	return func(s *Server) { s.validator = v }
}

// WithMetrics serves m at /metrics and records request metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a Server around the given converter.
func NewServer(converter Converter, opts ...Option) *Server {
	s := &Server{
		converter: converter,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	if s.metrics != nil {
		r.Use(metricsMiddleware(s.metrics))
	}

	r.Get("/health", s.handleHealth)
	r.Post("/convert", s.handleConvert)
	r.Post("/terraform-to-xml", s.handleTerraformToXML)
	r.Post("/validate", s.handleValidate)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// Run serves the API on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	if len(data) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "empty request body"))
		return
	}

	result, err := s.converter.Convert(r.Context(), data, pipeline.Options{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Document)
}

// terraformRequest is the body of /terraform-to-xml and /validate.
type terraformRequest struct {
	Terraform string `json:"terraform"`
}

func (s *Server) decodeTerraform(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req terraformRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return "", false
	}
	if req.Terraform == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "terraform field is required"))
		return "", false
	}
	return req.Terraform, true
}

func (s *Server) handleTerraformToXML(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "generation backend not configured"))
		return
	}
	code, ok := s.decodeTerraform(w, r)
	if !ok {
		return
	}

	xml, err := genai.DiagramFromTerraform(r.Context(), s.gen, code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, xml)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if s.validator == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "terraform validation not configured"))
		return
	}
	code, ok := s.decodeTerraform(w, r)
	if !ok {
		return
	}

	dir, err := os.MkdirTemp("", "archmap-validate-")
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "create working directory"))
		return
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "main.tf"), []byte(code), 0o644); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "write configuration"))
		return
	}

	result, err := s.validator.Validate(r.Context(), dir)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Source echoes the request; no point sending it back.
	result.Source = ""
	writeJSON(w, http.StatusOK, result)
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err,
			"request_id", RequestID(r.Context()))
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeParse, errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeRepoNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeUnsupported:
		return http.StatusServiceUnavailable
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout, errors.ErrCodeGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
