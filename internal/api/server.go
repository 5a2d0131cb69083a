package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/JakeFAU/qrz-gateway/internal/metrics"
	"github.com/JakeFAU/qrz-gateway/internal/qrz"
)

const (
	unavailableMessage = "QRZ service unavailable"
	callsignMessage    = "callsign must be between 3 and 10 characters"
)

// Lookuper resolves a callsign into a public record.
type Lookuper interface {
	Lookup(ctx context.Context, callsign string) (qrz.Record, error)
}

// IDGenerator produces request identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Server wires HTTP handlers to the lookup service.
type Server struct {
	router   chi.Router
	lookups  Lookuper
	idGen    IDGenerator
	info     Info
	validate *validator.Validate
	hub      *sentry.Hub
	logger   *zap.Logger

	docOnce sync.Once
	docJSON []byte
	docYAML []byte
	docErr  error
}

type lookupQuery struct {
	Callsign string `validate:"required,min=3,max=10"`
}

// NewServer constructs a Server with middleware and routes.
func NewServer(lookups Lookuper, idGen IDGenerator, info Info, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		lookups:  lookups,
		idGen:    idGen,
		info:     info,
		validate: validator.New(),
		hub:      sentry.CurrentHub(),
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/openapi.json", s.openAPIJSON)
	r.Get("/openapi.yaml", s.openAPIYAML)
	r.Get("/lookup", s.lookup)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The registry is only contacted per lookup; there is nothing to warm up.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	query := lookupQuery{Callsign: r.URL.Query().Get("callsign")}
	if err := s.validate.Struct(query); err != nil {
		writeError(w, http.StatusUnprocessableEntity, callsignMessage)
		return
	}

	record, err := s.lookups.Lookup(r.Context(), query.Callsign)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, record)
	case errors.Is(err, qrz.ErrRecordNotFound):
		writeError(w, http.StatusUnprocessableEntity, qrz.NotFoundReason)
	default:
		writeError(w, http.StatusBadGateway, unavailableMessage)
	}
}

func (s *Server) openAPIJSON(w http.ResponseWriter, _ *http.Request) {
	data, _, err := s.openAPI()
	if err != nil {
		s.logger.Error("render openapi document failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeRaw(w, http.StatusOK, "application/json", data)
}

func (s *Server) openAPIYAML(w http.ResponseWriter, _ *http.Request) {
	_, data, err := s.openAPI()
	if err != nil {
		s.logger.Error("render openapi document failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeRaw(w, http.StatusOK, "text/x-yaml", data)
}

// openAPI renders the document once and serves the cached bytes afterwards.
func (s *Server) openAPI() ([]byte, []byte, error) {
	s.docOnce.Do(func() {
		doc := BuildDocument(s.info)
		if s.docJSON, s.docErr = doc.JSON(); s.docErr != nil {
			return
		}
		s.docYAML, s.docErr = doc.YAML()
	})
	return s.docJSON, s.docYAML, s.docErr
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		zap.L().Error("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
