// Package server exposes reconciliation over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/francis-pang/expense-tally/internal/metrics"
	"github.com/francis-pang/expense-tally/internal/report"
	"github.com/francis-pang/expense-tally/internal/tally"
)

// DefaultMaxBody caps the statement upload size.
const DefaultMaxBody = 10 << 20

const reconcileRoute = "/api/v1/reconcile"

// Server routes health, metrics and reconcile requests.
type Server struct {
	runner   *tally.Runner
	recorder *metrics.Recorder
	logger   *log.Logger
	maxBody  int64
	router   *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBody limits the request body to n bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// New wires the routes. recorder must not be nil.
func New(runner *tally.Runner, recorder *metrics.Recorder, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		recorder: recorder,
		logger:   logger,
		maxBody:  DefaultMaxBody,
		router:   mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Handle("/metrics", recorder.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/reconcile", s.reconcile).Methods(http.MethodPost)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ReconcileResponse is the body of a successful reconcile request.
type ReconcileResponse struct {
	RunID         string         `json:"run_id"`
	Count         int            `json:"count"`
	Total         string         `json:"total"`
	Discrepancies []report.Entry `json:"discrepancies"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "/health")
}

func (s *Server) reconcile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	body, closeBody, err := statementBody(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeBody()

	res, err := s.runner.Run(r.Context(), body)
	switch {
	case errors.Is(err, tally.ErrStatement):
		s.logger.Warn("unreadable statement", "run_id", res.RunID, "err", err)
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, tally.ErrLedger):
		s.logger.Error("ledger unavailable", "run_id", res.RunID, "err", err)
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		s.logger.Error("reconcile failed", "run_id", res.RunID, "err", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, ReconcileResponse{
		RunID:         res.RunID,
		Count:         len(res.Discrepancies),
		Total:         report.Total(res.Discrepancies).StringFixed(2),
		Discrepancies: report.Entries(res.Discrepancies),
	}, reconcileRoute)
}

// statementBody returns the multipart "file" field when the request is a
// form upload, otherwise the raw body.
func statementBody(r *http.Request) (io.Reader, func(), error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.Body, func() {}, nil
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("reading upload field \"file\": %w", err)
	}
	return f, func() { f.Close() }, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, payload any, route string) {
	s.recorder.RequestServed(route, code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("writing response", "route", route, "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, msg string) {
	s.respondJSON(w, code, map[string]string{"error": msg}, reconcileRoute)
}
