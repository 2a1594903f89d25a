// Package server exposes the audit pipeline over HTTP: POST /audit (audit
// and, if allowed, execute), POST /audit-only (audit without executing),
// GET /health, and GET /metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taajirah/sentinel/internal/auditor"
	"github.com/taajirah/sentinel/internal/decision"
	"github.com/taajirah/sentinel/internal/executor"
	"github.com/taajirah/sentinel/internal/logger"
	"github.com/taajirah/sentinel/internal/metrics"
)

// Config configures the façade's own listening behavior, separate from
// the Auditor it wraps.
type Config struct {
	Addr            string
	AuthToken       string
	RequireAuth     bool
	ExecutorTimeout time.Duration
}

// Server is the HTTP façade around an Auditor.
type Server struct {
	cfg     Config
	auditor *auditor.Auditor
	log     *logger.AuditLogger
	metrics *metrics.Metrics
	http    *http.Server
	stderr  io.Writer
}

// New builds a Server. log may be nil, in which case audit events are not
// persisted (used by tests).
func New(cfg Config, a *auditor.Auditor, log *logger.AuditLogger) *Server {
	return &Server{
		cfg:     cfg,
		auditor: a,
		log:     log,
		metrics: metrics.Get(),
		stderr:  os.Stderr,
	}
}

// ListenAndServe starts the façade and blocks until it is shut down.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/audit", s.withAuth(s.handleAudit))
	mux.HandleFunc("/audit-only", s.withAuth(s.handleAuditOnly))

	s.http = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: executor.DefaultTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	fmt.Fprintf(s.stderr, "[sentinel] listening on %s\n", s.cfg.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the façade.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.RequireAuth {
			next(w, r)
			return
		}
		token := r.Header.Get("X-Sentinel-Token")
		if token == "" || token != s.cfg.AuthToken {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "service": "sentinel"})
}

// auditRequest is the shared request body for /audit and /audit-only.
type auditRequest struct {
	Command string `json:"command"`
	Cwd     string `json:"workdir"`
}

// auditResponse is the /audit-only response shape, and the audit portion
// of /audit's response.
type auditResponse struct {
	Allowed   bool   `json:"allowed"`
	RiskScore int    `json:"risk_score"`
	Reason    string `json:"reason"`
}

// executeResponse extends auditResponse with the executor's output. When
// a command is rejected, Stdout and Stderr always serialize as empty
// strings and ReturnCode as null — the fields are present, just empty,
// since no execution was attempted.
type executeResponse struct {
	auditResponse
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ReturnCode *int   `json:"returncode"`
	TimedOut   bool   `json:"timed_out,omitempty"`
}

func (s *Server) handleAuditOnly(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAuditRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	d := s.auditor.Audit(r.Context(), req.Command)
	s.metrics.ObserveAuditLatency(time.Since(start))
	s.metrics.RecordDecision(d.Allowed, d.Reason)
	s.logDecision(req, d, nil)

	writeJSON(w, http.StatusOK, auditResponse{Allowed: d.Allowed, RiskScore: d.RiskScore, Reason: d.Reason})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAuditRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	d := s.auditor.Audit(r.Context(), req.Command)
	s.metrics.ObserveAuditLatency(time.Since(start))
	s.metrics.RecordDecision(d.Allowed, d.Reason)

	if !d.Allowed {
		s.logDecision(req, d, nil)
		writeJSON(w, http.StatusOK, executeResponse{
			auditResponse: auditResponse{Allowed: d.Allowed, RiskScore: d.RiskScore, Reason: d.Reason},
		})
		return
	}

	result := executor.Run(r.Context(), req.Command, req.Cwd, s.cfg.ExecutorTimeout)
	s.metrics.RecordExecution(result.TimedOut, result.ReturnCode)
	s.logDecision(req, d, &result)

	returnCode := result.ReturnCode
	writeJSON(w, http.StatusOK, executeResponse{
		auditResponse: auditResponse{Allowed: d.Allowed, RiskScore: d.RiskScore, Reason: d.Reason},
		Stdout:        result.Stdout,
		Stderr:        result.Stderr,
		ReturnCode:    &returnCode,
		TimedOut:      result.TimedOut,
	})
}

func (s *Server) decodeAuditRequest(w http.ResponseWriter, r *http.Request) (auditRequest, bool) {
	var req auditRequest
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return auditRequest{}, false
	}
	if req.Command == "" {
		http.Error(w, `{"error":"command is required"}`, http.StatusBadRequest)
		return auditRequest{}, false
	}
	return req, true
}

func (s *Server) logDecision(req auditRequest, d decision.Decision, result *decision.ExecutionResult) {
	if s.log == nil {
		return
	}
	event := logger.AuditEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Command:    req.Command,
		Cwd:        req.Cwd,
		Allowed:    d.Allowed,
		RiskScore:  d.RiskScore,
		Reason:     d.Reason,
		Source:     "http",
	}
	if result != nil {
		rc := result.ReturnCode
		event.ReturnCode = &rc
		event.Stdout = result.Stdout
		event.Stderr = result.Stderr
		if result.TimedOut {
			event.ExecutedError = "execution timed out"
		}
	}
	if err := s.log.Log(event); err != nil {
		fmt.Fprintf(s.stderr, "[sentinel] warning: audit log write failed: %v\n", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
