package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taajirah/sentinel/internal/auditor"
	"github.com/taajirah/sentinel/internal/constitution"
)

func TestHandleHealth_ReportsOK(t *testing.T) {
	s := New(Config{}, auditor.New(constitution.Default(), nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q, want %q", body["status"], "healthy")
	}
	if body["service"] != "sentinel" {
		t.Errorf("service field = %q, want %q", body["service"], "sentinel")
	}
}

func TestHandleAuditOnly_RejectsEmptyCommand(t *testing.T) {
	s := New(Config{}, auditor.New(constitution.Default(), nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/audit-only", bytes.NewBufferString(`{"command":""}`))
	w := httptest.NewRecorder()
	s.handleAuditOnly(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an empty command", w.Code)
	}
}

func TestHandleAuditOnly_RejectsMalformedJSON(t *testing.T) {
	s := New(Config{}, auditor.New(constitution.Default(), nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/audit-only", bytes.NewBufferString(`not json`))
	w := httptest.NewRecorder()
	s.handleAuditOnly(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a malformed body", w.Code)
	}
}

func TestHandleAuditOnly_DoesNotExecute(t *testing.T) {
	s := New(Config{}, auditor.New(constitution.Default(), nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/audit-only", bytes.NewBufferString(`{"command":"echo hello"}`))
	w := httptest.NewRecorder()
	s.handleAuditOnly(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, hasStdout := body["stdout"]; hasStdout {
		t.Errorf("/audit-only response should never include execution output")
	}
}

func TestHandleAudit_RejectedCommandIsNotExecuted(t *testing.T) {
	s := New(Config{ExecutorTimeout: time.Second}, auditor.New(constitution.Default(), nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/audit", bytes.NewBufferString(`{"command":"sudo rm -rf /"}`))
	w := httptest.NewRecorder()
	s.handleAudit(w, req)

	var body executeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if body.Allowed {
		t.Fatalf("expected the command to be rejected, got %+v", body)
	}
	if body.Stdout != "" || body.Stderr != "" {
		t.Errorf("a rejected command must report empty stdout/stderr, got %+v", body)
	}
	if body.ReturnCode != nil {
		t.Errorf("a rejected command must report returncode as null, got %v", *body.ReturnCode)
	}
}

func TestHandleAudit_RequestUsesWorkdirField(t *testing.T) {
	policy := constitution.Default()
	policy.LockdownMode = true
	policy.AllowedCommands = []string{"ls"}
	s := New(Config{ExecutorTimeout: 2 * time.Second}, auditor.New(policy, nil), nil)

	dir := t.TempDir()
	req := httptest.NewRequest(http.MethodPost, "/audit", bytes.NewBufferString(
		`{"command":"ls","workdir":"`+dir+`"}`))
	w := httptest.NewRecorder()
	s.handleAudit(w, req)

	var body executeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !body.Allowed {
		t.Fatalf("expected the command to be allowed, got %+v", body)
	}
	if body.ReturnCode == nil || *body.ReturnCode != 0 {
		t.Errorf("ReturnCode = %v, want 0", body.ReturnCode)
	}
}

func TestHandleAudit_AllowedCommandExecutesAndReturnsOutput(t *testing.T) {
	policy := constitution.Default()
	policy.LockdownMode = true
	policy.AllowedCommands = []string{"echo"}
	s := New(Config{ExecutorTimeout: 2 * time.Second}, auditor.New(policy, nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/audit", bytes.NewBufferString(`{"command":"echo hello-from-test"}`))
	w := httptest.NewRecorder()
	s.handleAudit(w, req)

	var body executeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !body.Allowed {
		t.Fatalf("expected the command to be allowed, got %+v", body)
	}
	if body.ReturnCode == nil || *body.ReturnCode != 0 {
		t.Errorf("ReturnCode = %v, want 0", body.ReturnCode)
	}
}

func TestWithAuth_RejectsMissingToken(t *testing.T) {
	s := New(Config{RequireAuth: true, AuthToken: "secret"}, auditor.New(constitution.Default(), nil), nil)
	called := false
	handler := s.withAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if called {
		t.Errorf("handler should not run without a valid token")
	}
}

func TestWithAuth_RejectsWrongToken(t *testing.T) {
	s := New(Config{RequireAuth: true, AuthToken: "secret"}, auditor.New(constitution.Default(), nil), nil)
	handler := s.withAuth(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	req.Header.Set("X-Sentinel-Token", "wrong")
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestWithAuth_AllowsCorrectToken(t *testing.T) {
	s := New(Config{RequireAuth: true, AuthToken: "secret"}, auditor.New(constitution.Default(), nil), nil)
	called := false
	handler := s.withAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	req.Header.Set("X-Sentinel-Token", "secret")
	w := httptest.NewRecorder()
	handler(w, req)

	if !called {
		t.Errorf("handler should run when the token matches")
	}
}

func TestWithAuth_SkippedWhenAuthNotRequired(t *testing.T) {
	s := New(Config{RequireAuth: false}, auditor.New(constitution.Default(), nil), nil)
	called := false
	handler := s.withAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if !called {
		t.Errorf("handler should run unconditionally when auth is not required")
	}
}
