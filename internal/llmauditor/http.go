package llmauditor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/taajirah/sentinel/internal/decision"
)

// DefaultTimeout is the bounded time an external scoring call is allowed;
// operators may override it when constructing an HTTPAuditor.
const DefaultTimeout = 30 * time.Second

// HTTPAuditor forwards a normalized command to an external scoring
// endpoint over a fixed request/response contract — prompt and model
// selection are the external auditor's concern.
type HTTPAuditor struct {
	endpoint string
	model    string
	client   *http.Client
	timeout  time.Duration
}

// NewHTTPAuditor builds an HTTPAuditor. A zero timeout falls back to
// DefaultTimeout.
func NewHTTPAuditor(endpoint, model string, timeout time.Duration) *HTTPAuditor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPAuditor{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
	}
}

type auditRequestBody struct {
	Command string `json:"command"`
	Model   string `json:"model,omitempty"`
}

type auditResponseBody struct {
	Allowed   bool   `json:"allowed"`
	RiskScore int    `json:"risk_score"`
	Reason    string `json:"reason"`
}

// AuditCommand never returns an error to the caller: any transport
// failure, non-2xx response, malformed body, or context deadline is
// converted into a rejection instead.
func (a *HTTPAuditor) AuditCommand(ctx context.Context, normalizedCommand string) decision.Decision {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	payload, err := json.Marshal(auditRequestBody{Command: normalizedCommand, Model: a.model})
	if err != nil {
		return decision.RejectWithRisk("LLM auditor request could not be built.", 9)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return decision.RejectWithRisk("LLM auditor request could not be built.", 9)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return decision.RejectWithRisk("LLM auditor timed out; fail-closed policy applied.", 10)
		}
		return decision.RejectWithRisk(fmt.Sprintf("LLM auditor unreachable: %v", err), 9)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decision.RejectWithRisk(fmt.Sprintf("LLM auditor returned status %d", resp.StatusCode), 9)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decision.RejectWithRisk("LLM auditor response could not be read.", 9)
	}

	var parsed auditResponseBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decision.RejectWithRisk("LLM auditor response was malformed.", 9)
	}

	if !parsed.Allowed {
		return decision.RejectWithRisk(parsed.Reason, parsed.RiskScore)
	}
	return decision.Accept(parsed.Reason, parsed.RiskScore).Clamp()
}
