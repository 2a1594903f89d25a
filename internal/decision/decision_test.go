package decision

import "testing"

func TestAccept_ClampsRiskScore(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  int
	}{
		{"negative clamps to 0", -5, 0},
		{"in range unchanged", 4, 4},
		{"over max clamps to 10", 99, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Accept("ok", tt.input)
			if !d.Allowed {
				t.Errorf("Accept should always produce Allowed=true")
			}
			if d.RiskScore != tt.want {
				t.Errorf("Accept(_, %d).RiskScore = %d, want %d", tt.input, d.RiskScore, tt.want)
			}
		})
	}
}

func TestReject_CanonicalRiskScore(t *testing.T) {
	d := Reject("blocked")
	if d.Allowed {
		t.Errorf("Reject should always produce Allowed=false")
	}
	if d.RiskScore != 10 {
		t.Errorf("Reject risk score = %d, want 10", d.RiskScore)
	}
}

func TestRejectWithRisk_NeverReadsAsSafe(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  int
	}{
		{"zero floors to 1", 0, 1},
		{"negative floors to 1", -3, 1},
		{"in range unchanged", 7, 7},
		{"over max clamps to 10", 50, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := RejectWithRisk("reason", tt.input)
			if d.Allowed {
				t.Errorf("RejectWithRisk should always produce Allowed=false")
			}
			if d.RiskScore != tt.want {
				t.Errorf("RejectWithRisk(_, %d).RiskScore = %d, want %d", tt.input, d.RiskScore, tt.want)
			}
		})
	}
}

func TestClamp_AppliedToUntrustedExternalScores(t *testing.T) {
	d := Decision{Allowed: true, RiskScore: 1000, Reason: "llm said so"}
	clamped := d.Clamp()
	if clamped.RiskScore != 10 {
		t.Errorf("Clamp() = %d, want 10", clamped.RiskScore)
	}

	d2 := Decision{Allowed: false, RiskScore: -7, Reason: "llm said so"}
	if got := d2.Clamp().RiskScore; got != 0 {
		t.Errorf("Clamp() = %d, want 0", got)
	}
}
