package audit

import "testing"

func TestRiskScore_AdditiveModel(t *testing.T) {
	tests := []struct {
		name string
		e    Event
		want int
	}{
		{
			name: "auth success with known ip is base only",
			e:    Event{Category: CategoryAuth, Success: boolPtr(true), IPAddress: "10.0.0.1"},
			want: 15,
		},
		{
			name: "security failure cross-user unknown ip with error",
			e: Event{
				Category:     CategorySecurity,
				Success:      boolPtr(false),
				ActorUserID:  "3",
				TargetUserID: "7",
				ErrorMessage: "x",
			},
			want: 30 + 20 + 15 + 10 + 10,
		},
		{
			name: "system base with missing ip",
			e:    Event{Category: CategorySystem},
			want: 10 + 10,
		},
		{
			name: "literal unknown ip counts as missing",
			e:    Event{Category: CategoryPermission, IPAddress: "unknown"},
			want: 20 + 10,
		},
		{
			name: "target equal to actor is not cross-user",
			e:    Event{Category: CategoryDataCritical, ActorUserID: "5", TargetUserID: "5", IPAddress: "10.0.0.1"},
			want: 25,
		},
		{
			name: "target without actor is cross-user",
			e:    Event{Category: CategoryDataCritical, TargetUserID: "5", IPAddress: "10.0.0.1"},
			want: 25 + 15,
		},
		{
			name: "nil success defaults to success",
			e:    Event{Category: CategoryAuth, IPAddress: "10.0.0.1"},
			want: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RiskScore(tt.e); got != tt.want {
				t.Fatalf("RiskScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRiskScore_AlwaysBounded(t *testing.T) {
	categories := []Category{CategoryAuth, CategorySecurity, CategoryDataCritical, CategoryPermission, CategorySystem, ""}
	ips := []string{"", "unknown", "10.0.0.1"}
	msgs := []string{"", "boom"}
	targets := []string{"", "7"}

	for _, cat := range categories {
		for _, ip := range ips {
			for _, msg := range msgs {
				for _, target := range targets {
					for _, success := range []bool{true, false} {
						e := Event{
							Category:     cat,
							Success:      boolPtr(success),
							IPAddress:    ip,
							ErrorMessage: msg,
							ActorUserID:  "3",
							TargetUserID: target,
						}
						got := RiskScore(e)
						if got < 0 || got > RiskMax {
							t.Fatalf("RiskScore out of bounds: %d for %+v", got, e)
						}
					}
				}
			}
		}
	}
}

func TestClampRisk(t *testing.T) {
	if got := ClampRisk(-5); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := ClampRisk(250); got != RiskMax {
		t.Fatalf("expected %d, got %d", RiskMax, got)
	}
	if got := ClampRisk(42); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}
