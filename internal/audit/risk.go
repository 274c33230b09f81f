package audit

// Risk scoring policy. Contributions are additive and order-independent; the
// final score is clamped to [0,100]. No contribution is negative, so a score
// never falls below its category base.
const (
	riskBaseSecurity     = 30
	riskBaseDataCritical = 25
	riskBasePermission   = 20
	riskBaseAuth         = 15
	riskBaseSystem       = 10

	riskFailure     = 20
	riskCrossUser   = 15
	riskUnknownIP   = 10
	riskHasError    = 10

	// RiskMax is the upper bound of any risk score.
	RiskMax = 100
)

// RiskScore computes the heuristic risk score for a critical event.
//
// Pure function: no I/O, no side effects. It is total over its input domain;
// unknown categories contribute no base and the result is still clamped.
func RiskScore(e Event) int {
	score := 0

	switch e.Category {
	case CategorySecurity:
		score += riskBaseSecurity
	case CategoryDataCritical:
		score += riskBaseDataCritical
	case CategoryPermission:
		score += riskBasePermission
	case CategoryAuth:
		score += riskBaseAuth
	case CategorySystem:
		score += riskBaseSystem
	}

	if e.Failed() {
		score += riskFailure
	}
	if e.TargetUserID != "" && e.TargetUserID != e.ActorUserID {
		score += riskCrossUser
	}
	if e.IPAddress == "" || e.IPAddress == "unknown" {
		score += riskUnknownIP
	}
	if e.ErrorMessage != "" {
		score += riskHasError
	}

	return ClampRisk(score)
}

// ClampRisk bounds a score to [0,RiskMax]. Supplied scores pass through here
// too, so the persisted invariant holds regardless of origin.
func ClampRisk(score int) int {
	if score < 0 {
		return 0
	}
	if score > RiskMax {
		return RiskMax
	}
	return score
}
