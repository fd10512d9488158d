package coherence

import "github.com/kodjo-amani/dossier-check/constants"

// classify maps indicator and anomaly counts to a risk level. Any critical
// indicator dominates; below that the level comes from error and anomaly
// counts alone.
func classify(criticals, errors, anomalies int) constants.RiskLevel {
	switch {
	case criticals > 0:
		return constants.RiskCritical
	case errors >= 2 || (errors == 1 && anomalies >= 1):
		return constants.RiskHigh
	case errors == 1 || anomalies >= 2:
		return constants.RiskMedium
	default:
		return constants.RiskLow
	}
}

// confidence starts at 1.0 and decrements per finding: 0.30 per critical
// indicator, 0.15 per error indicator, 0.05 per anomaly and per individual
// cross-check issue. Clamped to [0, 1].
func confidence(criticals, errors, anomalies, issues int) float64 {
	c := 1.0
	c -= 0.30 * float64(criticals)
	c -= 0.15 * float64(errors)
	c -= 0.05 * float64(anomalies)
	c -= 0.05 * float64(issues)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
