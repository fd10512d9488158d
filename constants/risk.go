package constants

// RiskLevel is the overall classification of a dossier assessment.
type RiskLevel string

// Stable values (store these exact strings in DB).
const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Severity grades a single fraud indicator.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
)

// Fraud indicator types.
const (
	IndicatorInvalidMRZChecksum     = "INVALID_MRZ_CHECKSUM"
	IndicatorExpiredPassport        = "EXPIRED_PASSPORT"
	IndicatorInvalidYellowFever     = "INVALID_YELLOW_FEVER"
	IndicatorIncorrectPaymentAmount = "INCORRECT_PAYMENT_AMOUNT"
)

// Anomaly types.
const (
	AnomalyLongStay              = "LONG_STAY"
	AnomalyUrgentTravel          = "URGENT_TRAVEL"
	AnomalyReturnFlightMissing   = "RETURN_FLIGHT_MISSING"
	AnomalyNameMismatch          = "NAME_MISMATCH"
	AnomalyUnnotarizedInvitation = "UNNOTARIZED_INVITATION"
)

// IndicatorWeights carry the legacy scoring weight of each indicator type.
// Classification is rule-based; weights are kept as reporting metadata.
var IndicatorWeights = map[string]float64{
	IndicatorInvalidMRZChecksum:     3,
	IndicatorExpiredPassport:        3,
	IndicatorInvalidYellowFever:     2,
	IndicatorIncorrectPaymentAmount: 1.5,
}
