package entities

// RiskLevel is the discrete bucket derived from a risk score
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// GeneralDisease labels outcomes synthesized from a coarse conversational
// verdict that carries no per-disease breakdown.
const GeneralDisease = "General"

// AffirmativeVerdict is the verdict text the conversational backend emits for
// a positive risk finding.
const AffirmativeVerdict = "High Risk"

// Representative scores for the two-point verdict mapping. The conversational
// legacy payload carries no numeric score, so an affirmative verdict maps to
// a fixed high score and anything else to a fixed low one. An approximation,
// not a second scoring model.
const (
	VerdictHighScore = 85.0
	VerdictLowScore  = 15.0
)

// RiskLevelForScore buckets a risk score: above 70 is High, above 40 is
// Medium, everything else Low. Levels are always recomputed from the score
// so both assessment modes bucket consistently regardless of what the remote
// side labeled.
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score > 70:
		return RiskHigh
	case score > 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// PredictionOutcome is the unified risk record produced exactly once per
// completed assessment and consumed by result and analytics views. Immutable
// after creation.
type PredictionOutcome struct {
	Disease     string    `json:"disease"`
	RiskScore   float64   `json:"risk_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Explanation string    `json:"explanation"`
}

// Outcome is the tagged union of the two structurally different backend
// payload shapes. It is produced only by the request gateway and consumed
// only through the outcome normalizer; downstream code never branches on it.
type Outcome interface {
	isOutcome()
}

// ScoredOutcome is the tabular-prediction shape: a per-disease numeric score
// with a remote-assigned level that is not trusted verbatim.
type ScoredOutcome struct {
	Disease     string
	RiskScore   float64
	RiskLevel   string
	Explanation string
}

func (ScoredOutcome) isOutcome() {}

// VerdictOutcome is the conversational legacy shape: a single coarse textual
// verdict with no numeric score and no per-disease breakdown.
type VerdictOutcome struct {
	Verdict string
}

func (VerdictOutcome) isOutcome() {}
