package services

import (
	"fmt"

	"github.com/medirisk/assessment-client/internal/domain/entities"
)

// NormalizeOutcomes collapses the two backend payload shapes into the
// unified risk-record model. It is pure, total and idempotent: empty input
// yields empty output, never an error.
//
// Scored records keep their score but have their level recomputed locally,
// so an inconsistent remote label can never leak into a view. A coarse
// conversational verdict, which carries no score and no per-disease
// breakdown, synthesizes exactly one "General" record on the fixed
// two-point scale.
func NormalizeOutcomes(raw []entities.Outcome) []entities.PredictionOutcome {
	out := make([]entities.PredictionOutcome, 0, len(raw))
	for _, record := range raw {
		switch v := record.(type) {
		case entities.ScoredOutcome:
			out = append(out, normalizeScored(v))
		case entities.VerdictOutcome:
			out = append(out, normalizeVerdict(v))
		}
	}
	return out
}

func normalizeScored(rec entities.ScoredOutcome) entities.PredictionOutcome {
	score := clampScore(rec.RiskScore)
	return entities.PredictionOutcome{
		Disease:     rec.Disease,
		RiskScore:   score,
		RiskLevel:   entities.RiskLevelForScore(score),
		Explanation: rec.Explanation,
	}
}

func normalizeVerdict(rec entities.VerdictOutcome) entities.PredictionOutcome {
	score := entities.VerdictLowScore
	if rec.Verdict == entities.AffirmativeVerdict {
		score = entities.VerdictHighScore
	}
	return entities.PredictionOutcome{
		Disease:     entities.GeneralDisease,
		RiskScore:   score,
		RiskLevel:   entities.RiskLevelForScore(score),
		Explanation: fmt.Sprintf("Conversational assessment verdict: %s.", rec.Verdict),
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
