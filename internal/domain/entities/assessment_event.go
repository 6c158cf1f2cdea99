package entities

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentMode distinguishes which interaction mode produced an outcome
// batch
type AssessmentMode string

const (
	ModeChat AssessmentMode = "chat"
	ModeForm AssessmentMode = "form"
)

// AssessmentEvent is the completion notification handed to interested
// collaborators (analytics, report export): one atomic outcome batch plus
// the provenance that produced it.
type AssessmentEvent struct {
	ID       string              `json:"id"`
	Mode     AssessmentMode      `json:"mode"`
	Disease  string              `json:"disease"`
	Outcomes []PredictionOutcome `json:"outcomes"`

	// Answers is the raw form input that produced the batch. Nil for
	// conversational assessments, where the exchange lives in the turns.
	Answers map[string]string `json:"answers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewAssessmentEvent creates a completion event
func NewAssessmentEvent(mode AssessmentMode, disease string, outcomes []PredictionOutcome, answers map[string]string) *AssessmentEvent {
	return &AssessmentEvent{
		ID:        uuid.New().String(),
		Mode:      mode,
		Disease:   disease,
		Outcomes:  outcomes,
		Answers:   answers,
		CreatedAt: time.Now().UTC(),
	}
}
