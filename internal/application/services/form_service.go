package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/medirisk/assessment-client/internal/domain/entities"
	"github.com/medirisk/assessment-client/internal/domain/providers"
	apperrors "github.com/medirisk/assessment-client/pkg/errors"
)

// FormService drives the single-shot structured assessment: it holds the
// selected disease schema and the user's raw answers, validates locally
// before any network call and submits once. Re-entrancy is the caller's
// concern (loading-flag discipline); the service does not serialize
// submissions.
//
// An outstanding submission carries the generation current when it was
// issued; switching the disease bumps the generation, so a reply resolving
// afterwards belongs to the abandoned schema and is discarded on arrival.
type FormService struct {
	gateway  providers.AssessmentGateway
	registry *entities.SchemaRegistry
	bus      providers.EventBus

	mu         sync.Mutex
	disease    string
	schema     entities.FieldSchema
	answers    map[string]string
	results    []entities.PredictionOutcome
	generation uint64
}

// NewFormService creates a form controller with no disease selected
func NewFormService(gateway providers.AssessmentGateway, registry *entities.SchemaRegistry, bus providers.EventBus) *FormService {
	return &FormService{
		gateway:  gateway,
		registry: registry,
		bus:      bus,
		answers:  make(map[string]string),
	}
}

// SelectDisease switches the form to a disease's schema. Previously entered
// answers and displayed results belong to the old schema and are cleared.
// Unknown diseases fail fast unless the registry names a default.
func (s *FormService) SelectDisease(disease string) error {
	schema, ok := s.registry.Get(disease)
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("no field schema registered for disease %q", disease))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.disease = disease
	s.schema = schema
	s.answers = make(map[string]string)
	s.results = nil
	return nil
}

// Schema returns the field schema of the selected disease
func (s *FormService) Schema() entities.FieldSchema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// SetAnswer records the raw input for a schema field
func (s *FormService) SetAnswer(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.schema.Fields {
		if f.Name == name {
			s.answers[name] = value
			return nil
		}
	}
	return apperrors.NewValidationError(fmt.Sprintf("field %q is not part of the %s schema", name, s.disease))
}

// Answers returns a copy of the raw answers
func (s *FormService) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Results returns the outcomes of the last successful submission
func (s *FormService) Results() []entities.PredictionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.PredictionOutcome, len(s.results))
	copy(out, s.results)
	return out
}

// Submit validates the answers, coerces them per field kind and submits
// once. On failure nothing is retried and the answers are left untouched so
// the user can resubmit without re-entering data.
func (s *FormService) Submit(ctx context.Context) ([]entities.PredictionOutcome, error) {
	s.mu.Lock()
	disease := s.disease
	schema := s.schema
	generation := s.generation
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	s.mu.Unlock()

	if disease == "" {
		return nil, apperrors.NewValidationError("no disease selected")
	}
	if err := ValidateAnswers(schema, answers); err != nil {
		return nil, err
	}
	features, err := BuildFeatures(schema, answers)
	if err != nil {
		return nil, err
	}

	scored, err := s.gateway.PredictTabular(ctx, features, disease)

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		log.Debug().Str("disease", disease).Msg("discarding stale form submission reply")
		return nil, nil
	}
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	raw := make([]entities.Outcome, len(scored))
	for i, rec := range scored {
		raw[i] = rec
	}
	outcomes := NormalizeOutcomes(raw)
	s.results = outcomes

	// Published under the mutex so a disease switch cannot interleave
	// between the generation check and the completion event.
	if s.bus != nil {
		event := entities.NewAssessmentEvent(entities.ModeForm, disease, outcomes, answers)
		if err := s.bus.Publish(ctx, event); err != nil {
			log.Warn().Err(err).Msg("failed to publish assessment completion")
		}
	}
	s.mu.Unlock()

	return outcomes, nil
}

// ValidateAnswers checks that every required field has a non-blank answer.
// On failure it reports the missing field labels in schema order and no
// submission happens.
func ValidateAnswers(schema entities.FieldSchema, answers map[string]string) error {
	var missing []string
	for _, f := range schema.Fields {
		if f.Required && strings.TrimSpace(answers[f.Name]) == "" {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFieldsError(missing)
	}
	return nil
}

// BuildFeatures coerces present answers by field kind: numbers are parsed
// as floating point, choices map the exact answer "Yes" to 1 and anything
// else to 0, text passes through. Absent fields are omitted entirely so the
// remote model distinguishes "not provided" from "zero". An unparsable
// number fails the whole submission as a validation error.
func BuildFeatures(schema entities.FieldSchema, answers map[string]string) (map[string]interface{}, error) {
	features := make(map[string]interface{})
	for _, f := range schema.Fields {
		raw, ok := answers[f.Name]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		switch f.Kind {
		case entities.FieldNumber:
			value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, apperrors.NewValidationError(fmt.Sprintf("%s must be a number", f.Label))
			}
			features[f.Name] = value
		case entities.FieldChoice:
			if raw == "Yes" {
				features[f.Name] = 1
			} else {
				features[f.Name] = 0
			}
		default:
			features[f.Name] = raw
		}
	}
	return features, nil
}
