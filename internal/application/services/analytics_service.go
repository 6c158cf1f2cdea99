package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/medirisk/assessment-client/internal/domain/entities"
	"github.com/medirisk/assessment-client/internal/domain/providers"
)

// AnalyticsService accumulates completed assessments across both modes for
// the lifetime of the process and serves the dashboard aggregates. Local
// history comes off the event bus; the server-side aggregates are a plain
// pass-through to the stats gateway.
type AnalyticsService struct {
	stats providers.StatsGateway

	mu     sync.RWMutex
	events []*entities.AssessmentEvent
}

// NewAnalyticsService creates an analytics service with empty history
func NewAnalyticsService(stats providers.StatsGateway) *AnalyticsService {
	return &AnalyticsService{stats: stats}
}

// Run consumes completion events from the bus until ctx is done. Intended
// to be launched as a goroutine alongside the assessment controllers.
func (s *AnalyticsService) Run(ctx context.Context, bus providers.EventBus) error {
	events, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			s.Record(event)
		}
	}
}

// Record appends one completed assessment to the local history
func (s *AnalyticsService) Record(event *entities.AssessmentEvent) {
	if event == nil {
		return
	}
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	log.Debug().
		Str("event_id", event.ID).
		Str("mode", string(event.Mode)).
		Str("disease", event.Disease).
		Int("outcomes", len(event.Outcomes)).
		Msg("recorded assessment completion")
}

// History returns the recorded assessments in completion order
func (s *AnalyticsService) History() []*entities.AssessmentEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.AssessmentEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Latest returns the most recently completed assessment, if any
func (s *AnalyticsService) Latest() (*entities.AssessmentEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) == 0 {
		return nil, false
	}
	return s.events[len(s.events)-1], true
}

// LatestRiskByDisease folds the history into the most recent outcome per
// disease, the shape the risk summary widget renders.
func (s *AnalyticsService) LatestRiskByDisease() map[string]entities.PredictionOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]entities.PredictionOutcome)
	for _, event := range s.events {
		for _, outcome := range event.Outcomes {
			latest[outcome.Disease] = outcome
		}
	}
	return latest
}

// AdminStats fetches the platform-wide dashboard aggregates
func (s *AnalyticsService) AdminStats(ctx context.Context) (*entities.AdminStats, error) {
	return s.stats.AdminStats(ctx)
}

// UserStats fetches the per-user dashboard aggregates
func (s *AnalyticsService) UserStats(ctx context.Context) (*entities.UserStats, error) {
	return s.stats.UserStats(ctx)
}
