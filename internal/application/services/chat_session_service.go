package services

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/medirisk/assessment-client/internal/domain/entities"
	"github.com/medirisk/assessment-client/internal/domain/providers"
	apperrors "github.com/medirisk/assessment-client/pkg/errors"
)

// ChatSessionService drives a turn-based conversational assessment to
// completion. One instance owns at most one session at a time; starting a
// new session or resetting abandons the previous one in place.
//
// Outstanding requests carry the generation current when they were issued;
// a reply whose generation no longer matches belongs to an abandoned
// session and is discarded on arrival. At most one message exchange may be
// outstanding per session, which is the only ordering control needed.
type ChatSessionService struct {
	gateway providers.AssessmentGateway
	bus     providers.EventBus

	mu         sync.Mutex
	session    *entities.AssessmentSession
	generation uint64
	inFlight   bool
	outcomes   []entities.PredictionOutcome
}

// NewChatSessionService creates a controller with no session
func NewChatSessionService(gateway providers.AssessmentGateway, bus providers.EventBus) *ChatSessionService {
	return &ChatSessionService{gateway: gateway, bus: bus}
}

// StartSession opens a session for a disease and seeds the turn list with
// the system-authored opening turn.
//
// A not-found reply means no training data exists for the disease: the
// controller stays without a session and surfaces the distinguishable
// dataset-missing condition so the caller can show a targeted message. Any
// other failure is surfaced as-is and likewise creates no session.
func (s *ChatSessionService) StartSession(ctx context.Context, disease string) (*entities.Turn, error) {
	if strings.TrimSpace(disease) == "" {
		return nil, apperrors.NewValidationError("disease is required to start a session")
	}

	s.mu.Lock()
	// Abandon any previous session; its in-flight reply, if one exists, now
	// carries a stale generation.
	s.generation++
	generation := s.generation
	s.session = nil
	s.outcomes = nil
	s.inFlight = false
	s.mu.Unlock()

	start, err := s.gateway.StartChat(ctx, disease)

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		log.Debug().Str("disease", disease).Msg("discarding stale session start reply")
		return nil, nil
	}

	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewDatasetMissingError(apperrors.MessageOf(err))
		}
		return nil, err
	}

	opening := entities.NewSystemTurn(start.Message)
	s.session = &entities.AssessmentSession{
		ID:      start.SessionID,
		Disease: disease,
		Status:  entities.SessionActive,
		Turns:   []entities.Turn{opening},
	}
	return &opening, nil
}

// SendMessage submits one user utterance. The user turn is appended as
// pending before the network call resolves, so the turn list always
// reflects user intent immediately; it commits when the reply arrives.
//
// A send failure is not session-fatal: the session stays Active, the user
// turn stays pending and the user can resend. While an exchange is
// outstanding a second send is rejected, preserving turn order.
func (s *ChatSessionService) SendMessage(ctx context.Context, text string) (*entities.Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("message text is required")
	}

	s.mu.Lock()
	if s.session == nil || s.session.Status != entities.SessionActive {
		s.mu.Unlock()
		return nil, apperrors.NewValidationError("no active session")
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, apperrors.NewConflictError("a message exchange is already outstanding")
	}
	s.inFlight = true
	generation := s.generation
	sessionID := s.session.ID
	userTurn := entities.NewUserTurn(text)
	s.session.Turns = append(s.session.Turns, userTurn)
	userIndex := len(s.session.Turns) - 1
	s.mu.Unlock()

	reply, err := s.gateway.SendChatMessage(ctx, sessionID, text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		log.Debug().Int64("session_id", sessionID).Msg("discarding stale message reply")
		return nil, nil
	}
	s.inFlight = false

	if err != nil {
		return nil, err
	}

	s.session.Turns[userIndex].State = entities.TurnCommitted
	systemTurn := entities.NewSystemTurn(reply.Message)
	s.session.Turns = append(s.session.Turns, systemTurn)

	if reply.Completed {
		s.session.Status = entities.SessionCompleted
		// An empty outcome set on completion is not an error; the session
		// still completes and collaborators are still notified.
		s.outcomes = NormalizeOutcomes(reply.Outcomes)
		s.publishCompletion(ctx)
	}

	return &systemTurn, nil
}

// Reset abandons the current session, if any. Used when the disease
// selector changes; any in-flight reply is discarded on arrival.
func (s *ChatSessionService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.session = nil
	s.outcomes = nil
	s.inFlight = false
}

// Status returns the lifecycle state of the current session
func (s *ChatSessionService) Status() entities.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return entities.SessionNotStarted
	}
	return s.session.Status
}

// Disease returns the disease of the current session, if any
func (s *ChatSessionService) Disease() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.Disease
}

// Turns returns a copy of the current turn list in insertion order
func (s *ChatSessionService) Turns() []entities.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	out := make([]entities.Turn, len(s.session.Turns))
	copy(out, s.session.Turns)
	return out
}

// Outcomes returns the normalized outcome set of a completed session
func (s *ChatSessionService) Outcomes() []entities.PredictionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.PredictionOutcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// publishCompletion is called with the mutex held, after normalization
func (s *ChatSessionService) publishCompletion(ctx context.Context) {
	if s.bus == nil {
		return
	}
	event := entities.NewAssessmentEvent(entities.ModeChat, s.session.Disease, s.outcomes, nil)
	if err := s.bus.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Msg("failed to publish assessment completion")
	}
}
