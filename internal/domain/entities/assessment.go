package entities

import (
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who authored a turn
type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerSystem Speaker = "system"
)

// TurnState is the delivery phase of a turn. A user turn is appended as
// pending before its network exchange resolves and committed once the remote
// side acknowledged it; a turn that never commits marks a failed send.
type TurnState string

const (
	TurnPending   TurnState = "pending"
	TurnCommitted TurnState = "committed"
)

// Turn is a single utterance in a conversational assessment. Turns are
// append-only; insertion order is display order.
type Turn struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	State     TurnState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserTurn creates a pending user-authored turn
func NewUserTurn(text string) Turn {
	return Turn{
		ID:        uuid.New().String(),
		Speaker:   SpeakerUser,
		Text:      text,
		State:     TurnPending,
		CreatedAt: time.Now().UTC(),
	}
}

// NewSystemTurn creates a committed system-authored turn
func NewSystemTurn(text string) Turn {
	return Turn{
		ID:        uuid.New().String(),
		Speaker:   SpeakerSystem,
		Text:      text,
		State:     TurnCommitted,
		CreatedAt: time.Now().UTC(),
	}
}

// SessionStatus is the lifecycle state of a conversational assessment
type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionActive     SessionStatus = "active"
	SessionCompleted  SessionStatus = "completed"
	SessionErrored    SessionStatus = "errored"
)

// AssessmentSession is one conversational risk assessment. The ID is the
// opaque handle issued by the remote service; the client never derives
// meaning from it. A session belongs to exactly one controller instance.
type AssessmentSession struct {
	ID      int64         `json:"id"`
	Disease string        `json:"disease"`
	Status  SessionStatus `json:"status"`
	Turns   []Turn        `json:"turns"`
}

// ChatStart is the remote reply to opening a session: the session handle and
// the system-authored opening message.
type ChatStart struct {
	SessionID int64
	Message   string
}

// ChatReply is the remote reply to one message exchange. Outcomes is non-nil
// only when the reply signals completion and carries a usable verdict.
type ChatReply struct {
	Message   string
	Completed bool
	Outcomes  []Outcome
}

// Credentials is the client-persisted identity produced by login/signup and
// consumed by the request gateway on every authenticated call.
type Credentials struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Email string `json:"email"`
}
