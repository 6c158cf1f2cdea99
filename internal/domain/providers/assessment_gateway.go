package providers

import (
	"context"
	"io"

	"github.com/medirisk/assessment-client/internal/domain/entities"
)

// AssessmentGateway is the client-side boundary to the remote prediction
// service for the two assessment modes. Implementations attach the session
// credential, classify failures into the application error taxonomy and
// never retry.
type AssessmentGateway interface {
	// ListDiseases returns the disease identifiers with uploaded training
	// data, in server order.
	ListDiseases(ctx context.Context) ([]string, error)

	// StartChat opens a conversational session for a disease. A not-found
	// reply means no dataset exists for the disease.
	StartChat(ctx context.Context, disease string) (*entities.ChatStart, error)

	// SendChatMessage submits one user utterance and returns the system
	// reply, including the completion flag and any verdict payload.
	SendChatMessage(ctx context.Context, sessionID int64, content string) (*entities.ChatReply, error)

	// ChatHistory returns the stored turns of a session in insertion order.
	ChatHistory(ctx context.Context, sessionID int64) ([]entities.Turn, error)

	// PredictTabular submits a coerced feature set for a disease and returns
	// the raw scored records.
	PredictTabular(ctx context.Context, features map[string]interface{}, diseaseType string) ([]entities.ScoredOutcome, error)
}

// AccountGateway covers the credential-producing calls
type AccountGateway interface {
	// Login exchanges email/password for a bearer credential, scoped to the
	// requested role.
	Login(ctx context.Context, email, password, role string) (entities.Credentials, error)

	// Signup registers a new user account and returns its credential.
	Signup(ctx context.Context, email, fullName, password string) (entities.Credentials, error)
}

// DatasetGateway covers dataset ingestion. The upload is a plain pass
// through; all processing happens server-side.
type DatasetGateway interface {
	UploadCSV(ctx context.Context, filename, diseaseType string, data io.Reader) (string, error)
}

// StatsGateway covers the display-only dashboard aggregates
type StatsGateway interface {
	AdminStats(ctx context.Context) (*entities.AdminStats, error)
	UserStats(ctx context.Context) (*entities.UserStats, error)
}
