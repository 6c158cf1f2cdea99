package providers

import "github.com/medirisk/assessment-client/internal/domain/entities"

// CredentialSource is the read side of the process-wide identity store,
// injected into the request gateway. Invalidate is the single exposed
// session reset, triggered by an authorization rejection from any call.
type CredentialSource interface {
	// Token returns the current bearer credential, if any.
	Token() (string, bool)

	// Invalidate clears all client-persisted identity state.
	Invalidate() error
}

// CredentialStore adds the write side used only by login, signup and logout.
// No other component may write the store, though any component may read it
// to gate access.
type CredentialStore interface {
	CredentialSource

	// Current returns the full persisted identity, if any.
	Current() (entities.Credentials, bool)

	// Save persists a new identity, replacing any previous one.
	Save(creds entities.Credentials) error
}
