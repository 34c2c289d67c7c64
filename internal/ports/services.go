// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port methods take a context first, return domain types and report failures
// as domain errors (domain.ErrBadResponse, domain.ErrDecode, domain.ErrNetwork, ...).
package ports

import (
	"context"

	"github.com/jsamuelsen/bbquotes/internal/domain"
)

// QuoteAPI is the upstream Breaking Bad quotes API.
//
// Every method fails with a *domain.BadResponseError for a non-2xx status,
// a *domain.DecodeError when the body does not match the expected shape and
// a *domain.NetworkError when no response was received.
type QuoteAPI interface {
	// RandomQuote returns a random quote from show. The show name is sent verbatim.
	RandomQuote(ctx context.Context, show string) (*domain.Quote, error)

	// CharacterByName returns the character with the exact given name.
	// Returns a *domain.NotFoundError if the upstream knows no such character.
	CharacterByName(ctx context.Context, name string) (*domain.Character, error)

	// DeathOf returns the recorded death of the named character,
	// or nil with no error if the character is alive.
	DeathOf(ctx context.Context, name string) (*domain.Death, error)
}
