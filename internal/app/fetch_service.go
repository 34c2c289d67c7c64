// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// The central use case is the quote fetch: a random quote for a show, then
// the biography of the character who said it. Screens hold the per-show
// view state that fetch drives.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jsamuelsen/bbquotes/internal/domain"
	"github.com/jsamuelsen/bbquotes/internal/platform/logging"
	"github.com/jsamuelsen/bbquotes/internal/ports"
)

// errNoResult is reported when a Fetcher breaks its contract and returns
// neither a full result nor an error.
var errNoResult = errors.New("fetch returned no result")

// Fetcher produces a quote together with its character.
// A nil error guarantees both values are non-nil.
type Fetcher interface {
	FetchQuoteAndCharacter(ctx context.Context, show string) (*domain.Quote, *domain.Character, error)
}

// FetcherFunc adapts a plain function into a Fetcher.
type FetcherFunc func(ctx context.Context, show string) (*domain.Quote, *domain.Character, error)

// FetchQuoteAndCharacter implements Fetcher.
func (f FetcherFunc) FetchQuoteAndCharacter(ctx context.Context, show string) (*domain.Quote, *domain.Character, error) {
	return f(ctx, show)
}

// FetchService runs the quote → character sequence against a QuoteAPI.
type FetchService struct {
	api    ports.QuoteAPI
	flags  ports.FeatureFlags
	logger *slog.Logger
}

// FetchServiceConfig contains the dependencies of a FetchService.
type FetchServiceConfig struct {
	API ports.QuoteAPI

	// Flags gates optional steps. Nil enables every step.
	Flags ports.FeatureFlags

	Logger *slog.Logger
}

// NewFetchService creates a fetch service.
func NewFetchService(cfg FetchServiceConfig) *FetchService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &FetchService{
		api:    cfg.API,
		flags:  cfg.Flags,
		logger: logger.With(slog.String("component", "app.FetchService")),
	}
}

// FetchQuoteAndCharacter fetches a random quote for show and resolves its character.
//
// The show name is passed through verbatim. Any failure is terminal: a quote
// is never returned without its character, and when the quote request fails
// no character request is made. With the death lookup enabled, the character
// and death requests run concurrently and either failing fails the fetch.
func (s *FetchService) FetchQuoteAndCharacter(ctx context.Context, show string) (*domain.Quote, *domain.Character, error) {
	logger := s.loggerFor(ctx).With(slog.String("show", show))

	quote, err := s.api.RandomQuote(ctx, show)
	if err != nil {
		logger.WarnContext(ctx, "quote fetch failed", slog.Any("error", err))
		return nil, nil, err
	}

	character, err := s.resolveCharacter(ctx, quote.Character)
	if err != nil {
		logger.WarnContext(ctx, "character fetch failed",
			slog.String("character", quote.Character),
			slog.Any("error", err),
		)
		return nil, nil, err
	}

	logger.InfoContext(ctx, "fetched quote",
		slog.String("character", character.Name),
		slog.Bool("dead", character.IsDead()),
	)

	return quote, character, nil
}

// FetchMany fetches one quote per show concurrently. Results are in input
// order; one show failing does not affect the others.
func (s *FetchService) FetchMany(ctx context.Context, shows ...string) []PartialResult[domain.Success] {
	return FetchMany(ctx, s, shows...)
}

// FetchMany runs f once per show concurrently, collecting every outcome in input order.
func FetchMany(ctx context.Context, f Fetcher, shows ...string) []PartialResult[domain.Success] {
	fns := make([]func(context.Context) (domain.Success, error), len(shows))

	for i, show := range shows {
		fns[i] = func(ctx context.Context) (domain.Success, error) {
			quote, character, err := f.FetchQuoteAndCharacter(ctx, show)
			if err != nil {
				return domain.Success{}, err
			}

			if quote == nil || character == nil {
				return domain.Success{}, errNoResult
			}

			return domain.Success{Quote: *quote, Character: *character}, nil
		}
	}

	return ParallelPartial(ctx, fns...)
}

func (s *FetchService) resolveCharacter(ctx context.Context, name string) (*domain.Character, error) {
	if !s.deathLookupEnabled(ctx) {
		return s.api.CharacterByName(ctx, name)
	}

	character, death, err := Parallel2(ctx,
		func(ctx context.Context) (*domain.Character, error) { return s.api.CharacterByName(ctx, name) },
		func(ctx context.Context) (*domain.Death, error) { return s.api.DeathOf(ctx, name) },
	)
	if err != nil {
		return nil, err
	}

	// A death embedded in the character record wins over the list lookup.
	if character.Death == nil {
		character.Death = death
	}

	return character, nil
}

func (s *FetchService) deathLookupEnabled(ctx context.Context) bool {
	if s.flags == nil {
		return true
	}

	return s.flags.IsEnabled(ctx, ports.FlagDeathLookup, true)
}

func (s *FetchService) loggerFor(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger)
}
