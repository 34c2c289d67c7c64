package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jsamuelsen/bbquotes/internal/adapters/clients"
	"github.com/jsamuelsen/bbquotes/internal/domain"
	"github.com/jsamuelsen/bbquotes/internal/platform/logging"
)

const (
	pathRandomQuote = "/quotes/random"
	pathCharacters  = "/characters"
	pathDeaths      = "/deaths"
)

// BreakingBadConfig configures a BreakingBadAdapter.
type BreakingBadConfig struct {
	// Client is the instrumented HTTP client. Its BaseURL points at the API root.
	Client *clients.Client

	// ServiceName overrides the name used in errors and health checks.
	// Defaults to the client's service name.
	ServiceName string

	Logger *slog.Logger
}

// BreakingBadAdapter implements ports.QuoteAPI and ports.HealthChecker
// against the Breaking Bad quotes API.
type BreakingBadAdapter struct {
	BaseAdapter
	logger *slog.Logger
}

// NewBreakingBadAdapter creates the adapter. Panics if Client is nil.
func NewBreakingBadAdapter(cfg BreakingBadConfig) *BreakingBadAdapter {
	if cfg.Client == nil {
		panic("BreakingBadAdapter: Client is required")
	}

	name := cfg.ServiceName
	if name == "" {
		name = cfg.Client.ServiceName()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BreakingBadAdapter{
		BaseAdapter: NewBaseAdapter(cfg.Client, name),
		logger:      logger.With(slog.String("component", "acl.BreakingBadAdapter")),
	}
}

// quoteDTO is the /quotes/random payload. Some deployments name the show
// field "production", matching the query parameter.
type quoteDTO struct {
	Quote      string `json:"quote"      validate:"required"`
	Character  string `json:"character"  validate:"required"`
	Show       string `json:"show"       validate:"required_without=Production"`
	Production string `json:"production"`
}

type characterDTO struct {
	Name        string    `json:"name"         validate:"required"`
	Birthday    string    `json:"birthday"     validate:"required"`
	Occupations []string  `json:"occupations"  validate:"required"`
	Images      []string  `json:"images"       validate:"required,dive,url"`
	Aliases     []string  `json:"aliases"      validate:"required"`
	Status      string    `json:"status"       validate:"required"`
	PortrayedBy string    `json:"portrayed_by" validate:"required"`
	Death       *deathDTO `json:"death"        validate:"omitempty"`
}

type deathDTO struct {
	Character string `json:"character"  validate:"required"`
	Image     string `json:"image"      validate:"required,url"`
	Details   string `json:"details"    validate:"required"`
	LastWords string `json:"last_words" validate:"required"`
}

// RandomQuote implements ports.QuoteAPI.
func (a *BreakingBadAdapter) RandomQuote(ctx context.Context, show string) (*domain.Quote, error) {
	a.logger.DebugContext(ctx, "fetching random quote", slog.String("show", show))

	body, err := a.Get(ctx, pathRandomQuote, url.Values{"production": {show}}, "fetch random quote")
	if err != nil {
		return nil, err
	}

	dto, err := DecodeResponse[quoteDTO](body, "quote")
	if err != nil {
		return nil, err
	}

	quote := translateQuote(dto)

	a.logger.Log(ctx, logging.LevelTrace, "translated quote",
		slog.String("character", quote.Character),
		slog.String("show", quote.Show),
	)

	return quote, nil
}

// CharacterByName implements ports.QuoteAPI. The upstream returns a list
// filtered by name; the first entry is the match.
func (a *BreakingBadAdapter) CharacterByName(ctx context.Context, name string) (*domain.Character, error) {
	a.logger.DebugContext(ctx, "fetching character", slog.String("character", name))

	body, err := a.Get(ctx, pathCharacters, url.Values{"name": {name}}, "fetch character")
	if err != nil {
		return nil, err
	}

	dtos, err := DecodeListResponse[characterDTO](body, "character")
	if err != nil {
		return nil, err
	}

	if len(dtos) == 0 {
		return nil, domain.NewNotFoundError("character", name)
	}

	return translateCharacter(&dtos[0])
}

// DeathOf implements ports.QuoteAPI. Returns nil, nil when no death is recorded.
func (a *BreakingBadAdapter) DeathOf(ctx context.Context, name string) (*domain.Death, error) {
	a.logger.DebugContext(ctx, "fetching deaths", slog.String("character", name))

	body, err := a.Get(ctx, pathDeaths, nil, "fetch deaths")
	if err != nil {
		return nil, err
	}

	dtos, err := DecodeListResponse[deathDTO](body, "death")
	if err != nil {
		return nil, err
	}

	for i := range dtos {
		if dtos[i].Character == name {
			return translateDeath(&dtos[i])
		}
	}

	return nil, nil //nolint:nilnil // absence of a death is meaningful, not an error
}

// Name implements ports.HealthChecker.
func (a *BreakingBadAdapter) Name() string {
	return a.ServiceName()
}

// Check implements ports.HealthChecker by requesting a random quote.
// While the circuit is open it fails without contacting the quotes API.
func (a *BreakingBadAdapter) Check(ctx context.Context) error {
	if a.Client().CircuitState() == clients.StateOpen {
		return fmt.Errorf("%s circuit open, retry in %s",
			a.ServiceName(), a.Client().CircuitRetryIn().Round(time.Second))
	}

	resp, err := a.Client().Get(ctx, pathRandomQuote, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", a.ServiceName(), resp.StatusCode)
	}

	return nil
}

func translateQuote(dto *quoteDTO) *domain.Quote {
	show := dto.Show
	if show == "" {
		show = dto.Production
	}

	return &domain.Quote{
		Text:      dto.Quote,
		Character: dto.Character,
		Show:      show,
	}
}

func translateCharacter(dto *characterDTO) (*domain.Character, error) {
	images, err := TranslateSlice[string, url.URL](dto.Images, parseURL)
	if err != nil {
		return nil, domain.NewDecodeError("character", err)
	}

	c := &domain.Character{
		Name:        dto.Name,
		Birthday:    dto.Birthday,
		Occupations: dto.Occupations,
		Images:      images,
		Aliases:     dto.Aliases,
		Status:      dto.Status,
		PortrayedBy: dto.PortrayedBy,
	}

	if dto.Death != nil {
		if c.Death, err = translateDeath(dto.Death); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func translateDeath(dto *deathDTO) (*domain.Death, error) {
	image, err := parseURL(&dto.Image)
	if err != nil {
		return nil, domain.NewDecodeError("death", err)
	}

	return &domain.Death{
		Character: dto.Character,
		Image:     image,
		Details:   dto.Details,
		LastWords: dto.LastWords,
	}, nil
}
