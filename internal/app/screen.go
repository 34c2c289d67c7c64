package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/bbquotes/internal/domain"
	"github.com/jsamuelsen/bbquotes/internal/platform/logging"
	"github.com/jsamuelsen/bbquotes/internal/platform/telemetry"
)

// subscriberBuffer is the number of states a slow subscriber may lag behind.
// When full, the oldest pending state is dropped so the latest always arrives.
const subscriberBuffer = 8

// Show identifies one screen: Name is sent upstream, Slug addresses it locally.
type Show struct {
	Slug string
	Name string
}

// Screen holds the view state of one show tab and is its only writer.
//
// Every Trigger starts a new generation and cancels the request of the
// previous one. Only the latest generation may move the state out of
// Fetching, so a reader never sees a result from a superseded request.
type Screen struct {
	show    Show
	fetcher Fetcher
	metrics *telemetry.FetchMetrics
	logger  *slog.Logger

	mu          sync.Mutex
	state       domain.ViewState
	generation  uint64
	cancel      context.CancelFunc
	subscribers map[uint64]chan domain.ViewState
	nextSubID   uint64
	closed      bool

	inflight sync.WaitGroup
}

// ScreenConfig contains the dependencies of a Screen.
type ScreenConfig struct {
	Show    Show
	Fetcher Fetcher

	// Metrics may be nil.
	Metrics *telemetry.FetchMetrics

	Logger *slog.Logger
}

// NewScreen creates a screen in the NotStarted state.
func NewScreen(cfg ScreenConfig) *Screen {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Screen{
		show:        cfg.Show,
		fetcher:     cfg.Fetcher,
		metrics:     cfg.Metrics,
		logger:      logger.With(slog.String("component", "app.Screen"), slog.String("screen", cfg.Show.Slug)),
		state:       domain.NotStarted{},
		subscribers: make(map[uint64]chan domain.ViewState),
	}
}

// Show returns the show this screen displays.
func (s *Screen) Show() Show {
	return s.show
}

// State returns the current view state.
func (s *Screen) State() domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Generation returns the number of fetches triggered so far.
func (s *Screen) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generation
}

// Snapshot returns the generation and the view state as one consistent pair.
func (s *Screen) Snapshot() (uint64, domain.ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generation, s.state
}

// Fetch is a fetch started by Trigger.
type Fetch struct {
	// Generation is the number Trigger assigned to this fetch. Only the
	// newest generation may write the screen's final state.
	Generation uint64

	// Done is closed once the fetch has finished, whether its result was
	// applied or discarded.
	Done <-chan struct{}
}

// Trigger starts a fetch. The state is Fetching when Trigger returns.
//
// The request outlives ctx's cancellation but keeps its values, so a
// trigger from a short-lived HTTP request still carries its request ID.
// On a closed screen nothing starts: Done is already closed and Generation
// is the last one assigned.
func (s *Screen) Trigger(ctx context.Context) Fetch {
	done := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		gen := s.generation
		s.mu.Unlock()
		close(done)

		return Fetch{Generation: gen, Done: done}
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.generation++
	gen := s.generation

	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.setLocked(domain.Fetching{})
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		defer close(done)
		defer cancel()

		s.run(logging.WithFetch(fetchCtx, s.show.Name, gen), gen)
	}()

	return Fetch{Generation: gen, Done: done}
}

func (s *Screen) run(ctx context.Context, gen uint64) {
	logger := logging.FromContextOr(ctx, s.logger)
	start := time.Now()

	logger.DebugContext(ctx, "fetch started")

	quote, character, err := s.fetcher.FetchQuoteAndCharacter(ctx, s.show.Name)

	var next domain.ViewState
	switch {
	case err != nil:
		next = domain.Failed{Err: err}
	case quote == nil || character == nil:
		next = domain.Failed{Err: errNoResult}
	default:
		next = domain.Success{Quote: *quote, Character: *character}
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.metrics.Superseded(s.show.Name)
		logger.DebugContext(ctx, "discarding superseded fetch result", slog.String("result", next.Status().String()))

		return
	}

	s.cancel = nil
	s.setLocked(next)
	s.mu.Unlock()

	elapsed := time.Since(start)
	s.metrics.Observe(s.show.Name, next.Status().String(), elapsed)

	if failed, ok := next.(domain.Failed); ok {
		logger.WarnContext(ctx, "fetch failed", slog.Duration("duration", elapsed), slog.Any("error", failed.Err))
		return
	}

	logger.InfoContext(ctx, "fetch succeeded", slog.Duration("duration", elapsed))
}

// Subscribe returns a channel that receives the current state immediately
// and every later transition. Call the returned function to unsubscribe;
// it closes the channel.
func (s *Screen) Subscribe() (<-chan domain.ViewState, func()) {
	ch := make(chan domain.ViewState, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		ch <- s.state
		close(ch)

		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	ch <- s.state

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close cancels any in-flight fetch, waits for it to return and closes all
// subscriptions. Later triggers are no-ops.
func (s *Screen) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	// Invalidate the in-flight generation so its result is discarded.
	s.generation++
	s.mu.Unlock()

	s.inflight.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// setLocked stores v and fans it out. s.mu must be held.
func (s *Screen) setLocked(v domain.ViewState) {
	s.state = v

	for _, ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// Screens is the fixed set of show screens, addressable by slug.
type Screens struct {
	ordered []*Screen
	bySlug  map[string]*Screen
}

// ScreensConfig contains the dependencies shared by all screens.
type ScreensConfig struct {
	Shows   []Show
	Fetcher Fetcher
	Metrics *telemetry.FetchMetrics
	Logger  *slog.Logger
}

// NewScreens creates one screen per show, in the given order.
func NewScreens(cfg ScreensConfig) (*Screens, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}

	s := &Screens{
		ordered: make([]*Screen, 0, len(cfg.Shows)),
		bySlug:  make(map[string]*Screen, len(cfg.Shows)),
	}

	for _, show := range cfg.Shows {
		if show.Slug == "" || show.Name == "" {
			return nil, fmt.Errorf("show %+v: slug and name are required", show)
		}

		if _, dup := s.bySlug[show.Slug]; dup {
			return nil, fmt.Errorf("duplicate show slug %q", show.Slug)
		}

		screen := NewScreen(ScreenConfig{
			Show:    show,
			Fetcher: cfg.Fetcher,
			Metrics: cfg.Metrics,
			Logger:  cfg.Logger,
		})

		s.ordered = append(s.ordered, screen)
		s.bySlug[show.Slug] = screen
	}

	return s, nil
}

// Get returns the screen for slug.
func (s *Screens) Get(slug string) (*Screen, bool) {
	screen, ok := s.bySlug[slug]
	return screen, ok
}

// All returns every screen in configuration order.
func (s *Screens) All() []*Screen {
	return append([]*Screen(nil), s.ordered...)
}

// Close closes every screen.
func (s *Screens) Close() {
	for _, screen := range s.ordered {
		screen.Close()
	}
}
