package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/bbquotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/bbquotes/internal/app"
	"github.com/jsamuelsen/bbquotes/internal/domain"
)

var testShows = []app.Show{
	{Slug: "breaking-bad", Name: "Breaking Bad"},
	{Slug: "better-call-saul", Name: "Better Call Saul"},
}

func newShowsRouter(t *testing.T, fetcher app.Fetcher) (*gin.Engine, *app.Screens) {
	t.Helper()

	screens, err := app.NewScreens(app.ScreensConfig{
		Shows:   testShows,
		Fetcher: fetcher,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(screens.Close)

	router := gin.New()
	NewShowsHandler(screens).RegisterRoutes(router.Group("/api/v1"))

	return router, screens
}

func do(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))

	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) dto.ViewStateResponse {
	t.Helper()

	var resp dto.ViewStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestNewShowsHandler_NilScreensPanics(t *testing.T) {
	assert.Panics(t, func() { NewShowsHandler(nil) })
}

func TestShowsHandler_ListShows(t *testing.T) {
	router, _ := newShowsRouter(t, app.FetcherFunc(func(context.Context, string) (*domain.Quote, *domain.Character, error) {
		return nil, nil, nil
	}))

	w := do(router, http.MethodGet, "/api/v1/shows")
	require.Equal(t, http.StatusOK, w.Code)

	var resp []dto.ShowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []dto.ShowResponse{
		{Slug: "breaking-bad", Name: "Breaking Bad", Key: "breakingbad", State: "not_started"},
		{Slug: "better-call-saul", Name: "Better Call Saul", Key: "bettercallsaul", State: "not_started"},
	}, resp)
}

func TestShowsHandler_TriggerAndPoll(t *testing.T) {
	release := make(chan struct{})
	var gotShow string

	router, screens := newShowsRouter(t, app.FetcherFunc(func(ctx context.Context, show string) (*domain.Quote, *domain.Character, error) {
		gotShow = show
		select {
		case <-release:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
		q, c := knocks()
		return q, c, nil
	}))

	w := do(router, http.MethodPost, "/api/v1/shows/breaking-bad/fetch")
	require.Equal(t, http.StatusAccepted, w.Code)

	accepted := decodeState(t, w)
	assert.Equal(t, "fetching", accepted.Status)
	assert.Equal(t, uint64(1), accepted.Generation)
	assert.Nil(t, accepted.Quote)

	state := decodeState(t, do(router, http.MethodGet, "/api/v1/shows/breaking-bad/state"))
	assert.Equal(t, "fetching", state.Status)

	close(release)

	screen, _ := screens.Get("breaking-bad")
	require.Eventually(t, func() bool {
		return screen.State().Status() == domain.StatusSuccess
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, "Breaking Bad", gotShow)

	state = decodeState(t, do(router, http.MethodGet, "/api/v1/shows/breaking-bad/state"))
	assert.Equal(t, "success", state.Status)
	require.NotNil(t, state.Quote)
	require.NotNil(t, state.Character)
	assert.Equal(t, state.Quote.Character, state.Character.Name)
	assert.Nil(t, state.Error)
}

func TestShowsHandler_ConcurrentTriggersGetDistinctGenerations(t *testing.T) {
	router, _ := newShowsRouter(t, app.FetcherFunc(func(ctx context.Context, _ string) (*domain.Quote, *domain.Character, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}))

	const requests = 20

	gens := make(chan uint64, requests)

	var wg sync.WaitGroup
	for range requests {
		wg.Go(func() {
			w := do(router, http.MethodPost, "/api/v1/shows/breaking-bad/fetch")
			assert.Equal(t, http.StatusAccepted, w.Code)

			var resp dto.ViewStateResponse
			if assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp)) {
				gens <- resp.Generation
			}
		})
	}
	wg.Wait()
	close(gens)

	seen := make(map[uint64]bool, requests)
	for gen := range gens {
		assert.False(t, seen[gen], "generation %d returned twice", gen)
		seen[gen] = true
	}
	assert.Len(t, seen, requests)
}

func TestShowsHandler_TriggerWait(t *testing.T) {
	router, _ := newShowsRouter(t, app.FetcherFunc(func(context.Context, string) (*domain.Quote, *domain.Character, error) {
		return nil, nil, domain.NewBadResponseError("fetch random quote", 500)
	}))

	w := do(router, http.MethodPost, "/api/v1/shows/better-call-saul/fetch?wait=true")
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeState(t, w)
	assert.Equal(t, "Better Call Saul", state.Show)
	assert.Equal(t, "failed", state.Status)
	require.NotNil(t, state.Error)
	assert.Equal(t, dto.ErrorCodeBadGateway, state.Error.Code)
	assert.Equal(t, 500, state.Error.UpstreamStatus)
}

func TestShowsHandler_TriggerInvalidWait(t *testing.T) {
	router, _ := newShowsRouter(t, app.FetcherFunc(func(context.Context, string) (*domain.Quote, *domain.Character, error) {
		return nil, nil, nil
	}))

	w := do(router, http.MethodPost, "/api/v1/shows/breaking-bad/fetch?wait=maybe")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	state := decodeState(t, do(router, http.MethodGet, "/api/v1/shows/breaking-bad/state"))
	assert.Equal(t, "not_started", state.Status, "invalid request does not trigger")
}

func TestShowsHandler_UnknownShow(t *testing.T) {
	router, _ := newShowsRouter(t, app.FetcherFunc(func(context.Context, string) (*domain.Quote, *domain.Character, error) {
		return nil, nil, nil
	}))

	for _, req := range []struct{ method, target string }{
		{http.MethodPost, "/api/v1/shows/the-wire/fetch"},
		{http.MethodGet, "/api/v1/shows/the-wire/state"},
	} {
		w := do(router, req.method, req.target)
		assert.Equal(t, http.StatusNotFound, w.Code, req.target)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrorCodeNotFound, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "the-wire")
	}
}
