package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/bbquotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/bbquotes/internal/app"
	"github.com/jsamuelsen/bbquotes/internal/domain"
)

func knocks() (*domain.Quote, *domain.Character) {
	return &domain.Quote{Text: "I am the one who knocks", Character: "Walter White", Show: "Breaking Bad"},
		&domain.Character{
			Name:        "Walter White",
			Images:      []*url.URL{{Scheme: "https", Host: "example.com", Path: "/walter.jpg"}},
			PortrayedBy: "Bryan Cranston",
			Death:       &domain.Death{Character: "Walter White", LastWords: "None"},
		}
}

func serveQuote(t *testing.T, fetcher app.Fetcher, target string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	NewQuoteHandler(fetcher).RegisterRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	return w
}

func TestNewQuoteHandler_NilFetcherPanics(t *testing.T) {
	assert.Panics(t, func() { NewQuoteHandler(nil) })
}

func TestQuoteHandler_GetRandomQuote(t *testing.T) {
	var gotShow string
	fetcher := app.FetcherFunc(func(_ context.Context, show string) (*domain.Quote, *domain.Character, error) {
		gotShow = show
		q, c := knocks()
		return q, c, nil
	})

	w := serveQuote(t, fetcher, "/api/v1/quotes/random?production=Better+Call+Saul")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Better Call Saul", gotShow)

	var resp dto.QuoteWithCharacterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "I am the one who knocks", resp.Quote.Text)
	assert.Equal(t, "Walter White", resp.Character.Name)
	assert.Equal(t, []string{"https://example.com/walter.jpg"}, resp.Character.Images)
	require.NotNil(t, resp.Character.Death)
	assert.Equal(t, "None", resp.Character.Death.LastWords)
}

func TestQuoteHandler_GetRandomQuote_Validation(t *testing.T) {
	fetcher := app.FetcherFunc(func(context.Context, string) (*domain.Quote, *domain.Character, error) {
		t.Fatal("fetcher must not be called")
		return nil, nil, nil
	})

	for _, target := range []string{"/api/v1/quotes/random", "/api/v1/quotes/random?production=%20%20"} {
		w := serveQuote(t, fetcher, target)

		assert.Equal(t, http.StatusBadRequest, w.Code, target)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrorCodeValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "production")
	}
}

func TestQuoteHandler_GetRandomQuote_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"bad response", domain.NewBadResponseError("fetch random quote", 404), http.StatusBadGateway, dto.ErrorCodeBadGateway},
		{"decode", domain.NewDecodeError("quote", errors.New("unexpected EOF")), http.StatusBadGateway, dto.ErrorCodeUpstreamDecode},
		{"network", domain.NewNetworkError("breaking-bad-api", errors.New("dial tcp: connection refused")), http.StatusServiceUnavailable, dto.ErrorCodeUnavailable},
		{"character not found", domain.NewNotFoundError("character", "Nobody"), http.StatusNotFound, dto.ErrorCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := app.FetcherFunc(func(context.Context, string) (*domain.Quote, *domain.Character, error) {
				return nil, nil, tt.err
			})

			w := serveQuote(t, fetcher, "/api/v1/quotes/random?production=Breaking+Bad")

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestQuoteHandler_GetRandomQuote_EmptyResult(t *testing.T) {
	fetcher := app.FetcherFunc(func(context.Context, string) (*domain.Quote, *domain.Character, error) {
		q, _ := knocks()
		return q, nil, nil
	})

	w := serveQuote(t, fetcher, "/api/v1/quotes/random?production=Breaking+Bad")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "I am the one who knocks")
}
