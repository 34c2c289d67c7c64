package acl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/bbquotes/internal/adapters/clients"
	"github.com/jsamuelsen/bbquotes/internal/domain"
	"github.com/jsamuelsen/bbquotes/internal/platform/config"
)

const (
	walterJSON = `[{
		"name": "Walter White",
		"birthday": "09-07-1958",
		"occupations": ["High School Chemistry Teacher", "Meth King Pin"],
		"images": ["https://example.com/walter-1.jpg", "https://example.com/walter-2.jpg"],
		"aliases": ["Heisenberg"],
		"status": "Deceased",
		"portrayed_by": "Bryan Cranston"
	}]`

	deathsJSON = `[{
		"character": "Gustavo Fring",
		"image": "https://example.com/gus-death.jpg",
		"details": "Killed by a pipe bomb.",
		"last_words": "(Adjusts his tie)"
	}, {
		"character": "Walter White",
		"image": "https://example.com/walt-death.jpg",
		"details": "Shot by his own machine gun.",
		"last_words": "None"
	}]`
)

// newTestAdapter starts an upstream double serving mux and returns an adapter pointing at it.
func newTestAdapter(t *testing.T, mux http.Handler) *BreakingBadAdapter {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := clients.New(&clients.Config{
		ServiceName: "breaking-bad-api",
		BaseURL:     server.URL + "/api",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   10,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 3,
		},
	})
	require.NoError(t, err)

	return NewBreakingBadAdapter(BreakingBadConfig{
		Client: client,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestNewBreakingBadAdapter(t *testing.T) {
	assert.Panics(t, func() { NewBreakingBadAdapter(BreakingBadConfig{}) })

	a := newTestAdapter(t, http.NotFoundHandler())
	assert.Equal(t, "breaking-bad-api", a.Name())
	assert.Equal(t, "breaking-bad-api", a.ServiceName())
}

func TestRandomQuote_Success(t *testing.T) {
	var gotPath, gotProduction string

	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotProduction = r.URL.Query().Get("production")
		respondJSON(http.StatusOK, `{"quote":"I am the one who knocks","character":"Walter White","show":"Breaking Bad"}`)(w, r)
	}))

	quote, err := a.RandomQuote(context.Background(), "Breaking Bad")
	require.NoError(t, err)

	assert.Equal(t, "/api/quotes/random", gotPath)
	assert.Equal(t, "Breaking Bad", gotProduction)
	assert.Equal(t, &domain.Quote{
		Text:      "I am the one who knocks",
		Character: "Walter White",
		Show:      "Breaking Bad",
	}, quote)
}

func TestRandomQuote_ProductionAlias(t *testing.T) {
	a := newTestAdapter(t, respondJSON(http.StatusOK,
		`{"quote":"Did you know that you had all those chairs?","character":"Jesse Pinkman","production":"El Camino"}`))

	quote, err := a.RandomQuote(context.Background(), "El Camino")
	require.NoError(t, err)
	assert.Equal(t, "El Camino", quote.Show)
}

func TestRandomQuote_BadResponse(t *testing.T) {
	for _, status := range []int{
		http.StatusNotModified,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusInternalServerError,
		http.StatusBadGateway,
	} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			a := newTestAdapter(t, respondJSON(status, `{"quote":"ignored","character":"x","show":"y"}`))

			_, err := a.RandomQuote(context.Background(), "Breaking Bad")
			require.Error(t, err)

			assert.True(t, domain.IsBadResponse(err))
			code, ok := domain.StatusCode(err)
			require.True(t, ok)
			assert.Equal(t, status, code)
		})
	}
}

func TestRandomQuote_RedirectIsBadResponse(t *testing.T) {
	for _, status := range []int{
		http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect,
	} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var movedHits atomic.Int32

			mux := http.NewServeMux()
			mux.HandleFunc("/api/quotes/random", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/api/moved", status)
			})
			mux.HandleFunc("/api/moved", func(w http.ResponseWriter, r *http.Request) {
				movedHits.Add(1)
				respondJSON(http.StatusOK, `{"quote":"I am the one who knocks","character":"Walter White","show":"Breaking Bad"}`)(w, r)
			})

			a := newTestAdapter(t, mux)

			quote, err := a.RandomQuote(context.Background(), "Breaking Bad")
			require.Error(t, err)
			assert.Nil(t, quote)

			assert.True(t, domain.IsBadResponse(err), "got %v", err)
			code, ok := domain.StatusCode(err)
			require.True(t, ok)
			assert.Equal(t, status, code)
			assert.Zero(t, movedHits.Load(), "redirect must not be followed")
		})
	}
}

func TestRandomQuote_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"quote":`},
		{"wrong type", `{"quote":42,"character":"Walter White","show":"Breaking Bad"}`},
		{"missing character", `{"quote":"Say my name.","show":"Breaking Bad"}`},
		{"missing show", `{"quote":"Say my name.","character":"Walter White"}`},
		{"array instead of object", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, respondJSON(http.StatusOK, tt.body))

			_, err := a.RandomQuote(context.Background(), "Breaking Bad")
			require.Error(t, err)
			assert.True(t, domain.IsDecode(err), "got %v", err)
		})
	}
}

func TestRandomQuote_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := clients.New(&clients.Config{ServiceName: "breaking-bad-api", BaseURL: server.URL})
	require.NoError(t, err)
	server.Close()

	a := NewBreakingBadAdapter(BreakingBadConfig{Client: client})

	_, err = a.RandomQuote(context.Background(), "Breaking Bad")
	require.Error(t, err)
	assert.True(t, domain.IsNetwork(err))
	assert.ErrorIs(t, err, clients.ErrRequestFailed)
}

func TestCharacterByName(t *testing.T) {
	var gotName string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/characters", func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		if gotName != "Walter White" {
			respondJSON(http.StatusOK, `[]`)(w, r)
			return
		}
		respondJSON(http.StatusOK, walterJSON)(w, r)
	})
	a := newTestAdapter(t, mux)

	c, err := a.CharacterByName(context.Background(), "Walter White")
	require.NoError(t, err)

	assert.Equal(t, "Walter White", gotName)
	assert.Equal(t, "Walter White", c.Name)
	assert.Equal(t, "09-07-1958", c.Birthday)
	assert.Equal(t, []string{"High School Chemistry Teacher", "Meth King Pin"}, c.Occupations)
	assert.Equal(t, []string{"Heisenberg"}, c.Aliases)
	assert.Equal(t, "Deceased", c.Status)
	assert.Equal(t, "Bryan Cranston", c.PortrayedBy)
	require.Len(t, c.Images, 2)
	assert.Equal(t, "https://example.com/walter-1.jpg", c.Images[0].String())
	assert.Nil(t, c.Death, "death is resolved separately")

	_, err = a.CharacterByName(context.Background(), "Nobody")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestCharacterByName_InlineDeath(t *testing.T) {
	a := newTestAdapter(t, respondJSON(http.StatusOK, `[{
		"name": "Hector Salamanca", "birthday": "Unknown", "occupations": ["Cartel boss"],
		"images": ["https://example.com/tio.jpg"], "aliases": [], "status": "Deceased",
		"portrayed_by": "Mark Margolis",
		"death": {"character": "Hector Salamanca", "image": "https://example.com/tio-death.jpg",
		          "details": "Bell bomb.", "last_words": "Ding"}
	}]`))

	c, err := a.CharacterByName(context.Background(), "Hector Salamanca")
	require.NoError(t, err)

	require.NotNil(t, c.Death)
	assert.Equal(t, "Ding", c.Death.LastWords)
	assert.Empty(t, c.Aliases)
	assert.NotNil(t, c.Aliases, "empty list round-trips as empty, not absent")
}

func TestCharacterByName_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object instead of array", `{"name":"Walter White"}`},
		{"null", `null`},
		{"missing portrayed_by", `[{"name":"Walter White","birthday":"x","occupations":[],"images":[],"aliases":[],"status":"Alive"}]`},
		{"invalid image url", `[{"name":"Walter White","birthday":"x","occupations":[],"images":["not a url"],"aliases":[],"status":"Alive","portrayed_by":"Bryan Cranston"}]`},
		{"incomplete inline death", `[{"name":"Walter White","birthday":"x","occupations":[],"images":[],"aliases":[],"status":"Alive","portrayed_by":"Bryan Cranston","death":{"character":"Walter White"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, respondJSON(http.StatusOK, tt.body))

			_, err := a.CharacterByName(context.Background(), "Walter White")
			require.Error(t, err)
			assert.True(t, domain.IsDecode(err), "got %v", err)
		})
	}
}

func TestDeathOf(t *testing.T) {
	var calls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/deaths", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		respondJSON(http.StatusOK, deathsJSON)(w, r)
	})
	a := newTestAdapter(t, mux)

	death, err := a.DeathOf(context.Background(), "Walter White")
	require.NoError(t, err)
	require.NotNil(t, death)
	assert.Equal(t, "Walter White", death.Character)
	assert.Equal(t, "https://example.com/walt-death.jpg", death.Image.String())
	assert.Equal(t, "Shot by his own machine gun.", death.Details)
	assert.Equal(t, "None", death.LastWords)

	death, err = a.DeathOf(context.Background(), "Saul Goodman")
	require.NoError(t, err)
	assert.Nil(t, death)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDeathOf_Errors(t *testing.T) {
	a := newTestAdapter(t, respondJSON(http.StatusServiceUnavailable, `{"error":"maintenance"}`))
	_, err := a.DeathOf(context.Background(), "Walter White")
	assert.True(t, domain.IsBadResponse(err))

	a = newTestAdapter(t, respondJSON(http.StatusOK, `[{"character":"Walter White"}]`))
	_, err = a.DeathOf(context.Background(), "Walter White")
	assert.True(t, domain.IsDecode(err))
}

func TestBreakingBadAdapter_Check(t *testing.T) {
	a := newTestAdapter(t, respondJSON(http.StatusOK, `{"quote":"q","character":"c","show":"s"}`))
	require.NoError(t, a.Check(context.Background()))

	a = newTestAdapter(t, respondJSON(http.StatusInternalServerError, ``))
	err := a.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned status 500")
}

func TestBreakingBadAdapter_CheckCircuitOpen(t *testing.T) {
	var hits atomic.Int32

	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	for range 10 {
		require.Error(t, a.Check(context.Background()))
	}

	err := a.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open, retry in 30s")
	assert.Equal(t, int32(10), hits.Load(), "an open circuit must not reach the API")
}

// serveJSON answers every request with v encoded as JSON.
func serveJSON(t *testing.T, v any) http.HandlerFunc {
	t.Helper()

	body, err := json.Marshal(v)
	require.NoError(t, err)

	return respondJSON(http.StatusOK, string(body))
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)

	return u
}

func TestRandomQuote_RoundTrip(t *testing.T) {
	want := domain.Quote{Text: "I am the one who knocks", Character: "Walter White", Show: "Breaking Bad"}

	tests := []struct {
		name string
		wire quoteDTO
	}{
		{"show field", quoteDTO{Quote: want.Text, Character: want.Character, Show: want.Show}},
		{"production field", quoteDTO{Quote: want.Text, Character: want.Character, Production: want.Show}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, serveJSON(t, tt.wire))

			got, err := a.RandomQuote(context.Background(), want.Show)
			require.NoError(t, err)
			assert.Equal(t, want, *got)
		})
	}
}

func TestCharacterByName_RoundTrip(t *testing.T) {
	alive := domain.Character{
		Name:        "Saul Goodman",
		Birthday:    "Unknown",
		Occupations: []string{"Lawyer"},
		Images:      []*url.URL{mustParseURL(t, "https://example.com/saul.jpg")},
		Aliases:     []string{"Jimmy McGill"},
		Status:      "Alive",
		PortrayedBy: "Bob Odenkirk",
	}

	dead := domain.Character{
		Name:        "Walter White",
		Birthday:    "09-07-1958",
		Occupations: []string{"High School Chemistry Teacher", "Meth King Pin"},
		Images: []*url.URL{
			mustParseURL(t, "https://example.com/walter.jpg"),
			mustParseURL(t, "https://example.com/heisenberg.jpg"),
		},
		Aliases:     []string{"Heisenberg"},
		Status:      "Deceased",
		PortrayedBy: "Bryan Cranston",
		Death: &domain.Death{
			Character: "Walter White",
			Image:     mustParseURL(t, "https://example.com/walter-death.jpg"),
			Details:   "Shot by his own machine gun.",
			LastWords: "None",
		},
	}

	for _, want := range []domain.Character{alive, dead} {
		t.Run(want.Name, func(t *testing.T) {
			a := newTestAdapter(t, serveJSON(t, []characterDTO{toCharacterDTO(want)}))

			got, err := a.CharacterByName(context.Background(), want.Name)
			require.NoError(t, err)
			assert.Equal(t, want, *got)

			if want.Death == nil {
				assert.Nil(t, got.Death, "an absent death stays nil")
			}
		})
	}
}

func toCharacterDTO(c domain.Character) characterDTO {
	out := characterDTO{
		Name:        c.Name,
		Birthday:    c.Birthday,
		Occupations: c.Occupations,
		Aliases:     c.Aliases,
		Status:      c.Status,
		PortrayedBy: c.PortrayedBy,
	}

	for _, u := range c.Images {
		out.Images = append(out.Images, u.String())
	}

	if c.Death != nil {
		out.Death = &deathDTO{
			Character: c.Death.Character,
			Image:     c.Death.Image.String(),
			Details:   c.Death.Details,
			LastWords: c.Death.LastWords,
		}
	}

	return out
}
