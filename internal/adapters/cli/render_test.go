package cli

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen/bbquotes/internal/app"
	"github.com/jsamuelsen/bbquotes/internal/domain"
)

func knocks() (*domain.Quote, *domain.Character) {
	return &domain.Quote{Text: "I am the one who knocks", Character: "Walter White", Show: "Breaking Bad"},
		&domain.Character{
			Name:        "Walter White",
			Birthday:    "09-07-1958",
			Occupations: []string{"High School Chemistry Teacher", "Meth King Pin"},
			Images:      []*url.URL{{Scheme: "https", Host: "example.com", Path: "/walter.jpg"}},
			Aliases:     []string{"Heisenberg"},
			Status:      "Presumed dead",
			PortrayedBy: "Bryan Cranston",
			Death:       &domain.Death{Character: "Walter White", Details: "Shot by his own M60.", LastWords: "None"},
		}
}

func TestAccent(t *testing.T) {
	assert.Equal(t, Accent("Breaking Bad"), Accent("breaking bad"))
	assert.NotEqual(t, Accent("Breaking Bad"), Accent("Better Call Saul"))
	assert.Equal(t, defaultAccent, Accent("Malcolm in the Middle"))
}

func TestRenderer_State(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{})
	q, c := knocks()

	t.Run("not started", func(t *testing.T) {
		assert.Contains(t, r.State("El Camino", domain.NotStarted{}, ""), "No El Camino quote yet.")
	})

	t.Run("fetching with spinner", func(t *testing.T) {
		out := r.State("El Camino", domain.Fetching{}, "*")
		assert.Contains(t, out, "* Fetching a El Camino quote...")
	})

	t.Run("success", func(t *testing.T) {
		out := r.State("Breaking Bad", domain.Success{Quote: *q, Character: *c}, "")

		for _, want := range []string{
			`"I am the one who knocks"`,
			"- Walter White",
			"Portrayed by: Bryan Cranston",
			"Also known as: Heisenberg",
			"Image: https://example.com/walter.jpg",
			"Last words: None",
		} {
			assert.Contains(t, out, want)
		}
	})

	t.Run("success without death", func(t *testing.T) {
		alive := *c
		alive.Death = nil

		out := r.State("Breaking Bad", domain.Success{Quote: *q, Character: alive}, "")
		assert.NotContains(t, out, "Last words")
	})

	t.Run("failed", func(t *testing.T) {
		out := r.State("Breaking Bad", domain.Failed{Err: domain.NewBadResponseError("fetch random quote", 503)}, "")

		assert.Contains(t, out, "Could not fetch a Breaking Bad quote")
		assert.Contains(t, out, "status 503")
	})
}

func TestRenderer_CardWidth(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{})
	r.SetWidth(40)

	q, c := knocks()
	q.Text = strings.Repeat("Say my name. ", 10)

	for _, line := range strings.Split(r.Card(domain.Success{Quote: *q, Character: *c}), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 40, line)
	}
}

func TestRenderer_SetWidthClamps(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{})
	r.SetWidth(3)

	assert.Equal(t, minWidth, r.Width())
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "unknown reason"},
		{"bad response", domain.NewBadResponseError("fetch character", 404), "status 404"},
		{"decode", domain.NewDecodeError("quote", errors.New("unexpected EOF")), "could not be read"},
		{"network", domain.NewNetworkError("breaking-bad-api", errors.New("connection refused")), "could not be reached"},
		{"unavailable", domain.NewUnavailableError("breaking-bad-api", "circuit open"), "could not be reached"},
		{"not found", domain.NewNotFoundError("character", "Gus"), "no record"},
		{"other", errors.New("boom"), "The fetch failed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, DescribeError(tt.err), tt.want)
		})
	}
}

func TestRenderer_ShowList(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{})

	out := r.ShowList([]app.Show{
		{Slug: "breaking-bad", Name: "Breaking Bad"},
		{Slug: "el-camino", Name: "El Camino"},
	})

	lines := strings.Split(out, "\n")
	if assert.Len(t, lines, 2) {
		assert.True(t, strings.HasPrefix(lines[0], "breaking-bad"))
		assert.Contains(t, lines[0], "Breaking Bad")
		assert.True(t, strings.HasPrefix(lines[1], "el-camino"))
		assert.Contains(t, lines[1], "El Camino")
	}
	assert.Contains(t, r.ShowList(nil), "No shows configured.")
}

func TestRenderer_Tabs(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{})

	out := r.Tabs([]app.Show{{Slug: "a", Name: "Breaking Bad"}, {Slug: "b", Name: "El Camino"}}, 1)

	assert.Contains(t, out, "Breaking Bad")
	assert.Contains(t, out, "El Camino")
}
