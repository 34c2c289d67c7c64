package dto

import (
	"github.com/jsamuelsen/bbquotes/internal/domain"
)

// ShowResponse describes one configured show screen.
type ShowResponse struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Key   string `json:"key"`
	State string `json:"state"`
}

// QuoteResponse is the API representation of a quote.
type QuoteResponse struct {
	Text      string `json:"quote"`
	Character string `json:"character"`
	Show      string `json:"show"`
}

// DeathResponse is the API representation of a character's death.
type DeathResponse struct {
	Character string `json:"character"`
	Image     string `json:"image,omitempty"`
	Details   string `json:"details"`
	LastWords string `json:"lastWords"`
}

// CharacterResponse is the API representation of a character.
type CharacterResponse struct {
	Name        string         `json:"name"`
	Birthday    string         `json:"birthday"`
	Occupations []string       `json:"occupations"`
	Images      []string       `json:"images"`
	Aliases     []string       `json:"aliases"`
	Status      string         `json:"status"`
	PortrayedBy string         `json:"portrayedBy"`
	Death       *DeathResponse `json:"death,omitempty"`
}

// QuoteWithCharacterResponse pairs a quote with its resolved character.
type QuoteWithCharacterResponse struct {
	Quote     QuoteResponse     `json:"quote"`
	Character CharacterResponse `json:"character"`
}

// ViewStateResponse is the API representation of a screen's current state.
// Quote and Character are set only for "success", Error only for "failed".
type ViewStateResponse struct {
	Show       string             `json:"show"`
	Status     string             `json:"status"`
	Generation uint64             `json:"generation"`
	Quote      *QuoteResponse     `json:"quote,omitempty"`
	Character  *CharacterResponse `json:"character,omitempty"`
	Error      *ErrorDetail       `json:"error,omitempty"`
}

// RandomQuoteRequest holds the query parameters of GET /quotes/random.
type RandomQuoteRequest struct {
	Production string `form:"production" json:"production" validate:"required,notempty,showname,max=100"`
}

// FromQuote converts a domain quote to its API representation.
func FromQuote(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		Text:      q.Text,
		Character: q.Character,
		Show:      q.Show,
	}
}

// FromCharacter converts a domain character to its API representation.
func FromCharacter(c domain.Character) CharacterResponse {
	resp := CharacterResponse{
		Name:        c.Name,
		Birthday:    c.Birthday,
		Occupations: nonNil(c.Occupations),
		Images:      make([]string, 0, len(c.Images)),
		Aliases:     nonNil(c.Aliases),
		Status:      c.Status,
		PortrayedBy: c.PortrayedBy,
	}

	for _, img := range c.Images {
		if img != nil {
			resp.Images = append(resp.Images, img.String())
		}
	}

	if c.Death != nil {
		resp.Death = &DeathResponse{
			Character: c.Death.Character,
			Details:   c.Death.Details,
			LastWords: c.Death.LastWords,
		}
		if c.Death.Image != nil {
			resp.Death.Image = c.Death.Image.String()
		}
	}

	return resp
}

// FromViewState converts a screen state to its API representation.
func FromViewState(show string, generation uint64, state domain.ViewState) ViewStateResponse {
	resp := ViewStateResponse{
		Show:       show,
		Status:     state.Status().String(),
		Generation: generation,
	}

	switch s := state.(type) {
	case domain.Success:
		quote := FromQuote(s.Quote)
		character := FromCharacter(s.Character)
		resp.Quote = &quote
		resp.Character = &character
	case domain.Failed:
		detail := ErrorDetailFor(s.Err)
		if s.Err != nil && detail.Code == ErrorCodeInternal {
			detail.Message = s.Err.Error()
		}
		resp.Error = &detail
	}

	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
