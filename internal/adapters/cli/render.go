package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"

	"github.com/jsamuelsen/bbquotes/internal/app"
	"github.com/jsamuelsen/bbquotes/internal/domain"
)

// DefaultWidth is the card width used until the terminal size is known.
const DefaultWidth = 72

const minWidth = 24

var (
	defaultAccent = lipgloss.Color("#89b4fa")
	errorColor    = lipgloss.Color("#f38ba8")
	faintColor    = lipgloss.Color("#6c7086")
)

// showAccents maps domain.ShowKey values to each show's accent colour.
var showAccents = map[string]lipgloss.Color{
	"breakingbad":    lipgloss.Color("#a6e3a1"),
	"bettercallsaul": lipgloss.Color("#f9e2af"),
	"elcamino":       lipgloss.Color("#fab387"),
}

// Accent returns the accent colour of show.
func Accent(show string) lipgloss.Color {
	if c, ok := showAccents[domain.ShowKey(show)]; ok {
		return c
	}

	return defaultAccent
}

// Renderer turns view states into styled terminal text.
// Colour support is detected from the writer it was created for.
type Renderer struct {
	lg    *lipgloss.Renderer
	width int
}

// NewRenderer creates a renderer for output written to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		lg:    lipgloss.NewRenderer(w),
		width: DefaultWidth,
	}
}

// SetWidth sets the outer width of cards. Values below a usable minimum are clamped.
func (r *Renderer) SetWidth(width int) {
	r.width = max(width, minWidth)
}

// Width returns the outer width of cards.
func (r *Renderer) Width() int {
	return r.width
}

func (r *Renderer) faint() lipgloss.Style {
	return r.lg.NewStyle().Foreground(faintColor)
}

// State renders one view state of show. spinner is shown in front of the
// fetching line and may be empty.
func (r *Renderer) State(show string, state domain.ViewState, spinner string) string {
	switch s := state.(type) {
	case domain.NotStarted:
		return r.faint().Render(fmt.Sprintf("No %s quote yet.", show))
	case domain.Fetching:
		line := fmt.Sprintf("Fetching a %s quote...", show)
		if spinner != "" {
			line = spinner + " " + line
		}

		return r.lg.NewStyle().Foreground(Accent(show)).Render(line)
	case domain.Success:
		return r.Card(s)
	case domain.Failed:
		return r.Failure(show, s.Err)
	default:
		return ""
	}
}

// Card renders a quote together with its character.
func (r *Renderer) Card(s domain.Success) string {
	accent := Accent(s.Quote.Show)
	inner := r.width - 4

	label := r.faint()
	quote := r.lg.NewStyle().Italic(true).Render(wordwrap.String(fmt.Sprintf("%q", s.Quote.Text), inner))
	speaker := r.lg.NewStyle().Bold(true).Foreground(accent).Render("- " + s.Quote.Character)

	lines := []string{quote, speaker, ""}

	c := s.Character
	field := func(name, value string) {
		if value == "" {
			return
		}

		lines = append(lines, wordwrap.String(label.Render(name+": ")+value, inner))
	}

	field("Portrayed by", c.PortrayedBy)
	field("Birthday", c.Birthday)
	field("Status", c.Status)
	field("Occupation", strings.Join(c.Occupations, ", "))
	field("Also known as", strings.Join(c.Aliases, ", "))

	if img := c.RandomImage(); img != nil {
		field("Image", img.String())
	}

	if c.Death != nil {
		field("Death", c.Death.Details)
		field("Last words", c.Death.LastWords)
	}

	return r.lg.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(r.width - 2).
		Render(strings.Join(lines, "\n"))
}

// Failure renders the error that ended a fetch for show.
func (r *Renderer) Failure(show string, err error) string {
	title := r.lg.NewStyle().Bold(true).Foreground(errorColor).
		Render(fmt.Sprintf("Could not fetch a %s quote", show))

	body := []string{title, wordwrap.String(DescribeError(err), r.width-4)}
	if err != nil {
		body = append(body, r.faint().Render(wordwrap.String(err.Error(), r.width-4)))
	}

	return r.lg.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(errorColor).
		Padding(0, 1).
		Width(r.width - 2).
		Render(strings.Join(body, "\n"))
}

// DescribeError explains a fetch failure in user terms.
func DescribeError(err error) string {
	switch {
	case err == nil:
		return "The fetch failed for an unknown reason."
	case domain.IsBadResponse(err):
		status, _ := domain.StatusCode(err)
		return fmt.Sprintf("The quotes API answered with status %d.", status)
	case domain.IsDecode(err):
		return "The quotes API sent a response that could not be read."
	case domain.IsNotFound(err):
		return "The quotes API has no record of this character."
	case domain.IsNetwork(err), domain.IsUnavailable(err):
		return "The quotes API could not be reached."
	default:
		return "The fetch failed."
	}
}

// Tabs renders the tab bar with the active show highlighted.
func (r *Renderer) Tabs(shows []app.Show, active int) string {
	tabs := lo.Map(shows, func(s app.Show, i int) string {
		style := r.lg.NewStyle().Padding(0, 1)
		if i == active {
			return style.Bold(true).Foreground(lipgloss.Color("#1e1e2e")).Background(Accent(s.Name)).Render(s.Name)
		}

		return style.Foreground(faintColor).Render(s.Name)
	})

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// ShowList renders the configured shows, one per line.
func (r *Renderer) ShowList(shows []app.Show) string {
	if len(shows) == 0 {
		return r.faint().Render("No shows configured.")
	}

	slugWidth := lo.Max(lo.Map(shows, func(s app.Show, _ int) int { return len(s.Slug) }))

	lines := lo.Map(shows, func(s app.Show, _ int) string {
		slug := r.faint().Render(s.Slug + strings.Repeat(" ", slugWidth-len(s.Slug)))
		name := r.lg.NewStyle().Bold(true).Foreground(Accent(s.Name)).Render(s.Name)

		return slug + "  " + name
	})

	return strings.Join(lines, "\n")
}
