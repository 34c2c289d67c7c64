package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/bbquotes/internal/app"
	"github.com/jsamuelsen/bbquotes/internal/domain"
)

func newTUICommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse quotes interactively, one tab per show",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(e.shows) == 0 {
				return errors.New("no shows configured")
			}

			screens, err := app.NewScreens(app.ScreensConfig{
				Shows:   e.shows,
				Fetcher: e.fetcher,
				Logger:  e.logger,
			})
			if err != nil {
				return err
			}
			defer screens.Close()

			m := newTUIModel(cmd.Context(), screens.All(), NewRenderer(cmd.OutOrStdout()))
			defer m.unsubscribe()

			_, err = tea.NewProgram(m,
				tea.WithContext(cmd.Context()),
				tea.WithAltScreen(),
				tea.WithOutput(cmd.OutOrStdout()),
			).Run()

			return err
		},
	}
}

type tuiKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Fetch key.Binding
	Quit  key.Binding
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Fetch, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newTUIKeyMap() tuiKeyMap {
	return tuiKeyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→/l", "next show"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("←/h", "previous show"),
		),
		Fetch: key.NewBinding(
			key.WithKeys("enter", " ", "r"),
			key.WithHelp("enter", "fetch quote"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// stateMsg delivers a view state from the screen at index. ok is false once
// the subscription has been closed.
type stateMsg struct {
	index int
	state domain.ViewState
	ok    bool
}

// tuiModel shows one tab per screen. Screens are the only writers of view
// state; the model only mirrors what their subscriptions deliver.
type tuiModel struct {
	ctx      context.Context
	screens  []*app.Screen
	subs     []<-chan domain.ViewState
	unsubs   []func()
	states   []domain.ViewState
	active   int
	spinner  spinner.Model
	keys     tuiKeyMap
	help     help.Model
	renderer *Renderer
}

func newTUIModel(ctx context.Context, screens []*app.Screen, r *Renderer) *tuiModel {
	m := &tuiModel{
		ctx:      ctx,
		screens:  screens,
		subs:     make([]<-chan domain.ViewState, len(screens)),
		unsubs:   make([]func(), len(screens)),
		states:   make([]domain.ViewState, len(screens)),
		keys:     newTUIKeyMap(),
		help:     help.New(),
		renderer: r,
	}

	for i, screen := range screens {
		m.subs[i], m.unsubs[i] = screen.Subscribe()
		m.states[i] = screen.State()
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	return m
}

func (m *tuiModel) unsubscribe() {
	for _, unsub := range m.unsubs {
		unsub()
	}
}

// waitForState blocks on the subscription of screen i.
func (m *tuiModel) waitForState(i int) tea.Cmd {
	ch := m.subs[i]

	return func() tea.Msg {
		state, ok := <-ch
		return stateMsg{index: i, state: state, ok: ok}
	}
}

func (m *tuiModel) shows() []app.Show {
	shows := make([]app.Show, len(m.screens))
	for i, s := range m.screens {
		shows[i] = s.Show()
	}

	return shows
}

func (m *tuiModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for i := range m.screens {
		cmds = append(cmds, m.waitForState(i))
	}

	return tea.Batch(cmds...)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.renderer.SetWidth(msg.Width)
		m.help.Width = msg.Width

		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.active = (m.active + 1) % len(m.screens)
		case key.Matches(msg, m.keys.Prev):
			m.active = (m.active + len(m.screens) - 1) % len(m.screens)
		case key.Matches(msg, m.keys.Fetch):
			m.screens[m.active].Trigger(m.ctx)
		}

		return m, nil

	case stateMsg:
		if !msg.ok {
			return m, nil
		}

		m.states[msg.index] = msg.state

		return m, m.waitForState(msg.index)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *tuiModel) View() string {
	show := m.screens[m.active].Show()

	var b strings.Builder

	b.WriteString(m.renderer.Tabs(m.shows(), m.active))
	b.WriteString("\n\n")
	b.WriteString(m.renderer.State(show.Name, m.states[m.active], m.spinner.View()))
	b.WriteString("\n\n")
	b.WriteString(m.renderer.faint().Render(m.help.View(m.keys)))

	return b.String()
}
