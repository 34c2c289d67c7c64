package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/bbquotes/internal/app"
	"github.com/jsamuelsen/bbquotes/internal/domain"
)

func newShowsCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "shows",
		Short: "List the configured shows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			_, err := fmt.Fprintln(w, NewRenderer(w).ShowList(e.shows))

			return err
		},
	}
}

func newQuoteCommand(e *env) *cobra.Command {
	var (
		show string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Fetch a random quote and the character who said it",
		Example: `  bbquotes quote --show "Better Call Saul"
  bbquotes quote --show el-camino
  bbquotes quote --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			r := NewRenderer(w)

			if all {
				return fetchAll(cmd.Context(), e, r, w)
			}

			return fetchOne(cmd.Context(), e, e.resolveShow(show), r, w)
		},
	}

	cmd.Flags().StringVarP(&show, "show", "s", "Breaking Bad", "Show name or slug; unknown names are sent as given")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Fetch one quote for every configured show")
	cmd.MarkFlagsMutuallyExclusive("show", "all")
	lo.Must0(cmd.RegisterFlagCompletionFunc("show", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return e.showNames(), cobra.ShellCompDirectiveNoFileComp
	}))

	return cmd
}

// fetchOne drives a screen for show and prints every state it passes through.
func fetchOne(ctx context.Context, e *env, show app.Show, r *Renderer, w io.Writer) error {
	screen := app.NewScreen(app.ScreenConfig{
		Show:    show,
		Fetcher: e.fetcher,
		Logger:  e.logger,
	})
	defer screen.Close()

	states, unsubscribe := screen.Subscribe()
	defer unsubscribe()

	screen.Trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case state, ok := <-states:
			if !ok {
				return errors.New("screen closed before the fetch finished")
			}

			if _, isNotStarted := state.(domain.NotStarted); isNotStarted {
				continue
			}

			if _, err := fmt.Fprintln(w, r.State(show.Name, state, "")); err != nil {
				return err
			}

			switch s := state.(type) {
			case domain.Success:
				return nil
			case domain.Failed:
				return fmt.Errorf("%w: %s: %w", ErrFetchFailed, show.Name, s.Err)
			}
		}
	}
}

// fetchAll fetches one quote per configured show concurrently and prints
// them in configuration order.
func fetchAll(ctx context.Context, e *env, r *Renderer, w io.Writer) error {
	if len(e.shows) == 0 {
		return errors.New("no shows configured")
	}

	results := app.FetchMany(ctx, e.fetcher, e.showNames()...)

	var errs []error

	for i, res := range results {
		name := e.shows[i].Name

		var state domain.ViewState = res.Value
		if res.Err != nil {
			state = domain.Failed{Err: res.Err}
			errs = append(errs, fmt.Errorf("%s: %w", name, res.Err))
		}

		if _, err := fmt.Fprintln(w, r.State(name, state, "")); err != nil {
			return err
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrFetchFailed, errors.Join(errs...))
	}

	return nil
}
