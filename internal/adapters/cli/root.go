// Package cli is the terminal presentation adapter: a cobra command tree
// that drives show screens and renders their view states with lipgloss,
// plus an interactive bubbletea UI with one tab per show.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/bbquotes/internal/adapters/clients"
	"github.com/jsamuelsen/bbquotes/internal/adapters/clients/acl"
	"github.com/jsamuelsen/bbquotes/internal/app"
	"github.com/jsamuelsen/bbquotes/internal/domain"
	"github.com/jsamuelsen/bbquotes/internal/platform/config"
	"github.com/jsamuelsen/bbquotes/internal/platform/logging"
	"github.com/jsamuelsen/bbquotes/internal/ports"
)

// ErrFetchFailed is wrapped by command errors when a fetch ended in the
// failed state. Its view has already been rendered to the output.
var ErrFetchFailed = errors.New("fetch failed")

// Options configures the command tree.
type Options struct {
	// Version is printed by the version command.
	Version string

	// Fetcher replaces the configured quotes API stack when set.
	Fetcher app.Fetcher

	// Shows is used together with Fetcher. Without a Fetcher the shows
	// come from configuration.
	Shows []app.Show

	// Logger is used together with Fetcher. Nil discards logs.
	Logger *slog.Logger
}

// env is the state shared by all commands once PersistentPreRunE has run.
type env struct {
	opts Options

	profile  string
	logLevel string

	fetcher app.Fetcher
	shows   []app.Show
	logger  *slog.Logger
}

// NewRootCommand builds the bbquotes command tree.
func NewRootCommand(opts Options) *cobra.Command {
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:           "bbquotes",
		Short:         "Random Breaking Bad universe quotes in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.setup(cmd); err != nil {
				return err
			}

			// One correlation ID per invocation, forwarded to the quotes API.
			ctx := logging.WithContext(cmd.Context(), e.logger)
			cmd.SetContext(logging.WithCorrelationID(ctx, uuid.NewString()))

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&e.profile, "profile", "p", defaultProfile(), "Configuration profile (configs/<profile>.yaml)")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "warn", "Log level written to stderr (trace, debug, info, warn, error)")
	lo.Must0(root.RegisterFlagCompletionFunc("log-level", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"trace", "debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	}))

	root.AddCommand(
		newShowsCommand(e),
		newQuoteCommand(e),
		newTUICommand(e),
		newVersionCommand(opts.Version),
	)

	return root
}

func defaultProfile() string {
	if p := os.Getenv("APP_ENVIRONMENT"); p != "" {
		return p
	}

	return "local"
}

// setup builds the fetch stack from configuration, unless one was injected.
func (e *env) setup(cmd *cobra.Command) error {
	if e.opts.Fetcher != nil {
		e.fetcher = e.opts.Fetcher
		e.shows = e.opts.Shows
		e.logger = e.opts.Logger

		if e.logger == nil {
			e.logger = slog.New(slog.DiscardHandler)
		}

		return nil
	}

	cfg, err := config.Load(e.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e.logger = logging.NewWithWriter(&logging.Config{
		Level:   e.logLevel,
		Format:  "pretty",
		Service: cfg.App.Name,
		Version: e.opts.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, cmd.ErrOrStderr())

	httpClient, err := clients.New(clients.ConfigFor(
		cfg.Services.BreakingBad,
		cfg.Client,
		"bbquotes-cli/"+e.opts.Version,
		e.logger,
	))
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	e.fetcher = app.NewFetchService(app.FetchServiceConfig{
		API: acl.NewBreakingBadAdapter(acl.BreakingBadConfig{
			Client: httpClient,
			Logger: e.logger,
		}),
		Flags:  ports.StaticFlags(cfg.Features),
		Logger: e.logger,
	})

	e.shows = lo.Map(cfg.Shows, func(s config.ShowConfig, _ int) app.Show {
		return app.Show{Slug: s.Slug, Name: s.Name}
	})

	return nil
}

// resolveShow finds a configured show by slug or case-insensitive name.
// Unknown values are used verbatim as the show name.
func (e *env) resolveShow(value string) app.Show {
	if show, ok := lo.Find(e.shows, func(s app.Show) bool {
		return s.Slug == value || strings.EqualFold(s.Name, value)
	}); ok {
		return show
	}

	return app.Show{Slug: domain.ShowKey(value), Name: value}
}

func (e *env) showNames() []string {
	return lo.Map(e.shows, func(s app.Show, _ int) string { return s.Name })
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No configuration is needed to print the version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "bbquotes", version)
			return err
		},
	}
}
