package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noelzubin/site_search/delegated"
	"github.com/noelzubin/site_search/embedded"
	"github.com/noelzubin/site_search/search/loader"
	"github.com/noelzubin/site_search/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	// registers the PagefindUI widget constructor
	_ "github.com/noelzubin/site_search/delegated/pagefind"
)

// session is what every command gets once config and logging are up.
type session struct {
	config *utils.Config
	logger *zap.Logger
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var configPath string
	s := &session{}

	cmd := &cobra.Command{
		Use:   "site_search",
		Short: "Search a static site from the terminal",
		Long: `site_search loads a site's search index, or mounts its search widget,
and answers queries as you type.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			config, err := utils.NewConfig(v, configPath)
			if err != nil {
				return err
			}
			logger, err := utils.NewLogger(config.LogFile, config.LogLevel)
			if err != nil {
				return err
			}
			s.config, s.logger = config, logger
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if s.logger != nil {
				_ = s.logger.Sync()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), s)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default ~/.config/site_search/config.yaml)")
	flags.String("site", "", "Origin of the site, e.g. https://example.com")
	flags.String("base-path", "/", "Path the site is served from")
	flags.String("mode", utils.ModeEmbedded, "Search mode: embedded or delegated")
	flags.Duration("fetch-timeout", loader.DefaultTimeout, "Timeout for every remote fetch")
	flags.String("opener", "xdg-open", "Command used to open a result")
	flags.String("log-file", "", "Log file (default ~/.config/site_search/debug.log)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("page-url", "", "Search page URL; its q parameter seeds the widget")

	for _, key := range []string{"site", "base_path", "mode", "fetch_timeout", "opener", "log_file", "log_level", "page_url"} {
		// Only flags set on the command line override file and env.
		flag := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
		if err := v.BindPFlag(key, flag); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(newQueryCmd(s))
	return cmd
}

func newQueryCmd(s *session) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run one query against the embedded index and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexURL, err := s.config.IndexURL()
			if err != nil {
				return err
			}
			base, err := s.config.BaseURL()
			if err != nil {
				return err
			}
			l := loader.New(loader.WithTimeout(s.config.FetchTimeout), loader.WithLogger(s.logger))
			return runQuery(cmd.Context(), cmd.OutOrStdout(), l, indexURL, base, strings.Join(args, " "), format, s.logger)
		},
	}
	cmd.Flags().StringVar(&format, "format", FormatText, "Output format: text, html or json")
	return cmd
}

// newBackend mounts the configured search mode.
func newBackend(ctx context.Context, config *utils.Config, logger *zap.Logger) (Backend, error) {
	base, err := config.BaseURL()
	if err != nil {
		return nil, err
	}

	if config.Mode == utils.ModeDelegated {
		boot := delegated.NewBootstrapper(ctx,
			delegated.Mount{ID: delegated.MountID, BasePath: base},
			config.PageURL,
			delegated.WithTimeout(config.FetchTimeout),
			delegated.WithLogger(logger),
		)
		return delegatedBackend{boot}, nil
	}

	indexURL, err := config.IndexURL()
	if err != nil {
		return nil, err
	}
	l := loader.New(loader.WithTimeout(config.FetchTimeout), loader.WithLogger(logger))
	return embeddedBackend{embedded.New(ctx, l, indexURL, logger)}, nil
}

func runTUI(ctx context.Context, s *session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	backend, err := newBackend(ctx, s.config, s.logger)
	if err != nil {
		return err
	}
	base, _ := s.config.BaseURL()

	s.logger.Info("starting", zap.String("mode", s.config.Mode), zap.String("base", base))

	// Create a new bubbletea Model
	m := New(backend, base, s.config.Opener, cancel, s.logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}
