// Package cli wires the rotv commands together.  Running `rotv` with no subcommand opens the terminal UI.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/domain"
	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/PizzaHomicide/rotv/internal/scraper"
	"github.com/PizzaHomicide/rotv/internal/service"
	"github.com/PizzaHomicide/rotv/internal/ui/tui"
	"github.com/PizzaHomicide/rotv/internal/version"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *log.Logger

	logStderr bool
)

var rootCmd = &cobra.Command{
	Use:   "rotv",
	Short: "Watch Romanian TV channels listed on rds.live",
	Long: `rotv scrapes the rds.live channel directory and resolves channel pages into playable streams.

Without a subcommand it opens the terminal UI.  Streams are handed to an external player (mpv by default).`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newChannelService()
		if err != nil {
			return err
		}

		if err := tui.Run(cfg, svc); err != nil {
			log.Error("Unhandled error while running TUI", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&logStderr, "log-stderr", false, "write logs to stderr instead of the log file")
}

// setup loads the configuration and initialises the global logger before any command runs
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	logPath := cfg.Logging.FilePath
	if logStderr {
		logPath = log.StderrPath
	}

	l, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: logPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	logger = l
	log.SetDefaultLogger(logger)

	log.Info("Starting up rotv", "version", version.GetVersion(), "build_time", version.GetBuildTime(), "command", cmd.Name())
	return nil
}

func shutdown() {
	if logger == nil {
		return
	}
	log.Info("rotv shutting down.  Goodbye!")
	log.SetDefaultLogger(nil)
	logger.Close()
	logger = nil
}

// newChannelService builds the cached channel service on top of the provider client
func newChannelService() (*service.ChannelService, error) {
	client, err := scraper.NewClient(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return service.NewChannelService(client, client, cfg.Cache.TTL, cfg.Provider.Timeout), nil
}

func execute(ctx context.Context) error {
	defer shutdown()
	return rootCmd.ExecuteContext(ctx)
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := execute(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", domain.UserMessage(err))
		os.Exit(1)
	}
}
