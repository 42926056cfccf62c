package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tinyhttpd/internal/app"
	"tinyhttpd/pkg/config"
	"tinyhttpd/pkg/shutdown"
	"tinyhttpd/pkg/state/logger"
)

// set build metadata
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const shutdownTimeout = 20 * time.Second

var flagVals config.Flags

// rootCmd serves when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tinyhttpd",
	Short: "A minimal HTTP/1.x static file server",
	Long: `tinyhttpd accepts one request per connection, serves files from a web
root on a fixed-size worker pool and stops cleanly on SIGINT, SIGTERM or an
"exit" typed on the console.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagVals.Config, "config", "c", "./config.yaml", "path to config file")
	pf.StringVar(&flagVals.Addr, "addr", "127.0.0.1:50000", "listen address (host:port)")
	pf.StringVar(&flagVals.WebRoot, "webroot", "www", "directory served for GET")
	pf.IntVar(&flagVals.Workers, "workers", 8, "worker pool size")
	pf.StringVar(&flagVals.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flagVals.NoConsole, "no-console", false, "do not read operator commands from stdin")
}

// loadConfig runs the config pipeline: .env, file, env, flags, validation.
func loadConfig(cmd *cobra.Command) (config.EffectiveConfigResult, error) {
	// load .env file if present
	_ = godotenv.Load(".env")

	flags := flagVals
	flags.Set = make(map[string]bool)
	for _, name := range []string{"config", "addr", "webroot", "workers", "log-level", "no-console"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			flags.Set[name] = true
		}
	}

	eff, err := config.LoadEffectiveConfig(flags)
	if err != nil {
		return eff, fmt.Errorf("build effective config: %w", err)
	}
	if err := config.ValidateConfig(&eff); err != nil {
		return eff, fmt.Errorf("invalid configuration: %w", err)
	}
	return eff, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	eff, err := loadConfig(cmd)
	if err != nil {
		shutdown.Abort("failed to load configuration", err)
		return err
	}

	// initialize logger after config is fully loaded
	logger.Init(eff.Config.Logging.Level)
	defer logger.Sync()
	logger.Info("effective_config_loaded", "source", eff.Source, "addr", eff.Addr)

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("failed to initialize app", err)
		return err
	}

	// set up context and signal handling for graceful shutdown
	ctx, cancel := shutdown.SetupSignalHandler(cmd.Context())
	defer cancel()

	runErr := a.Run(ctx)

	// bounded so teardown cannot hang forever
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_incomplete", "error", err)
	}

	if runErr != nil {
		shutdown.Abort("app run failed", runErr)
		return runErr
	}
	return nil
}
