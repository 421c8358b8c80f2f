package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ebarkhatov/unihttp/internal/config"
	"github.com/ebarkhatov/unihttp/internal/logger"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "unihttp",
		Short: "Execute HTTP requests with timeouts, retries, and progress reporting.",
		Long: `unihttp is a CLI tool for executing HTTP requests against any server.
It supports:
- Plain GET, POST, PUT and DELETE requests
- Downloads with a progress bar and atomic file placement
- Uploads with upload progress reporting
- Per-request header, timeout and retry overrides

Defaults such as the base URL, headers and timeouts come from a YAML
configuration file and can be overridden per call.`,
		PersistentPreRun: initConfig,
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	persistentFlags := rootCmd.PersistentFlags()

	persistentFlags.StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	persistentFlags.StringP(
		"base-url",
		"b",
		"",
		"base URL prefixed to relative request paths.")

	persistentFlags.StringP(
		"timeout",
		"t",
		"",
		"per-attempt timeout, for example: 6s, 1500ms.")

	persistentFlags.Int64P(
		"retries",
		"r",
		0,
		"number of re-attempts after a failed request.")

	persistentFlags.String(
		"credentials",
		"",
		"credentials policy: omit, same-origin or include.")

	persistentFlags.String(
		"log-level",
		"",
		"logging verbosity: debug, info, warn or error.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	persistentFlags := rootCmd.PersistentFlags()

	if flag := persistentFlags.Lookup("base-url"); flag != nil && flag.Changed {
		cfg.BaseURL, _ = persistentFlags.GetString("base-url")
	}

	if flag := persistentFlags.Lookup("timeout"); flag != nil && flag.Changed {
		cfg.Timeout, _ = persistentFlags.GetString("timeout")
	}

	if flag := persistentFlags.Lookup("retries"); flag != nil && flag.Changed {
		cfg.Retries, _ = persistentFlags.GetInt64("retries")
	}

	if flag := persistentFlags.Lookup("credentials"); flag != nil && flag.Changed {
		cfg.Credentials, _ = persistentFlags.GetString("credentials")
	}

	if flag := persistentFlags.Lookup("log-level"); flag != nil && flag.Changed {
		cfg.LogLevel, _ = persistentFlags.GetString("log-level")
	}

	if flag := flags.Lookup("speed-limit"); flag != nil && flag.Changed {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	logger.SetLevel(cfg.ParsedLogLevel)

	return nil
}
