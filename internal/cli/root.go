// Package cli provides the command-line interface for nabotix.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/api"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/config"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/http"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/version"
)

var (
	// Global flags
	cfgFile     string
	baseURLFlag string
	logLevel    string
	verbose     bool
	jsonOutput  bool

	// Global logger
	logger *logging.Logger

	// Configuration loaded in PersistentPreRunE
	appConfig *config.Config

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nabotix",
		Short: "Nabotix - research dataset sharing platform client",
		Long: `Nabotix ` + version.Version + ` - Built: ` + version.BuildTime + `
Command-line client for the Nabotix research dataset sharing platform.

Browse published datasets and research outputs, review access applications,
manage institution users and watch the pending-review counters.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			appConfig = cfg

			level := cfg.Log.Level
			if verbose {
				level = "debug"
			}
			if logger != nil {
				_ = logger.Close()
			}
			logger = logging.NewLogger(logging.Options{
				Level:      level,
				File:       cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
			})
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Platform base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate a shell completion script",
		Long: `Generate shell completion scripts for nabotix.

QUICK TEST (current session only):
  source <(nabotix completion bash)
  source <(nabotix completion zsh)
  nabotix completion fish | source`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			default:
				return rootCmd.GenPowerShellCompletion(out)
			}
		},
	}
	rootCmd.AddCommand(completionCmd)

	// Disable default completion command (we're adding our own above)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Loop so repeated Ctrl+C presses do not block the sender
	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, stopping...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()
	if h := errorHint(err); h != "" {
		fmt.Fprintln(os.Stderr, "Hint:", h)
	}

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	if logger != nil {
		_ = logger.Close()
	}
	return err
}

// errorHint suggests a next step for failures the user can act on.
func errorHint(err error) string {
	if err == nil || errors.Is(err, errNotLoggedIn) {
		return ""
	}
	switch http.ClassifyError(err) {
	case http.ErrorTypeCredential:
		if errors.Is(err, api.ErrForbidden) {
			return "your account lacks the role required for this action"
		}
		return "run 'nabotix login' to sign in again"
	case http.ErrorTypeNetwork:
		return "check base_url and proxy settings with 'nabotix config test'"
	case http.ErrorTypeRetryable:
		return "the platform is busy, try again in a moment"
	}
	return ""
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newDatasetsCmd())
	rootCmd.AddCommand(newOutputsCmd())
	rootCmd.AddCommand(newApplicationsCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newPendingCmd())
	rootCmd.AddCommand(newConfigCmd())

	AddShortcuts(rootCmd)
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		// Fallback to background context if called before Execute()
		return context.Background()
	}
	return rootContext
}

// configPath returns the --config path or the default location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file and applies flag overrides.
// Priority: flags > environment > config file > defaults
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if cfg.Log.File == "" && os.Getenv("NABOTIX_LOG_TO_FILE") == "true" {
		cfg.Log.File = filepath.Join(config.LogDirectory(), "nabotix.log")
	}
	return cfg, nil
}

// currentConfig returns the configuration loaded for this invocation.
func currentConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return cfg, nil
}
