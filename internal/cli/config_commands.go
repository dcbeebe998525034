// Package cli provides configuration management commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/config"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/http"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nabotix configuration",
		Long: `Configuration management commands for nabotix.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test the platform connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for nabotix.

The configuration will be saved to ~/.config/nabotix/config

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			out := cmd.OutOrStdout()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			if err := runConfigWizard(newPrompter(cmd.InOrStdin(), out), cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "✓ Configuration saved to: %s\n", path)
			fmt.Fprintln(out, "Sign in with: nabotix login")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// runConfigWizard asks for the settings a new installation needs, keeping
// the current values as defaults.
func runConfigWizard(p *prompter, cfg *config.Config) error {
	fmt.Fprintln(p.out, "Nabotix Configuration Setup")
	fmt.Fprintln(p.out, "===========================")
	fmt.Fprintln(p.out)

	var err error
	if cfg.BaseURL, err = p.line("Platform URL", cfg.BaseURL); err != nil {
		return err
	}

	pageSize, err := p.line("Page size", strconv.Itoa(cfg.Lists.PageSize))
	if err != nil {
		return err
	}
	if v, convErr := strconv.Atoi(pageSize); convErr == nil && v > 0 {
		cfg.Lists.PageSize = v
	}

	poll, err := p.line("Pending poll interval (minutes)", strconv.Itoa(cfg.Pending.PollIntervalMinutes))
	if err != nil {
		return err
	}
	if v, convErr := strconv.Atoi(poll); convErr == nil && v > 0 {
		cfg.Pending.PollIntervalMinutes = v
	}

	if cfg.Pending.Notify, err = p.confirm("Desktop notifications for new review items?"); err != nil {
		return err
	}

	fmt.Fprintln(p.out)
	useProxy, err := p.confirm("Configure proxy?")
	if err != nil {
		return err
	}
	if !useProxy {
		cfg.ProxyMode = "no-proxy"
		return nil
	}

	fmt.Fprintln(p.out, "Proxy modes: no-proxy, system, basic, ntlm")
	if cfg.ProxyMode, err = p.line("Proxy mode", "system"); err != nil {
		return err
	}
	if cfg.ProxyMode == "no-proxy" || cfg.ProxyMode == "system" {
		return nil
	}
	if cfg.ProxyHost, err = p.line("Proxy host", cfg.ProxyHost); err != nil {
		return err
	}
	port, err := p.line("Proxy port", "8080")
	if err != nil {
		return err
	}
	if v, convErr := strconv.Atoi(port); convErr == nil && v > 0 {
		cfg.ProxyPort = v
	}
	if cfg.ProxyUser, err = p.line("Proxy user (optional)", cfg.ProxyUser); err != nil {
		return err
	}
	if http.NeedsProxyPassword(cfg) {
		fmt.Fprintln(p.out, "The proxy password is not saved; you will be asked for it when connecting.")
	}
	return nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/nabotix/config)
  2. Environment variables (NABOTIX_BASE_URL, NABOTIX_TOKEN, ...)
  3. Command-line flags (--base-url, --log-level)

Priority: flags > environment > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Platform:")
			fmt.Fprintf(out, "  Base URL:   %s\n", cfg.BaseURL)
			fmt.Fprintf(out, "  Token file: %s\n", cfg.TokenFile)
			if cfg.Token != "" {
				// Never display any portion of the token
				fmt.Fprintf(out, "  Token:      <set from environment (%d chars)>\n", len(cfg.Token))
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy Settings:")
			fmt.Fprintf(out, "  Proxy Mode: %s\n", cfg.ProxyMode)
			if cfg.ProxyHost != "" {
				fmt.Fprintf(out, "  Proxy Host: %s\n", cfg.ProxyHost)
				fmt.Fprintf(out, "  Proxy Port: %d\n", cfg.ProxyPort)
			}
			if cfg.NoProxy != "" {
				fmt.Fprintf(out, "  No Proxy:   %s\n", cfg.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Pending Counts:")
			fmt.Fprintf(out, "  Poll Interval: %s\n", cfg.PollInterval())
			fmt.Fprintf(out, "  Notify:        %t\n", cfg.Pending.Notify)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Lists:")
			fmt.Fprintf(out, "  Page Size: %d\n", cfg.Lists.PageSize)
			fmt.Fprintf(out, "  Debounce:  %s\n", cfg.DebounceDelay())
			fmt.Fprintf(out, "  Auto Load: %t\n", cfg.Lists.AutoLoad)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Logging:")
			fmt.Fprintf(out, "  Level: %s\n", cfg.Log.Level)
			if cfg.Log.File != "" {
				fmt.Fprintf(out, "  File:  %s\n", cfg.Log.File)
			}
			fmt.Fprintln(out)

			path := configPath()
			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "  Warning: %v\n", err)
			}
			return nil
		},
	}

	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the platform connection",
		Long: `Test the connection with the current configuration.

Use this to verify the platform URL, proxy settings and saved session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Testing Platform Connection")
			fmt.Fprintln(out, "===========================")
			fmt.Fprintln(out)

			ctx, cancel := context.WithTimeout(GetContext(), constants.HTTPClientTimeout)
			defer cancel()

			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintf(out, "Platform URL: %s\n", a.client.BaseURL())
			start := time.Now()
			if _, err := a.client.ListDatasets(ctx, "", 0, 1); err != nil {
				GetLogger().Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(out, "✗ Connection FAILED")
				fmt.Fprintf(out, "  Error: %v\n", err)
				return fmt.Errorf("connection test failed")
			}
			fmt.Fprintf(out, "✓ Connection SUCCESSFUL (%s)\n", time.Since(start).Round(time.Millisecond))

			if sess := a.sessions.Current(); sess.Authenticated() {
				fmt.Fprintf(out, "✓ Signed in as %s\n", displayName(sess.User))
			} else {
				fmt.Fprintln(out, "  Not signed in (run 'nabotix login')")
			}
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()
			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if fileInfo, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: ✓ File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", fileInfo.Size())
				fmt.Fprintf(out, "Modified: %s\n", fileInfo.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: nabotix config init")
			}
			return nil
		},
	}

	return cmd
}
