// Package cli provides command shortcuts for common operations.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/services"
)

// AddShortcuts adds shortcut commands to the root command.
// Shortcuts provide convenient aliases for commonly-used operations.
func AddShortcuts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newSearchShortcut())
	rootCmd.AddCommand(newLsShortcut())
}

// newSearchShortcut creates the 'search' shortcut command.
// Shortcut for: datasets list --search
func newSearchShortcut() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "search <term> [term...]",
		Short: "Search datasets (shortcut for 'datasets list --search')",
		Long: `Shortcut for searching published datasets.

Equivalent to: nabotix datasets list --search "<terms>"

Examples:
  nabotix search 糖尿病
  nabotix search lung cancer --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(GetContext(), false)
			if err != nil {
				return err
			}
			defer a.close()

			f.search = strings.Join(args, " ")
			return runList(cmd, a, listView[models.Dataset]{
				name:  services.ListDatasets,
				fetch: a.client.ListDatasets,
				print: printDatasets,
			}, f)
		},
	}
	f.register(cmd, false)

	return cmd
}

// newLsShortcut creates the 'ls' shortcut command.
// Shortcut for: datasets list
func newLsShortcut() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List datasets (shortcut for 'datasets list')",
		Long: `Shortcut for listing published datasets.

Equivalent to: nabotix datasets list

Examples:
  nabotix ls
  nabotix ls --size 25
  nabotix ls --page 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(GetContext(), false)
			if err != nil {
				return err
			}
			defer a.close()
			return runList(cmd, a, listView[models.Dataset]{
				name:  services.ListDatasets,
				fetch: a.client.ListDatasets,
				print: printDatasets,
			}, f)
		},
	}
	f.register(cmd, false)

	return cmd
}
