package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/notify"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/pending"
)

// newPendingCmd creates the 'pending' command group.
func newPendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show the pending-review counters",
	}
	cmd.AddCommand(newPendingShowCmd())
	cmd.AddCommand(newPendingWatchCmd())
	return cmd
}

func newPendingShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Fetch and print the pending counts once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.close()

			refreshErr := a.pending.RefreshAll(ctx)
			counts := a.pending.GetCounts()
			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := printJSON(out, counts); err != nil {
					return err
				}
			} else {
				printCounts(out, counts)
			}
			if refreshErr != nil {
				// Failed categories show as 0
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", refreshErr)
			}
			return nil
		},
	}
}

func newPendingWatchCmd() *cobra.Command {
	var intervalMinutes int
	var desktop bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the pending counts until interrupted",
		Long: `Poll the pending-review counters and print a line whenever they change.

With --notify (or notify = true in the [pending] config section) a desktop
notification is shown when new items arrive.

Examples:
  nabotix pending watch
  nabotix pending watch --interval 2 --notify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if intervalMinutes > 0 {
				cfg, err := currentConfig()
				if err != nil {
					return err
				}
				cfg.Pending.PollIntervalMinutes = intervalMinutes
			}

			ctx := GetContext()
			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			id := a.pending.AddEventListener(events.EventPendingCountsChanged, func(e events.Event) {
				ev, ok := e.(*events.PendingCountsEvent)
				if !ok {
					return
				}
				fmt.Fprintf(out, "[%s] ", ev.Timestamp().Local().Format("15:04:05"))
				printCounts(out, pending.Counts{
					ResearchOutputs: ev.ResearchOutputs,
					Applications:    ev.Applications,
					Datasets:        ev.Datasets,
					Total:           ev.Total,
				})
			})
			defer a.pending.RemoveEventListener(events.EventPendingCountsChanged, id)

			if desktop || a.cfg.Pending.Notify {
				n := notify.NewNotifier(nil, a.logger)
				detach := n.Attach(a.bus)
				defer detach()
			}

			if err := a.pending.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Watching pending counts (Ctrl+C to stop)...")

			<-ctx.Done()
			a.pending.Stop()
			return nil
		},
	}

	cmd.Flags().IntVar(&intervalMinutes, "interval", 0, "Poll interval in minutes (default from config)")
	cmd.Flags().BoolVar(&desktop, "notify", false, "Show desktop notifications when new items arrive")
	return cmd
}

func printCounts(w io.Writer, c pending.Counts) {
	fmt.Fprintf(w, "pending: %d (applications %d, datasets %d, research outputs %d)\n",
		c.Total, c.Applications, c.Datasets, c.ResearchOutputs)
}
