package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/pending"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/services"
)

// newDatasetsCmd creates the 'datasets' command group.
func newDatasetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"ds"},
		Short:   "Browse and review datasets",
	}
	cmd.AddCommand(newDatasetsListCmd())
	cmd.AddCommand(newDatasetsShowCmd())
	cmd.AddCommand(newDatasetsQueueCmd())
	cmd.AddCommand(newReviewCmd("approve", "dataset", true, pending.CategoryDatasets, reviewDataset))
	cmd.AddCommand(newReviewCmd("reject", "dataset", false, pending.CategoryDatasets, reviewDataset))
	return cmd
}

func newDatasetsListCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published datasets",
		Long: `List published datasets, newest first.

Examples:
  nabotix datasets list
  nabotix datasets list --search 肿瘤 --all
  nabotix datasets list --page 3 --size 20
  nabotix datasets list --interactive`,
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
	f.register(cmd, true)
	return cmd
}

func newDatasetsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <dataset-id>",
		Short: "Show one dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(GetContext(), false)
			if err != nil {
				return err
			}
			defer a.close()

			ds, err := a.client.GetDataset(GetContext(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, ds)
			}
			fmt.Fprintf(out, "ID:          %s\n", ds.ID)
			fmt.Fprintf(out, "Title:       %s\n", ds.Title)
			if ds.Type != "" {
				fmt.Fprintf(out, "Type:        %s\n", ds.Type)
			}
			fmt.Fprintf(out, "Status:      %s\n", ds.Status)
			fmt.Fprintf(out, "Published:   %t\n", ds.Published)
			if !ds.UpdatedAt.IsZero() {
				fmt.Fprintf(out, "Updated:     %s\n", ds.UpdatedAt.Local().Format(time.DateTime))
			}
			if ds.Description != "" {
				fmt.Fprintf(out, "\n%s\n", ds.Description)
			}
			return nil
		},
	}
}

func newDatasetsQueueCmd() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List datasets waiting for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(GetContext(), true)
			if err != nil {
				return err
			}
			defer a.close()
			return runList(cmd, a, listView[models.Dataset]{
				name:  services.ListDatasets,
				fetch: ignoreQuery(a.client.ListDatasetsForReview),
				print: printDatasets,
			}, f)
		},
	}
	f.register(cmd, false)
	return cmd
}

func reviewDataset(ctx context.Context, a *app, id string, approved bool, comment string) error {
	return a.reviews.ReviewDataset(ctx, id, approved, comment)
}

// newOutputsCmd creates the 'outputs' command group for research outputs.
func newOutputsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "outputs",
		Aliases: []string{"research-outputs"},
		Short:   "Browse and review research outputs",
	}

	var listF listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List published research outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(GetContext(), false)
			if err != nil {
				return err
			}
			defer a.close()
			return runList(cmd, a, listView[models.ResearchOutput]{
				name:  services.ListResearchOutputs,
				fetch: a.client.ListResearchOutputs,
				print: printResearchOutputs,
			}, listF)
		},
	}
	listF.register(list, true)

	var queueF listFlags
	queue := &cobra.Command{
		Use:   "queue",
		Short: "List research outputs waiting for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(GetContext(), true)
			if err != nil {
				return err
			}
			defer a.close()
			return runList(cmd, a, listView[models.ResearchOutput]{
				name:  services.ListResearchOutputs,
				fetch: ignoreQuery(a.client.ListResearchOutputsForReview),
				print: printResearchOutputs,
			}, queueF)
		},
	}
	queueF.register(queue, false)

	cmd.AddCommand(list, queue)
	cmd.AddCommand(newReviewCmd("approve", "research output", true, pending.CategoryResearchOutputs, reviewResearchOutput))
	cmd.AddCommand(newReviewCmd("reject", "research output", false, pending.CategoryResearchOutputs, reviewResearchOutput))
	return cmd
}

func reviewResearchOutput(ctx context.Context, a *app, id string, approved bool, comment string) error {
	return a.reviews.ReviewResearchOutput(ctx, id, approved, comment)
}

// reviewFunc performs one approve or reject action.
type reviewFunc func(ctx context.Context, a *app, id string, approved bool, comment string) error

// newReviewCmd builds an approve/reject subcommand. Rejections need a reason.
func newReviewCmd(verb, noun string, approved bool, cat pending.Category, review reviewFunc) *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   verb + " <id>",
		Short: fmt.Sprintf("%s a %s", capitalize(verb), noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !approved && comment == "" {
				return fmt.Errorf("--reason is required when rejecting")
			}
			ctx := GetContext()
			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.close()

			if err := review(ctx, a, args[0], approved, comment); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ %s %s %s\n", capitalize(noun), args[0], pastTense(verb))
			fmt.Fprintf(out, "  %d %s still waiting for review\n", a.pending.GetCounts().Get(cat), categoryLabel(cat))
			return nil
		},
	}
	if approved {
		cmd.Flags().StringVarP(&comment, "comment", "m", "", "Optional review comment")
	} else {
		cmd.Flags().StringVarP(&comment, "reason", "r", "", "Reason for rejection (required)")
	}
	return cmd
}

// ignoreQuery adapts an unsearchable list endpoint to the search-aware fetch shape.
func ignoreQuery[T any](fetch func(ctx context.Context, page, size int) (*models.Page[T], error)) func(ctx context.Context, query string, page, size int) (*models.Page[T], error) {
	return func(ctx context.Context, _ string, page, size int) (*models.Page[T], error) {
		return fetch(ctx, page, size)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func pastTense(verb string) string {
	switch verb {
	case "approve":
		return "approved"
	case "reject":
		return "rejected"
	}
	return verb + "ed"
}
