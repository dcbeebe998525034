package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/pending"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/services"
)

// newApplicationsCmd creates the 'applications' command group.
func newApplicationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "List and review dataset access applications",
	}

	var f listFlags
	var mine bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List applications waiting for your review (or your own with --mine)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(GetContext(), true)
			if err != nil {
				return err
			}
			defer a.close()

			fetch := a.client.ListApplicationsForReview
			if mine {
				fetch = a.client.ListMyApplications
			}
			return runList(cmd, a, listView[models.Application]{
				name:  services.ListApplications,
				fetch: ignoreQuery(fetch),
				print: printApplications,
			}, f)
		},
	}
	f.register(list, false)
	list.Flags().BoolVar(&mine, "mine", false, "List applications you submitted")

	cmd.AddCommand(list)
	cmd.AddCommand(newReviewCmd("approve", "application", true, pending.CategoryApplications, reviewApplication))
	cmd.AddCommand(newReviewCmd("reject", "application", false, pending.CategoryApplications, reviewApplication))
	return cmd
}

// reviewApplication loads the application first so the permission check can
// see which institution and provider it belongs to.
func reviewApplication(ctx context.Context, a *app, id string, approved bool, comment string) error {
	application, err := a.client.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	if approved {
		return a.reviews.ApproveApplication(ctx, application, comment)
	}
	return a.reviews.RejectApplication(ctx, application, comment)
}

func categoryLabel(cat pending.Category) string {
	switch cat {
	case pending.CategoryResearchOutputs:
		return "research output(s)"
	case pending.CategoryApplications:
		return "application(s)"
	case pending.CategoryDatasets:
		return "dataset(s)"
	}
	return fmt.Sprintf("%s item(s)", cat)
}
