package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/permission"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/services"
)

// newUsersCmd creates the 'users' command group for institution user management.
func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage institution users and their roles",
	}

	var f listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List users of your institution",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(GetContext(), true)
			if err != nil {
				return err
			}
			defer a.close()

			if !permission.CanManageInstitutionUsers(a.sessions.Current()) {
				return services.ErrForbidden
			}
			return runList(cmd, a, listView[models.User]{
				name:  services.ListUsers,
				fetch: a.client.ListInstitutionUsers,
				print: printUsers,
			}, f)
		},
	}
	f.register(list, true)

	assign := &cobra.Command{
		Use:   "assign-roles <user-id> <role>[,<role>...]",
		Short: "Replace a user's roles",
		Long: `Replace the roles of a user. Roles may be given by code or display name.

Administrator roles are exclusive: selecting one drops every other role,
and selecting an operational role drops any administrator role.

Examples:
  nabotix users assign-roles u-42 DATASET_UPLOADER,DATASET_APPROVER
  nabotix users assign-roles u-42 数据集提供者 数据集审核员`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, err := parseRoles(args[1:])
			if err != nil {
				return err
			}

			ctx := GetContext()
			a, err := newApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.close()

			assigned, err := a.reviews.AssignRoles(ctx, args[0], roles)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Roles of %s set to: %s\n", args[0], roleLabels(assigned))
			return nil
		},
	}

	roles := &cobra.Command{
		Use:   "roles",
		Short: "List the platform roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, r := range models.AllRoles {
				kind := "operational"
				if permission.IsAdminRole(r) {
					kind = "admin"
				}
				fmt.Fprintf(out, "  %-26s  %-11s  %s\n", r, kind, permission.RoleDisplayName(r))
			}
			return nil
		},
	}

	cmd.AddCommand(list, assign, roles)
	return cmd
}
