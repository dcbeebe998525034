package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/auth"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/permission"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/validation"
)

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	var phone, username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session token",
		Long: `Sign in with a phone number (or username) and password.

The session token is saved to the token file from the configuration
(default ~/.config/nabotix/token) with owner-only permissions.

Examples:
  nabotix login
  nabotix login --phone 13800138000
  nabotix login --username alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			p := newPrompter(cmd.InOrStdin(), out)

			req := models.LoginRequest{Username: strings.TrimSpace(username)}
			if req.Username == "" {
				if phone == "" {
					phone, err = p.validated("Phone", validation.Chain(validation.Required(), validation.Phone()))
					if err != nil {
						return err
					}
				} else if err := validation.Phone().Validate(phone); err != nil {
					return fmt.Errorf("--phone: %w", err)
				}
				req.Phone = phone
			}

			req.Password, err = p.password("Password")
			if err != nil {
				return err
			}
			if err := validation.Required().Validate(req.Password); err != nil {
				return fmt.Errorf("password: %w", err)
			}

			resp, err := a.client.Login(ctx, req)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			a.client.SetToken(resp.Token)
			sess, err := auth.Restore(ctx, a.client, resp.Token)
			if err != nil {
				return err
			}
			if err := auth.SaveToken(a.cfg.TokenFile, resp.Token); err != nil {
				return err
			}
			a.sessions.Set(sess)
			a.logger.Info().Str("user", sess.User.ID).Msg("Logged in")

			fmt.Fprintf(out, "✓ Logged in as %s\n", displayName(sess.User))
			fmt.Fprintf(out, "  Roles: %s\n", roleLabels(sess.Roles.Slice()))

			if err := a.pending.RefreshAfterLogin(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("Some pending counts could not be loaded")
			}
			if c := a.pending.GetCounts(); c.Total > 0 {
				fmt.Fprintf(out, "  %d item(s) waiting for review (run 'nabotix pending show')\n", c.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Mobile phone number")
	cmd.Flags().StringVar(&username, "username", "", "Username (instead of phone)")

	return cmd
}

// newLogoutCmd creates the 'logout' command.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			if err := auth.DeleteToken(cfg.TokenFile); err != nil {
				return err
			}
			GetLogger().Info().Msg("Logged out")
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

// newWhoamiCmd creates the 'whoami' command.
func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and what they may do",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(GetContext(), true)
			if err != nil {
				return err
			}
			defer a.close()

			sess := a.sessions.Current()
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, map[string]interface{}{
					"user":  sess.User,
					"roles": sess.Roles.Slice(),
				})
			}

			fmt.Fprintf(out, "User:        %s\n", displayName(sess.User))
			fmt.Fprintf(out, "ID:          %s\n", sess.User.ID)
			if sess.User.InstitutionID != "" {
				fmt.Fprintf(out, "Institution: %s\n", sess.User.InstitutionID)
			}
			fmt.Fprintf(out, "Roles:       %s\n", roleLabels(sess.Roles.Slice()))
			if !sess.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Expires:     %s\n", sess.ExpiresAt.Local().Format(time.RFC3339))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Permissions:")
			printCapability(out, "Upload datasets", permission.CanUploadDataset(sess))
			printCapability(out, "Review datasets", permission.CanReviewDatasets(sess))
			printCapability(out, "Review research outputs", permission.CanReviewResearchOutputs(sess))
			printCapability(out, "Manage institution users", permission.CanManageInstitutionUsers(sess))
			return nil
		},
	}
}

func printCapability(w io.Writer, label string, ok bool) {
	mark := "✗"
	if ok {
		mark = "✓"
	}
	fmt.Fprintf(w, "  %s %s\n", mark, label)
}

func displayName(u *models.User) string {
	switch {
	case u == nil:
		return "(unknown)"
	case u.RealName != "":
		return u.RealName
	case u.Username != "":
		return u.Username
	case u.Phone != "":
		return u.Phone
	}
	return u.ID
}
