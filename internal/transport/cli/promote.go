package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
)

func newPromoteCommand(env *commandEnv) *cobra.Command {
	var (
		role        string
		permissions []string
	)

	cmd := &cobra.Command{
		Use:   "promote <user-id>",
		Short: "Grant an admin role to a user",
		Long:  "Grant an admin role with an explicit permission set. Without --permission the role defaults are granted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := env.connectSignedIn(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			parsed := domain.Role(strings.TrimSpace(role))
			promotions := rt.Console.Promotions

			var requested []domain.PermissionID
			if len(permissions) == 0 {
				defaults, err := promotions.Draft(parsed)
				if err != nil {
					return userError(err)
				}
				requested = defaults.Sorted()
			} else {
				for _, p := range permissions {
					requested = append(requested, domain.PermissionID(strings.TrimSpace(p)))
				}
			}

			granted, err := promotions.Submit(ctx, args[0], parsed, requested)
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Promoted %s to %s with %s\n", args[0], parsed, strings.Join(granted.Strings(), ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "role to grant: super_admin, admin, moderator or support")
	cmd.Flags().StringSliceVar(&permissions, "permission", nil, "permission to grant, repeatable")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
