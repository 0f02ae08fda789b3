package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var migratePermissionsCmd = &cobra.Command{
	Use:   "migrate-permissions",
	Short: "Rewrite legacy can_* admin permission keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		result, err := rt.adminService().MigrateLegacyPermissions(cmd.Context())
		if result != nil {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned:   %d\n", result.Scanned)
			fmt.Fprintf(out, "Migrated:  %d\n", result.Migrated)
			fmt.Fprintf(out, "Defaulted: %d\n", result.Defaulted)
			fmt.Fprintf(out, "Unchanged: %d\n", result.Unchanged)
			fmt.Fprintf(out, "Failed:    %d\n", result.Failed)
			if len(result.AdminNames) > 0 {
				fmt.Fprintf(out, "Updated:   %s\n", strings.Join(result.AdminNames, ", "))
			}
		}
		return err
	},
}
