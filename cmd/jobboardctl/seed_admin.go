package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	seedUsername string
	seedEmail    string
	seedPassword string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the first administrator with every capability",
	Long: `seed-admin creates an administrator holding the full permission bag.
It does nothing when an administrator already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		admin, created, err := rt.adminService().SeedAdmin(cmd.Context(), seedUsername, seedEmail, seedPassword)
		if err != nil {
			return fmt.Errorf("seed-admin: %w", err)
		}
		out := cmd.OutOrStdout()
		if !created {
			fmt.Fprintln(out, "An administrator already exists; nothing to do")
			return nil
		}
		fmt.Fprintf(out, "Created administrator %s (id %d)\n", admin.Username, admin.ID)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedUsername, "username", "admin", "administrator username")
	seedAdminCmd.Flags().StringVar(&seedEmail, "email", "", "administrator email")
	seedAdminCmd.Flags().StringVar(&seedPassword, "password", "", "administrator password")
	_ = seedAdminCmd.MarkFlagRequired("email")
	_ = seedAdminCmd.MarkFlagRequired("password")
}
