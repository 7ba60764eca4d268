package cmd

import (
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the visits table.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the visits table",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.store.Migrate(cmd.Context()); err != nil {
			return err
		}
		rt.logger.Info("Visits table migrated")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
