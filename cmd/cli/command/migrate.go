package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"popcornhour/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB() // Connect already migrates
		if err != nil {
			return err
		}
		defer database.Close(db)

		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
