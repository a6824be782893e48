package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeremiapane/restaurant-dashboard/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the key/value table for SQL store drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := database.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		return database.Migrate(cmd.Context(), s)
	},
}
