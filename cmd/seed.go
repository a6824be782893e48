package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yeremiapane/restaurant-dashboard/database"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/services"
)

var seedOpts services.SeedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with a demo owner, restaurants, menu items and orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		s, err := database.OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := database.Migrate(ctx, s); err != nil {
			return err
		}

		result, err := services.NewSeeder(repositories.New(s), os.Stderr).Seed(ctx, seedOpts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nseeded %d restaurants, %d menu items, %d orders for %s\n",
			len(result.Restaurants), result.MenuItems, result.Orders, result.Owner.Email)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.OwnerEmail, "email", "owner@example.com", "demo owner email")
	seedCmd.Flags().StringVar(&seedOpts.OwnerPassword, "password", "password123", "demo owner password")
	seedCmd.Flags().StringVar(&seedOpts.OwnerName, "name", "", "demo owner name (random when empty)")
	seedCmd.Flags().IntVar(&seedOpts.Restaurants, "restaurants", 3, "number of restaurants to create")
}
