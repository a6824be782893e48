package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yeremiapane/restaurant-dashboard/config"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "restaurant-dashboard",
	Short: "Backend for the restaurant owner dashboard",
	Long: `restaurant-dashboard serves the owner dashboard API: restaurants, menus and
the live order board, persisted as JSON collections in a key/value store.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml); environment variables override it")
	rootCmd.AddCommand(serveCmd, seedCmd, migrateCmd)
}

// loadConfig reads the configuration and applies the global settings the
// other packages read.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	utils.InitLogger(cfg.LogLevel.String())
	utils.InitJWT(cfg.JWTSecret, cfg.TokenTTL)
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
