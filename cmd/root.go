package cmd

import (
	"fmt"

	"github.com/simonvc/leaveledger/internal/client"
	"github.com/simonvc/leaveledger/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagServer string
	flagDB     string
	flagConfig string
	flagTenant string
	flagUser   string
)

var rootCmd = &cobra.Command{
	Use:   "leaveledger",
	Short: "Multi-tenant leave balance ledger",
	Long:  "A leave management ledger backed by SQLite: grants, holds and consumption are append-only entries and balances are always recomputed.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8888", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default $"+config.EnvPath+")")
	rootCmd.PersistentFlags().StringVarP(&flagTenant, "tenant", "t", "", "Tenant ID")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "Acting user ID")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig layers command line flags over the config file.
func loadConfig(cmd *cobra.Command) (config.FileConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("db") {
		cfg.Database.Path = flagDB
	}
	return cfg, nil
}

// tenantClient returns a client scoped to --tenant and acting as --user.
func tenantClient() (*client.Client, error) {
	if flagTenant == "" {
		return nil, fmt.Errorf("--tenant is required")
	}
	return client.New(flagServer).WithTenant(flagTenant).WithUser(flagUser), nil
}
