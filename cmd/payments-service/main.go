package main

import (
	"fmt"
	"log"
	"os"

	"github.com/LavaJover/shvark-payments-service/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

var configPath string

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	rootCmd := &cobra.Command{
		Use:     "payments-service",
		Short:   "Payment attempts, provider webhooks and order reconciliation",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (defaults to $PAYMENTS_CONFIG_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.PaymentsConfig, error) {
	if configPath == "" {
		configPath = os.Getenv("PAYMENTS_CONFIG_PATH")
	}
	if configPath == "" {
		return nil, fmt.Errorf("config path is empty: pass --config or set PAYMENTS_CONFIG_PATH")
	}
	return config.Load(configPath)
}
