package main

import (
	"log"

	"github.com/St1cky1/kanban-service/internal/config"
	"github.com/St1cky1/kanban-service/internal/infrastructure/client"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		return client.RunMigrations(cfg.DatabaseURL())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
