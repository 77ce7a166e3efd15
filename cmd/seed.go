/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/venusseo127/dentalApp/config"
	"github.com/venusseo127/dentalApp/internal/db"
	"github.com/venusseo127/dentalApp/internal/seed"
	"github.com/venusseo127/dentalApp/internal/store"
)

// seedCmd inserts the sample catalog.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample dentists and services into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		conn, err := db.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()

		result, err := seed.Catalog(cmd.Context(), store.NewDentistRepository(conn), store.NewServiceRepository(conn))
		if err != nil {
			return err
		}
		slog.Info("catalog seeded",
			slog.Int("dentists", result.Dentists),
			slog.Int("services", result.Services),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
