/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/venusseo127/dentalApp/config"
	"github.com/venusseo127/dentalApp/internal/db"
	"github.com/venusseo127/dentalApp/internal/services"
	"github.com/venusseo127/dentalApp/internal/store"
	"github.com/venusseo127/dentalApp/types"
)

var promoteRole string

// promoteCmd changes a user's role. It is the only way to grant admin.
var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Set the role of an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		conn, err := db.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()

		userService := services.NewUserService(store.NewUserRepository(conn))
		user, err := userService.SetRole(cmd.Context(), args[0], types.Role(promoteRole))
		if err != nil {
			return err
		}
		slog.Info("role updated",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
			slog.String("role", string(user.Role)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd)
	promoteCmd.Flags().StringVar(&promoteRole, "role", string(types.RoleAdmin), "role to assign: admin or patient")
}
