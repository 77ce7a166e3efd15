/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/venusseo127/dentalApp/config"
	"github.com/venusseo127/dentalApp/internal/mq"
	"github.com/venusseo127/dentalApp/types"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the appointment event feed",
}

// eventsTailCmd logs every appointment event until interrupted.
var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow appointment events from the configured broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		backend, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if backend == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer backend.Close()

		slog.Info("tailing appointment events", slog.String("topic", cfg.MQ.Topic))
		err = mq.SubscribeEvents(ctx, backend, cfg.MQ.Topic, func(ctx context.Context, event types.AppointmentEvent) error {
			slog.Info("appointment event",
				slog.String("type", event.Type),
				slog.String("appointment_id", event.AppointmentID),
				slog.String("actor_id", event.ActorID),
				slog.String("from_status", string(event.FromStatus)),
				slog.String("to_status", string(event.ToStatus)),
				slog.Time("occurred_at", event.OccurredAt),
			)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
