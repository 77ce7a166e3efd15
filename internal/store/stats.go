package store

import (
	"context"
	"database/sql"

	"github.com/venusseo127/dentalApp/types"
)

// StatsRepository computes dashboard aggregates.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Dashboard returns clinic counters; today is a "YYYY-MM-DD" date.
func (r *StatsRepository) Dashboard(ctx context.Context, today string) (types.DashboardStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(1) FROM appointments WHERE appointment_date::text = $1),
			(SELECT COUNT(DISTINCT user_id) FROM appointments),
			(SELECT COUNT(1) FROM dentists WHERE is_active = TRUE),
			(SELECT COUNT(1) FROM appointments)`
	var stats types.DashboardStats
	err := r.db.QueryRowContext(ctx, query, today).Scan(
		&stats.TodayAppointments,
		&stats.TotalPatients,
		&stats.ActiveDentists,
		&stats.TotalAppointments,
	)
	if err != nil {
		return types.DashboardStats{}, err
	}
	return stats, nil
}
