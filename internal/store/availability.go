package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/venusseo127/dentalApp/types"
)

// AvailabilityRepository handles persistence for dentist availability windows.
type AvailabilityRepository struct {
	db *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListByDentist returns windows for a dentist ordered by date and start time.
// An empty date returns every window.
func (r *AvailabilityRepository) ListByDentist(ctx context.Context, dentistID, date string) ([]types.Availability, error) {
	const query = `
		SELECT id, dentist_id, date::text, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_available, created_at
		FROM availability
		WHERE dentist_id::text = $1
		AND ($2 = '' OR date::text = $2)
		ORDER BY date ASC, start_time ASC`
	rows, err := r.db.QueryContext(ctx, query, dentistID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]types.Availability, 0)
	for rows.Next() {
		var window types.Availability
		if err := rows.Scan(
			&window.ID,
			&window.DentistID,
			&window.Date,
			&window.StartTime,
			&window.EndTime,
			&window.IsAvailable,
			&window.CreatedAt,
		); err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *AvailabilityRepository) Create(ctx context.Context, window types.Availability) (types.Availability, error) {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	window.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO availability (id, dentist_id, date, start_time, end_time, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		window.ID,
		window.DentistID,
		window.Date,
		window.StartTime,
		window.EndTime,
		window.IsAvailable,
		window.CreatedAt,
	)
	if err != nil {
		return types.Availability{}, translate(err)
	}
	return window, nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM availability WHERE id::text = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}
