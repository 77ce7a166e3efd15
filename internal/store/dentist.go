package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/venusseo127/dentalApp/types"
)

const dentistColumns = `id, name, specialization, experience, phone, image_url, is_active, is_available, created_at, updated_at`

// DentistRepository handles persistence for dentists.
type DentistRepository struct {
	db *sql.DB
}

func NewDentistRepository(db *sql.DB) *DentistRepository {
	return &DentistRepository{db: db}
}

// ListActive returns active dentists ordered by name.
func (r *DentistRepository) ListActive(ctx context.Context) ([]types.Dentist, error) {
	const query = `SELECT ` + dentistColumns + ` FROM dentists WHERE is_active = TRUE ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dentists := make([]types.Dentist, 0)
	for rows.Next() {
		dentist, err := scanDentist(rows)
		if err != nil {
			return nil, err
		}
		dentists = append(dentists, dentist)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dentists, nil
}

func (r *DentistRepository) Get(ctx context.Context, id string) (types.Dentist, error) {
	const query = `SELECT ` + dentistColumns + ` FROM dentists WHERE id::text = $1`
	return scanDentist(r.db.QueryRowContext(ctx, query, id))
}

func (r *DentistRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM dentists`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *DentistRepository) Create(ctx context.Context, dentist types.Dentist) (types.Dentist, error) {
	now := time.Now().UTC()
	if dentist.ID == "" {
		dentist.ID = uuid.NewString()
	}
	dentist.CreatedAt = now
	dentist.UpdatedAt = now

	const query = `
		INSERT INTO dentists (id, name, specialization, experience, phone, image_url, is_active, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		dentist.ID,
		dentist.Name,
		dentist.Specialization,
		dentist.Experience,
		dentist.Phone,
		dentist.ImageURL,
		dentist.IsActive,
		dentist.IsAvailable,
		dentist.CreatedAt,
		dentist.UpdatedAt,
	)
	if err != nil {
		return types.Dentist{}, translate(err)
	}
	return dentist, nil
}

func (r *DentistRepository) Update(ctx context.Context, dentist types.Dentist) (types.Dentist, error) {
	dentist.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE dentists
		SET name = $1,
			specialization = $2,
			experience = $3,
			phone = $4,
			image_url = $5,
			is_active = $6,
			is_available = $7,
			updated_at = $8
		WHERE id::text = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		dentist.Name,
		dentist.Specialization,
		dentist.Experience,
		dentist.Phone,
		dentist.ImageURL,
		dentist.IsActive,
		dentist.IsAvailable,
		dentist.UpdatedAt,
		dentist.ID,
	)
	if err != nil {
		return types.Dentist{}, translate(err)
	}
	if err := requireAffected(result); err != nil {
		return types.Dentist{}, err
	}
	return dentist, nil
}

func scanDentist(row rowScanner) (types.Dentist, error) {
	var dentist types.Dentist
	err := row.Scan(
		&dentist.ID,
		&dentist.Name,
		&dentist.Specialization,
		&dentist.Experience,
		&dentist.Phone,
		&dentist.ImageURL,
		&dentist.IsActive,
		&dentist.IsAvailable,
		&dentist.CreatedAt,
		&dentist.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Dentist{}, ErrNotFound
		}
		return types.Dentist{}, err
	}
	return dentist, nil
}
