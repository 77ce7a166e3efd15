package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/venusseo127/dentalApp/types"
)

const serviceColumns = `id, name, description, price::text, duration, category, is_active, created_at`

// ServiceRepository handles persistence for bookable treatments.
type ServiceRepository struct {
	db *sql.DB
}

func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// ListActive returns active services ordered by name.
func (r *ServiceRepository) ListActive(ctx context.Context) ([]types.Service, error) {
	const query = `SELECT ` + serviceColumns + ` FROM services WHERE is_active = TRUE ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]types.Service, 0)
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *ServiceRepository) Get(ctx context.Context, id string) (types.Service, error) {
	const query = `SELECT ` + serviceColumns + ` FROM services WHERE id::text = $1`
	return scanService(r.db.QueryRowContext(ctx, query, id))
}

func (r *ServiceRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM services`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ServiceRepository) Create(ctx context.Context, service types.Service) (types.Service, error) {
	if service.ID == "" {
		service.ID = uuid.NewString()
	}
	service.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO services (id, name, description, price, duration, category, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		service.ID,
		service.Name,
		service.Description,
		service.Price,
		service.Duration,
		service.Category,
		service.IsActive,
		service.CreatedAt,
	)
	if err != nil {
		return types.Service{}, translate(err)
	}
	return service, nil
}

func (r *ServiceRepository) Update(ctx context.Context, service types.Service) (types.Service, error) {
	const query = `
		UPDATE services
		SET name = $1,
			description = $2,
			price = $3,
			duration = $4,
			category = $5,
			is_active = $6
		WHERE id::text = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		service.Name,
		service.Description,
		service.Price,
		service.Duration,
		service.Category,
		service.IsActive,
		service.ID,
	)
	if err != nil {
		return types.Service{}, translate(err)
	}
	if err := requireAffected(result); err != nil {
		return types.Service{}, err
	}
	return service, nil
}

func scanService(row rowScanner) (types.Service, error) {
	var service types.Service
	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.Duration,
		&service.Category,
		&service.IsActive,
		&service.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Service{}, ErrNotFound
		}
		return types.Service{}, err
	}
	return service, nil
}
