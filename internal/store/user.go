package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/venusseo127/dentalApp/types"
)

const userColumns = `id, auth_uid, email, first_name, last_name, phone, profile_image_url, role, age, gender, address, password_hash, created_at, updated_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id::text = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByAuthUID looks a user up by the identity provider's stable identifier.
func (r *UserRepository) GetByAuthUID(ctx context.Context, uid string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE auth_uid = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, uid))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = types.RolePatient
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, auth_uid, email, first_name, last_name, phone, profile_image_url, role, age, gender, address, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		nullString(user.AuthUID),
		user.Email,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.ProfileImageURL,
		string(user.Role),
		nullInt(user.Age),
		user.Gender,
		user.Address,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

// Update writes profile and credential fields. Role is never written here.
func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE users
		SET auth_uid = $1,
			first_name = $2,
			last_name = $3,
			phone = $4,
			profile_image_url = $5,
			age = $6,
			gender = $7,
			address = $8,
			password_hash = $9,
			updated_at = $10
		WHERE id::text = $11`
	result, err := r.db.ExecContext(
		ctx,
		query,
		nullString(user.AuthUID),
		user.FirstName,
		user.LastName,
		user.Phone,
		user.ProfileImageURL,
		nullInt(user.Age),
		user.Gender,
		user.Address,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, translate(err)
	}
	if err := requireAffected(result); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// SetRole changes a user's role. Only the administrative promote command calls it.
func (r *UserRepository) SetRole(ctx context.Context, id string, role types.Role) error {
	const query = `UPDATE users SET role = $1, updated_at = NOW() WHERE id::text = $2`
	result, err := r.db.ExecContext(ctx, query, string(role), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanUser(row rowScanner) (types.User, error) {
	var (
		user    types.User
		authUID sql.NullString
		age     sql.NullInt64
		role    string
	)
	err := row.Scan(
		&user.ID,
		&authUID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.ProfileImageURL,
		&role,
		&age,
		&user.Gender,
		&user.Address,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.AuthUID = authUID.String
	user.Role = types.Role(role)
	if age.Valid {
		v := int(age.Int64)
		user.Age = &v
	}
	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
