package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"counseling-booking-api/internal/model"
)

const userCols = `id, first_name, last_name, email, password_hash, phone, role,
	is_active, specializations, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Phone,
		&u.Role, &u.Active, &u.Specializations, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = model.NormalizeEmail(u.Email)
	specs := u.Specializations
	if specs == nil {
		specs = []string{}
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, first_name, last_name, email, password_hash, phone, role, is_active, specializations)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING created_at, updated_at`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Phone, u.Role, u.Active, specs,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicate
	}
	return err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email = $1`, model.NormalizeEmail(email)))
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, model.ErrNotFound
	}
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

// ListCounselors returns counselors in creation order.
func (s *Store) ListCounselors(ctx context.Context, activeOnly bool) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userCols+` FROM users
		 WHERE role = 'counselor' AND (is_active OR NOT $1)
		 ORDER BY created_at, id`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) SetUserActive(ctx context.Context, id string, active bool) (*model.User, error) {
	if !validID(id) {
		return nil, model.ErrNotFound
	}
	return scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1
		 RETURNING `+userCols, id, active))
}
