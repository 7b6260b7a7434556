package records

import (
	"context"
	"fmt"

	"github.com/jpcardenas/archivador/internal/database"
)

// UserStore persists application accounts created through imports.
type UserStore struct {
	db database.DBTX
}

func NewUserStore(db database.DBTX) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user with an already hashed password and attaches
// the role when one was resolved. A duplicate email is reported as
// ErrDuplicateEmail.
func (s *UserStore) Create(ctx context.Context, u *User) error {
	const q = `
		INSERT INTO users (
			name, last_name, email, phone, document_number,
			organizational_unit_id, password_hash, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRow(ctx, q,
		u.Name, u.LastName, u.Email, u.Phone, u.DocumentNumber,
		u.OrganizationalUnitID, u.PasswordHash, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if u.RoleID != nil {
		const attach = `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := s.db.Exec(ctx, attach, u.ID, *u.RoleID); err != nil {
			return fmt.Errorf("attach role to user %d: %w", u.ID, err)
		}
	}
	return nil
}

// EmailExists reports whether an account with the given email already
// exists, deleted or not.
func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email %q: %w", email, err)
	}
	return exists, nil
}
