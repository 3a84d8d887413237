package postgres

import (
	"errors"
	"strings"

	"github.com/frahmantamala/website-management/internal/auth"
	"github.com/frahmantamala/website-management/internal/user"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new identity. Uniqueness of the email and of
// the admin role is not pre-checked with a count; a count-then-insert
// races under read committed when two signups run concurrently. The
// insert relies on the unique constraints instead (users_single_admin
// partial index for the role) and translates the violation.
func (r *Repository) CreateUser(u *user.User) error {
	if err := r.db.Create(u).Error; err != nil {
		return translateConstraintError(err)
	}
	return nil
}

// translateConstraintError maps unique violations onto the domain
// errors. Postgres reports the constraint name, sqlite (used by the
// test suites) reports the column.
func translateConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "users_single_admin" {
			return auth.ErrAdminExists
		}
		return user.ErrEmailTaken
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		if strings.Contains(msg, "users.role") {
			return auth.ErrAdminExists
		}
		return user.ErrEmailTaken
	}

	return err
}

func (r *Repository) CountAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&user.User{}).Where("role = ?", user.RoleAdmin).Count(&count).Error
	return count, err
}
