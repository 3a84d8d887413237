package postgres

import (
	"errors"
	"strings"
	"time"

	"github.com/frahmantamala/website-management/internal"
	"github.com/frahmantamala/website-management/internal/user"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
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

func (r *UserRepository) Update(u *user.User) error {
	u.UpdatedAt = time.Now()
	if err := r.db.Save(u).Error; err != nil {
		// A promotion to admin races with a concurrent signup or
		// promotion; the users_single_admin index is the arbiter.
		return translateRoleConflict(err)
	}
	return nil
}

func translateRoleConflict(err error) error {
	adminConflict := func() error {
		return internal.NewConflictError("an administrator already exists", internal.ErrCodeAdminExists)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "users_single_admin" {
		return adminConflict()
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") && strings.Contains(err.Error(), "users.role") {
		return adminConflict()
	}
	return err
}

func (r *UserRepository) UpdateStatus(id int64, status string, updatedAt time.Time) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": updatedAt,
		}).Error
}

func (r *UserRepository) UpdatePassword(id int64, passwordHash string) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		}).Error
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&user.User{}).Error
}

func (r *UserRepository) CountAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&user.User{}).Where("role = ?", user.RoleAdmin).Count(&count).Error
	return count, err
}
