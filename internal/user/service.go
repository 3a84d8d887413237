package user

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/website-management/internal"
	"golang.org/x/crypto/bcrypt"
)

// Repository defines the data access methods for user administration.
type Repository interface {
	GetAll() ([]*User, error)
	GetByID(id int64) (*User, error)
	Update(u *User) error
	UpdateStatus(id int64, status string, updatedAt time.Time) error
	UpdatePassword(id int64, passwordHash string) error
	Delete(id int64) error
	CountAdmins() (int64, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// GetAllUsers lists every profile. Admin only.
func (s *Service) GetAllUsers(actor *User) ([]*User, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("get all users denied", "actor_id", actor.ID)
		return nil, ErrForbidden
	}

	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get users", "error", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, ErrNotFound
	}
	return u, nil
}

// UpdateUser applies a partial profile update. Users may edit their own
// name and phone; role, status and ranking changes are admin only.
func (s *Service) UpdateUser(actor *User, id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if actor.ID != id && !actor.IsAdmin() {
		s.logger.Warn("update user denied", "actor_id", actor.ID, "target_id", id)
		return nil, ErrForbidden
	}

	if (dto.Role != nil || dto.Status != nil || dto.Ranking != nil) && !actor.IsAdmin() {
		s.logger.Warn("update user denied: role/status/ranking are admin-only", "actor_id", actor.ID)
		return nil, ErrForbidden
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	if dto.Role != nil && *dto.Role == RoleAdmin && u.Role != RoleAdmin {
		admins, err := s.repo.CountAdmins()
		if err != nil {
			s.logger.Error("failed to count admins", "error", err)
			return nil, err
		}
		if admins > 0 {
			return nil, internal.NewConflictError("an administrator already exists", internal.ErrCodeAdminExists)
		}
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Phone != nil {
		u.Phone = *dto.Phone
	}
	if dto.Role != nil {
		u.Role = *dto.Role
	}
	if dto.Status != nil {
		u.Status = *dto.Status
	}
	if dto.Ranking != nil {
		u.Ranking = *dto.Ranking
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "actor_id", actor.ID)
	return u, nil
}

// UpdateUserStatus activates or deactivates a profile. Admin only.
func (s *Service) UpdateUserStatus(actor *User, id int64, dto UpdateStatusDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if !actor.IsAdmin() {
		s.logger.Warn("update status denied", "actor_id", actor.ID, "target_id", id)
		return ErrForbidden
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return ErrNotFound
	}

	if err := s.repo.UpdateStatus(id, dto.Status, time.Now()); err != nil {
		s.logger.Error("failed to update user status", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user status updated", "user_id", id, "status", dto.Status, "actor_id", actor.ID)
	return nil
}

// ChangePassword rotates a password. The owner must present the old
// password; an admin may set one directly.
func (s *Service) ChangePassword(actor *User, id int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if actor.ID != id && !actor.IsAdmin() {
		s.logger.Warn("change password denied", "actor_id", actor.ID, "target_id", id)
		return ErrForbidden
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return ErrNotFound
	}

	if actor.ID == id {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.OldPassword)); err != nil {
			return internal.NewUnauthorizedError("old password does not match", internal.ErrCodeInvalidCredentials)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(id, string(hash)); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("password changed", "user_id", id, "actor_id", actor.ID)
	return nil
}

// DeleteUser removes a profile. Admin only.
func (s *Service) DeleteUser(actor *User, id int64) error {
	if !actor.IsAdmin() {
		s.logger.Warn("delete user denied", "actor_id", actor.ID, "target_id", id)
		return ErrForbidden
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	return nil
}
