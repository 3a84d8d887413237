package user

import (
	"regexp"
	"time"

	"github.com/frahmantamala/website-management/internal"
)

// User is the identity record shared by auth and user administration.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"column:email;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"column:name;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         string    `json:"role" gorm:"column:role;default:user"`
	Status       string    `json:"status" gorm:"column:status;default:active"`
	Ranking      string    `json:"ranking" gorm:"column:ranking;default:customer"`
	Phone        string    `json:"phone" gorm:"column:phone"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Ranking is a tier label on the profile; it grants no authorization.
const (
	RankingCustomer = "customer"
	RankingAgent    = "agent"
	RankingMaster   = "master"
	RankingSenior   = "senior"
)

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsActiveUser() bool {
	return u.Status == StatusActive
}

// Malaysian mobile numbers: +60 followed by a non-zero digit.
var phonePattern = regexp.MustCompile(`^\+60[1-9]`)

func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}

func ValidRanking(ranking string) bool {
	switch ranking {
	case RankingCustomer, RankingAgent, RankingMaster, RankingSenior:
		return true
	}
	return false
}

var (
	ErrNotFound   = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrEmailTaken = internal.NewConflictError("email is already registered", internal.ErrCodeEmailTaken)
	ErrForbidden  = internal.NewForbiddenError("insufficient permissions for this user operation", internal.ErrCodeUnauthorizedAccess)
)
