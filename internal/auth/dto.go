package auth

import (
	"net/mail"

	"github.com/frahmantamala/website-management/internal"
	"github.com/frahmantamala/website-management/internal/user"
)

// LoginDTO accepts either a full email or a bare identifier; the
// service appends the configured domain when "@" is missing.
type LoginDTO struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	AsAdmin    bool   `json:"as_admin"`
}

func (d LoginDTO) Validate() error {
	if d.Identifier == "" {
		return internal.NewValidationError("identifier is required", internal.ErrCodeValidationFailed)
	}
	if d.Password == "" {
		return internal.NewValidationError("password is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type SignupDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	AsAdmin  bool   `json:"as_admin"`
}

func (d SignupDTO) Validate() error {
	if d.Email == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeValidationFailed)
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return internal.NewValidationError("email is not a valid address", internal.ErrCodeValidationFailed)
	}
	if len(d.Password) < 6 {
		return internal.NewValidationError("password must be at least 6 characters", internal.ErrCodeValidationFailed)
	}
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if !user.ValidPhone(d.Phone) {
		return internal.NewValidationError("phone must start with +60 followed by a non-zero digit", internal.ErrCodeInvalidPhone)
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d RefreshTokenDTO) Validate() error {
	if d.RefreshToken == "" {
		return internal.NewValidationError("refresh_token is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
