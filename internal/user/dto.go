package user

import "github.com/frahmantamala/website-management/internal"

// UpdateUserDTO carries a partial profile update. Nil pointers mean
// "leave the field alone"; unknown fields are rejected at decode time.
type UpdateUserDTO struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Role    *string `json:"role,omitempty"`
	Status  *string `json:"status,omitempty"`
	Ranking *string `json:"ranking,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return internal.NewValidationError("name cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Phone != nil && !ValidPhone(*dto.Phone) {
		return internal.NewValidationError("phone must start with +60 followed by a non-zero digit", internal.ErrCodeInvalidPhone)
	}
	if dto.Role != nil && !ValidRole(*dto.Role) {
		return internal.NewValidationError("role must be user or admin", internal.ErrCodeValidationFailed)
	}
	if dto.Status != nil && !ValidStatus(*dto.Status) {
		return internal.NewValidationError("status must be active or inactive", internal.ErrCodeValidationFailed)
	}
	if dto.Ranking != nil && !ValidRanking(*dto.Ranking) {
		return internal.NewValidationError("ranking must be one of customer, agent, master, senior", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (dto UpdateStatusDTO) Validate() error {
	if !ValidStatus(dto.Status) {
		return internal.NewValidationError("status must be active or inactive", internal.ErrCodeValidationFailed)
	}
	return nil
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (dto ChangePasswordDTO) Validate() error {
	if dto.NewPassword == "" {
		return internal.NewValidationError("new password is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.NewPassword) < 6 {
		return internal.NewValidationError("new password must be at least 6 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}
