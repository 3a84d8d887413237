package website

import (
	"time"

	"github.com/frahmantamala/website-management/internal"
)

// CreateWebsiteDTO is the request payload for submitting a website or
// document for review.
type CreateWebsiteDTO struct {
	Name          string           `json:"name"`
	URL           string           `json:"url"`
	Type          string           `json:"type"`
	AdminURL      *string          `json:"admin_url,omitempty"`
	AdminUsername *string          `json:"admin_username,omitempty"`
	AdminPassword *string          `json:"admin_password,omitempty"`
	Files         []FileAttachment `json:"files,omitempty"`
}

func (dto CreateWebsiteDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Name) > 200 {
		return internal.NewValidationError("name must be less than 200 characters", internal.ErrCodeValidationFailed)
	}
	if dto.Type != "" && !ValidType(dto.Type) {
		return internal.NewValidationError("type must be one of website, app, other, id-card, bank-statement, document", internal.ErrCodeInvalidType)
	}
	if !DocumentOnly(dto.Type) && dto.URL == "" {
		return internal.NewValidationError("url is required for non-document submissions", internal.ErrCodeInvalidURL)
	}
	for _, f := range dto.Files {
		if f.Name == "" || f.URL == "" {
			return internal.NewValidationError("attached files need a name and a url", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

type RejectWebsiteDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectWebsiteDTO) Validate() error {
	if dto.Reason == "" {
		return internal.NewValidationError("reason is required when rejecting a website", internal.ErrCodeValidationFailed)
	}
	return nil
}

// RecordDTO carries management-record fields for create and update.
// Monetary fields default to 0 when absent; net profit is derived from
// gross profit minus service fee unless supplied.
type RecordDTO struct {
	Day         string     `json:"day"`
	Credit      *float64   `json:"credit,omitempty"`
	Profit      *float64   `json:"profit,omitempty"`
	GrossProfit *float64   `json:"gross_profit,omitempty"`
	ServiceFee  *float64   `json:"service_fee,omitempty"`
	NetProfit   *float64   `json:"net_profit,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Tasks       []Task     `json:"tasks,omitempty"`
}

func (dto RecordDTO) Validate() error {
	if dto.Day == "" {
		return internal.NewValidationError("day is required", internal.ErrCodeValidationFailed)
	}
	if dto.StartDate != nil && dto.EndDate != nil && dto.EndDate.Before(*dto.StartDate) {
		return internal.NewValidationError("end_date cannot be before start_date", internal.ErrCodeValidationFailed)
	}
	for _, t := range dto.Tasks {
		if t.Status != "" && !ValidTaskStatus(t.Status) {
			return internal.NewValidationError("task status must be pending, in-progress or completed", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

func coerce(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Apply copies the DTO onto a record, coercing absent monetary fields
// to 0 and deriving the net profit when it is not supplied.
func (dto RecordDTO) Apply(r *ManagementRecord) {
	r.Day = dto.Day
	r.Credit = coerce(dto.Credit)
	r.Profit = coerce(dto.Profit)
	r.GrossProfit = coerce(dto.GrossProfit)
	r.ServiceFee = coerce(dto.ServiceFee)
	if dto.NetProfit != nil {
		r.NetProfit = *dto.NetProfit
	} else {
		r.NetProfit = r.GrossProfit - r.ServiceFee
	}
	r.StartDate = dto.StartDate
	r.EndDate = dto.EndDate
	r.Tasks = dto.Tasks
	r.UpdatedAt = time.Now()
}
