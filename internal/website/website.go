package website

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/website-management/internal"
)

// Website is a user submission under admin review: a real site, an app,
// or a document-only upload (ID card, bank statement).
type Website struct {
	ID              string          `json:"id" gorm:"primaryKey"`
	UserID          int64           `json:"user_id" gorm:"column:userid;not null;index"`
	UserEmail       string          `json:"user_email" gorm:"column:useremail"`
	Name            string          `json:"name" gorm:"column:name;not null"`
	URL             string          `json:"url" gorm:"column:url"`
	Type            string          `json:"type" gorm:"column:type;default:website"`
	Status          string          `json:"status" gorm:"column:status;default:pending"`
	RejectionReason *string         `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`
	AdminURL        *string         `json:"admin_url,omitempty" gorm:"column:admin_url"`
	AdminUsername   *string         `json:"admin_username,omitempty" gorm:"column:admin_username"`
	AdminPassword   *string         `json:"admin_password,omitempty" gorm:"column:admin_password"`
	Files           FileList        `json:"files,omitempty" gorm:"column:files;type:jsonb"`
	CreatedAt       time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"column:updated_at;default:now()"`
	Records         ManagementSlice `json:"management_records" gorm:"-"`
}

func (Website) TableName() string {
	return "websites"
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	TypeWebsite       = "website"
	TypeApp           = "app"
	TypeOther         = "other"
	TypeIDCard        = "id-card"
	TypeBankStatement = "bank-statement"
	TypeDocument      = "document"
)

// NoURL is stored for document-only submissions.
const NoURL = "N/A"

func ValidType(t string) bool {
	switch t {
	case TypeWebsite, TypeApp, TypeOther, TypeIDCard, TypeBankStatement, TypeDocument:
		return true
	}
	return false
}

// DocumentOnly reports whether the type tag carries no target URL.
func DocumentOnly(t string) bool {
	switch t {
	case TypeIDCard, TypeBankStatement, TypeDocument:
		return true
	}
	return false
}

// NormalizeURL adds an https scheme to bare hostnames. Document-only
// submissions always normalize to NoURL.
func NormalizeURL(raw, typeTag string) string {
	raw = strings.TrimSpace(raw)
	if DocumentOnly(typeTag) || raw == "" || raw == NoURL {
		return NoURL
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// Status transitions are monotonic: pending is the only state that can
// move, and it moves exactly once.
func (w *Website) CanBeApproved() bool {
	return w.Status == StatusPending
}

func (w *Website) CanBeRejected() bool {
	return w.Status == StatusPending
}

func (w *Website) Approve() {
	w.Status = StatusApproved
	w.RejectionReason = nil
	w.UpdatedAt = time.Now()
}

func (w *Website) Reject(reason string) {
	w.Status = StatusRejected
	w.RejectionReason = &reason
	w.UpdatedAt = time.Now()
}

// Clone returns a copy safe to hand out of the store; the records
// slice is copied, the records themselves are shared read-only.
func (w *Website) Clone() *Website {
	cp := *w
	cp.Records = make(ManagementSlice, len(w.Records))
	copy(cp.Records, w.Records)
	return &cp
}

// FileAttachment describes one uploaded file on a submission.
type FileAttachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// FileList serializes to a JSON column.
type FileList []FileAttachment

func (f FileList) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FileList) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported type for FileList: %T", value)
	}
}

var (
	ErrWebsiteNotFound    = internal.NewNotFoundError("website not found", internal.ErrCodeWebsiteNotFound)
	ErrRecordNotFound     = internal.NewNotFoundError("management record not found", internal.ErrCodeRecordNotFound)
	ErrInvalidStatus      = internal.NewValidationError("invalid website status for this operation", internal.ErrCodeInvalidStatus)
	ErrUnauthorizedAccess = internal.NewForbiddenError("unauthorized access to website", internal.ErrCodeUnauthorizedAccess)
	// ErrReauthenticate marks authorization failures on the read path;
	// the store never retries these.
	ErrReauthenticate = internal.NewUnauthorizedError("session is no longer valid, re-authenticate", internal.ErrCodeUnauthorizedAccess)
)
