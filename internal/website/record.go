package website

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ManagementRecord is a dated entry of operational and financial
// activity against an approved website.
type ManagementRecord struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	WebsiteID   string     `json:"website_id" gorm:"column:website_id;not null;index"`
	Day         string     `json:"day" gorm:"column:day"`
	Credit      float64    `json:"credit" gorm:"column:credit;default:0"`
	Profit      float64    `json:"profit" gorm:"column:profit;default:0"`
	GrossProfit float64    `json:"gross_profit" gorm:"column:gross_profit;default:0"`
	ServiceFee  float64    `json:"service_fee" gorm:"column:service_fee;default:0"`
	NetProfit   float64    `json:"net_profit" gorm:"column:net_profit;default:0"`
	StartDate   *time.Time `json:"start_date,omitempty" gorm:"column:start_date;type:date"`
	EndDate     *time.Time `json:"end_date,omitempty" gorm:"column:end_date;type:date"`
	Tasks       TaskList   `json:"tasks,omitempty" gorm:"column:tasks;type:jsonb"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (ManagementRecord) TableName() string {
	return "website_management"
}

type ManagementSlice []*ManagementRecord

// Task is a discrete work item on a management record.
type Task struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskList serializes to a JSON column.
type TaskList []Task

func (t TaskList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TaskList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported type for TaskList: %T", value)
	}
}

func (r *ManagementRecord) Clone() *ManagementRecord {
	cp := *r
	cp.Tasks = make(TaskList, len(r.Tasks))
	copy(cp.Tasks, r.Tasks)
	return &cp
}
