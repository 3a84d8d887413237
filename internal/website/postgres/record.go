package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/website-management/internal/website"
	"gorm.io/gorm"
)

// RecordRepository implements the website.RecordRepository interface using GORM
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) website.RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) GetAll() ([]*website.ManagementRecord, error) {
	var records []*website.ManagementRecord
	err := r.db.Order("created_at ASC").Find(&records).Error
	return records, err
}

func (r *RecordRepository) GetByID(id string) (*website.ManagementRecord, error) {
	var record website.ManagementRecord
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, website.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *RecordRepository) Create(record *website.ManagementRecord) error {
	return r.db.Create(record).Error
}

func (r *RecordRepository) Update(record *website.ManagementRecord) error {
	record.UpdatedAt = time.Now()
	return r.db.Save(record).Error
}

func (r *RecordRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&website.ManagementRecord{}).Error
}

func (r *RecordRepository) DeleteByWebsiteID(websiteID string) error {
	return r.db.Where("website_id = ?", websiteID).Delete(&website.ManagementRecord{}).Error
}
