package postgres

import (
	"errors"
	"time"

	"github.com/frahmantamala/website-management/internal/website"
	"gorm.io/gorm"
)

// WebsiteRepository implements the website.WebsiteRepository interface using GORM
type WebsiteRepository struct {
	db *gorm.DB
}

func NewWebsiteRepository(db *gorm.DB) website.WebsiteRepository {
	return &WebsiteRepository{db: db}
}

func (r *WebsiteRepository) GetAll() ([]*website.Website, error) {
	var items []*website.Website
	err := r.db.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *WebsiteRepository) GetByID(id string) (*website.Website, error) {
	var w website.Website
	err := r.db.Where("id = ?", id).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, website.ErrWebsiteNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *WebsiteRepository) Create(w *website.Website) error {
	return r.db.Create(w).Error
}

func (r *WebsiteRepository) UpdateStatus(id, status string, reason *string, updatedAt time.Time) error {
	result := r.db.Model(&website.Website{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"rejection_reason": reason,
			"updated_at":       updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return website.ErrWebsiteNotFound
	}
	return nil
}

func (r *WebsiteRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&website.Website{}).Error
}
