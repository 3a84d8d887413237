package website

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/website-management/internal/core/events"
	"github.com/frahmantamala/website-management/internal/user"
	"github.com/google/uuid"
)

// Service handles website and management-record business logic on top
// of the snapshot store.
type Service struct {
	store  *Store
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(store *Store, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

// FetchAll refreshes the snapshot from the database.
func (s *Service) FetchAll(ctx context.Context) error {
	return s.store.FetchAll(ctx)
}

// Stale reports whether the snapshot may lag the database after a
// failed refresh.
func (s *Service) Stale() bool {
	return s.store.Stale()
}

// ListWebsites returns the caller's submissions, or everything for an
// admin. Pure snapshot read.
func (s *Service) ListWebsites(actor *user.User) []*Website {
	if actor.IsAdmin() {
		return s.store.GetAll()
	}
	return s.store.GetForUser(actor.ID)
}

// GetWebsite returns one submission with access control: owners and
// admins only.
func (s *Service) GetWebsite(actor *user.User, id string) (*Website, error) {
	w, ok := s.store.GetByID(id)
	if !ok {
		return nil, ErrWebsiteNotFound
	}

	if !actor.IsAdmin() && w.UserID != actor.ID {
		s.logger.Warn("unauthorized access to website", "website_id", id, "user_id", actor.ID, "owner_id", w.UserID)
		return nil, ErrUnauthorizedAccess
	}

	return w, nil
}

// CreateWebsite submits a new website or document with a client-side
// generated id and pending status.
func (s *Service) CreateWebsite(ctx context.Context, actor *user.User, dto CreateWebsiteDTO) (*Website, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("website validation failed", "error", err, "user_id", actor.ID)
		return nil, err
	}

	typeTag := dto.Type
	if typeTag == "" {
		typeTag = TypeWebsite
	}

	now := time.Now()
	w := &Website{
		ID:            uuid.NewString(),
		UserID:        actor.ID,
		UserEmail:     actor.Email,
		Name:          dto.Name,
		URL:           NormalizeURL(dto.URL, typeTag),
		Type:          typeTag,
		Status:        StatusPending,
		AdminURL:      dto.AdminURL,
		AdminUsername: dto.AdminUsername,
		AdminPassword: dto.AdminPassword,
		Files:         FileList(dto.Files),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.AddWebsite(ctx, w); err != nil {
		s.logger.Error("failed to create website", "error", err, "user_id", actor.ID)
		return nil, err
	}

	s.bus.PublishSync(ctx, newEvent(EventSubmitted, w, actor.ID, nil))

	s.logger.Info("website submitted",
		"website_id", w.ID,
		"user_id", actor.ID,
		"name", w.Name,
		"type", w.Type)

	return w, nil
}

// ApproveWebsite moves a pending submission to approved. Admin only;
// approved and rejected are terminal.
func (s *Service) ApproveWebsite(ctx context.Context, actor *user.User, id string) error {
	if !actor.IsAdmin() {
		s.logger.Warn("approve denied: admin required", "website_id", id, "user_id", actor.ID)
		return ErrUnauthorizedAccess
	}

	w, ok := s.store.GetByID(id)
	if !ok {
		return ErrWebsiteNotFound
	}

	if !w.CanBeApproved() {
		s.logger.Warn("cannot approve website in current status", "website_id", id, "status", w.Status)
		return ErrInvalidStatus
	}

	if err := s.store.SetStatus(id, StatusApproved, nil); err != nil {
		s.logger.Error("failed to approve website", "error", err, "website_id", id)
		return err
	}

	w.Status = StatusApproved
	s.bus.PublishSync(ctx, newEvent(EventApproved, w, actor.ID, nil))

	s.logger.Info("website approved", "website_id", id, "admin_id", actor.ID)
	return nil
}

// RejectWebsite moves a pending submission to rejected with a reason.
// A rejected item can only come back as a brand-new submission.
func (s *Service) RejectWebsite(ctx context.Context, actor *user.User, id, reason string) error {
	if !actor.IsAdmin() {
		s.logger.Warn("reject denied: admin required", "website_id", id, "user_id", actor.ID)
		return ErrUnauthorizedAccess
	}

	w, ok := s.store.GetByID(id)
	if !ok {
		return ErrWebsiteNotFound
	}

	if !w.CanBeRejected() {
		s.logger.Warn("cannot reject website in current status", "website_id", id, "status", w.Status)
		return ErrInvalidStatus
	}

	if err := s.store.SetStatus(id, StatusRejected, &reason); err != nil {
		s.logger.Error("failed to reject website", "error", err, "website_id", id)
		return err
	}

	w.Status = StatusRejected
	s.bus.PublishSync(ctx, newEvent(EventRejected, w, actor.ID, map[string]interface{}{"reason": reason}))

	s.logger.Info("website rejected", "website_id", id, "admin_id", actor.ID, "reason", reason)
	return nil
}

// DeleteWebsite removes a submission and its records. Owner or admin.
func (s *Service) DeleteWebsite(ctx context.Context, actor *user.User, id string) error {
	w, ok := s.store.GetByID(id)
	if !ok {
		return ErrWebsiteNotFound
	}

	if !actor.IsAdmin() && w.UserID != actor.ID {
		s.logger.Warn("delete denied", "website_id", id, "user_id", actor.ID)
		return ErrUnauthorizedAccess
	}

	if err := s.store.DeleteWebsite(id); err != nil {
		s.logger.Error("failed to delete website", "error", err, "website_id", id)
		return err
	}

	s.bus.PublishSync(ctx, newEvent(EventDeleted, w, actor.ID, nil))

	s.logger.Info("website deleted", "website_id", id, "actor_id", actor.ID)
	return nil
}

// AddRecord creates a management record under an approved website.
// Admin only; records against pending or rejected submissions are an
// error.
func (s *Service) AddRecord(actor *user.User, websiteID string, dto RecordDTO) (*ManagementRecord, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("add record denied: admin required", "website_id", websiteID, "user_id", actor.ID)
		return nil, ErrUnauthorizedAccess
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	w, ok := s.store.GetByID(websiteID)
	if !ok {
		return nil, ErrWebsiteNotFound
	}

	if w.Status != StatusApproved {
		s.logger.Warn("cannot add record: website not approved", "website_id", websiteID, "status", w.Status)
		return nil, ErrInvalidStatus
	}

	now := time.Now()
	record := &ManagementRecord{
		ID:        uuid.NewString(),
		WebsiteID: websiteID,
		CreatedAt: now,
	}
	dto.Apply(record)

	if err := s.store.AddRecord(record); err != nil {
		s.logger.Error("failed to add record", "error", err, "website_id", websiteID)
		return nil, err
	}

	s.logger.Info("management record added", "record_id", record.ID, "website_id", websiteID, "day", record.Day)
	return record, nil
}

// UpdateRecord patches an existing management record. Admin only.
func (s *Service) UpdateRecord(actor *user.User, websiteID, recordID string, dto RecordDTO) (*ManagementRecord, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("update record denied: admin required", "website_id", websiteID, "user_id", actor.ID)
		return nil, ErrUnauthorizedAccess
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	w, ok := s.store.GetByID(websiteID)
	if !ok {
		return nil, ErrWebsiteNotFound
	}

	var existing *ManagementRecord
	for _, r := range w.Records {
		if r.ID == recordID {
			existing = r.Clone()
			break
		}
	}
	if existing == nil {
		return nil, ErrRecordNotFound
	}

	dto.Apply(existing)

	if err := s.store.UpdateRecord(existing); err != nil {
		s.logger.Error("failed to update record", "error", err, "record_id", recordID)
		return nil, err
	}

	s.logger.Info("management record updated", "record_id", recordID, "website_id", websiteID)
	return existing, nil
}

// DeleteRecord removes one management record. Admin only.
func (s *Service) DeleteRecord(actor *user.User, websiteID, recordID string) error {
	if !actor.IsAdmin() {
		s.logger.Warn("delete record denied: admin required", "website_id", websiteID, "user_id", actor.ID)
		return ErrUnauthorizedAccess
	}

	w, ok := s.store.GetByID(websiteID)
	if !ok {
		return ErrWebsiteNotFound
	}

	found := false
	for _, r := range w.Records {
		if r.ID == recordID {
			found = true
			break
		}
	}
	if !found {
		return ErrRecordNotFound
	}

	if err := s.store.DeleteRecord(websiteID, recordID); err != nil {
		s.logger.Error("failed to delete record", "error", err, "record_id", recordID)
		return err
	}

	s.logger.Info("management record deleted", "record_id", recordID, "website_id", websiteID)
	return nil
}

// ClearRecords empties a website's management records. Admin only and
// idempotent: clearing an empty list is not an error.
func (s *Service) ClearRecords(actor *user.User, websiteID string) error {
	if !actor.IsAdmin() {
		s.logger.Warn("clear records denied: admin required", "website_id", websiteID, "user_id", actor.ID)
		return ErrUnauthorizedAccess
	}

	if _, ok := s.store.GetByID(websiteID); !ok {
		return ErrWebsiteNotFound
	}

	if err := s.store.ClearRecords(websiteID); err != nil {
		s.logger.Error("failed to clear records", "error", err, "website_id", websiteID)
		return err
	}

	s.logger.Info("management records cleared", "website_id", websiteID)
	return nil
}
