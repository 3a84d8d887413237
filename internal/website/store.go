package website

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/frahmantamala/website-management/internal"
	"github.com/sethvargo/go-retry"
)

// WebsiteRepository defines the data access methods for websites.
type WebsiteRepository interface {
	GetAll() ([]*Website, error)
	GetByID(id string) (*Website, error)
	Create(w *Website) error
	UpdateStatus(id, status string, reason *string, updatedAt time.Time) error
	Delete(id string) error
}

// RecordRepository defines the data access methods for management records.
type RecordRepository interface {
	GetAll() ([]*ManagementRecord, error)
	GetByID(id string) (*ManagementRecord, error)
	Create(r *ManagementRecord) error
	Update(r *ManagementRecord) error
	Delete(id string) error
	DeleteByWebsiteID(websiteID string) error
}

// Store owns the in-memory collection of websites with their nested
// management records and mediates all reads and writes against the
// repositories. Reads retry on transient failure; writes fail fast so
// a flaky network cannot duplicate inserts.
type Store struct {
	websites WebsiteRepository
	records  RecordRepository
	logger   *slog.Logger

	maxRetries uint64
	backoff    time.Duration

	mu     sync.RWMutex
	items  []*Website
	index  map[string]int
	loaded bool
	stale  bool
}

func NewStore(websites WebsiteRepository, records RecordRepository, maxRetries uint64, backoff time.Duration, logger *slog.Logger) *Store {
	return &Store{
		websites:   websites,
		records:    records,
		logger:     logger,
		maxRetries: maxRetries,
		backoff:    backoff,
		index:      make(map[string]int),
	}
}

// FetchAll loads every website plus every management record, joins
// records to their parent by website id, and replaces the snapshot.
// Transient errors are retried with exponential backoff; authorization
// errors abort immediately. After exhausting retries the previous
// snapshot is kept and marked stale.
func (s *Store) FetchAll(ctx context.Context) error {
	var fetchedWebsites []*Website
	var fetchedRecords []*ManagementRecord

	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(s.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ws, err := s.websites.GetAll()
		if err != nil {
			return s.classifyFetchError(err)
		}

		rs, err := s.records.GetAll()
		if err != nil {
			return s.classifyFetchError(err)
		}

		fetchedWebsites = ws
		fetchedRecords = rs
		return nil
	})

	if err != nil {
		s.mu.Lock()
		s.stale = true
		s.mu.Unlock()
		s.logger.Error("fetch failed, keeping previous snapshot", "error", err)
		return err
	}

	byParent := make(map[string]ManagementSlice, len(fetchedWebsites))
	for _, r := range fetchedRecords {
		byParent[r.WebsiteID] = append(byParent[r.WebsiteID], r)
	}

	sort.Slice(fetchedWebsites, func(i, j int) bool {
		return fetchedWebsites[i].CreatedAt.After(fetchedWebsites[j].CreatedAt)
	})

	index := make(map[string]int, len(fetchedWebsites))
	for i, w := range fetchedWebsites {
		w.Records = byParent[w.ID]
		index[w.ID] = i
	}

	s.mu.Lock()
	s.items = fetchedWebsites
	s.index = index
	s.loaded = true
	s.stale = false
	s.mu.Unlock()

	s.logger.Info("snapshot refreshed", "websites", len(fetchedWebsites), "records", len(fetchedRecords))
	return nil
}

func (s *Store) classifyFetchError(err error) error {
	if isAuthError(err) {
		s.logger.Warn("fetch aborted: authorization error", "error", err)
		return err
	}
	s.logger.Warn("transient fetch error, will retry", "error", err)
	return retry.RetryableError(err)
}

func isAuthError(err error) bool {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.Type == internal.ErrorTypeUnauthorized || appErr.Type == internal.ErrorTypeForbidden
	}
	return false
}

// GetAll returns the full snapshot. No I/O.
func (s *Store) GetAll() []*Website {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Website, len(s.items))
	for i, w := range s.items {
		out[i] = w.Clone()
	}
	return out
}

// GetForUser filters the snapshot to one owner. No I/O.
func (s *Store) GetForUser(userID int64) []*Website {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Website
	for _, w := range s.items {
		if w.UserID == userID {
			out = append(out, w.Clone())
		}
	}
	return out
}

func (s *Store) GetByID(id string) (*Website, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.items[i].Clone(), true
}

// Loaded reports whether an initial fetch has ever succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Stale reports whether the last fetch failed and the snapshot may lag
// the database. Consumers surface this as a recoverable error state.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// AddWebsite inserts and then re-fetches the whole collection, the one
// write path that refreshes everything. No retry: the insert is not
// idempotent.
func (s *Store) AddWebsite(ctx context.Context, w *Website) error {
	if err := s.websites.Create(w); err != nil {
		return err
	}
	if err := s.FetchAll(ctx); err != nil {
		// The write landed; a failed refresh only leaves the snapshot stale.
		s.logger.Warn("refresh after insert failed", "website_id", w.ID, "error", err)
	}
	return nil
}

// SetStatus updates the remote row and patches the snapshot in place.
func (s *Store) SetStatus(id, status string, reason *string) error {
	now := time.Now()
	if err := s.websites.UpdateStatus(id, status, reason, now); err != nil {
		return err
	}

	s.patchWebsite(id, func(w *Website) {
		w.Status = status
		w.RejectionReason = reason
		w.UpdatedAt = now
	})
	return nil
}

// DeleteWebsite removes the remote row and its records, then drops the
// entry from the snapshot.
func (s *Store) DeleteWebsite(id string) error {
	if err := s.records.DeleteByWebsiteID(id); err != nil {
		return err
	}
	if err := s.websites.Delete(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.reindexLocked()
	return nil
}

// AddRecord writes the record and patches the parent's nested list,
// avoiding a full re-fetch.
func (s *Store) AddRecord(r *ManagementRecord) error {
	if err := s.records.Create(r); err != nil {
		return err
	}

	s.patchWebsite(r.WebsiteID, func(w *Website) {
		w.Records = append(w.Records, r)
	})
	return nil
}

func (s *Store) UpdateRecord(r *ManagementRecord) error {
	if err := s.records.Update(r); err != nil {
		return err
	}

	s.patchWebsite(r.WebsiteID, func(w *Website) {
		for i, existing := range w.Records {
			if existing.ID == r.ID {
				w.Records[i] = r
				return
			}
		}
		w.Records = append(w.Records, r)
	})
	return nil
}

func (s *Store) DeleteRecord(websiteID, recordID string) error {
	if err := s.records.Delete(recordID); err != nil {
		return err
	}

	s.patchWebsite(websiteID, func(w *Website) {
		for i, existing := range w.Records {
			if existing.ID == recordID {
				w.Records = append(w.Records[:i:i], w.Records[i+1:]...)
				return
			}
		}
	})
	return nil
}

// ClearRecords bulk-deletes a website's records. Clearing an already
// empty list succeeds; the operation is idempotent.
func (s *Store) ClearRecords(websiteID string) error {
	if err := s.records.DeleteByWebsiteID(websiteID); err != nil {
		return err
	}

	s.patchWebsite(websiteID, func(w *Website) {
		w.Records = nil
	})
	return nil
}

// patchWebsite clones the entry before mutating so snapshots already
// handed to readers stay consistent.
func (s *Store) patchWebsite(id string, mutate func(*Website)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return
	}

	cp := s.items[i].Clone()
	mutate(cp)

	items := make([]*Website, len(s.items))
	copy(items, s.items)
	items[i] = cp
	s.items = items
}

func (s *Store) reindexLocked() {
	index := make(map[string]int, len(s.items))
	for i, w := range s.items {
		index[w.ID] = i
	}
	s.index = index
}
