package website

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/website-management/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestWebsite(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Website Module Suite")
}

// Mock WebsiteRepository for testing
type mockWebsiteRepo struct {
	byID     map[string]*Website
	getCalls int
	failNext int
	failWith error
}

func newMockWebsiteRepo() *mockWebsiteRepo {
	return &mockWebsiteRepo{byID: make(map[string]*Website)}
}

func (m *mockWebsiteRepo) GetAll() ([]*Website, error) {
	m.getCalls++
	if m.failNext > 0 {
		m.failNext--
		return nil, m.failWith
	}
	out := make([]*Website, 0, len(m.byID))
	for _, w := range m.byID {
		out = append(out, w.Clone())
	}
	return out, nil
}

func (m *mockWebsiteRepo) GetByID(id string) (*Website, error) {
	if w, ok := m.byID[id]; ok {
		return w.Clone(), nil
	}
	return nil, ErrWebsiteNotFound
}

func (m *mockWebsiteRepo) Create(w *Website) error {
	m.byID[w.ID] = w.Clone()
	return nil
}

func (m *mockWebsiteRepo) UpdateStatus(id, status string, reason *string, updatedAt time.Time) error {
	w, ok := m.byID[id]
	if !ok {
		return ErrWebsiteNotFound
	}
	w.Status = status
	w.RejectionReason = reason
	w.UpdatedAt = updatedAt
	return nil
}

func (m *mockWebsiteRepo) Delete(id string) error {
	delete(m.byID, id)
	return nil
}

// Mock RecordRepository for testing
type mockRecordRepo struct {
	byID map[string]*ManagementRecord
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{byID: make(map[string]*ManagementRecord)}
}

func (m *mockRecordRepo) GetAll() ([]*ManagementRecord, error) {
	out := make([]*ManagementRecord, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *mockRecordRepo) GetByID(id string) (*ManagementRecord, error) {
	if r, ok := m.byID[id]; ok {
		return r.Clone(), nil
	}
	return nil, ErrRecordNotFound
}

func (m *mockRecordRepo) Create(r *ManagementRecord) error {
	m.byID[r.ID] = r.Clone()
	return nil
}

func (m *mockRecordRepo) Update(r *ManagementRecord) error {
	if _, ok := m.byID[r.ID]; !ok {
		return ErrRecordNotFound
	}
	m.byID[r.ID] = r.Clone()
	return nil
}

func (m *mockRecordRepo) Delete(id string) error {
	delete(m.byID, id)
	return nil
}

func (m *mockRecordRepo) DeleteByWebsiteID(websiteID string) error {
	for id, r := range m.byID {
		if r.WebsiteID == websiteID {
			delete(m.byID, id)
		}
	}
	return nil
}

func testWebsite(id string, userID int64, status string, createdAt time.Time) *Website {
	return &Website{
		ID:        id,
		UserID:    userID,
		UserEmail: "owner@websitecrm.com",
		Name:      "Site " + id,
		URL:       "https://" + id + ".example.com",
		Type:      TypeWebsite,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

var _ = ginkgo.Describe("Store", func() {
	var (
		websiteRepo *mockWebsiteRepo
		recordRepo  *mockRecordRepo
		store       *Store
	)

	ginkgo.BeforeEach(func() {
		websiteRepo = newMockWebsiteRepo()
		recordRepo = newMockRecordRepo()
		store = NewStore(websiteRepo, recordRepo, 3, time.Millisecond, slog.Default())
	})

	ginkgo.Describe("FetchAll", func() {
		ginkgo.It("should join records to their parent and sort newest first", func() {
			// Given
			old := testWebsite("old", 1, StatusApproved, time.Now().Add(-time.Hour))
			recent := testWebsite("recent", 1, StatusPending, time.Now())
			gomega.Expect(websiteRepo.Create(old)).To(gomega.Succeed())
			gomega.Expect(websiteRepo.Create(recent)).To(gomega.Succeed())
			gomega.Expect(recordRepo.Create(&ManagementRecord{ID: "r1", WebsiteID: "old", Day: "Monday"})).To(gomega.Succeed())

			// When
			err := store.FetchAll(context.Background())

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(store.Loaded()).To(gomega.BeTrue())
			gomega.Expect(store.Stale()).To(gomega.BeFalse())

			all := store.GetAll()
			gomega.Expect(all).To(gomega.HaveLen(2))
			gomega.Expect(all[0].ID).To(gomega.Equal("recent"))
			gomega.Expect(all[1].ID).To(gomega.Equal("old"))
			gomega.Expect(all[1].Records).To(gomega.HaveLen(1))
			gomega.Expect(all[1].Records[0].Day).To(gomega.Equal("Monday"))
		})

		ginkgo.Context("when the repository fails transiently", func() {
			ginkgo.It("should retry and eventually succeed", func() {
				// Given two transient failures before success
				websiteRepo.failNext = 2
				websiteRepo.failWith = errors.New("connection reset")
				gomega.Expect(websiteRepo.Create(testWebsite("a", 1, StatusPending, time.Now()))).To(gomega.Succeed())
				websiteRepo.getCalls = 0

				// When
				err := store.FetchAll(context.Background())

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(websiteRepo.getCalls).To(gomega.Equal(3))
				gomega.Expect(store.GetAll()).To(gomega.HaveLen(1))
			})

			ginkgo.It("should mark the snapshot stale after exhausting retries", func() {
				// Given a healthy first fetch
				gomega.Expect(websiteRepo.Create(testWebsite("a", 1, StatusPending, time.Now()))).To(gomega.Succeed())
				gomega.Expect(store.FetchAll(context.Background())).To(gomega.Succeed())

				// And a repository that keeps failing
				websiteRepo.failNext = 10
				websiteRepo.failWith = errors.New("connection reset")

				// When
				err := store.FetchAll(context.Background())

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(store.Stale()).To(gomega.BeTrue())
				// Previous snapshot survives
				gomega.Expect(store.GetAll()).To(gomega.HaveLen(1))

				// And a later successful fetch clears the flag
				websiteRepo.failNext = 0
				gomega.Expect(store.FetchAll(context.Background())).To(gomega.Succeed())
				gomega.Expect(store.Stale()).To(gomega.BeFalse())
			})
		})

		ginkgo.Context("when the repository fails with an authorization error", func() {
			ginkgo.It("should abort without retrying", func() {
				// Given
				websiteRepo.failNext = 10
				websiteRepo.failWith = internal.NewUnauthorizedError("session expired", internal.ErrCodeInvalidToken)
				websiteRepo.getCalls = 0

				// When
				err := store.FetchAll(context.Background())

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(websiteRepo.getCalls).To(gomega.Equal(1))
			})
		})
	})

	ginkgo.Describe("AddWebsite", func() {
		ginkgo.It("should insert and refresh the snapshot", func() {
			// When
			err := store.AddWebsite(context.Background(), testWebsite("new", 7, StatusPending, time.Now()))

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			w, ok := store.GetByID("new")
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(w.UserID).To(gomega.Equal(int64(7)))
		})
	})

	ginkgo.Describe("GetForUser", func() {
		ginkgo.It("should only return the owner's submissions", func() {
			gomega.Expect(store.AddWebsite(context.Background(), testWebsite("mine", 1, StatusPending, time.Now()))).To(gomega.Succeed())
			gomega.Expect(store.AddWebsite(context.Background(), testWebsite("theirs", 2, StatusPending, time.Now()))).To(gomega.Succeed())

			mine := store.GetForUser(1)
			gomega.Expect(mine).To(gomega.HaveLen(1))
			gomega.Expect(mine[0].ID).To(gomega.Equal("mine"))
		})
	})

	ginkgo.Describe("SetStatus", func() {
		ginkgo.It("should patch the snapshot without touching handed-out copies", func() {
			// Given
			gomega.Expect(store.AddWebsite(context.Background(), testWebsite("w", 1, StatusPending, time.Now()))).To(gomega.Succeed())
			before, _ := store.GetByID("w")

			// When
			reason := "incomplete information"
			gomega.Expect(store.SetStatus("w", StatusRejected, &reason)).To(gomega.Succeed())

			// Then
			after, _ := store.GetByID("w")
			gomega.Expect(after.Status).To(gomega.Equal(StatusRejected))
			gomega.Expect(*after.RejectionReason).To(gomega.Equal("incomplete information"))
			gomega.Expect(before.Status).To(gomega.Equal(StatusPending))
		})
	})

	ginkgo.Describe("record operations", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(store.AddWebsite(context.Background(), testWebsite("w", 1, StatusApproved, time.Now()))).To(gomega.Succeed())
		})

		ginkgo.It("should append, update and delete nested records in place", func() {
			record := &ManagementRecord{ID: "r1", WebsiteID: "w", Day: "Monday", GrossProfit: 100, ServiceFee: 10, NetProfit: 90}
			gomega.Expect(store.AddRecord(record)).To(gomega.Succeed())

			w, _ := store.GetByID("w")
			gomega.Expect(w.Records).To(gomega.HaveLen(1))

			updated := record.Clone()
			updated.NetProfit = 42
			gomega.Expect(store.UpdateRecord(updated)).To(gomega.Succeed())
			w, _ = store.GetByID("w")
			gomega.Expect(w.Records[0].NetProfit).To(gomega.Equal(float64(42)))

			gomega.Expect(store.DeleteRecord("w", "r1")).To(gomega.Succeed())
			w, _ = store.GetByID("w")
			gomega.Expect(w.Records).To(gomega.BeEmpty())
		})

		ginkgo.It("should clear records idempotently", func() {
			gomega.Expect(store.AddRecord(&ManagementRecord{ID: "r1", WebsiteID: "w", Day: "Monday"})).To(gomega.Succeed())
			gomega.Expect(store.AddRecord(&ManagementRecord{ID: "r2", WebsiteID: "w", Day: "Tuesday"})).To(gomega.Succeed())

			gomega.Expect(store.ClearRecords("w")).To(gomega.Succeed())
			w, _ := store.GetByID("w")
			gomega.Expect(w.Records).To(gomega.BeEmpty())

			// Clearing an already empty list succeeds too
			gomega.Expect(store.ClearRecords("w")).To(gomega.Succeed())
		})
	})

	ginkgo.Describe("DeleteWebsite", func() {
		ginkgo.It("should cascade delete records and drop the snapshot entry", func() {
			gomega.Expect(store.AddWebsite(context.Background(), testWebsite("w", 1, StatusApproved, time.Now()))).To(gomega.Succeed())
			gomega.Expect(store.AddRecord(&ManagementRecord{ID: "r1", WebsiteID: "w", Day: "Monday"})).To(gomega.Succeed())

			gomega.Expect(store.DeleteWebsite("w")).To(gomega.Succeed())

			_, ok := store.GetByID("w")
			gomega.Expect(ok).To(gomega.BeFalse())
			gomega.Expect(recordRepo.byID).To(gomega.BeEmpty())
		})
	})
})
