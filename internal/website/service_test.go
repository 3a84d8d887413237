package website

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/website-management/internal/core/events"
	"github.com/frahmantamala/website-management/internal/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("WebsiteService", func() {
	var (
		service *Service
		store   *Store
		admin   *user.User
		owner   *user.User
		other   *user.User
	)

	ginkgo.BeforeEach(func() {
		store = NewStore(newMockWebsiteRepo(), newMockRecordRepo(), 1, time.Millisecond, slog.Default())
		service = NewService(store, events.NewEventBus(slog.Default()), slog.Default())

		admin = &user.User{ID: 1, Email: "admin@websitecrm.com", Role: user.RoleAdmin, Status: user.StatusActive}
		owner = &user.User{ID: 2, Email: "owner@websitecrm.com", Role: user.RoleUser, Status: user.StatusActive}
		other = &user.User{ID: 3, Email: "other@websitecrm.com", Role: user.RoleUser, Status: user.StatusActive}
	})

	submit := func(dto CreateWebsiteDTO) *Website {
		w, err := service.CreateWebsite(context.Background(), owner, dto)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return w
	}

	ginkgo.Describe("CreateWebsite", func() {
		ginkgo.It("should submit a pending website with a generated id", func() {
			// When
			w := submit(CreateWebsiteDTO{Name: "My Shop", URL: "https://shop.example.com"})

			// Then
			gomega.Expect(w.ID).ToNot(gomega.BeEmpty())
			gomega.Expect(w.Status).To(gomega.Equal(StatusPending))
			gomega.Expect(w.UserID).To(gomega.Equal(owner.ID))
			gomega.Expect(w.UserEmail).To(gomega.Equal(owner.Email))
			gomega.Expect(w.Type).To(gomega.Equal(TypeWebsite))
		})

		ginkgo.It("should add an https scheme to bare hostnames", func() {
			w := submit(CreateWebsiteDTO{Name: "My Shop", URL: "shop.example.com"})
			gomega.Expect(w.URL).To(gomega.Equal("https://shop.example.com"))
		})

		ginkgo.It("should store N/A for document-only submissions", func() {
			w := submit(CreateWebsiteDTO{
				Name: "ID Card Upload",
				Type: TypeIDCard,
				Files: []FileAttachment{
					{Name: "id-front.jpg", URL: "https://cdn.example.com/id-front.jpg"},
				},
			})
			gomega.Expect(w.URL).To(gomega.Equal(NoURL))
			gomega.Expect(w.Files).To(gomega.HaveLen(1))
		})

		ginkgo.It("should reject an empty name", func() {
			_, err := service.CreateWebsite(context.Background(), owner, CreateWebsiteDTO{URL: "https://x.example.com"})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a missing url for website submissions", func() {
			_, err := service.CreateWebsite(context.Background(), owner, CreateWebsiteDTO{Name: "No URL"})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject an unknown type tag", func() {
			_, err := service.CreateWebsite(context.Background(), owner, CreateWebsiteDTO{Name: "X", URL: "https://x.example.com", Type: "blog"})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("ListWebsites", func() {
		ginkgo.It("should show owners their own submissions only", func() {
			submit(CreateWebsiteDTO{Name: "Mine", URL: "https://mine.example.com"})
			_, err := service.CreateWebsite(context.Background(), other, CreateWebsiteDTO{Name: "Theirs", URL: "https://theirs.example.com"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(service.ListWebsites(owner)).To(gomega.HaveLen(1))
			gomega.Expect(service.ListWebsites(admin)).To(gomega.HaveLen(2))
		})
	})

	ginkgo.Describe("GetWebsite", func() {
		ginkgo.It("should deny access to someone else's submission", func() {
			w := submit(CreateWebsiteDTO{Name: "Mine", URL: "https://mine.example.com"})

			_, err := service.GetWebsite(other, w.ID)
			gomega.Expect(err).To(gomega.Equal(ErrUnauthorizedAccess))

			got, err := service.GetWebsite(admin, w.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.ID).To(gomega.Equal(w.ID))
		})

		ginkgo.It("should return not found for an unknown id", func() {
			_, err := service.GetWebsite(admin, "missing")
			gomega.Expect(err).To(gomega.Equal(ErrWebsiteNotFound))
		})
	})

	ginkgo.Describe("status transitions", func() {
		var w *Website

		ginkgo.BeforeEach(func() {
			w = submit(CreateWebsiteDTO{Name: "My Shop", URL: "https://shop.example.com"})
		})

		ginkgo.It("should approve a pending submission exactly once", func() {
			gomega.Expect(service.ApproveWebsite(context.Background(), admin, w.ID)).To(gomega.Succeed())

			got, _ := service.GetWebsite(admin, w.ID)
			gomega.Expect(got.Status).To(gomega.Equal(StatusApproved))

			// Approved is terminal
			err := service.ApproveWebsite(context.Background(), admin, w.ID)
			gomega.Expect(err).To(gomega.Equal(ErrInvalidStatus))
			err = service.RejectWebsite(context.Background(), admin, w.ID, "too late")
			gomega.Expect(err).To(gomega.Equal(ErrInvalidStatus))
		})

		ginkgo.It("should reject a pending submission with a reason", func() {
			gomega.Expect(service.RejectWebsite(context.Background(), admin, w.ID, "incomplete information")).To(gomega.Succeed())

			got, _ := service.GetWebsite(admin, w.ID)
			gomega.Expect(got.Status).To(gomega.Equal(StatusRejected))
			gomega.Expect(*got.RejectionReason).To(gomega.Equal("incomplete information"))

			// Rejected is terminal
			err := service.ApproveWebsite(context.Background(), admin, w.ID)
			gomega.Expect(err).To(gomega.Equal(ErrInvalidStatus))
		})

		ginkgo.It("should deny non-admins", func() {
			gomega.Expect(service.ApproveWebsite(context.Background(), owner, w.ID)).To(gomega.Equal(ErrUnauthorizedAccess))
			gomega.Expect(service.RejectWebsite(context.Background(), owner, w.ID, "no")).To(gomega.Equal(ErrUnauthorizedAccess))
		})
	})

	ginkgo.Describe("management records", func() {
		var w *Website

		ginkgo.BeforeEach(func() {
			w = submit(CreateWebsiteDTO{Name: "My Shop", URL: "https://shop.example.com"})
			gomega.Expect(service.ApproveWebsite(context.Background(), admin, w.ID)).To(gomega.Succeed())
		})

		ginkgo.It("should derive net profit from gross profit and service fee", func() {
			gross := 1000.0
			fee := 150.0
			record, err := service.AddRecord(admin, w.ID, RecordDTO{
				Day:         "Monday",
				GrossProfit: &gross,
				ServiceFee:  &fee,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(record.ID).ToNot(gomega.BeEmpty())
			gomega.Expect(record.NetProfit).To(gomega.Equal(850.0))
		})

		ginkgo.It("should keep an explicit net profit", func() {
			gross := 1000.0
			fee := 150.0
			net := 500.0
			record, err := service.AddRecord(admin, w.ID, RecordDTO{
				Day:         "Monday",
				GrossProfit: &gross,
				ServiceFee:  &fee,
				NetProfit:   &net,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(record.NetProfit).To(gomega.Equal(500.0))
		})

		ginkgo.It("should refuse records on a website that is not approved", func() {
			pending := submit(CreateWebsiteDTO{Name: "Still Pending", URL: "https://pending.example.com"})

			_, err := service.AddRecord(admin, pending.ID, RecordDTO{Day: "Monday"})
			gomega.Expect(err).To(gomega.Equal(ErrInvalidStatus))
		})

		ginkgo.It("should deny record writes to non-admins", func() {
			_, err := service.AddRecord(owner, w.ID, RecordDTO{Day: "Monday"})
			gomega.Expect(err).To(gomega.Equal(ErrUnauthorizedAccess))
			gomega.Expect(service.ClearRecords(owner, w.ID)).To(gomega.Equal(ErrUnauthorizedAccess))
		})

		ginkgo.It("should update an existing record", func() {
			record, err := service.AddRecord(admin, w.ID, RecordDTO{Day: "Monday"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			credit := 250.0
			updated, err := service.UpdateRecord(admin, w.ID, record.ID, RecordDTO{Day: "Tuesday", Credit: &credit})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.Day).To(gomega.Equal("Tuesday"))
			gomega.Expect(updated.Credit).To(gomega.Equal(250.0))
		})

		ginkgo.It("should return not found for a missing record", func() {
			_, err := service.UpdateRecord(admin, w.ID, "missing", RecordDTO{Day: "Tuesday"})
			gomega.Expect(err).To(gomega.Equal(ErrRecordNotFound))

			gomega.Expect(service.DeleteRecord(admin, w.ID, "missing")).To(gomega.Equal(ErrRecordNotFound))
		})

		ginkgo.It("should clear all records idempotently", func() {
			_, err := service.AddRecord(admin, w.ID, RecordDTO{Day: "Monday"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.AddRecord(admin, w.ID, RecordDTO{Day: "Tuesday"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(service.ClearRecords(admin, w.ID)).To(gomega.Succeed())
			got, _ := service.GetWebsite(admin, w.ID)
			gomega.Expect(got.Records).To(gomega.BeEmpty())

			gomega.Expect(service.ClearRecords(admin, w.ID)).To(gomega.Succeed())
		})

		ginkgo.It("should validate task status on record payloads", func() {
			_, err := service.AddRecord(admin, w.ID, RecordDTO{
				Day:   "Monday",
				Tasks: TaskList{{Type: "seo", Description: "keyword audit", Status: "done"}},
			})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("DeleteWebsite", func() {
		ginkgo.It("should allow the owner and admins, nobody else", func() {
			w := submit(CreateWebsiteDTO{Name: "Mine", URL: "https://mine.example.com"})

			gomega.Expect(service.DeleteWebsite(context.Background(), other, w.ID)).To(gomega.Equal(ErrUnauthorizedAccess))
			gomega.Expect(service.DeleteWebsite(context.Background(), owner, w.ID)).To(gomega.Succeed())

			_, err := service.GetWebsite(admin, w.ID)
			gomega.Expect(err).To(gomega.Equal(ErrWebsiteNotFound))
		})
	})

	ginkgo.Describe("lifecycle events", func() {
		ginkgo.It("should deliver audit events before the operation returns", func() {
			// Given a bus with a recording subscriber
			bus := events.NewEventBus(slog.Default())
			var seen []string
			for _, eventType := range []string{EventSubmitted, EventApproved, EventRejected, EventDeleted} {
				bus.Subscribe(eventType, func(ctx context.Context, e events.Event) error {
					seen = append(seen, e.EventType())
					return nil
				})
			}
			service = NewService(store, bus, slog.Default())

			// When a submission is approved and later deleted
			w := submit(CreateWebsiteDTO{Name: "Audited", URL: "https://audited.example.com"})
			gomega.Expect(service.ApproveWebsite(context.Background(), admin, w.ID)).To(gomega.Succeed())
			gomega.Expect(service.DeleteWebsite(context.Background(), admin, w.ID)).To(gomega.Succeed())

			// Then every event was observed synchronously, in order
			gomega.Expect(seen).To(gomega.Equal([]string{EventSubmitted, EventApproved, EventDeleted}))
		})
	})
})
