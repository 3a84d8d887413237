package user

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

// Mock Repository for testing
type mockRepository struct {
	usersByID     map[int64]*User
	returnError   bool
	errorToReturn error
}

func newMockRepository() *mockRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("old_password"), bcrypt.MinCost)

	return &mockRepository{
		usersByID: map[int64]*User{
			1: {ID: 1, Email: "admin@websitecrm.com", Name: "Admin", PasswordHash: string(hash), Role: RoleAdmin, Status: StatusActive, Ranking: RankingMaster, Phone: "+60123456789"},
			2: {ID: 2, Email: "user@websitecrm.com", Name: "Regular", PasswordHash: string(hash), Role: RoleUser, Status: StatusActive, Ranking: RankingCustomer, Phone: "+60198765432"},
			3: {ID: 3, Email: "other@websitecrm.com", Name: "Other", PasswordHash: string(hash), Role: RoleUser, Status: StatusActive, Ranking: RankingAgent, Phone: "+60111111111"},
		},
	}
}

func (m *mockRepository) GetAll() ([]*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	out := make([]*User, 0, len(m.usersByID))
	for _, u := range m.usersByID {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepository) GetByID(id int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockRepository) Update(u *User) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.usersByID[u.ID] = u
	return nil
}

func (m *mockRepository) UpdateStatus(id int64, status string, updatedAt time.Time) error {
	if m.returnError {
		return m.errorToReturn
	}
	if u, ok := m.usersByID[id]; ok {
		u.Status = status
		u.UpdatedAt = updatedAt
	}
	return nil
}

func (m *mockRepository) UpdatePassword(id int64, passwordHash string) error {
	if m.returnError {
		return m.errorToReturn
	}
	if u, ok := m.usersByID[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockRepository) Delete(id int64) error {
	if m.returnError {
		return m.errorToReturn
	}
	delete(m.usersByID, id)
	return nil
}

func (m *mockRepository) CountAdmins() (int64, error) {
	var count int64
	for _, u := range m.usersByID {
		if u.Role == RoleAdmin {
			count++
		}
	}
	return count, nil
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service  *Service
		mockRepo *mockRepository
		admin    *User
		regular  *User
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockRepository()
		service = NewService(mockRepo, bcrypt.MinCost, slog.Default())
		admin = mockRepo.usersByID[1]
		regular = mockRepo.usersByID[2]
	})

	ginkgo.Describe("GetAllUsers", func() {
		ginkgo.It("should return every profile for an admin", func() {
			users, err := service.GetAllUsers(admin)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(users).To(gomega.HaveLen(3))
		})

		ginkgo.It("should deny a regular user", func() {
			users, err := service.GetAllUsers(regular)
			gomega.Expect(err).To(gomega.Equal(ErrForbidden))
			gomega.Expect(users).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("UpdateUser", func() {
		ginkgo.Context("when users edit their own profile", func() {
			ginkgo.It("should allow name and phone changes", func() {
				name := "Renamed"
				phone := "+60155556666"
				u, err := service.UpdateUser(regular, regular.ID, UpdateUserDTO{Name: &name, Phone: &phone})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(u.Name).To(gomega.Equal("Renamed"))
				gomega.Expect(u.Phone).To(gomega.Equal("+60155556666"))
			})

			ginkgo.It("should reject role changes by non-admins", func() {
				role := RoleAdmin
				_, err := service.UpdateUser(regular, regular.ID, UpdateUserDTO{Role: &role})
				gomega.Expect(err).To(gomega.Equal(ErrForbidden))
			})

			ginkgo.It("should reject edits to someone else's profile", func() {
				name := "Hijacked"
				_, err := service.UpdateUser(regular, 3, UpdateUserDTO{Name: &name})
				gomega.Expect(err).To(gomega.Equal(ErrForbidden))
			})
		})

		ginkgo.Context("when an admin edits a profile", func() {
			ginkgo.It("should allow ranking changes", func() {
				ranking := RankingSenior
				u, err := service.UpdateUser(admin, regular.ID, UpdateUserDTO{Ranking: &ranking})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(u.Ranking).To(gomega.Equal(RankingSenior))
			})

			ginkgo.It("should block promoting a second admin", func() {
				role := RoleAdmin
				_, err := service.UpdateUser(admin, regular.ID, UpdateUserDTO{Role: &role})
				gomega.Expect(err).To(gomega.HaveOccurred())
			})
		})

		ginkgo.Context("when the payload is invalid", func() {
			ginkgo.It("should reject an unknown ranking", func() {
				ranking := "vip"
				_, err := service.UpdateUser(admin, regular.ID, UpdateUserDTO{Ranking: &ranking})
				gomega.Expect(err).To(gomega.HaveOccurred())
			})

			ginkgo.It("should reject a malformed phone", func() {
				phone := "0123456789"
				_, err := service.UpdateUser(regular, regular.ID, UpdateUserDTO{Phone: &phone})
				gomega.Expect(err).To(gomega.HaveOccurred())
			})
		})
	})

	ginkgo.Describe("UpdateUserStatus", func() {
		ginkgo.It("should let an admin deactivate a user", func() {
			err := service.UpdateUserStatus(admin, regular.ID, UpdateStatusDTO{Status: StatusInactive})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.usersByID[regular.ID].Status).To(gomega.Equal(StatusInactive))
		})

		ginkgo.It("should deny a regular user", func() {
			err := service.UpdateUserStatus(regular, 3, UpdateStatusDTO{Status: StatusInactive})
			gomega.Expect(err).To(gomega.Equal(ErrForbidden))
		})

		ginkgo.It("should reject an unknown status", func() {
			err := service.UpdateUserStatus(admin, regular.ID, UpdateStatusDTO{Status: "suspended"})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("ChangePassword", func() {
		ginkgo.It("should let the owner rotate with the old password", func() {
			err := service.ChangePassword(regular, regular.ID, ChangePasswordDTO{
				OldPassword: "old_password",
				NewPassword: "new_password",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			compareErr := bcrypt.CompareHashAndPassword([]byte(mockRepo.usersByID[regular.ID].PasswordHash), []byte("new_password"))
			gomega.Expect(compareErr).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a wrong old password", func() {
			err := service.ChangePassword(regular, regular.ID, ChangePasswordDTO{
				OldPassword: "wrong",
				NewPassword: "new_password",
			})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should let an admin set a password directly", func() {
			err := service.ChangePassword(admin, regular.ID, ChangePasswordDTO{
				NewPassword: "reset_by_admin",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a short new password", func() {
			err := service.ChangePassword(regular, regular.ID, ChangePasswordDTO{
				OldPassword: "old_password",
				NewPassword: "abc",
			})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("DeleteUser", func() {
		ginkgo.It("should let an admin delete a profile", func() {
			err := service.DeleteUser(admin, regular.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.usersByID).ToNot(gomega.HaveKey(regular.ID))
		})

		ginkgo.It("should deny a regular user", func() {
			err := service.DeleteUser(regular, 3)
			gomega.Expect(err).To(gomega.Equal(ErrForbidden))
		})

		ginkgo.It("should return not found for a missing profile", func() {
			err := service.DeleteUser(admin, 999)
			gomega.Expect(err).To(gomega.Equal(ErrNotFound))
		})
	})
})
