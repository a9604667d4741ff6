package user_test

import (
	"errors"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"github.com/rmacedo/prestacao-viagens/internal/user"
)

type mockUserRepo struct {
	users map[int64]*user.User

	createdRole  string
	createdDepts []int64
	updatedUser  *user.User

	profileRole  *string
	profileDepts []int64
	deptsGiven   bool
	deletedID    int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*user.User)}
}

func (m *mockUserRepo) GetByID(id int64) (*user.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) GetAll() ([]*user.User, error) {
	out := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) Create(u *user.User, role string, photoURL *string, departmentIDs []int64) error {
	u.ID = int64(len(m.users) + 1)
	m.users[u.ID] = u
	m.createdRole = role
	m.createdDepts = departmentIDs
	return nil
}

func (m *mockUserRepo) UpdateFields(u *user.User) error {
	m.updatedUser = u
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) UpdateProfile(userID int64, role *string, departmentIDs []int64, departmentsProvided bool) error {
	m.profileRole = role
	m.profileDepts = departmentIDs
	m.deptsGiven = departmentsProvided
	return nil
}

func (m *mockUserRepo) Delete(id int64) error {
	m.deletedID = id
	delete(m.users, id)
	return nil
}

type mockBalances struct {
	advances int64
	expenses int64
	err      error
}

func (m *mockBalances) SumAdvancesByUser(userID int64) (int64, error) {
	return m.advances, m.err
}

func (m *mockBalances) SumExpensesByUser(userID int64) (int64, error) {
	return m.expenses, m.err
}

type mockTrips struct {
	active *user.TripInfo
	next   *user.TripInfo
	last   *user.TripInfo
}

func (m *mockTrips) ActiveTrip(userID int64, today time.Time) (*user.TripInfo, error) {
	return m.active, nil
}

func (m *mockTrips) NextTrip(userID int64, today time.Time) (*user.TripInfo, error) {
	return m.next, nil
}

func (m *mockTrips) LastTrip(userID int64, today time.Time) (*user.TripInfo, error) {
	return m.last, nil
}

type mockHasher struct{}

func (mockHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

var _ = Describe("User Service", func() {
	var (
		repo     *mockUserRepo
		balances *mockBalances
		trips    *mockTrips
		svc      *user.Service

		admin        *auth.User
		collaborator *auth.User
	)

	BeforeEach(func() {
		repo = newMockUserRepo()
		balances = &mockBalances{}
		trips = &mockTrips{}
		svc = user.NewService(repo, balances, trips, mockHasher{}, slog.Default())

		admin = &auth.User{ID: 1, Username: "admin", IsSuperuser: true}
		collaborator = &auth.User{ID: 2, Username: "ana", HasProfile: true, Role: auth.RoleCollaborator}

		repo.users[1] = &user.User{ID: 1, Username: "admin", IsSuperuser: true}
		repo.users[2] = &user.User{ID: 2, Username: "ana"}
	})

	Describe("Me", func() {
		It("returns the balance as advances minus all expenses", func() {
			balances.advances = 100000
			balances.expenses = 35050

			me, err := svc.Me(collaborator)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.Balance).To(Equal(int64(64950)))
		})

		It("allows the balance to go negative", func() {
			balances.advances = 1000
			balances.expenses = 2500

			me, err := svc.Me(collaborator)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.Balance).To(Equal(int64(-1500)))
		})

		It("prefers the active trip and tags it ATIVA", func() {
			trips.active = &user.TripInfo{ID: 7, Title: "Workshop SP"}
			trips.next = &user.TripInfo{ID: 8, Title: "Futura"}

			me, err := svc.Me(collaborator)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.CurrentTrip).NotTo(BeNil())
			Expect(me.CurrentTrip.ID).To(Equal(int64(7)))
			Expect(me.CurrentTrip.Status).To(Equal(user.TripStatusActive))
		})

		It("falls back to the nearest upcoming trip tagged AGUARDANDO", func() {
			trips.next = &user.TripInfo{ID: 8, Title: "Futura"}
			trips.last = &user.TripInfo{ID: 5, Title: "Passada"}

			me, err := svc.Me(collaborator)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.CurrentTrip.ID).To(Equal(int64(8)))
			Expect(me.CurrentTrip.Status).To(Equal(user.TripStatusWaiting))
		})

		It("falls back to the most recent past trip tagged FINALIZADA", func() {
			trips.last = &user.TripInfo{ID: 5, Title: "Passada"}

			me, err := svc.Me(collaborator)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.CurrentTrip.ID).To(Equal(int64(5)))
			Expect(me.CurrentTrip.Status).To(Equal(user.TripStatusFinished))
		})

		It("returns a nil current trip when the user has no trips", func() {
			me, err := svc.Me(collaborator)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.CurrentTrip).To(BeNil())
		})

		It("propagates balance source failures", func() {
			balances.err = errors.New("db down")

			_, err := svc.Me(collaborator)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("CreateUser", func() {
		It("rejects non-admin callers", func() {
			_, err := svc.CreateUser(collaborator, user.CreateUserDTO{
				Username: "novo@empresa.com",
				Password: "s3cret",
				Role:     auth.RoleCollaborator,
			})
			Expect(err).To(MatchError(internal.ErrAdminRequired))
		})

		It("hashes the password and mirrors username into email", func() {
			created, err := svc.CreateUser(admin, user.CreateUserDTO{
				Username:    "novo@empresa.com",
				Password:    "s3cret",
				FirstName:   "Novo",
				Role:        auth.RoleManager,
				Departments: []int64{3, 4},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Email).To(Equal("novo@empresa.com"))
			Expect(created.PasswordHash).To(Equal("hashed:s3cret"))
			Expect(repo.createdRole).To(Equal(auth.RoleManager))
			Expect(repo.createdDepts).To(Equal([]int64{3, 4}))
		})

		It("rejects an unknown role", func() {
			_, err := svc.CreateUser(admin, user.CreateUserDTO{
				Username: "novo@empresa.com",
				Password: "s3cret",
				Role:     "CHEFE",
			})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("UpdateUser", func() {
		It("rejects non-admin callers", func() {
			name := "Outra"
			_, err := svc.UpdateUser(collaborator, 2, user.UpdateUserDTO{FirstName: &name})
			Expect(err).To(MatchError(internal.ErrAdminRequired))
		})

		It("rewrites email when the username changes", func() {
			username := "ana.nova@empresa.com"
			updated, err := svc.UpdateUser(admin, 2, user.UpdateUserDTO{Username: &username})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Username).To(Equal(username))
			Expect(updated.Email).To(Equal(username))
		})

		It("forwards profile changes with the departments flag", func() {
			role := auth.RoleManager
			depts := []int64{9}
			_, err := svc.UpdateUser(admin, 2, user.UpdateUserDTO{
				Profile: &user.ProfileDTO{Role: &role, Departments: &depts},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.profileRole).To(Equal(&role))
			Expect(repo.profileDepts).To(Equal(depts))
			Expect(repo.deptsGiven).To(BeTrue())
		})

		It("returns not found for a missing user", func() {
			name := "X"
			_, err := svc.UpdateUser(admin, 99, user.UpdateUserDTO{FirstName: &name})
			Expect(err).To(MatchError(user.ErrUserNotFound))
		})
	})

	Describe("DeleteUser", func() {
		It("rejects non-admin callers", func() {
			err := svc.DeleteUser(collaborator, 2)
			Expect(err).To(MatchError(internal.ErrAdminRequired))
		})

		It("deletes an existing user", func() {
			err := svc.DeleteUser(admin, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.deletedID).To(Equal(int64(2)))
		})
	})
})
