package advance_test

import (
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/advance"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
)

type mockAdvanceRepo struct {
	advances map[int64]*advance.Advance

	lastCall   string
	lastUserID int64
	lastTripID *int64
	deletedID  int64
}

func newMockAdvanceRepo() *mockAdvanceRepo {
	return &mockAdvanceRepo{advances: make(map[int64]*advance.Advance)}
}

func (m *mockAdvanceRepo) GetByID(id int64) (*advance.Advance, error) {
	return m.advances[id], nil
}

func (m *mockAdvanceRepo) GetAll(tripID *int64) ([]*advance.Advance, error) {
	m.lastCall = "all"
	m.lastTripID = tripID
	out := make([]*advance.Advance, 0, len(m.advances))
	for _, a := range m.advances {
		if tripID != nil && a.TripID != *tripID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAdvanceRepo) GetByUser(userID int64, tripID *int64) ([]*advance.Advance, error) {
	m.lastCall = "by-user"
	m.lastUserID = userID
	m.lastTripID = tripID
	var out []*advance.Advance
	for _, a := range m.advances {
		if a.UserID != userID {
			continue
		}
		if tripID != nil && a.TripID != *tripID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAdvanceRepo) Create(a *advance.Advance) error {
	a.ID = int64(len(m.advances) + 1)
	m.advances[a.ID] = a
	return nil
}

func (m *mockAdvanceRepo) Update(a *advance.Advance) error {
	m.advances[a.ID] = a
	return nil
}

func (m *mockAdvanceRepo) Delete(id int64) error {
	m.deletedID = id
	delete(m.advances, id)
	return nil
}

func (m *mockAdvanceRepo) SumByUser(userID int64) (int64, error) {
	var total int64
	for _, a := range m.advances {
		if a.UserID == userID {
			total += a.AmountCents
		}
	}
	return total, nil
}

var _ = Describe("Advance Service", func() {
	var (
		repo *mockAdvanceRepo
		svc  *advance.Service

		admin        *auth.User
		director     *auth.User
		manager      *auth.User
		collaborator *auth.User
		noProfile    *auth.User
	)

	BeforeEach(func() {
		repo = newMockAdvanceRepo()
		svc = advance.NewService(repo, slog.Default())

		admin = &auth.User{ID: 1, IsSuperuser: true}
		director = &auth.User{ID: 2, HasProfile: true, Role: auth.RoleDirector}
		manager = &auth.User{ID: 3, HasProfile: true, Role: auth.RoleManager}
		collaborator = &auth.User{ID: 4, HasProfile: true, Role: auth.RoleCollaborator}
		noProfile = &auth.User{ID: 5}

		repo.advances[1] = &advance.Advance{ID: 1, TripID: 10, UserID: 4, AmountCents: 50000}
		repo.advances[2] = &advance.Advance{ID: 2, TripID: 11, UserID: 9, AmountCents: 80000}
	})

	Describe("GetAdvances", func() {
		It("restricts collaborators to their own advances", func() {
			advances, err := svc.GetAdvances(collaborator, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("by-user"))
			Expect(repo.lastUserID).To(Equal(int64(4)))
			Expect(advances).To(HaveLen(1))
		})

		It("gives managers and directors the full view", func() {
			_, err := svc.GetAdvances(manager, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("all"))

			_, err = svc.GetAdvances(director, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("all"))
		})

		It("gives profile-less users the full view", func() {
			_, err := svc.GetAdvances(noProfile, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("all"))
		})

		It("narrows to one trip with the viagem filter", func() {
			tripID := int64(11)
			advances, err := svc.GetAdvances(admin, &tripID)
			Expect(err).NotTo(HaveOccurred())
			Expect(advances).To(HaveLen(1))
			Expect(advances[0].TripID).To(Equal(int64(11)))
		})
	})

	Describe("GetAdvance", func() {
		It("hides other users' advances from collaborators", func() {
			_, err := svc.GetAdvance(collaborator, 2)
			Expect(err).To(MatchError(advance.ErrAdvanceNotFound))
		})

		It("lets collaborators read their own advance", func() {
			a, err := svc.GetAdvance(collaborator, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.AmountCents).To(Equal(int64(50000)))
		})

		It("returns not found for a missing advance", func() {
			_, err := svc.GetAdvance(admin, 99)
			Expect(err).To(MatchError(advance.ErrAdvanceNotFound))
		})
	})

	Describe("mutations", func() {
		It("rejects creation by non-admins", func() {
			_, err := svc.CreateAdvance(manager, advance.CreateAdvanceDTO{
				TripID: 10, UserID: 4, AmountCents: 1000,
			})
			Expect(err).To(MatchError(internal.ErrAdminRequired))
		})

		It("stamps the grant date on creation", func() {
			a, err := svc.CreateAdvance(admin, advance.CreateAdvanceDTO{
				TripID: 10, UserID: 4, AmountCents: 1000,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.GrantedAt.IsZero()).To(BeFalse())
		})

		It("rejects a non-positive amount", func() {
			_, err := svc.CreateAdvance(admin, advance.CreateAdvanceDTO{
				TripID: 10, UserID: 4, AmountCents: 0,
			})
			Expect(err).To(HaveOccurred())
		})

		It("applies partial updates for admins", func() {
			amount := int64(75000)
			a, err := svc.UpdateAdvance(admin, 1, advance.UpdateAdvanceDTO{AmountCents: &amount})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.AmountCents).To(Equal(int64(75000)))
			Expect(a.TripID).To(Equal(int64(10)))
		})

		It("rejects updates and deletes by non-admins", func() {
			amount := int64(1)
			_, err := svc.UpdateAdvance(collaborator, 1, advance.UpdateAdvanceDTO{AmountCents: &amount})
			Expect(err).To(MatchError(internal.ErrAdminRequired))

			Expect(svc.DeleteAdvance(director, 1)).To(MatchError(internal.ErrAdminRequired))
		})

		It("deletes advances for admins", func() {
			Expect(svc.DeleteAdvance(admin, 1)).To(Succeed())
			Expect(repo.deletedID).To(Equal(int64(1)))
		})
	})
})
