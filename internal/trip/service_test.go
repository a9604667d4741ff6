package trip_test

import (
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"github.com/rmacedo/prestacao-viagens/internal/trip"
	"github.com/rmacedo/prestacao-viagens/internal/user"
)

type mockTripRepo struct {
	trips map[int64]*trip.Trip

	lastCall        string
	lastPendingOnly bool
	lastManagerID   int64
	createdIDs      []int64
	updatedIDs      *[]int64
	deletedID       int64
}

func newMockTripRepo() *mockTripRepo {
	return &mockTripRepo{trips: make(map[int64]*trip.Trip)}
}

func (m *mockTripRepo) all() []*trip.Trip {
	out := make([]*trip.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		out = append(out, t)
	}
	return out
}

func (m *mockTripRepo) GetByID(id int64) (*trip.Trip, error) {
	return m.trips[id], nil
}

func (m *mockTripRepo) GetAll() ([]*trip.Trip, error) {
	m.lastCall = "all"
	return m.all(), nil
}

func (m *mockTripRepo) GetByParticipant(userID int64) ([]*trip.Trip, error) {
	m.lastCall = "participant"
	var out []*trip.Trip
	for _, t := range m.trips {
		for _, p := range t.Participants {
			if p.ID == userID {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (m *mockTripRepo) GetWithManagerExpenses(pendingOnly bool) ([]*trip.Trip, error) {
	m.lastCall = "manager-expenses"
	m.lastPendingOnly = pendingOnly
	return nil, nil
}

func (m *mockTripRepo) GetWithSubordinateExpenses(managerID int64, pendingOnly bool) ([]*trip.Trip, error) {
	m.lastCall = "subordinate-expenses"
	m.lastManagerID = managerID
	m.lastPendingOnly = pendingOnly
	return nil, nil
}

func (m *mockTripRepo) Create(t *trip.Trip, participantIDs []int64) error {
	t.ID = int64(len(m.trips) + 1)
	m.trips[t.ID] = t
	m.createdIDs = participantIDs
	return nil
}

func (m *mockTripRepo) Update(t *trip.Trip, participantIDs *[]int64) error {
	m.trips[t.ID] = t
	m.updatedIDs = participantIDs
	return nil
}

func (m *mockTripRepo) Delete(id int64) error {
	m.deletedID = id
	delete(m.trips, id)
	return nil
}

func date(y int, m time.Month, d int) internal.Date {
	return internal.NewDate(y, m, d)
}

var _ = Describe("Trip Service", func() {
	var (
		repo *mockTripRepo
		svc  *trip.Service

		admin        *auth.User
		director     *auth.User
		manager      *auth.User
		collaborator *auth.User
		noProfile    *auth.User
	)

	BeforeEach(func() {
		repo = newMockTripRepo()
		svc = trip.NewService(repo, slog.Default())

		admin = &auth.User{ID: 1, IsSuperuser: true}
		director = &auth.User{ID: 2, HasProfile: true, Role: auth.RoleDirector}
		manager = &auth.User{ID: 3, HasProfile: true, Role: auth.RoleManager}
		collaborator = &auth.User{ID: 4, HasProfile: true, Role: auth.RoleCollaborator}
		noProfile = &auth.User{ID: 5}

		repo.trips[10] = &trip.Trip{
			ID:        10,
			Title:     "Conferencia POA",
			StartDate: date(2026, time.January, 10),
			EndDate:   date(2026, time.January, 15),
			Status:    trip.StatusActive,
			Participants: []user.User{
				{ID: 4, Username: "ana"},
			},
		}
	})

	Describe("GetTrips", func() {
		It("returns everything for admins", func() {
			_, err := svc.GetTrips(admin, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("all"))
		})

		It("returns participant trips for users without a profile", func() {
			_, err := svc.GetTrips(noProfile, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("participant"))
		})

		It("returns participant trips for collaborators", func() {
			trips, err := svc.GetTrips(collaborator, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("participant"))
			Expect(trips).To(HaveLen(1))
		})

		It("routes directors to manager-owned expenses, pending by default", func() {
			_, err := svc.GetTrips(director, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("manager-expenses"))
			Expect(repo.lastPendingOnly).To(BeTrue())
		})

		It("lifts the pending restriction with filtro=todas", func() {
			_, err := svc.GetTrips(director, trip.FilterAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastPendingOnly).To(BeFalse())
		})

		It("routes managers to their subordinates' expenses", func() {
			_, err := svc.GetTrips(manager, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("subordinate-expenses"))
			Expect(repo.lastManagerID).To(Equal(int64(3)))
		})

		It("fills the dynamic status on every trip", func() {
			trips, err := svc.GetTrips(admin, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(trips[0].DynamicStatus).NotTo(BeEmpty())
		})
	})

	Describe("GetTrip", func() {
		It("lets managers open any trip", func() {
			t, err := svc.GetTrip(manager, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.ID).To(Equal(int64(10)))
		})

		It("lets participants open their trip", func() {
			_, err := svc.GetTrip(collaborator, 10)
			Expect(err).NotTo(HaveOccurred())
		})

		It("hides trips from non-participant collaborators", func() {
			other := &auth.User{ID: 9, HasProfile: true, Role: auth.RoleCollaborator}
			_, err := svc.GetTrip(other, 10)
			Expect(err).To(MatchError(trip.ErrTripNotFound))
		})

		It("returns not found for a missing trip", func() {
			_, err := svc.GetTrip(admin, 99)
			Expect(err).To(MatchError(trip.ErrTripNotFound))
		})
	})

	Describe("mutations", func() {
		It("rejects trip creation by non-admins", func() {
			_, err := svc.CreateTrip(director, trip.CreateTripDTO{
				Title:     "Nova",
				StartDate: date(2026, time.March, 1),
				EndDate:   date(2026, time.March, 5),
			})
			Expect(err).To(MatchError(internal.ErrAdminRequired))
		})

		It("creates a trip defaulting to ATIVA", func() {
			t, err := svc.CreateTrip(admin, trip.CreateTripDTO{
				Title:        "Nova",
				StartDate:    date(2026, time.March, 1),
				EndDate:      date(2026, time.March, 5),
				Participants: []int64{4},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Status).To(Equal(trip.StatusActive))
			Expect(repo.createdIDs).To(Equal([]int64{4}))
		})

		It("rejects an inverted date range", func() {
			_, err := svc.CreateTrip(admin, trip.CreateTripDTO{
				Title:     "Nova",
				StartDate: date(2026, time.March, 5),
				EndDate:   date(2026, time.March, 1),
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects updates and deletes by non-admins", func() {
			title := "Outra"
			_, err := svc.UpdateTrip(manager, 10, trip.UpdateTripDTO{Title: &title})
			Expect(err).To(MatchError(internal.ErrAdminRequired))

			Expect(svc.DeleteTrip(collaborator, 10)).To(MatchError(internal.ErrAdminRequired))
		})

		It("updates fields and participants for admins", func() {
			title := "Renomeada"
			ids := []int64{4, 5}
			t, err := svc.UpdateTrip(admin, 10, trip.UpdateTripDTO{Title: &title, Participants: &ids})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Title).To(Equal("Renomeada"))
			Expect(repo.updatedIDs).To(Equal(&ids))
		})
	})

	Describe("ComputeDynamicStatus", func() {
		var t *trip.Trip

		BeforeEach(func() {
			t = &trip.Trip{
				StartDate: date(2026, time.June, 10),
				EndDate:   date(2026, time.June, 20),
				Status:    trip.StatusActive,
			}
		})

		It("reports Cancelada regardless of dates", func() {
			t.Status = trip.StatusCancelled
			Expect(t.ComputeDynamicStatus(date(2026, time.June, 15))).To(Equal(trip.DynamicCancelled))
		})

		It("reports Preparando before the start date", func() {
			Expect(t.ComputeDynamicStatus(date(2026, time.June, 9))).To(Equal(trip.DynamicPreparing))
		})

		It("reports Ativa inside the range, bounds included", func() {
			Expect(t.ComputeDynamicStatus(date(2026, time.June, 10))).To(Equal(trip.DynamicActive))
			Expect(t.ComputeDynamicStatus(date(2026, time.June, 20))).To(Equal(trip.DynamicActive))
		})

		It("reports Finalizada after the end date", func() {
			Expect(t.ComputeDynamicStatus(date(2026, time.June, 21))).To(Equal(trip.DynamicFinished))
		})
	})
})
