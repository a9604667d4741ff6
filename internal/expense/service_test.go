package expense_test

import (
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"github.com/rmacedo/prestacao-viagens/internal/expense"
)

type mockExpenseRepo struct {
	expenses map[int64]*expense.Expense

	lastCall      string
	lastTripID    int64
	lastManagerID int64

	markCalls    int
	markOverride *bool
	deletedID    int64
}

func newMockExpenseRepo() *mockExpenseRepo {
	return &mockExpenseRepo{expenses: make(map[int64]*expense.Expense)}
}

func (m *mockExpenseRepo) GetByID(id int64) (*expense.Expense, error) {
	return m.expenses[id], nil
}

func (m *mockExpenseRepo) GetByUser(userID int64) ([]*expense.Expense, error) {
	m.lastCall = "by-user"
	var out []*expense.Expense
	for _, e := range m.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockExpenseRepo) GetByTrip(tripID int64) ([]*expense.Expense, error) {
	m.lastCall = "by-trip"
	m.lastTripID = tripID
	return nil, nil
}

func (m *mockExpenseRepo) GetByTripAndUser(tripID, userID int64) ([]*expense.Expense, error) {
	m.lastCall = "by-trip-and-user"
	m.lastTripID = tripID
	return nil, nil
}

func (m *mockExpenseRepo) GetByTripAndManagerOwners(tripID int64) ([]*expense.Expense, error) {
	m.lastCall = "by-trip-manager-owners"
	m.lastTripID = tripID
	return nil, nil
}

func (m *mockExpenseRepo) GetByTripAndSubordinates(tripID, managerID int64) ([]*expense.Expense, error) {
	m.lastCall = "by-trip-subordinates"
	m.lastTripID = tripID
	m.lastManagerID = managerID
	return nil, nil
}

func (m *mockExpenseRepo) PendingByManagerOwners() ([]*expense.Expense, error) {
	m.lastCall = "pending-manager-owners"
	return []*expense.Expense{}, nil
}

func (m *mockExpenseRepo) PendingBySubordinates(managerID int64) ([]*expense.Expense, error) {
	m.lastCall = "pending-subordinates"
	m.lastManagerID = managerID
	return []*expense.Expense{}, nil
}

func (m *mockExpenseRepo) Create(e *expense.Expense) error {
	e.ID = int64(len(m.expenses) + 1)
	m.expenses[e.ID] = e
	return nil
}

func (m *mockExpenseRepo) Update(e *expense.Expense) error {
	m.expenses[e.ID] = e
	return nil
}

func (m *mockExpenseRepo) Delete(id int64) error {
	m.deletedID = id
	delete(m.expenses, id)
	return nil
}

func (m *mockExpenseRepo) MarkProcessed(id int64, status string, approverID int64, approvedAt time.Time, note *string) (bool, error) {
	m.markCalls++
	if m.markOverride != nil {
		return *m.markOverride, nil
	}
	e, ok := m.expenses[id]
	if !ok || e.Status != expense.StatusPending {
		return false, nil
	}
	e.Status = status
	e.ApproverID = &approverID
	e.ApprovedAt = &approvedAt
	e.RejectionNote = note
	return true, nil
}

func (m *mockExpenseRepo) SumByUser(userID int64) (int64, error) {
	var total int64
	for _, e := range m.expenses {
		if e.UserID == userID {
			total += e.AmountCents
		}
	}
	return total, nil
}

// mockDirectory maps owner ids to roles and manager ids to managed users.
type mockDirectory struct {
	roles   map[int64]string
	managed map[int64][]int64
}

func (m *mockDirectory) RoleFor(userID int64) (string, bool, error) {
	role, ok := m.roles[userID]
	return role, ok, nil
}

func (m *mockDirectory) IsManagedCollaborator(managerID, userID int64) (bool, error) {
	for _, id := range m.managed[managerID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

var _ = Describe("Expense Service", func() {
	var (
		repo *mockExpenseRepo
		dir  *mockDirectory
		svc  *expense.Service

		admin        *auth.User
		director     *auth.User
		manager      *auth.User
		otherManager *auth.User
		collaborator *auth.User
		noProfile    *auth.User
	)

	newDTO := func() expense.CreateExpenseDTO {
		return expense.CreateExpenseDTO{
			TripID:      10,
			AmountCents: 12050,
			ExpenseDate: internal.NewDate(2026, time.May, 3),
			Description: "Taxi aeroporto",
			Category:    expense.CategoryTransport,
			ReceiptURL:  "comprovantes/2026/05/taxi.pdf",
		}
	}

	BeforeEach(func() {
		repo = newMockExpenseRepo()
		dir = &mockDirectory{
			roles: map[int64]string{
				2: auth.RoleDirector,
				3: auth.RoleManager,
				4: auth.RoleCollaborator,
				6: auth.RoleManager,
				7: auth.RoleCollaborator,
			},
			managed: map[int64][]int64{3: {4}},
		}
		svc = expense.NewService(repo, dir, slog.Default())

		admin = &auth.User{ID: 1, IsSuperuser: true}
		director = &auth.User{ID: 2, HasProfile: true, Role: auth.RoleDirector}
		manager = &auth.User{ID: 3, HasProfile: true, Role: auth.RoleManager}
		otherManager = &auth.User{ID: 6, HasProfile: true, Role: auth.RoleManager}
		collaborator = &auth.User{ID: 4, HasProfile: true, Role: auth.RoleCollaborator}
		noProfile = &auth.User{ID: 5}

		repo.expenses[100] = &expense.Expense{
			ID: 100, TripID: 10, UserID: 4, AmountCents: 5000,
			Description: "Almoco", Category: expense.CategoryFood,
			ReceiptURL: "comprovantes/almoco.pdf", Status: expense.StatusPending,
		}
		repo.expenses[101] = &expense.Expense{
			ID: 101, TripID: 10, UserID: 3, AmountCents: 90000,
			Description: "Hotel", Category: expense.CategoryLodging,
			ReceiptURL: "comprovantes/hotel.pdf", Status: expense.StatusPending,
		}
	})

	Describe("GetExpenses", func() {
		It("returns only the caller's expenses without the viagem filter, even for admins", func() {
			_, err := svc.GetExpenses(admin, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("by-user"))
		})

		It("widens to the whole trip for admins with the viagem filter", func() {
			tripID := int64(10)
			_, err := svc.GetExpenses(admin, &tripID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("by-trip"))
		})

		It("gives directors the managers' expenses of the trip", func() {
			tripID := int64(10)
			_, err := svc.GetExpenses(director, &tripID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("by-trip-manager-owners"))
		})

		It("gives managers their subordinates' expenses of the trip", func() {
			tripID := int64(10)
			_, err := svc.GetExpenses(manager, &tripID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("by-trip-subordinates"))
			Expect(repo.lastManagerID).To(Equal(int64(3)))
		})

		It("keeps collaborators on their own expenses of the trip", func() {
			tripID := int64(10)
			_, err := svc.GetExpenses(collaborator, &tripID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("by-trip-and-user"))
		})
	})

	Describe("GetExpense", func() {
		It("lets owners read their expense", func() {
			e, err := svc.GetExpense(collaborator, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.ID).To(Equal(int64(100)))
		})

		It("hides expenses from everyone else, admins included", func() {
			_, err := svc.GetExpense(admin, 100)
			Expect(err).To(MatchError(expense.ErrExpenseNotFound))

			_, err = svc.GetExpense(manager, 100)
			Expect(err).To(MatchError(expense.ErrExpenseNotFound))
		})
	})

	Describe("CreateExpense", func() {
		It("books the expense for the caller as PENDENTE", func() {
			e, err := svc.CreateExpense(collaborator, newDTO())
			Expect(err).NotTo(HaveOccurred())
			Expect(e.UserID).To(Equal(int64(4)))
			Expect(e.Status).To(Equal(expense.StatusPending))
		})

		It("defaults the category to OUTROS", func() {
			dto := newDTO()
			dto.Category = ""
			e, err := svc.CreateExpense(collaborator, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Category).To(Equal(expense.CategoryOther))
		})

		It("requires a receipt", func() {
			dto := newDTO()
			dto.ReceiptURL = ""
			_, err := svc.CreateExpense(collaborator, dto)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a non-positive amount", func() {
			dto := newDTO()
			dto.AmountCents = -1
			_, err := svc.CreateExpense(collaborator, dto)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unknown category", func() {
			dto := newDTO()
			dto.Category = "LAZER"
			_, err := svc.CreateExpense(collaborator, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateExpense", func() {
		It("sends an approved expense back to PENDENTE", func() {
			repo.expenses[100].Status = expense.StatusApproved
			amount := int64(7000)
			e, err := svc.UpdateExpense(collaborator, 100, expense.UpdateExpenseDTO{AmountCents: &amount})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.AmountCents).To(Equal(int64(7000)))
			Expect(e.Status).To(Equal(expense.StatusPending))
		})

		It("only lets the owner edit", func() {
			amount := int64(7000)
			_, err := svc.UpdateExpense(manager, 100, expense.UpdateExpenseDTO{AmountCents: &amount})
			Expect(err).To(MatchError(expense.ErrExpenseNotFound))
		})
	})

	Describe("DeleteExpense", func() {
		It("only lets the owner delete", func() {
			Expect(svc.DeleteExpense(admin, 100)).To(MatchError(expense.ErrExpenseNotFound))
			Expect(svc.DeleteExpense(collaborator, 100)).To(Succeed())
			Expect(repo.deletedID).To(Equal(int64(100)))
		})
	})

	Describe("PendingApprovals", func() {
		It("is empty for users without a profile, admins included", func() {
			list, err := svc.PendingApprovals(noProfile)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())

			list, err = svc.PendingApprovals(&auth.User{ID: 1, IsSuperuser: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())
		})

		It("queues managers' pending expenses for directors", func() {
			_, err := svc.PendingApprovals(director)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("pending-manager-owners"))
		})

		It("queues subordinates' pending expenses for managers", func() {
			_, err := svc.PendingApprovals(manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastCall).To(Equal("pending-subordinates"))
		})

		It("is empty for collaborators", func() {
			list, err := svc.PendingApprovals(collaborator)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())
		})
	})

	Describe("ApproveExpense", func() {
		It("hides missing or already processed expenses", func() {
			_, err := svc.ApproveExpense(manager, 999)
			Expect(err).To(MatchError(expense.ErrNotFoundOrProcessed))

			repo.expenses[100].Status = expense.StatusApproved
			_, err = svc.ApproveExpense(manager, 100)
			Expect(err).To(MatchError(expense.ErrNotFoundOrProcessed))
		})

		It("forbids reviewing your own expense before any other check", func() {
			ownerAdmin := &auth.User{ID: 4, IsSuperuser: true}
			_, err := svc.ApproveExpense(ownerAdmin, 100)
			Expect(err).To(MatchError(expense.ErrSelfApproval))
		})

		It("lets admins approve anything", func() {
			e, err := svc.ApproveExpense(admin, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(expense.StatusApproved))
			Expect(*e.ApproverID).To(Equal(int64(1)))
			Expect(e.ApprovedAt).NotTo(BeNil())
		})

		It("forbids reviewers without a profile", func() {
			_, err := svc.ApproveExpense(noProfile, 100)
			Expect(err).To(MatchError(expense.ErrNoApprovalProfile))
		})

		It("keeps directors to managers' expenses", func() {
			e, err := svc.ApproveExpense(director, 101)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(expense.StatusApproved))

			_, err = svc.ApproveExpense(director, 100)
			Expect(err).To(MatchError(expense.ErrDirectorScope))
		})

		It("keeps managers to collaborators' expenses", func() {
			_, err := svc.ApproveExpense(manager, 101)
			Expect(err).To(MatchError(expense.ErrManagerRoleScope))
		})

		It("keeps managers to collaborators of their own departments", func() {
			_, err := svc.ApproveExpense(otherManager, 100)
			Expect(err).To(MatchError(expense.ErrManagerDeptScope))

			e, err := svc.ApproveExpense(manager, 100)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(expense.StatusApproved))
		})

		It("forbids collaborators from reviewing", func() {
			other := &auth.User{ID: 7, HasProfile: true, Role: auth.RoleCollaborator}
			_, err := svc.ApproveExpense(other, 100)
			Expect(err).To(MatchError(expense.ErrApprovalNotAllowed))
		})

		It("loses gracefully when a concurrent review wins", func() {
			lost := false
			repo.markOverride = &lost
			_, err := svc.ApproveExpense(admin, 100)
			Expect(err).To(MatchError(expense.ErrNotFoundOrProcessed))
			Expect(repo.markCalls).To(Equal(1))
		})
	})

	Describe("RejectExpense", func() {
		It("requires the rejection note, checked after authorization", func() {
			_, err := svc.RejectExpense(admin, 100, expense.RejectExpenseDTO{})
			Expect(err).To(MatchError(expense.ErrRejectionNoteRequired))

			// An unauthorized reviewer fails on scope, not on the note.
			_, err = svc.RejectExpense(otherManager, 100, expense.RejectExpenseDTO{})
			Expect(err).To(MatchError(expense.ErrManagerDeptScope))
		})

		It("records the note and the reviewer", func() {
			e, err := svc.RejectExpense(manager, 100, expense.RejectExpenseDTO{RejectionNote: "sem comprovante legivel"})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(expense.StatusRejected))
			Expect(*e.RejectionNote).To(Equal("sem comprovante legivel"))
			Expect(*e.ApproverID).To(Equal(int64(3)))
		})
	})
})
