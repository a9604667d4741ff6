package expense

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"github.com/rmacedo/prestacao-viagens/internal/transport"
)

type ServiceAPI interface {
	GetExpenses(actor *auth.User, tripID *int64) ([]*Expense, error)
	GetExpense(actor *auth.User, id int64) (*Expense, error)
	CreateExpense(actor *auth.User, dto CreateExpenseDTO) (*Expense, error)
	UpdateExpense(actor *auth.User, id int64, dto UpdateExpenseDTO) (*Expense, error)
	DeleteExpense(actor *auth.User, id int64) error
	PendingApprovals(actor *auth.User) ([]*Expense, error)
	ApproveExpense(actor *auth.User, id int64) (*Expense, error)
	RejectExpense(actor *auth.User, id int64, dto RejectExpenseDTO) (*Expense, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (*auth.User, int64, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense id")
		return nil, 0, false
	}
	return actor, id, true
}

// GetExpenses handles GET /despesas?viagem={id}
func (h *Handler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var tripID *int64
	if raw := r.URL.Query().Get("viagem"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid viagem parameter")
			return
		}
		tripID = &id
	}

	expenses, err := h.Service.GetExpenses(actor, tripID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expenses)
}

// GetExpense handles GET /despesas/{id}
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	e, err := h.Service.GetExpense(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

// CreateExpense handles POST /despesas
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.CreateExpense(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

// UpdateExpense handles PATCH /despesas/{id}
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto UpdateExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.UpdateExpense(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

// DeleteExpense handles DELETE /despesas/{id}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteExpense(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPendingApprovals handles GET /despesas-para-aprovacao
func (h *Handler) GetPendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	expenses, err := h.Service.PendingApprovals(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expenses)
}

// ApproveExpense handles POST /despesas/{id}/aprovar
func (h *Handler) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	e, err := h.Service.ApproveExpense(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

// RejectExpense handles POST /despesas/{id}/rejeitar
func (h *Handler) RejectExpense(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto RejectExpenseDTO
	if r.Body != nil {
		// An empty body is handled by the mandatory-note check downstream.
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	e, err := h.Service.RejectExpense(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}
