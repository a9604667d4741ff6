package advance

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"github.com/rmacedo/prestacao-viagens/internal/transport"
)

type ServiceAPI interface {
	GetAdvances(actor *auth.User, tripID *int64) ([]*Advance, error)
	GetAdvance(actor *auth.User, id int64) (*Advance, error)
	CreateAdvance(actor *auth.User, dto CreateAdvanceDTO) (*Advance, error)
	UpdateAdvance(actor *auth.User, id int64, dto UpdateAdvanceDTO) (*Advance, error)
	DeleteAdvance(actor *auth.User, id int64) error
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

// tripIDParam parses the optional ?viagem= query parameter.
func tripIDParam(r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("viagem")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// GetAdvances handles GET /adiantamentos?viagem={id}
func (h *Handler) GetAdvances(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	tripID, ok := tripIDParam(r)
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid viagem parameter")
		return
	}

	advances, err := h.Service.GetAdvances(actor, tripID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, advances)
}

// GetAdvance handles GET /adiantamentos/{id}
func (h *Handler) GetAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance id")
		return
	}

	a, err := h.Service.GetAdvance(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

// CreateAdvance handles POST /adiantamentos
func (h *Handler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateAdvanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.CreateAdvance(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, a)
}

// UpdateAdvance handles PATCH /adiantamentos/{id}
func (h *Handler) UpdateAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance id")
		return
	}

	var dto UpdateAdvanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.UpdateAdvance(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

// DeleteAdvance handles DELETE /adiantamentos/{id}
func (h *Handler) DeleteAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance id")
		return
	}

	if err := h.Service.DeleteAdvance(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
