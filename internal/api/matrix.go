package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"careermatrix/internal/middleware"
	"careermatrix/internal/models"
	"careermatrix/internal/service"
	"careermatrix/internal/store"
	"careermatrix/internal/util"
)

// serviceError maps domain errors onto HTTP statuses. Anything it does
// not recognize becomes a 500 without leaking the underlying message.
func (h *Handlers) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.RequestID(r.Context())
	switch {
	case errors.Is(err, store.ErrNotFound):
		util.WriteError(w, http.StatusNotFound, "not_found", "resource not found", reqID)
	case errors.Is(err, store.ErrConflict):
		util.WriteError(w, http.StatusConflict, "conflict", "resource already exists", reqID)
	case errors.Is(err, service.ErrForbidden):
		util.WriteError(w, http.StatusForbidden, "forbidden", "not allowed", reqID)
	default:
		util.WriteError(w, http.StatusInternalServerError, "internal", "internal error", reqID)
	}
}

func (h *Handlers) ListDepartments(w http.ResponseWriter, r *http.Request) {
	deps, err := h.svc.Store().ListDepartments(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, deps)
}

func (h *Handlers) DepartmentMatrix(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.DepartmentMatrix(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, m)
}

func (h *Handlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.Store().ListJobRoles(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handlers) RoleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.RoleDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handlers) CompareRoles(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		h.badRequest(w, r, "both a and b role ids are required")
		return
	}
	cmp, err := h.svc.CompareRoles(r.Context(), a, b)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, cmp)
}

func (h *Handlers) SkillDemonstrations(w http.ResponseWriter, r *http.Request) {
	skillID := chi.URLParam(r, "id")
	if _, err := h.svc.Store().GetSkill(r.Context(), skillID); err != nil {
		h.serviceError(w, r, err)
		return
	}
	demos, err := h.svc.Store().ListDemonstrationsBySkill(r.Context(), skillID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, demos)
}

func (h *Handlers) ListAssessments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.User(r.Context())
	list, err := h.svc.ListMyAssessments(r.Context(), user.ID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, list)
}

func (h *Handlers) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.User(r.Context())
	var req struct {
		RoleID string `json:"role_id"`
		Items  []struct {
			SkillID   string `json:"skill_id"`
			SelfLevel int    `json:"self_level"`
		} `json:"items"`
	}
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	items := make([]models.AssessmentItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.AssessmentItem{SkillID: it.SkillID, SelfLevel: it.SelfLevel})
	}
	result, err := h.svc.SubmitAssessment(r.Context(), user.ID, req.RoleID, items)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, service.ErrForbidden) {
			h.serviceError(w, r, err)
			return
		}
		h.badRequest(w, r, err.Error())
		return
	}
	util.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handlers) GetAssessment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.User(r.Context())
	result, err := h.svc.GetAssessment(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, result)
}

func (h *Handlers) ListOneOnOnes(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.User(r.Context())
	list, err := h.svc.ListOneOnOnes(r.Context(), user.ID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, list)
}

func (h *Handlers) CreateOneOnOne(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.User(r.Context())
	var req struct {
		UserID      string    `json:"user_id"`
		ScheduledAt time.Time `json:"scheduled_at"`
		Notes       string    `json:"notes"`
	}
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	if req.ScheduledAt.IsZero() {
		h.badRequest(w, r, "scheduled_at is required")
		return
	}
	o, err := h.svc.CreateOneOnOne(r.Context(), user, req.UserID, req.ScheduledAt, req.Notes)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handlers) CompleteOneOnOne(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.User(r.Context())
	o, err := h.svc.CompleteOneOnOne(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, o)
}
