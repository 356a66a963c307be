package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"careermatrix/internal/middleware"
	"careermatrix/internal/models"
	"careermatrix/internal/service"
	"careermatrix/internal/store"
	"careermatrix/internal/util"
)

// actor returns the admin performing the request. The access gate only
// routes admins here, so a missing user means a wiring bug.
func actor(r *http.Request) models.User {
	u, _ := middleware.User(r.Context())
	return u
}

// adminError is serviceError plus a 400 for validation failures, which
// admin mutations report as plain errors.
func (h *Handlers) adminError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrConflict), errors.Is(err, service.ErrForbidden):
		h.serviceError(w, r, err)
	default:
		h.badRequest(w, r, err.Error())
	}
}

func (h *Handlers) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, users)
}

func (h *Handlers) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string      `json:"email"`
		Name     string      `json:"name"`
		Role     models.Role `json:"role"`
		Password string      `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Name == "" {
		h.badRequest(w, r, "email and name are required")
		return
	}
	if !req.Role.Valid() {
		h.badRequest(w, r, "role must be user, manager or admin")
		return
	}
	u, err := h.admin.CreateUser(r.Context(), actor(r).ID, req.Email, req.Name, req.Role, req.Password)
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handlers) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string      `json:"email"`
		Name  string      `json:"name"`
		Role  models.Role `json:"role"`
	}
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Name == "" {
		h.badRequest(w, r, "email and name are required")
		return
	}
	if !req.Role.Valid() {
		h.badRequest(w, r, "role must be user, manager or admin")
		return
	}
	u, err := h.admin.UpdateUser(r.Context(), actor(r).ID, models.User{
		ID:    chi.URLParam(r, "id"),
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, u)
}

func (h *Handlers) AdminActivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true)
}

func (h *Handlers) AdminDeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false)
}

func (h *Handlers) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	if err := h.admin.SetUserActive(r.Context(), actor(r).ID, chi.URLParam(r, "id"), active); err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) AdminResetUserPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	if err := h.admin.ResetUserPassword(r.Context(), actor(r).ID, chi.URLParam(r, "id"), req.Password); err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) AdminCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(w, r, &req); err != nil || req.Name == "" {
		h.badRequest(w, r, "name is required")
		return
	}
	d, err := h.admin.CreateDepartment(r.Context(), actor(r).ID, req.Name)
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handlers) AdminUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(w, r, &req); err != nil || req.Name == "" {
		h.badRequest(w, r, "name is required")
		return
	}
	d, err := h.admin.UpdateDepartment(r.Context(), actor(r).ID, models.Department{ID: chi.URLParam(r, "id"), Name: req.Name})
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, d)
}

func (h *Handlers) AdminDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteDepartment(r.Context(), actor(r).ID, chi.URLParam(r, "id")); err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type skillRequest struct {
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	SortOrder    int    `json:"sort_order"`
}

func (h *Handlers) AdminCreateSkill(w http.ResponseWriter, r *http.Request) {
	var req skillRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	if req.DepartmentID == "" || req.Name == "" {
		h.badRequest(w, r, "department_id and name are required")
		return
	}
	sk, err := h.admin.CreateSkill(r.Context(), actor(r).ID, models.Skill{
		DepartmentID: req.DepartmentID,
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, sk)
}

func (h *Handlers) AdminUpdateSkill(w http.ResponseWriter, r *http.Request) {
	var req skillRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	sk, err := h.admin.UpdateSkill(r.Context(), actor(r).ID, models.Skill{
		ID:           chi.URLParam(r, "id"),
		DepartmentID: req.DepartmentID,
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, sk)
}

func (h *Handlers) AdminDeleteSkill(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteSkill(r.Context(), actor(r).ID, chi.URLParam(r, "id")); err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type demonstrationRequest struct {
	SkillID     string `json:"skill_id"`
	Level       int    `json:"level"`
	Description string `json:"description"`
}

func (h *Handlers) AdminCreateDemonstration(w http.ResponseWriter, r *http.Request) {
	var req demonstrationRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	if req.SkillID == "" || req.Description == "" {
		h.badRequest(w, r, "skill_id and description are required")
		return
	}
	d, err := h.admin.CreateDemonstration(r.Context(), actor(r).ID, models.SkillDemonstration{
		SkillID:     req.SkillID,
		Level:       req.Level,
		Description: req.Description,
	})
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handlers) AdminUpdateDemonstration(w http.ResponseWriter, r *http.Request) {
	var req demonstrationRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	d, err := h.admin.UpdateDemonstration(r.Context(), actor(r).ID, models.SkillDemonstration{
		ID:          chi.URLParam(r, "id"),
		SkillID:     req.SkillID,
		Level:       req.Level,
		Description: req.Description,
	})
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, d)
}

func (h *Handlers) AdminDeleteDemonstration(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteDemonstration(r.Context(), actor(r).ID, chi.URLParam(r, "id")); err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type roleRequest struct {
	DepartmentID string `json:"department_id"`
	Title        string `json:"title"`
	Track        string `json:"track"`
	Summary      string `json:"summary"`
}

func (h *Handlers) AdminCreateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	if req.DepartmentID == "" || req.Title == "" {
		h.badRequest(w, r, "department_id and title are required")
		return
	}
	jr, err := h.admin.CreateJobRole(r.Context(), actor(r).ID, models.JobRole{
		DepartmentID: req.DepartmentID,
		Title:        req.Title,
		Track:        req.Track,
		Summary:      req.Summary,
	})
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, jr)
}

func (h *Handlers) AdminUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	jr, err := h.admin.UpdateJobRole(r.Context(), actor(r).ID, models.JobRole{
		ID:           chi.URLParam(r, "id"),
		DepartmentID: req.DepartmentID,
		Title:        req.Title,
		Track:        req.Track,
		Summary:      req.Summary,
	})
	if err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, jr)
}

func (h *Handlers) AdminDeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteJobRole(r.Context(), actor(r).ID, chi.URLParam(r, "id")); err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) AdminSetRoleRequirement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequiredLevel int `json:"required_level"`
	}
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	requirement := models.RoleSkillRequirement{
		RoleID:        chi.URLParam(r, "id"),
		SkillID:       chi.URLParam(r, "skillID"),
		RequiredLevel: req.RequiredLevel,
	}
	if err := h.admin.SetRoleRequirement(r.Context(), actor(r).ID, requirement); err != nil {
		h.adminError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, requirement)
}

func (h *Handlers) AdminAuditLog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	entries, err := h.admin.ListAudit(r.Context(), limit, offset)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, entries)
}
