package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"careermatrix/internal/middleware"
	"careermatrix/internal/service"
	"careermatrix/internal/util"
)

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *Handlers) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	util.WriteError(w, http.StatusBadRequest, "bad_request", msg, middleware.RequestID(r.Context()))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	sessionID, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			util.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", middleware.RequestID(r.Context()))
			return
		}
		util.WriteError(w, http.StatusInternalServerError, "internal", "login failed", middleware.RequestID(r.Context()))
		return
	}
	h.cookies.Set(w, sessionID)
	util.WriteJSON(w, http.StatusOK, user)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookies.Name); err == nil {
		h.svc.Logout(r.Context(), c.Value)
	}
	h.cookies.Clear(w)
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) PasswordForgot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(w, r, &req); err != nil || req.Email == "" {
		h.badRequest(w, r, "email is required")
		return
	}
	// Same response for known and unknown addresses.
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		util.WriteError(w, http.StatusInternalServerError, "internal", "could not process request", middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) PasswordResetVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	util.WriteJSON(w, http.StatusOK, map[string]bool{"valid": h.svc.VerifyResetToken(r.Context(), token)})
}

func (h *Handlers) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	if _, err := h.svc.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			util.WriteError(w, http.StatusBadRequest, "invalid_token", "invalid or expired token", middleware.RequestID(r.Context()))
			return
		}
		h.badRequest(w, r, err.Error())
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.User(r.Context())
	if !ok {
		util.WriteError(w, http.StatusUnauthorized, "unauthorized", "not signed in", middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, http.StatusOK, user)
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.User(r.Context())
	if !ok {
		util.WriteError(w, http.StatusUnauthorized, "unauthorized", "not signed in", middleware.RequestID(r.Context()))
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	if err := h.svc.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			util.WriteError(w, http.StatusBadRequest, "wrong_password", "current password is incorrect", middleware.RequestID(r.Context()))
			return
		}
		h.badRequest(w, r, err.Error())
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
