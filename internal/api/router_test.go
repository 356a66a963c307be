package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"careermatrix/internal/audit"
	"careermatrix/internal/config"
	"careermatrix/internal/models"
	"careermatrix/internal/service"
	"careermatrix/internal/session"
	"careermatrix/internal/store"
	"careermatrix/internal/util"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		ListenAddr:           "127.0.0.1:0",
		SessionCookieName:    "session",
		SessionLifetimeHours: 7 * 24,
		SessionSweepMinutes:  60,
		PasswordMinLength:    8,
		PasswordMaxLength:    128,
		ResetTokenMinutes:    60,
		StaticDir:            t.TempDir(),
	}
	st := store.NewDemo()
	mgr := session.NewManager(session.NewMemoryStore(), cfg.SessionLifetime(), cfg.SessionSweepInterval())
	svc := service.New(cfg, st, mgr, nil)
	admin := service.NewAdmin(svc, audit.NewRecorder(st))
	return NewRouter(cfg, svc, admin)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, email, password string) *http.Cookie {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d body=%s", email, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			if !c.HttpOnly {
				t.Fatal("session cookie is not HttpOnly")
			}
			return c
		}
	}
	t.Fatalf("no session cookie in login response")
	return nil
}

func TestLoginLogoutCookieLifecycle(t *testing.T) {
	router := newTestRouter(t)

	cookie := login(t, router, "user@demo.local", store.DemoPassword)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/me", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("me with session: %d body=%s", rec.Code, rec.Body.String())
	}
	var me models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Email != "user@demo.local" {
		t.Fatalf("wrong user %q", me.Email)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Fatalf("password material leaked: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/logout", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout did not clear the cookie")
	}

	// The old cookie no longer authenticates.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/me", nil, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d, want 401", rec.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/login", map[string]string{
		"email":    "user@demo.local",
		"password": "not-the-password",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rec.Code, rec.Body.String())
	}
	var apiErr util.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if apiErr.Code != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %q", apiErr.Code)
	}
}

func TestGateUnauthenticatedAPIAndPage(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("api without session: %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/departments", nil)
	pageRec := httptest.NewRecorder()
	router.ServeHTTP(pageRec, req)
	if pageRec.Code != http.StatusFound {
		t.Fatalf("page without session: %d, want 302", pageRec.Code)
	}
	if loc := pageRec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect to %q, want /login", loc)
	}
}

func TestGateAdminBoundary(t *testing.T) {
	router := newTestRouter(t)

	memberCookie := login(t, router, "user@demo.local", store.DemoPassword)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/admin/users", nil, memberCookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member on admin api: %d, want 403", rec.Code)
	}

	adminCookie := login(t, router, "admin@demo.local", store.DemoPassword)
	rec = doJSON(t, router, http.MethodGet, "/api/v1/admin/users", nil, adminCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin on admin api: %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAuthenticatedLoginPageBouncesHome(t *testing.T) {
	router := newTestRouter(t)
	cookie := login(t, router, "user@demo.local", store.DemoPassword)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("login page while authenticated: %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("redirect to %q, want /", loc)
	}
}

func TestPasswordResetEndpoints(t *testing.T) {
	router := newTestRouter(t)

	// Forgot-password acknowledges unknown addresses identically.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/password/forgot", map[string]string{"email": "nobody@demo.local"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot unknown email: %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/password/reset/verify?token=bogus", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: %d", rec.Code)
	}
	var verify map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &verify); err != nil {
		t.Fatalf("decode verify: %v", err)
	}
	if verify["valid"] {
		t.Fatal("bogus token reported valid")
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/password/reset", map[string]string{
		"token":    "bogus",
		"password": "a-long-enough-password",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reset with bogus token: %d body=%s", rec.Code, rec.Body.String())
	}
	var apiErr util.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if apiErr.Code != "invalid_token" {
		t.Fatalf("expected invalid_token, got %q", apiErr.Code)
	}
}

func TestMatrixEndpoints(t *testing.T) {
	router := newTestRouter(t)
	cookie := login(t, router, "user@demo.local", store.DemoPassword)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/departments", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("departments: %d body=%s", rec.Code, rec.Body.String())
	}
	var deps []models.Department
	if err := json.Unmarshal(rec.Body.Bytes(), &deps); err != nil || len(deps) == 0 {
		t.Fatalf("decode departments: %v (%d)", err, len(deps))
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/departments/"+deps[0].ID+"/matrix", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("matrix: %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/departments/no-such-id/matrix", nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown department: %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/roles/compare?a=only-one", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("compare with missing b: %d, want 400", rec.Code)
	}
}

func TestAdminCRUDWithAudit(t *testing.T) {
	router := newTestRouter(t)
	cookie := login(t, router, "admin@demo.local", store.DemoPassword)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/departments", map[string]string{"name": "Design"}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create department: %d body=%s", rec.Code, rec.Body.String())
	}
	var dep models.Department
	if err := json.Unmarshal(rec.Body.Bytes(), &dep); err != nil {
		t.Fatalf("decode department: %v", err)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/admin/departments/"+dep.ID, map[string]string{"name": "Product Design"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update department: %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/admin/audit-log", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit log: %d body=%s", rec.Code, rec.Body.String())
	}
	var entries []models.AuditEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected create and update audit entries, got %d", len(entries))
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := doJSON(t, router, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: %d body=%s", path, rec.Code, rec.Body.String())
		}
	}
}
