package api

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"careermatrix/internal/config"
	"careermatrix/internal/middleware"
	"careermatrix/internal/rate"
	"careermatrix/internal/service"
	"careermatrix/internal/util"
	"careermatrix/internal/version"
)

type Handlers struct {
	cfg     config.Config
	svc     *service.Service
	admin   *service.Admin
	limiter *rate.Limiter
	cookies middleware.Cookies
}

func NewRouter(cfg config.Config, svc *service.Service, admin *service.Admin) http.Handler {
	h := &Handlers{
		cfg:     cfg,
		svc:     svc,
		admin:   admin,
		limiter: rate.NewLimiter(),
		cookies: middleware.Cookies{
			Name:     cfg.SessionCookieName,
			Secure:   cfg.CookieSecure,
			Lifetime: cfg.SessionLifetime(),
		},
	}
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}))
	}
	r.Use(middleware.AccessGate(svc.Sessions(), h.cookies))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(h.limiter, "login", 20, time.Minute, h.cfg.TrustProxy)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(middleware.RateLimit(h.limiter, "password_forgot", 10, time.Minute, h.cfg.TrustProxy)).Post("/password/forgot", h.PasswordForgot)
		r.Post("/password/reset", h.PasswordReset)
		r.Get("/password/reset/verify", h.PasswordResetVerify)

		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			util.WriteJSON(w, 200, version.Current())
		})

		r.Get("/me", h.Me)
		r.Post("/me/password", h.ChangePassword)

		r.Get("/departments", h.ListDepartments)
		r.Get("/departments/{id}/matrix", h.DepartmentMatrix)
		r.Get("/roles", h.ListRoles)
		r.Get("/roles/compare", h.CompareRoles)
		r.Get("/roles/{id}", h.RoleDetail)
		r.Get("/skills/{id}/demonstrations", h.SkillDemonstrations)

		r.Get("/assessments", h.ListAssessments)
		r.Post("/assessments", h.SubmitAssessment)
		r.Get("/assessments/{id}", h.GetAssessment)

		r.Get("/one-on-ones", h.ListOneOnOnes)
		r.Post("/one-on-ones", h.CreateOneOnOne)
		r.Post("/one-on-ones/{id}/complete", h.CompleteOneOnOne)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", h.AdminListUsers)
			r.Post("/users", h.AdminCreateUser)
			r.Put("/users/{id}", h.AdminUpdateUser)
			r.Post("/users/{id}/activate", h.AdminActivateUser)
			r.Post("/users/{id}/deactivate", h.AdminDeactivateUser)
			r.Post("/users/{id}/reset-password", h.AdminResetUserPassword)

			r.Post("/departments", h.AdminCreateDepartment)
			r.Put("/departments/{id}", h.AdminUpdateDepartment)
			r.Delete("/departments/{id}", h.AdminDeleteDepartment)

			r.Post("/skills", h.AdminCreateSkill)
			r.Put("/skills/{id}", h.AdminUpdateSkill)
			r.Delete("/skills/{id}", h.AdminDeleteSkill)

			r.Post("/demonstrations", h.AdminCreateDemonstration)
			r.Put("/demonstrations/{id}", h.AdminUpdateDemonstration)
			r.Delete("/demonstrations/{id}", h.AdminDeleteDemonstration)

			r.Post("/roles", h.AdminCreateRole)
			r.Put("/roles/{id}", h.AdminUpdateRole)
			r.Delete("/roles/{id}", h.AdminDeleteRole)
			r.Put("/roles/{id}/requirements/{skillID}", h.AdminSetRoleRequirement)

			r.Get("/audit-log", h.AdminAuditLog)
		})
	})

	fs := http.FileServer(http.Dir(cfg.StaticDir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/health/") {
			http.NotFound(w, r)
			return
		}
		if p == "/" || filepath.Ext(p) == "" {
			http.ServeFile(w, r, filepath.Join(cfg.StaticDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	})

	return r
}

func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	ready := map[string]any{
		"checked_at": time.Now().UTC().Format(time.RFC3339),
		"demo_mode":  h.cfg.DemoMode(),
	}
	if err := h.svc.Store().Ping(r.Context()); err != nil {
		ready["status"] = "degraded"
		ready["store_error"] = err.Error()
		util.WriteJSON(w, 503, ready)
		return
	}
	ready["status"] = "ready"
	util.WriteJSON(w, 200, ready)
}
