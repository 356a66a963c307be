package middleware

import (
	"net/http"
	"strings"
	"time"

	"careermatrix/internal/models"
	"careermatrix/internal/session"
	"careermatrix/internal/util"
)

// Decision is the access gate's verdict for one request. The gate is a
// pure function of (path, cookie presence, resolved user); its only
// side effect is clearing a stale cookie.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionRedirectLogin
	DecisionRedirectHome
	DecisionUnauthorized
	DecisionForbidden
)

const (
	loginPath       = "/login"
	homePath        = "/"
	adminPagePrefix = "/admin"
	adminAPIPrefix  = "/api/v1/admin"
)

var publicPrefixes = []string{
	"/assets/",
	"/static/",
	"/api/v1/login",
	"/api/v1/logout",
	"/api/v1/password/",
	"/health/",
}

var publicPages = map[string]bool{
	loginPath:          true,
	"/forgot-password": true,
	"/reset-password":  true,
	"/favicon.ico":     true,
}

func isAPIPath(path string) bool { return strings.HasPrefix(path, "/api/") }

// underPrefix matches the prefix itself and paths below it, but not
// siblings that merely share leading characters (/administration is
// not under /admin).
func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isPublicPath(path string) bool {
	if publicPages[path] {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Decide applies the authentication/authorization policy. user is nil
// when the request carries no valid session.
func Decide(path string, hasCookie bool, user *models.User) Decision {
	// An authenticated visit to the login page bounces home before the
	// public allow-list applies; everything else public passes as-is.
	if path == loginPath && user != nil {
		return DecisionRedirectHome
	}
	if isPublicPath(path) {
		return DecisionAllow
	}
	if user == nil {
		if isAPIPath(path) {
			return DecisionUnauthorized
		}
		return DecisionRedirectLogin
	}
	if underPrefix(path, adminAPIPrefix) && user.Role != models.RoleAdmin {
		return DecisionForbidden
	}
	if underPrefix(path, adminPagePrefix) && user.Role != models.RoleAdmin {
		return DecisionRedirectHome
	}
	return DecisionAllow
}

// Cookies holds the session cookie settings shared by the gate and the
// login/logout handlers.
type Cookies struct {
	Name     string
	Secure   bool
	Lifetime time.Duration
}

func (c Cookies) Set(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(c.Lifetime / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AccessGate resolves the session cookie and enforces Decide before any
// route handler runs.
func AccessGate(mgr *session.Manager, cookies Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				hasCookie bool
				user      *models.User
			)
			if c, err := r.Cookie(cookies.Name); err == nil && c.Value != "" {
				hasCookie = true
				if u, ok := mgr.Verify(r.Context(), c.Value); ok {
					user = &u
				}
			}
			stale := hasCookie && user == nil

			switch Decide(r.URL.Path, hasCookie, user) {
			case DecisionAllow:
				if user != nil {
					r = r.WithContext(WithUser(r.Context(), *user))
				}
				next.ServeHTTP(w, r)
			case DecisionRedirectLogin:
				if stale {
					cookies.Clear(w)
				}
				http.Redirect(w, r, loginPath, http.StatusFound)
			case DecisionRedirectHome:
				http.Redirect(w, r, homePath, http.StatusFound)
			case DecisionUnauthorized:
				if stale {
					cookies.Clear(w)
				}
				util.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", RequestID(r.Context()))
			case DecisionForbidden:
				util.WriteError(w, http.StatusForbidden, "forbidden", "admin role required", RequestID(r.Context()))
			}
		})
	}
}
