package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"scavenger/internal/config"
	"scavenger/internal/models"
	"scavenger/internal/security"
	"scavenger/internal/service"
	"time"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	VisitorContextKey ContextKey = "visitor"
	PuzzleContextKey  ContextKey = "puzzle"
)

// VisitorAuth is the identity a request plays under. A checked-out visitor
// keeps the uid but is not authenticated.
type VisitorAuth struct {
	UID           string
	Authenticated bool
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	visitors          *service.VisitorService
	puzzles           *service.PuzzleService
	limiter           *security.RateLimiter
	secret            []byte
	cookieKey         string
	sessionsEnabled   bool
	adminUser         string
	adminPasswordHash string
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(cfg *config.Config, visitors *service.VisitorService, puzzles *service.PuzzleService, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		visitors:          visitors,
		puzzles:           puzzles,
		limiter:           limiter,
		secret:            []byte(cfg.SessionSecret),
		cookieKey:         cfg.CookieKey,
		sessionsEnabled:   cfg.SessionsEnabled,
		adminUser:         cfg.AdminUser,
		adminPasswordHash: cfg.AdminPasswordHash,
	}
}

// authenticate resolves the visitor behind the session cookie
func (m *Middleware) authenticate(r *http.Request) (VisitorAuth, error) {
	if !m.sessionsEnabled {
		return VisitorAuth{UID: models.NoSessionUID, Authenticated: true}, nil
	}

	cookie, err := r.Cookie(m.cookieKey)
	if err != nil {
		return VisitorAuth{}, nil
	}

	uid, err := security.ParseVisitorToken(m.secret, cookie.Value)
	if err != nil {
		return VisitorAuth{}, nil
	}

	visitor, err := m.visitors.Get(uid)
	if errors.Is(err, service.ErrInvalidVisitor) {
		return VisitorAuth{}, nil
	}
	if err != nil {
		return VisitorAuth{}, err
	}

	if visitor.IsCheckedOut() {
		return VisitorAuth{UID: visitor.UID}, nil
	}
	return VisitorAuth{UID: visitor.UID, Authenticated: true}, nil
}

// IdentifyVisitor adds the visitor identity to the context without requiring one
func (m *Middleware) IdentifyVisitor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, err := m.authenticate(r)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error authenticating visitor", err)
			return
		}

		// Clear invalid cookie
		if !auth.Authenticated && auth.UID == "" {
			if _, err := r.Cookie(m.cookieKey); err == nil {
				http.SetCookie(w, security.CreateDeleteCookie(r, m.cookieKey))
			}
		}

		ctx := context.WithValue(r.Context(), VisitorContextKey, auth)
		next(w, r.WithContext(ctx))
	}
}

// RequireVisitor is middleware that requires an authenticated visitor
func (m *Middleware) RequireVisitor(next http.HandlerFunc) http.HandlerFunc {
	return m.IdentifyVisitor(func(w http.ResponseWriter, r *http.Request) {
		auth := GetVisitorFromContext(r.Context())
		if !auth.Authenticated {
			if auth.UID != "" {
				respondWithError(w, http.StatusForbidden, ErrVisitorCheckedOut, "", nil)
				return
			}
			respondWithError(w, http.StatusUnauthorized, ErrVisitorNotAuthenticated, "", nil)
			return
		}
		next(w, r)
	})
}

// RequirePuzzle loads the puzzle named in the path. Unknown puzzles are
// not found and inactive ones are forbidden.
func (m *Middleware) RequirePuzzle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		puzzle, err := m.puzzles.GetByName(r.PathValue("name"))
		if errors.Is(err, service.ErrPuzzleNotFound) {
			respondWithError(w, http.StatusNotFound, ErrPuzzleNotFoundMsg, "", nil)
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading puzzle", err)
			return
		}
		if !puzzle.Active {
			respondWithError(w, http.StatusForbidden, ErrPuzzleDisabledMsg, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), PuzzleContextKey, puzzle)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is middleware that checks HTTP basic auth against the
// configured admin user and bcrypt hash
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(m.adminUser)) == 1
		if !ok || !userOK || !security.CheckPassword(m.adminPasswordHash, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit is middleware that limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if m.limiter != nil && !m.limiter.Allow(ip) {
			log.Printf("Rate limit exceeded for %s", ip)
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Call next handler
		next.ServeHTTP(w, r)

		// Log request
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetVisitorFromContext retrieves the visitor identity from the request context
func GetVisitorFromContext(ctx context.Context) VisitorAuth {
	auth, _ := ctx.Value(VisitorContextKey).(VisitorAuth)
	return auth
}

// GetPuzzleFromContext retrieves the puzzle loaded by RequirePuzzle
func GetPuzzleFromContext(ctx context.Context) *models.Puzzle {
	puzzle, ok := ctx.Value(PuzzleContextKey).(*models.Puzzle)
	if !ok {
		return nil
	}
	return puzzle
}
