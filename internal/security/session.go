package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// GenerateVisitorUID creates a new random visitor identifier
func GenerateVisitorUID() string {
	return uuid.New().String()
}

// IsSecureRequest determines if the request is over HTTPS
// Checks TLS connection, X-Forwarded-Proto header (for reverse proxies), and URL scheme
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}

	// Behind reverse proxy
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}

	return r.URL.Scheme == "https"
}

// CreateVisitorCookie creates the visitor session cookie.
// The Secure flag follows the request scheme.
func CreateVisitorCookie(r *http.Request, name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Expires:  time.Now().Add(maxAge),
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie creates a cookie that clears name on the client
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	}
}
