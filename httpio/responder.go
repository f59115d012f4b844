// Package httpio adapts the engine's response-layer contract to net/http:
// remember-cookie delivery and cache-control hardening on authenticated
// responses.
package httpio

import (
	"net/http"

	"github.com/sessionkit/guard"
)

// Responder implements [guard.Responder] over an http.ResponseWriter. Use
// it before the handler writes the response body; cookies and headers set
// afterwards are lost.
type Responder struct {
	w http.ResponseWriter
}

// NewResponder wraps the given response writer.
func NewResponder(w http.ResponseWriter) *Responder {
	return &Responder{w: w}
}

// SetCookie writes the remember-me cookie. The cookie is always HttpOnly
// regardless of the HTTPOnly flag so the validator is never readable from
// JavaScript; a negative MaxAge expires it immediately.
func (r *Responder) SetCookie(cookie guard.RememberCookie) {
	path := cookie.Path
	if path == "" {
		path = "/"
	}

	http.SetCookie(r.w, &http.Cookie{
		Name:     cookie.Prefix + cookie.Name,
		Value:    cookie.Value,
		MaxAge:   cookie.MaxAge,
		Domain:   cookie.Domain,
		Path:     path,
		Secure:   cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// NoCache marks the response as uncacheable so authenticated content never
// lands in an intermediary cache.
func (r *Responder) NoCache() {
	h := r.w.Header()
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
