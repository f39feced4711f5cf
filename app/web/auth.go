package web

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// authMiddleware protects the API with basic auth against the configured
// bcrypt hash. There is no session layer, every request carries credentials.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ping stays open for liveness probes
		if r.URL.Path == "/ping" {
			next.ServeHTTP(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if ok && username == "careerhub" {
			if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err == nil {
				next.ServeHTTP(w, r)
				return
			}
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="Job Board API"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}
