package server

import (
	"net/http"
	"strings"
	"time"

	"potholes/internal"

	"github.com/sirupsen/logrus"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAdmin lets the request through only with a valid admin session
// cookie. Anything else goes to the login page.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r) {
			s.redirectToLogin(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isAdmin decrypts the session cookie and verifies the token inside it.
func (s *Service) isAdmin(r *http.Request) bool {
	cookie, err := r.Cookie(internal.COOKIE_ADMIN_SESSION_NAME)
	if err != nil {
		return false
	}

	var token string
	if err := s.cookie.Decode(internal.COOKIE_ADMIN_SESSION_NAME, cookie.Value, &token); err != nil {
		s.logger.WithError(err).Debug("failed to decrypt admin session")
		return false
	}

	if err := s.gate.Verify(token); err != nil {
		s.logger.WithError(err).Debug("rejected admin session")
		return false
	}

	return true
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") && !strings.HasPrefix(path, "/static/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
