package server

import (
	"errors"
	"net/http"

	"potholes/internal"
	"potholes/internal/gate"
	"potholes/pkg/types"
)

func (s *Service) handleGetAdminLogin(w http.ResponseWriter, r *http.Request) {
	if s.isAdmin(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	data := &types.AdminLoginPageData{
		BasePageData: types.BasePageData{
			Title:  "Admin Login",
			Notice: r.URL.Query().Get("notice"),
			Error:  r.URL.Query().Get("error"),
		},
	}

	if err := s.renderTemplate(w, r, "page.admin-login", data); err != nil {
		s.logger.WithError(err).Error("failed to render admin login page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostAdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "/admin/login", "invalid form payload")
		return
	}

	var login = new(types.AdminLoginForm)
	if err := decoder.Decode(login, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode admin login form")
		s.redirectWithError(w, r, "/admin/login", "invalid form payload")
		return
	}

	token, err := s.gate.Unlock(login.Password)
	if err != nil {
		if !errors.Is(err, gate.ErrInvalidSecret) {
			s.logger.WithError(err).Error("failed to issue admin token")
			s.internalServerError(w)
			return
		}

		s.logger.Info("rejected admin login")

		data := &types.AdminLoginPageData{
			BasePageData: types.BasePageData{Title: "Admin Login", Error: "Invalid password"},
		}
		if err := s.renderTemplateStatus(w, r, http.StatusUnauthorized, "page.admin-login", data); err != nil {
			s.logger.WithError(err).Error("failed to render admin login page")
			s.internalServerError(w)
		}
		return
	}

	encrypted, err := s.cookie.Encode(internal.COOKIE_ADMIN_SESSION_NAME, token)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt admin token")
		s.internalServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ADMIN_SESSION_NAME,
		Value:    encrypted,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.gate.TTL().Seconds()),
		Path:     "/",
	})

	s.logger.Info("admin logged in")

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Service) handlePostAdminLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ADMIN_SESSION_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	s.redirectWithNotice(w, r, "/", "Signed out")
}
