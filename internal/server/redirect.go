package server

import (
	"net/http"
	"net/url"
)

func (s *Service) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// redirectWith sends the browser to path with extra query values, keeping
// whatever query path already carries.
func redirectWith(w http.ResponseWriter, r *http.Request, path string, key, msg string) {
	u, err := url.Parse(path)
	if err != nil || u.IsAbs() || u.Host != "" {
		u = &url.URL{Path: "/"}
	}

	q := u.Query()
	q.Set(key, msg)
	u.RawQuery = q.Encode()

	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

func (s *Service) redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	redirectWith(w, r, path, "notice", notice)
}

func (s *Service) redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	redirectWith(w, r, path, "error", msg)
}
