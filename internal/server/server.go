package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"potholes/internal/gate"
	"potholes/internal/reports"
	"potholes/internal/utils"
	"potholes/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	reports   *reports.Service
	gate      *gate.Gate
	templates *template.Template

	cookie *securecookie.SecureCookie

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	reportsSvc *reports.Service,
	adminGate *gate.Gate,
) (*Service, error) {
	mux := flow.New()

	hashKey, blockKey, err := cookieKeys(config, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		logger:  logger,
		config:  config,
		reports: reportsSvc,
		gate:    adminGate,
		cookie:  securecookie.New(hashKey, blockKey),
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
	s.cookie.MaxAge(int(adminGate.TTL().Seconds()))

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	// wrapped outside the mux so they also see requests no route matches
	s.handler = s.LoggingMiddleware(s.StripTrailingSlash(mux))
	s.server.Handler = s.handler

	return s, nil
}

// cookieKeys decodes the configured cookie keys. Missing keys are generated,
// which signs everyone out on restart.
func cookieKeys(config *types.Config, logger *logrus.Logger) ([]byte, []byte, error) {
	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode COOKIE_HASH_KEY: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode COOKIE_BLOCK_KEY: %w", err)
	}

	if len(hashKey) == 0 {
		logger.Warn("COOKIE_HASH_KEY not set, generating a random key")
		hashKey = securecookie.GenerateRandomKey(64)
	}
	if len(blockKey) == 0 {
		logger.Warn("COOKIE_BLOCK_KEY not set, generating a random key")
		blockKey = securecookie.GenerateRandomKey(32)
	}

	return hashKey, blockKey, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for in-process use.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/about", s.handleAbout, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/report", s.handleGetReportForm, http.MethodGet)
	r.HandleFunc("/report", s.handlePostReportForm, http.MethodPost)
	r.HandleFunc("/reports/:id", s.handleReportDetail, http.MethodGet)

	r.HandleFunc("/map", s.handleMap, http.MethodGet)
	r.HandleFunc("/map/reports.geojson", s.handleMapFeed, http.MethodGet)

	r.HandleFunc("/admin/login", s.handleGetAdminLogin, http.MethodGet)
	r.HandleFunc("/admin/login", s.handlePostAdminLogin, http.MethodPost)
	r.HandleFunc("/admin/logout", s.handlePostAdminLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAdmin)

		r.HandleFunc("/admin", s.handleAdminDashboard, http.MethodGet)
		r.HandleFunc("/admin/reports/:id/status", s.handlePostReportStatus, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": utils.PtrString,
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"datetime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"coord": func(f float64) string {
			return strconv.FormatFloat(f, 'f', 6, 64)
		},
		"inc": func(i int) int {
			return i + 1
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
