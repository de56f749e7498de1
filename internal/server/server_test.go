package server_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"potholes/internal"
	"potholes/internal/gate"
	"potholes/internal/notify"
	"potholes/internal/reports"
	"potholes/internal/server"
	"potholes/internal/store"
	"potholes/pkg/types"

	"github.com/m-mizutani/gt"
	geojson "github.com/paulmach/go.geojson"
	"github.com/sirupsen/logrus"
)

const adminPassword = "pothole-admin"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type memBlobs struct {
	mu      sync.Mutex
	objects map[string]int
}

func (m *memBlobs) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = len(data)
	return m.PublicURL(path), nil
}

func (m *memBlobs) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memBlobs) List(ctx context.Context) ([]types.StoredObject, error) {
	return nil, nil
}

func (m *memBlobs) PublicURL(path string) string {
	return "https://blobs.test/pothole-images/" + path
}

type testEnv struct {
	handler http.Handler
	mem     *store.Memory
	blobs   *memBlobs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mem := store.NewMemory()
	blobs := &memBlobs{objects: make(map[string]int)}

	svc := reports.NewService(logger, mem, mem, blobs, notify.Noop{}, reports.ServiceConfig{
		Policy:    reports.PolicyAny,
		MaxImages: 5,
	})

	g, err := gate.New(adminPassword, bytes.Repeat([]byte("k"), gate.MinKeySize), time.Hour)
	gt.NoError(t, err)

	config := &types.Config{
		Environment:     "test",
		ReadTimeoutSec:  10,
		WriteTimeoutSec: 60,
		MaxUploadMB:     5,
	}

	srv, err := server.New(config, logger, svc, g)
	gt.NoError(t, err)

	return &testEnv{handler: srv.Handler(), mem: mem, blobs: blobs}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seed(t *testing.T, severity types.Severity, status types.Status) *types.Report {
	t.Helper()

	report := &types.Report{
		Latitude:  40.71,
		Longitude: -74.00,
		Severity:  severity,
		ImageURLs: []string{"https://blobs.test/pothole-images/seed.png"},
	}
	gt.NoError(t, e.mem.CreateReport(context.Background(), report))

	if status != types.StatusReported {
		gt.NoError(t, e.mem.UpdateReportStatus(context.Background(), report.ID, status))
	}

	return report
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()

	form := url.Values{"password": {adminPassword}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := e.do(req)
	gt.Equal(t, rec.Code, http.StatusSeeOther)
	gt.Equal(t, rec.Header().Get("Location"), "/admin")

	for _, c := range rec.Result().Cookies() {
		if c.Name == internal.COOKIE_ADMIN_SESSION_NAME {
			return c
		}
	}

	t.Fatal("admin session cookie not set")
	return nil
}

func reportRequest(t *testing.T, fields map[string]string, images map[string][]byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		gt.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range images {
		part, err := mw.CreateFormFile("images", name)
		gt.NoError(t, err)
		_, err = part.Write(data)
		gt.NoError(t, err)
	}
	gt.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/report", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPublicPages(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, types.SeveritySevere, types.StatusResolved)

	testCases := []struct {
		path     string
		contains string
	}{
		{"/", "Help Fix Your City&#39;s Roads"},
		{"/about", "About PotholeWatch"},
		{"/report", "Submit Report"},
		{"/map", "Showing 1 report(s)"},
		{"/admin/login", "Unlock Dashboard"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodGet, tc.path, nil))
			gt.Equal(t, rec.Code, http.StatusOK)
			gt.S(t, rec.Body.String()).Contains(tc.contains)
		})
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.Equal(t, rec.Body.String(), "ok")
}

func TestStripTrailingSlash(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/map/?status=resolved", nil))
	gt.Equal(t, rec.Code, http.StatusMovedPermanently)
	gt.Equal(t, rec.Header().Get("Location"), "/map?status=resolved")
}

func TestSubmitReport(t *testing.T) {
	env := newTestEnv(t)

	req := reportRequest(t, map[string]string{
		"latitude":      "40.71",
		"longitude":     "-74.00",
		"severity":      "severe",
		"reporter_name": "Dana",
	}, map[string][]byte{"hole.png": pngBytes})

	rec := env.do(req)
	gt.Equal(t, rec.Code, http.StatusSeeOther)
	gt.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/report?submitted=1&id="))

	all, err := env.mem.Reports(context.Background(), types.DefaultReportQuery())
	gt.NoError(t, err)
	gt.Equal(t, len(all), 1)
	gt.Equal(t, all[0].Severity, types.SeveritySevere)
	gt.Equal(t, all[0].Status, types.StatusReported)
	gt.Equal(t, len(all[0].ImageURLs), 1)
	gt.Equal(t, all[0].ReporterDisplayName(), "Dana")
	gt.Equal(t, len(env.blobs.objects), 1)

	page := env.do(httptest.NewRequest(http.MethodGet, rec.Header().Get("Location"), nil))
	gt.Equal(t, page.Code, http.StatusOK)
	gt.S(t, page.Body.String()).Contains("Report submitted successfully!")
	gt.S(t, page.Body.String()).Contains("/reports/" + all[0].ID)
}

func TestSubmitReportRejected(t *testing.T) {
	testCases := []struct {
		name   string
		fields map[string]string
		images map[string][]byte
		msg    string
	}{
		{
			name:   "no location",
			fields: map[string]string{"severity": "minor"},
			images: map[string][]byte{"hole.png": pngBytes},
			msg:    "Please select a location on the map",
		},
		{
			name:   "no images",
			fields: map[string]string{"latitude": "40.71", "longitude": "-74.00", "severity": "minor"},
			msg:    "Please upload at least one image",
		},
		{
			name:   "garbled latitude",
			fields: map[string]string{"latitude": "north", "longitude": "-74.00", "severity": "minor"},
			images: map[string][]byte{"hole.png": pngBytes},
			msg:    "Please select a location on the map",
		},
		{
			name:   "text file",
			fields: map[string]string{"latitude": "40.71", "longitude": "-74.00", "severity": "minor"},
			images: map[string][]byte{"notes.txt": []byte("not a photo")},
			msg:    "notes.txt is not a JPEG or PNG image",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(reportRequest(t, tc.fields, tc.images))
			gt.Equal(t, rec.Code, http.StatusUnprocessableEntity)
			gt.S(t, rec.Body.String()).Contains(tc.msg)

			all, err := env.mem.Reports(context.Background(), types.DefaultReportQuery())
			gt.NoError(t, err)
			gt.Equal(t, len(all), 0)
			gt.Equal(t, len(env.blobs.objects), 0)
		})
	}
}

func TestReportDetail(t *testing.T) {
	env := newTestEnv(t)
	report := env.seed(t, types.SeverityModerate, types.StatusReported)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/reports/"+report.ID, nil))
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("Moderate pothole")
	gt.S(t, rec.Body.String()).Contains("Anonymous")
	gt.S(t, rec.Body.String()).Contains("https://www.google.com/maps?q=40.710000,-74.000000")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/reports/does-not-exist", nil))
	gt.Equal(t, rec.Code, http.StatusNotFound)
}

func TestMapFeed(t *testing.T) {
	env := newTestEnv(t)
	severe := env.seed(t, types.SeveritySevere, types.StatusReported)
	env.seed(t, types.SeverityMinor, types.StatusResolved)

	t.Run("all reports", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/map/reports.geojson", nil))
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.Equal(t, rec.Header().Get("Content-Type"), "application/geo+json")

		fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
		gt.NoError(t, err)
		gt.Equal(t, len(fc.Features), 2)
	})

	t.Run("filtered by severity", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/map/reports.geojson?severity=severe&status=all", nil))
		gt.Equal(t, rec.Code, http.StatusOK)

		fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
		gt.NoError(t, err)
		gt.Equal(t, len(fc.Features), 1)

		f := fc.Features[0]
		gt.Equal(t, f.Geometry.Point, []float64{-74.00, 40.71})
		gt.Equal(t, f.PropertyMustString("severity"), "severe")
		gt.Equal(t, f.PropertyMustString("url"), "/reports/"+severe.ID)
		gt.Equal(t, f.PropertyMustString("reporterName"), "Anonymous")
	})

	t.Run("filtered by status", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/map/reports.geojson?status=resolved", nil))
		gt.Equal(t, rec.Code, http.StatusOK)

		fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
		gt.NoError(t, err)
		gt.Equal(t, len(fc.Features), 1)
		gt.Equal(t, fc.Features[0].PropertyMustString("status"), "resolved")
	})

	t.Run("unknown filter", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/map/reports.geojson?status=lost", nil))
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)

	t.Run("dashboard is locked without a session", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, "/admin", nil))
		gt.Equal(t, rec.Code, http.StatusSeeOther)
		gt.Equal(t, rec.Header().Get("Location"), "/admin/login")
	})

	t.Run("wrong password stays locked", func(t *testing.T) {
		form := url.Values{"password": {"admin123"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := env.do(req)
		gt.Equal(t, rec.Code, http.StatusUnauthorized)
		gt.S(t, rec.Body.String()).Contains("Invalid password")
		gt.Equal(t, len(rec.Result().Cookies()), 0)
	})

	t.Run("forged cookie stays locked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: internal.COOKIE_ADMIN_SESSION_NAME, Value: "forged"})

		rec := env.do(req)
		gt.Equal(t, rec.Code, http.StatusSeeOther)
	})

	t.Run("correct password unlocks", func(t *testing.T) {
		cookie := env.login(t)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(cookie)

		rec := env.do(req)
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.S(t, rec.Body.String()).Contains("Admin Dashboard")
		gt.S(t, rec.Body.String()).Contains("Sign out")
	})

	t.Run("logout clears the session", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodPost, "/admin/logout", nil))
		gt.Equal(t, rec.Code, http.StatusSeeOther)

		cookies := rec.Result().Cookies()
		gt.Equal(t, len(cookies), 1)
		gt.Equal(t, cookies[0].MaxAge, -1)
	})
}

func TestAdminDashboardFilters(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, types.SeveritySevere, types.StatusReported)
	env.seed(t, types.SeverityMinor, types.StatusResolved)
	env.seed(t, types.SeverityModerate, types.StatusResolved)
	cookie := env.login(t)

	req := httptest.NewRequest(http.MethodGet, "/admin?status=resolved&sort=severity", nil)
	req.AddCookie(cookie)

	rec := env.do(req)
	gt.Equal(t, rec.Code, http.StatusOK)

	body := rec.Body.String()
	gt.Equal(t, strings.Count(body, `action="/admin/reports/`), 2)
	// moderate sorts ahead of minor
	gt.True(t, strings.Index(body, "badge severity-moderate") < strings.Index(body, "badge severity-minor"))
}

func TestAdminStatusUpdate(t *testing.T) {
	env := newTestEnv(t)
	report := env.seed(t, types.SeveritySevere, types.StatusReported)

	form := url.Values{
		"status": {"in_progress"},
		"return": {"status=reported&severity=all&sort=date"},
	}

	t.Run("requires a session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/reports/"+report.ID+"/status", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := env.do(req)
		gt.Equal(t, rec.Code, http.StatusSeeOther)
		gt.Equal(t, rec.Header().Get("Location"), "/admin/login")

		got, err := env.mem.Report(context.Background(), report.ID)
		gt.NoError(t, err)
		gt.Equal(t, got.Status, types.StatusReported)
	})

	cookie := env.login(t)

	t.Run("updates and returns to the same view", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/reports/"+report.ID+"/status", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)

		rec := env.do(req)
		gt.Equal(t, rec.Code, http.StatusSeeOther)

		loc, err := url.Parse(rec.Header().Get("Location"))
		gt.NoError(t, err)
		gt.Equal(t, loc.Path, "/admin")
		gt.Equal(t, loc.Query().Get("status"), "reported")
		gt.Equal(t, loc.Query().Get("notice"), "Status updated")

		got, err := env.mem.Report(context.Background(), report.ID)
		gt.NoError(t, err)
		gt.Equal(t, got.Status, types.StatusInProgress)
		gt.False(t, got.UpdatedAt.Before(got.CreatedAt))
	})

	t.Run("unknown status", func(t *testing.T) {
		bad := url.Values{"status": {"closed"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/reports/"+report.ID+"/status", strings.NewReader(bad.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)

		rec := env.do(req)
		gt.Equal(t, rec.Code, http.StatusSeeOther)

		loc, err := url.Parse(rec.Header().Get("Location"))
		gt.NoError(t, err)
		gt.Equal(t, loc.Query().Get("error"), "That status change is not allowed")
	})

	t.Run("open redirect in return is ignored", func(t *testing.T) {
		evil := url.Values{"status": {"resolved"}, "return": {"//evil.test/phish"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/reports/"+report.ID+"/status", strings.NewReader(evil.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)

		rec := env.do(req)
		loc, err := url.Parse(rec.Header().Get("Location"))
		gt.NoError(t, err)
		gt.Equal(t, loc.Path, "/admin")
		gt.Equal(t, loc.Host, "")
	})
}
