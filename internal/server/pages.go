package server

import (
	"context"
	"net/http"
	"time"

	"potholes/internal/reports"
	"potholes/pkg/types"
)

const (
	recentReportCount = 6
	readTimeout       = 5 * time.Second
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	data := &types.HomePageData{
		BasePageData: types.BasePageData{
			Title:  "Help Fix Your City's Roads",
			Notice: r.URL.Query().Get("notice"),
			Error:  r.URL.Query().Get("error"),
		},
	}

	all, err := s.reports.List(ctx, types.DefaultReportQuery())
	if err != nil {
		// stats are decoration here, the page still renders without them
		s.logger.WithError(err).Error("failed to fetch report stats")
	} else {
		data.Summary = reports.Summarize(all)
		data.Recent = all[:min(len(all), recentReportCount)]
	}

	if err := s.renderTemplate(w, r, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleAbout(w http.ResponseWriter, r *http.Request) {
	data := &types.AboutPageData{
		BasePageData: types.BasePageData{Title: "About"},
	}

	if err := s.renderTemplate(w, r, "page.about", data); err != nil {
		s.logger.WithError(err).Error("failed to render about page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
