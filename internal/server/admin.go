package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"potholes/internal/reports"
	"potholes/pkg/types"

	"github.com/sirupsen/logrus"
)

func (s *Service) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	data := &types.AdminDashboardPageData{
		BasePageData: types.BasePageData{
			Title:  "Admin Dashboard",
			Notice: r.URL.Query().Get("notice"),
			Error:  r.URL.Query().Get("error"),
		},
	}

	q, err := parseReportQuery(r.URL.Query())
	if err != nil {
		status = http.StatusBadRequest
		data.Error = "Unknown filter, showing all reports."
	}
	data.Query = q
	data.QueryString = q.Values().Encode()
	data.StatusOptions = statusFilterOptions(q.Status)
	data.SortOptions = sortOptions(q.Sort)

	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	found, err := s.reports.List(ctx, q)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch reports for dashboard")
		data.Error = "Failed to load reports. Use Refresh to try again."
	}

	data.Summary = reports.Summarize(found)
	data.Rows = make([]types.AdminReportRow, 0, len(found))
	for _, report := range found {
		data.Rows = append(data.Rows, types.AdminReportRow{
			Report:        report,
			StatusOptions: statusOptions(report.Status),
		})
	}

	if err := s.renderTemplateStatus(w, r, status, "page.admin", data); err != nil {
		s.logger.WithError(err).Error("failed to render admin dashboard")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostReportStatus(w http.ResponseWriter, r *http.Request) {
	reportID := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "/admin", "invalid form payload")
		return
	}

	var update = new(types.StatusUpdateForm)
	if err := decoder.Decode(update, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode status form")
		s.redirectWithError(w, r, "/admin", "invalid form payload")
		return
	}

	back := dashboardReturnPath(update.Return)

	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	err := s.reports.UpdateStatus(ctx, reportID, update.Status)
	switch {
	case err == nil:
		s.redirectWithNotice(w, r, back, "Status updated")
	case errors.Is(err, types.ErrReportNotFound):
		s.redirectWithError(w, r, back, "Report not found")
	case errors.Is(err, reports.ErrInvalidStatus), errors.Is(err, reports.ErrTransitionNotAllowed):
		s.logger.WithError(err).WithField("report_id", reportID).Info("rejected status change")
		s.redirectWithError(w, r, back, "That status change is not allowed")
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"report_id": reportID,
			"status":    update.Status,
		}).Error("failed to update report status")
		s.redirectWithError(w, r, back, "Failed to update status")
	}
}

// dashboardReturnPath rebuilds the dashboard URL from a posted filter query
// string. Only known filter values survive, so the redirect stays on /admin.
func dashboardReturnPath(raw string) string {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "/admin"
	}

	q, err := parseReportQuery(values)
	if err != nil {
		return "/admin"
	}

	return "/admin?" + q.Values().Encode()
}
