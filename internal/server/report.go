package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"potholes/internal/reports"
	"potholes/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	submitTimeout      = 30 * time.Second
	multipartMemoryMax = 32 << 20
)

func (s *Service) newReportFormData() *types.ReportFormPageData {
	return &types.ReportFormPageData{
		BasePageData: types.BasePageData{Title: "Report a Pothole"},
		State:        types.SubmissionIdle,
		Severity:     types.SeverityModerate,
		MaxImages:    s.reports.MaxImages(),
		MaxImageMB:   s.reports.MaxImageBytes() >> 20,
		FieldErrors:  map[string]string{},
	}
}

func severityOptions(selected types.Severity) []types.SeverityOption {
	options := make([]types.SeverityOption, 0, len(types.Severities))
	for _, sev := range types.Severities {
		options = append(options, types.SeverityOption{
			Value:       sev,
			Label:       sev.Label(),
			Description: sev.Description(),
			Selected:    sev == selected,
		})
	}
	return options
}

func (s *Service) handleGetReportForm(w http.ResponseWriter, r *http.Request) {
	data := s.newReportFormData()
	data.Error = r.URL.Query().Get("error")

	if r.URL.Query().Get("submitted") == "1" {
		data.State = types.SubmissionSucceeded
		data.Notice = "Report submitted successfully! Officials have been notified."
		data.SubmittedID = r.URL.Query().Get("id")
	}

	data.SeverityOptions = severityOptions(data.Severity)

	if err := s.renderTemplate(w, r, "page.report", data); err != nil {
		s.logger.WithError(err).Error("failed to render report page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostReportForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadMB<<20)

	data := s.newReportFormData()

	if err := r.ParseMultipartForm(multipartMemoryMax); err != nil {
		s.logger.WithError(err).Warn("failed to parse report form")

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			data.Error = fmt.Sprintf("Your photos are too large. The limit is %d MB per report.", s.config.MaxUploadMB)
			s.renderReportForm(w, r, http.StatusRequestEntityTooLarge, data)
			return
		}

		data.Error = "Failed to read the submitted form. Please try again."
		s.renderReportForm(w, r, http.StatusBadRequest, data)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var input = new(types.ReportForm)
	if err := decoder.Decode(input, r.PostForm); err != nil {
		// a garbled coordinate lands here, the location check below reports it
		s.logger.WithError(err).Debug("failed to decode report form")
		input.Latitude, input.Longitude = nil, nil
	}

	data.Severity = input.Severity
	data.Description = input.Description
	data.ReporterName = input.ReporterName
	data.ReporterEmail = input.ReporterEmail
	if input.Latitude != nil && input.Longitude != nil {
		data.Latitude = strconv.FormatFloat(*input.Latitude, 'f', -1, 64)
		data.Longitude = strconv.FormatFloat(*input.Longitude, 'f', -1, 64)
	}

	images, err := readImages(r.MultipartForm.File["images"])
	if err != nil {
		s.logger.WithError(err).Error("failed to read uploaded images")
		data.Error = "Failed to read the uploaded photos. Please try again."
		s.renderReportForm(w, r, http.StatusBadRequest, data)
		return
	}

	submission := reports.Submission{
		Severity:      input.Severity,
		Description:   input.Description,
		ReporterName:  input.ReporterName,
		ReporterEmail: input.ReporterEmail,
		Images:        images,
	}
	if input.Latitude != nil && input.Longitude != nil {
		submission.Location = &reports.Location{Latitude: *input.Latitude, Longitude: *input.Longitude}
	}

	ctx, cancel := context.WithTimeout(r.Context(), submitTimeout)
	defer cancel()

	report, err := s.reports.Submit(ctx, submission)
	if err != nil {
		var verr *reports.ValidationError
		if errors.As(err, &verr) {
			s.logger.WithField("field_errors", verr.Fields).Info("validation errors on report submission")

			data.FieldErrors = verr.Fields
			data.Error = "Please select a location and upload at least one image."
			if _, ok := verr.Fields[reports.FieldLocation]; !ok {
				data.Error = "Please fix the highlighted fields."
			}
			s.renderReportForm(w, r, http.StatusUnprocessableEntity, data)
			return
		}

		s.logger.WithError(err).Error("failed to submit report")
		data.Error = "Failed to submit report. Please try again."
		s.renderReportForm(w, r, http.StatusBadGateway, data)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"latitude":  report.Latitude,
		"longitude": report.Longitude,
	}).Info("report submitted")

	http.Redirect(w, r, "/report?submitted=1&id="+report.ID, http.StatusSeeOther)
}

// renderReportForm shows the form again in the failed state with what the
// citizen entered, minus the photos.
func (s *Service) renderReportForm(w http.ResponseWriter, r *http.Request, status int, data *types.ReportFormPageData) {
	data.State = types.SubmissionFailed
	if !data.Severity.Valid() {
		data.Severity = types.SeverityModerate
	}
	data.SeverityOptions = severityOptions(data.Severity)

	if err := s.renderTemplateStatus(w, r, status, "page.report", data); err != nil {
		s.logger.WithError(err).Error("failed to render report page")
		s.internalServerError(w)
	}
}

func readImages(headers []*multipart.FileHeader) ([]reports.Image, error) {
	images := make([]reports.Image, 0, len(headers))

	for _, header := range headers {
		if header.Size == 0 && header.Filename == "" {
			// browsers send an empty part when nothing was picked
			continue
		}

		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
		}

		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Filename, err)
		}

		images = append(images, reports.Image{Name: header.Filename, Data: data})
	}

	return images, nil
}

func (s *Service) handleReportDetail(w http.ResponseWriter, r *http.Request) {
	reportID := r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	report, err := s.reports.Report(ctx, reportID)
	if err != nil {
		if errors.Is(err, types.ErrReportNotFound) {
			http.NotFound(w, r)
			return
		}

		s.logger.WithError(err).WithField("report_id", reportID).Error("failed to fetch report")
		s.internalServerError(w)
		return
	}

	events, err := s.reports.Events(ctx, reportID)
	if err != nil {
		s.logger.WithError(err).WithField("report_id", reportID).Warn("failed to fetch status history")
	}

	data := &types.ReportDetailPageData{
		BasePageData: types.BasePageData{
			Title:  fmt.Sprintf("%s pothole", report.Severity.Label()),
			Notice: r.URL.Query().Get("notice"),
		},
		Report: report,
		Events: events,
	}

	if err := s.renderTemplate(w, r, "page.report-detail", data); err != nil {
		s.logger.WithError(err).Error("failed to render report detail page")
		s.internalServerError(w)
		return
	}
}
