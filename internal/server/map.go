package server

import (
	"context"
	"net/http"
	"time"

	"potholes/pkg/types"

	geojson "github.com/paulmach/go.geojson"
)

const (
	mapCenterLat = 40.7128
	mapCenterLng = -74.0060
)

func (s *Service) handleMap(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	data := &types.MapPageData{
		BasePageData: types.BasePageData{Title: "Pothole Map"},
		CenterLat:    mapCenterLat,
		CenterLng:    mapCenterLng,
	}

	q, err := parseReportQuery(r.URL.Query())
	if err != nil {
		status = http.StatusBadRequest
		data.Error = "Unknown filter, showing all reports."
	}
	data.Query = q
	data.FeedURL = "/map/reports.geojson?" + q.Values().Encode()
	data.SeverityOptions = severityFilterOptions(q.Severity)
	data.StatusOptions = statusFilterOptions(q.Status)

	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	found, err := s.reports.List(ctx, q)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch reports for map")
		data.Error = "Failed to load reports. Please refresh the page."
	}
	data.ReportCount = len(found)

	if err := s.renderTemplateStatus(w, r, status, "page.map", data); err != nil {
		s.logger.WithError(err).Error("failed to render map page")
		s.internalServerError(w)
		return
	}
}

// handleMapFeed serves the filtered reports as a GeoJSON FeatureCollection
// for the map widget.
func (s *Service) handleMapFeed(w http.ResponseWriter, r *http.Request) {
	q, err := parseReportQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	found, err := s.reports.List(ctx, q)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch reports for map feed")
		s.internalServerError(w)
		return
	}

	body, err := reportFeatures(found).MarshalJSON()
	if err != nil {
		s.logger.WithError(err).Error("failed to encode map feed")
		s.internalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

func reportFeatures(found []*types.Report) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, report := range found {
		// GeoJSON positions are longitude first
		f := geojson.NewPointFeature([]float64{report.Longitude, report.Latitude})
		f.ID = report.ID

		f.SetProperty("severity", string(report.Severity))
		f.SetProperty("severityLabel", report.Severity.Label())
		f.SetProperty("status", string(report.Status))
		f.SetProperty("statusLabel", report.Status.Label())
		f.SetProperty("reporterName", report.ReporterDisplayName())
		f.SetProperty("createdAt", report.CreatedAt.Format(time.RFC3339))
		f.SetProperty("url", "/reports/"+report.ID)
		if report.Description != nil {
			f.SetProperty("description", *report.Description)
		}
		if len(report.ImageURLs) > 0 {
			f.SetProperty("image", report.ImageURLs[0])
		}

		fc.AddFeature(f)
	}

	return fc
}
