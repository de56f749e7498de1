package seed

import (
	"bytes"
	"context"
	"fmt"
	"image/color"

	"potholes/internal/reports"
	"potholes/pkg/types"

	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"
)

// DemoReport is one seeded report. Photos are drawn rather than shipped so
// the seed goes through the same upload path as a real submission.
type DemoReport struct {
	Latitude     float64
	Longitude    float64
	Severity     types.Severity
	Status       types.Status
	Description  string
	ReporterName string
	Photos       int
}

// DemoReports are scattered around lower Manhattan, where the map opens.
var DemoReports = []DemoReport{
	{Latitude: 40.7128, Longitude: -74.0060, Severity: types.SeveritySevere, Status: types.StatusReported, Description: "Deep hole in the right lane outside City Hall", ReporterName: "Dana", Photos: 2},
	{Latitude: 40.7183, Longitude: -74.0011, Severity: types.SeverityModerate, Status: types.StatusInProgress, Description: "Crumbling patch near the crosswalk", Photos: 1},
	{Latitude: 40.7075, Longitude: -74.0113, Severity: types.SeverityMinor, Status: types.StatusResolved, Description: "Surface cracks by the bike lane", ReporterName: "Sam", Photos: 1},
	{Latitude: 40.7152, Longitude: -74.0131, Severity: types.SeveritySevere, Status: types.StatusInProgress, Photos: 3},
	{Latitude: 40.7201, Longitude: -74.0048, Severity: types.SeverityModerate, Status: types.StatusReported, Description: "Hole filling with water after rain", ReporterName: "Priya", Photos: 1},
}

var severityColors = map[types.Severity]color.RGBA{
	types.SeverityMinor:    {22, 163, 74, 255},
	types.SeverityModerate: {217, 119, 6, 255},
	types.SeveritySevere:   {220, 38, 38, 255},
}

// SeedReports submits every demo report and then walks it to its target
// status.
func SeedReports(ctx context.Context, logger *logrus.Logger, svc *reports.Service, demos []DemoReport) error {
	for i, demo := range demos {
		sub := reports.Submission{
			Location:     &reports.Location{Latitude: demo.Latitude, Longitude: demo.Longitude},
			Severity:     demo.Severity,
			Description:  demo.Description,
			ReporterName: demo.ReporterName,
		}

		for p := 0; p < max(demo.Photos, 1); p++ {
			data, err := PotholePhoto(demo.Severity, p)
			if err != nil {
				return err
			}
			sub.Images = append(sub.Images, reports.Image{
				Name: fmt.Sprintf("seed-%d-%d.png", i+1, p+1),
				Data: data,
			})
		}

		report, err := svc.Submit(ctx, sub)
		if err != nil {
			return fmt.Errorf("failed to seed report %d: %w", i+1, err)
		}

		for _, status := range statusPath(demo.Status) {
			if err := svc.UpdateStatus(ctx, report.ID, status); err != nil {
				return fmt.Errorf("failed to move seeded report %s to %s: %w", report.ID, status, err)
			}
		}

		logger.WithFields(logrus.Fields{
			"report_id": report.ID,
			"severity":  report.Severity,
			"status":    demo.Status,
		}).Info("seeded report")
	}

	return nil
}

// statusPath lists the steps from reported to target so the seed works
// under the forward-only policy too.
func statusPath(target types.Status) []types.Status {
	var path []types.Status
	for _, status := range types.Statuses[1:] {
		if status.Rank() > target.Rank() {
			break
		}
		path = append(path, status)
	}
	return path
}

// PotholePhoto draws a placeholder photo: asphalt with a dark blotch ringed
// in the severity colour.
func PotholePhoto(severity types.Severity, variant int) ([]byte, error) {
	const w, h = 320, 240

	dc := gg.NewContext(w, h)
	dc.SetColor(color.RGBA{75, 85, 99, 255})
	dc.Clear()

	dc.SetColor(color.RGBA{250, 204, 21, 255})
	dc.SetLineWidth(6)
	dc.DrawLine(0, h-30, w, h-30)
	dc.Stroke()

	radius := 30.0
	switch severity {
	case types.SeverityModerate:
		radius = 45
	case types.SeveritySevere:
		radius = 65
	}

	x := float64(w)/2 + float64((variant%3)-1)*40
	dc.DrawEllipse(x, float64(h)/2, radius*1.3, radius)
	dc.SetColor(color.RGBA{17, 24, 39, 255})
	dc.FillPreserve()
	dc.SetColor(severityColors[severity])
	dc.SetLineWidth(4)
	dc.Stroke()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode seed photo: %w", err)
	}

	return buf.Bytes(), nil
}
