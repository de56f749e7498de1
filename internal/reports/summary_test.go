package reports_test

import (
	"testing"

	"potholes/internal/reports"
	"potholes/pkg/types"

	"github.com/m-mizutani/gt"
)

func TestSummarize(t *testing.T) {
	set := []*types.Report{
		{Severity: types.SeveritySevere, Status: types.StatusReported},
		{Severity: types.SeveritySevere, Status: types.StatusResolved},
		{Severity: types.SeverityMinor, Status: types.StatusInProgress},
		{Severity: types.SeverityModerate, Status: types.StatusReported},
	}

	gt.Equal(t, reports.Summarize(set), types.ReportSummary{
		Total:      4,
		Severe:     2,
		Moderate:   1,
		Minor:      1,
		Reported:   2,
		InProgress: 1,
		Resolved:   1,
	})

	gt.Equal(t, reports.Summarize(nil), types.ReportSummary{})
}
