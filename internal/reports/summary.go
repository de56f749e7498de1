package reports

import "potholes/pkg/types"

// Summarize counts the fetched set by severity and by status. The counts are
// for display and are never stored.
func Summarize(reports []*types.Report) types.ReportSummary {
	var sum types.ReportSummary

	for _, r := range reports {
		sum.Total++

		switch r.Severity {
		case types.SeveritySevere:
			sum.Severe++
		case types.SeverityModerate:
			sum.Moderate++
		case types.SeverityMinor:
			sum.Minor++
		}

		switch r.Status {
		case types.StatusReported:
			sum.Reported++
		case types.StatusInProgress:
			sum.InProgress++
		case types.StatusResolved:
			sum.Resolved++
		}
	}

	return sum
}
