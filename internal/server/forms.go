package server

import (
	"fmt"
	"net/url"

	"potholes/pkg/types"
)

func parseReportQuery(values url.Values) (types.ReportQuery, error) {
	var filter = new(types.ReportFilterForm)
	if err := decoder.Decode(filter, values); err != nil {
		return types.DefaultReportQuery(), fmt.Errorf("%w: %w", types.ErrInvalidReportQuery, err)
	}

	q, err := types.ParseReportQuery(filter.Status, filter.Severity, filter.Sort)
	if err != nil {
		return types.DefaultReportQuery(), err
	}

	return q, nil
}

func statusFilterOptions(selected types.Status) []types.FilterOption {
	options := []types.FilterOption{{Value: "all", Label: "All Statuses", Selected: selected == ""}}
	return append(options, statusOptions(selected)...)
}

func statusOptions(selected types.Status) []types.FilterOption {
	options := make([]types.FilterOption, 0, len(types.Statuses))
	for _, status := range types.Statuses {
		options = append(options, types.FilterOption{
			Value:    string(status),
			Label:    status.Label(),
			Selected: status == selected,
		})
	}
	return options
}

func severityFilterOptions(selected types.Severity) []types.FilterOption {
	options := []types.FilterOption{{Value: "all", Label: "All Severities", Selected: selected == ""}}
	for _, sev := range types.Severities {
		options = append(options, types.FilterOption{
			Value:    string(sev),
			Label:    sev.Label(),
			Selected: sev == selected,
		})
	}
	return options
}

func sortOptions(selected types.ReportSort) []types.FilterOption {
	return []types.FilterOption{
		{Value: string(types.ReportSortDate), Label: "Sort by Date", Selected: selected != types.ReportSortSeverity},
		{Value: string(types.ReportSortSeverity), Label: "Sort by Severity", Selected: selected == types.ReportSortSeverity},
	}
}
