// Package notify tells officials about new pothole reports.
package notify

import "context"

type Notifier interface {
	NotifyReportCreated(ctx context.Context, reportID string) error
}

// Noop is used when notifications are disabled.
type Noop struct{}

func (Noop) NotifyReportCreated(context.Context, string) error { return nil }
