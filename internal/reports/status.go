package reports

import (
	"context"
	"errors"
	"fmt"

	"potholes/pkg/types"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidStatus        = errors.New("invalid status")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
)

// TransitionPolicy decides which status changes an operator may make.
type TransitionPolicy string

const (
	// PolicyAny lets any status replace any other.
	PolicyAny TransitionPolicy = "any"
	// PolicyForward only allows moving further along reported, in_progress, resolved.
	PolicyForward TransitionPolicy = "forward"
)

func ParseTransitionPolicy(v string) (TransitionPolicy, error) {
	switch TransitionPolicy(v) {
	case "", PolicyAny:
		return PolicyAny, nil
	case PolicyForward:
		return PolicyForward, nil
	default:
		return "", fmt.Errorf("unknown status policy %q", v)
	}
}

func (p TransitionPolicy) Allows(from, to types.Status) bool {
	if !to.Valid() {
		return false
	}

	switch p {
	case PolicyForward:
		return to.Rank() > from.Rank()
	default:
		return true
	}
}

func (s *Service) UpdateStatus(ctx context.Context, reportID string, status types.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	report, err := s.store.Report(ctx, reportID)
	if err != nil {
		return err
	}

	if !s.config.Policy.Allows(report.Status, status) {
		return fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, report.Status, status)
	}

	if err := s.store.UpdateReportStatus(ctx, reportID, status); err != nil {
		return err
	}

	entry := s.logger.WithFields(logrus.Fields{
		"report_id": reportID,
		"from":      report.Status,
		"to":        status,
	})

	if err := s.events.RecordStatusChange(ctx, reportID, report.Status, status); err != nil {
		entry.WithError(err).Warn("failed to record status change")
	}

	entry.Info("report status updated")

	return nil
}
