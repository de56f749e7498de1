package notify

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Dispatcher runs notifications in the background so a slow or failing
// notification never holds up the request that created the report. Errors
// are logged and dropped.
type Dispatcher struct {
	logger  *logrus.Logger
	next    Notifier
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(logger *logrus.Logger, next Notifier, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		logger:  logger,
		next:    next,
		timeout: timeout,
	}
}

// NotifyReportCreated returns immediately. The request context is not used
// since it ends with the response.
func (d *Dispatcher) NotifyReportCreated(_ context.Context, reportID string) error {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.WithFields(logrus.Fields{
					"report_id": reportID,
					"recover":   r,
					"stack":     string(debug.Stack()),
				}).Error("panic in report notification")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.next.NotifyReportCreated(ctx, reportID); err != nil {
			d.logger.WithError(err).WithField("report_id", reportID).Warn("report notification failed")
			return
		}

		d.logger.WithField("report_id", reportID).Debug("report notification sent")
	}()

	return nil
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
