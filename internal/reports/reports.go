// Package reports holds the report lifecycle: submission, browsing, status
// transitions and the orphaned image sweep. Persistence, blob storage and
// notification are supplied by the caller.
package reports

import (
	"context"
	"fmt"
	"io"

	"potholes/pkg/types"

	"github.com/sirupsen/logrus"
)

type ReportStore interface {
	Reports(ctx context.Context, q types.ReportQuery) ([]*types.Report, error)
	Report(ctx context.Context, reportID string) (*types.Report, error)
	CreateReport(ctx context.Context, report *types.Report) error
	UpdateReportStatus(ctx context.Context, reportID string, status types.Status) error
}

type StatusEventStore interface {
	RecordStatusChange(ctx context.Context, reportID string, from, to types.Status) error
	EventsByReport(ctx context.Context, reportID string) ([]*types.ReportStatusEvent, error)
}

type BlobStore interface {
	Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context) ([]types.StoredObject, error)
	PublicURL(path string) string
}

type Notifier interface {
	NotifyReportCreated(ctx context.Context, reportID string) error
}

type ServiceConfig struct {
	Policy    TransitionPolicy
	MaxImages int
	// MaxImageBytes caps each photo; zero means no cap.
	MaxImageBytes int64
}

type Service struct {
	logger   *logrus.Logger
	store    ReportStore
	events   StatusEventStore
	blobs    BlobStore
	notifier Notifier
	config   ServiceConfig
}

func NewService(
	logger *logrus.Logger,
	store ReportStore,
	events StatusEventStore,
	blobs BlobStore,
	notifier Notifier,
	config ServiceConfig,
) *Service {
	if config.Policy == "" {
		config.Policy = PolicyAny
	}

	return &Service{
		logger:   logger,
		store:    store,
		events:   events,
		blobs:    blobs,
		notifier: notifier,
		config:   config,
	}
}

func (s *Service) MaxImages() int {
	return s.config.MaxImages
}

func (s *Service) MaxImageBytes() int64 {
	return s.config.MaxImageBytes
}

func (s *Service) List(ctx context.Context, q types.ReportQuery) ([]*types.Report, error) {
	reports, err := s.store.Reports(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *Service) Report(ctx context.Context, reportID string) (*types.Report, error) {
	return s.store.Report(ctx, reportID)
}

func (s *Service) Events(ctx context.Context, reportID string) ([]*types.ReportStatusEvent, error) {
	return s.events.EventsByReport(ctx, reportID)
}
