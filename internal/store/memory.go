package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"potholes/internal/utils"
	"potholes/pkg/types"
)

// Memory keeps reports and status events in process. It satisfies the same
// contracts as the Postgres repositories and is used for tests and local
// demos.
type Memory struct {
	mu      sync.RWMutex
	reports map[string]*types.Report
	events  map[string][]*types.ReportStatusEvent
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		reports: make(map[string]*types.Report),
		events:  make(map[string][]*types.ReportStatusEvent),
		now:     time.Now,
	}
}

func copyReport(r *types.Report) *types.Report {
	c := *r
	c.ImageURLs = slices.Clone(r.ImageURLs)
	return &c
}

func severityRank(s types.Severity) int {
	return slices.Index(types.Severities, s)
}

func (m *Memory) Reports(ctx context.Context, q types.ReportQuery) ([]*types.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.Report, 0, len(m.reports))
	for _, r := range m.reports {
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.Severity != "" && r.Severity != q.Severity {
			continue
		}
		out = append(out, copyReport(r))
	}

	less := func(a, b *types.Report) bool {
		if q.Sort == types.ReportSortSeverity {
			return severityRank(a.Severity) < severityRank(b.Severity)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})

	return out, nil
}

func (m *Memory) Report(ctx context.Context, reportID string) (*types.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[reportID]
	if !ok {
		return nil, types.ErrReportNotFound
	}
	return copyReport(r), nil
}

func (m *Memory) CreateReport(ctx context.Context, report *types.Report) error {
	if err := prepareReport(report, m.now()); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports[report.ID] = copyReport(report)
	return nil
}

func (m *Memory) UpdateReportStatus(ctx context.Context, reportID string, status types.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reports[reportID]
	if !ok {
		return types.ErrReportNotFound
	}

	r.Status = status
	r.UpdatedAt = m.now()
	return nil
}

func (m *Memory) ImageURLs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var urls []string
	for _, r := range m.reports {
		urls = append(urls, r.ImageURLs...)
	}
	return urls, nil
}

func (m *Memory) RecordStatusChange(ctx context.Context, reportID string, from, to types.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[reportID] = append(m.events[reportID], &types.ReportStatusEvent{
		ID:         utils.NanoID(),
		ReportID:   reportID,
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  m.now(),
	})
	return nil
}

func (m *Memory) EventsByReport(ctx context.Context, reportID string) ([]*types.ReportStatusEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*types.ReportStatusEvent, 0, len(m.events[reportID]))
	for _, e := range m.events[reportID] {
		c := *e
		events = append(events, &c)
	}
	return events, nil
}
