package types

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrReportNotFound = errors.New("report not found")
var ErrInvalidReportQuery = errors.New("invalid report query")

type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Severities is ordered from least to most severe.
var Severities = []Severity{SeverityMinor, SeverityModerate, SeveritySevere}

func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere:
		return true
	default:
		return false
	}
}

func (s Severity) Label() string {
	switch s {
	case SeverityMinor:
		return "Minor"
	case SeverityModerate:
		return "Moderate"
	case SeveritySevere:
		return "Severe"
	default:
		return "Unknown"
	}
}

func (s Severity) Description() string {
	switch s {
	case SeverityMinor:
		return "Small crack or surface damage"
	case SeverityModerate:
		return "Noticeable hole, may cause vehicle damage"
	case SeveritySevere:
		return "Deep hole, immediate safety hazard"
	default:
		return ""
	}
}

type Status string

const (
	StatusReported   Status = "reported"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Statuses is ordered along the report lifecycle.
var Statuses = []Status{StatusReported, StatusInProgress, StatusResolved}

func (s Status) Valid() bool {
	switch s {
	case StatusReported, StatusInProgress, StatusResolved:
		return true
	default:
		return false
	}
}

// Rank is the position of the status in the lifecycle, or -1 when unknown.
func (s Status) Rank() int {
	for i, status := range Statuses {
		if status == s {
			return i
		}
	}
	return -1
}

func (s Status) Label() string {
	switch s {
	case StatusReported:
		return "Reported"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// Report is a single citizen-submitted pothole record.
type Report struct {
	ID            string    `db:"id" json:"id"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
	Latitude      float64   `db:"latitude" json:"latitude"`
	Longitude     float64   `db:"longitude" json:"longitude"`
	Severity      Severity  `db:"severity" json:"severity"`
	Status        Status    `db:"status" json:"status"`
	Description   *string   `db:"description" json:"description,omitempty"`
	ReporterName  *string   `db:"reporter_name" json:"reporterName,omitempty"`
	ReporterEmail *string   `db:"reporter_email" json:"reporterEmail,omitempty"`
	ImageURLs     []string  `db:"image_urls" json:"imageUrls"`
}

func (r *Report) ReporterDisplayName() string {
	if r.ReporterName == nil || strings.TrimSpace(*r.ReporterName) == "" {
		return "Anonymous"
	}
	return *r.ReporterName
}

func (r *Report) MapsURL() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", r.Latitude, r.Longitude)
}

// ReportStatusEvent is an append-only record of a status change.
type ReportStatusEvent struct {
	ID         string    `db:"id"`
	ReportID   string    `db:"report_id"`
	FromStatus Status    `db:"from_status"`
	ToStatus   Status    `db:"to_status"`
	CreatedAt  time.Time `db:"created_at"`
}

type ReportSort string

const (
	ReportSortDate     ReportSort = "date"
	ReportSortSeverity ReportSort = "severity"
)

func (s ReportSort) Column() string {
	if s == ReportSortSeverity {
		return "severity"
	}
	return "created_at"
}

// ReportQuery shapes a report listing. Empty Status or Severity means no
// predicate on that column.
type ReportQuery struct {
	Status   Status
	Severity Severity
	Sort     ReportSort
	Desc     bool
}

func DefaultReportQuery() ReportQuery {
	return ReportQuery{Sort: ReportSortDate, Desc: true}
}

const filterAll = "all"

// ParseReportQuery maps the filter vocabulary used by the browsing views
// ("all" or an enum value, "date" or "severity") onto a ReportQuery. Results
// are always sorted descending.
func ParseReportQuery(status, severity, sort string) (ReportQuery, error) {
	q := DefaultReportQuery()

	status = strings.TrimSpace(status)
	if status != "" && status != filterAll {
		q.Status = Status(status)
		if !q.Status.Valid() {
			return q, fmt.Errorf("%w: unknown status %q", ErrInvalidReportQuery, status)
		}
	}

	severity = strings.TrimSpace(severity)
	if severity != "" && severity != filterAll {
		q.Severity = Severity(severity)
		if !q.Severity.Valid() {
			return q, fmt.Errorf("%w: unknown severity %q", ErrInvalidReportQuery, severity)
		}
	}

	switch strings.TrimSpace(sort) {
	case "", string(ReportSortDate):
		q.Sort = ReportSortDate
	case string(ReportSortSeverity):
		q.Sort = ReportSortSeverity
	default:
		return q, fmt.Errorf("%w: unknown sort %q", ErrInvalidReportQuery, sort)
	}

	return q, nil
}

// Values encodes the query back into the filter vocabulary.
func (q ReportQuery) Values() url.Values {
	v := url.Values{}
	v.Set("status", orAll(string(q.Status)))
	v.Set("severity", orAll(string(q.Severity)))
	v.Set("sort", string(q.Sort))
	return v
}

func orAll(v string) string {
	if v == "" {
		return filterAll
	}
	return v
}

// ReportSummary holds display-only counts derived from a fetched set.
type ReportSummary struct {
	Total int

	Severe   int
	Moderate int
	Minor    int

	Reported   int
	InProgress int
	Resolved   int
}

// StoredObject is an object in the image bucket.
type StoredObject struct {
	Name      string
	Size      int64
	CreatedAt time.Time
}
