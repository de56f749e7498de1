package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"potholes/internal/utils"
	"potholes/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportTableName = "potholes.pothole_reports"

var reportColumns = utils.StructTagValues(types.Report{})

var errReportIncomplete = errors.New("report requires at least one image and a valid severity")

type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// reportsQuery builds the listing: one equality predicate per set filter and
// a single ORDER BY column.
func reportsQuery(q types.ReportQuery) sq.SelectBuilder {
	builder := psql().Select(reportColumns...).From(reportTableName)

	if q.Status != "" {
		builder = builder.Where(sq.Eq{"status": string(q.Status)})
	}
	if q.Severity != "" {
		builder = builder.Where(sq.Eq{"severity": string(q.Severity)})
	}

	direction := "ASC"
	if q.Desc {
		direction = "DESC"
	}

	return builder.OrderBy(fmt.Sprintf("%s %s", q.Sort.Column(), direction))
}

func (r *ReportRepository) Reports(ctx context.Context, q types.ReportQuery) ([]*types.Report, error) {

	query, args, err := reportsQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reports query: %w", err)
	}

	var reports = make([]*types.Report, 0)
	err = pgxscan.Select(ctx, r.pool, &reports, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	return reports, nil
}

func (r *ReportRepository) Report(ctx context.Context, reportID string) (*types.Report, error) {

	query, args, err := psql().Select(reportColumns...).From(reportTableName).
		Where(sq.Eq{"id": reportID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report query: %w", err)
	}

	var report = new(types.Report)
	err = pgxscan.Get(ctx, r.pool, report, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("failed to fetch report %s: %w", reportID, err)
	}

	if err != nil {
		return nil, types.ErrReportNotFound
	}

	return report, nil
}

// prepareReport assigns the store-owned fields of a new report.
func prepareReport(report *types.Report, now time.Time) error {
	if len(report.ImageURLs) == 0 || !report.Severity.Valid() {
		return errReportIncomplete
	}

	report.ID = utils.NanoID()
	report.CreatedAt = now
	report.UpdatedAt = now
	report.Status = types.StatusReported

	return nil
}

func insertReportQuery(report *types.Report) (string, []any, error) {
	return psql().Insert(reportTableName).SetMap(utils.StructToMap(report)).ToSql()
}

func (r *ReportRepository) CreateReport(ctx context.Context, report *types.Report) error {

	if err := prepareReport(report, time.Now()); err != nil {
		return err
	}

	query, args, err := insertReportQuery(report)
	if err != nil {
		return fmt.Errorf("failed to generate insert report query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create report")

}

func updateReportStatusQuery(reportID string, status types.Status, now time.Time) (string, []any, error) {
	return psql().Update(reportTableName).
		Set("status", string(status)).
		Set("updated_at", now).
		Where(sq.Eq{"id": reportID}).
		ToSql()
}

// UpdateReportStatus sets the status and refreshes updated_at. Any status may
// replace any other here; transition rules belong to the caller.
func (r *ReportRepository) UpdateReportStatus(ctx context.Context, reportID string, status types.Status) error {

	query, args, err := updateReportStatusQuery(reportID, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to generate update report status query for report %s: %w", reportID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrReportNotFound
	}

	return nil

}

// ImageURLs returns every image URL referenced by any report.
func (r *ReportRepository) ImageURLs(ctx context.Context) ([]string, error) {

	query, args, err := psql().Select("unnest(image_urls) AS url").From(reportTableName).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate image urls query: %w", err)
	}

	var urls []string
	err = pgxscan.Select(ctx, r.pool, &urls, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image urls: %w", err)
	}

	return urls, nil
}
