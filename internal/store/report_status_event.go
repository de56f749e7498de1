package store

import (
	"context"
	"fmt"

	"potholes/internal/utils"
	"potholes/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportStatusEventsTableName = "potholes.report_status_events"

var reportStatusEventsColumns = utils.StructTagValues(types.ReportStatusEvent{})

type ReportStatusEventRepository struct {
	pool *pgxpool.Pool
}

func NewReportStatusEventRepository(pool *pgxpool.Pool) *ReportStatusEventRepository {
	return &ReportStatusEventRepository{pool: pool}
}

// RecordStatusChange logs a status change for a report
func (r *ReportStatusEventRepository) RecordStatusChange(ctx context.Context, reportID string, from, to types.Status) error {
	id := utils.NanoID()

	query, args, err := psql().
		Insert(reportStatusEventsTableName).
		Columns("id", "report_id", "from_status", "to_status").
		Values(id, reportID, string(from), string(to)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert status event query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to record status event")
}

// EventsByReport returns all status events for a report, ordered chronologically
func (r *ReportStatusEventRepository) EventsByReport(ctx context.Context, reportID string) ([]*types.ReportStatusEvent, error) {
	query, args, err := psql().
		Select(reportStatusEventsColumns...).
		From(reportStatusEventsTableName).
		Where(sq.Eq{"report_id": reportID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate get events query: %w", err)
	}

	var events []*types.ReportStatusEvent
	err = pgxscan.Select(ctx, r.pool, &events, query, args...)
	if err != nil {
		return nil, utils.ErrorWrapOrNil(err, "failed to get status events")
	}

	return events, nil
}
