package detections

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/JaimeStill/aviary/pkg/pagination"
	"github.com/JaimeStill/aviary/pkg/query"
	"github.com/JaimeStill/aviary/pkg/repository"
)

// System reads persisted detections.
type System interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error)
	Find(ctx context.Context, id int64) (*Record, error)
	Handler() *Handler
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a read repository over the birds table.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "detections"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := filters.Apply(query.NewBuilder(projection, defaultSort...))
	if len(page.Sort) > 0 {
		qb.OrderByFields(append(slices.Clone(page.Sort), query.SortField{Field: "id"}))
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count detections: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query detections: %w", err)
	}

	result := pagination.NewPageResult(records, total, page)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &rec, nil
}

func scanRecord(s repository.Scanner) (Record, error) {
	var rec Record
	err := s.Scan(
		&rec.ID,
		&rec.CommonName,
		&rec.ScientificName,
		&rec.StartTime,
		&rec.EndTime,
		&rec.DetectionDate,
		&rec.Confidence,
		&rec.Label,
		&rec.AudioFile,
		&rec.Lon,
		&rec.Lat,
	)
	return rec, err
}
