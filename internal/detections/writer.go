package detections

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/aviary/internal/classifier"
	"github.com/JaimeStill/aviary/internal/metrics"
	"github.com/JaimeStill/aviary/pkg/repository"
)

const insertRecord = `
	INSERT INTO birds (common_name, scientific_name, start_time, end_time, detection_date, confidence, label, audio_file, lon, lat)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id`

var errBatchAborted = errors.New("batch aborted by an earlier failed insert")

// Writer opens a Batch per recording.
type Writer struct {
	db      *sql.DB
	mode    Mode
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewWriter creates a Writer using the transaction mode in cfg.
func NewWriter(db *sql.DB, cfg *Config, logger *slog.Logger, m *metrics.Metrics) *Writer {
	return &Writer{
		db:      db,
		mode:    cfg.Mode(),
		logger:  logger.With("system", "detections"),
		metrics: m,
	}
}

// Mode returns the writer's transaction mode.
func (w *Writer) Mode() Mode {
	return w.mode
}

// Begin reserves one connection for a recording's writes.
// The returned Batch must be finished with Commit.
//
// In per-detection mode a write that fails because the connection broke
// costs only that detection: the Batch swaps in a fresh connection for the
// writes that follow.
func (w *Writer) Begin(ctx context.Context) (*Batch, error) {
	conn, err := w.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Batch{
		db:      w.db,
		conn:    conn,
		mode:    w.mode,
		logger:  w.logger,
		metrics: w.metrics,
	}, nil
}

// Outcome reports what a Batch persisted.
type Outcome struct {
	Attempted int
	Committed int
	Failed    int
	IDs       []int64
}

// Batch writes the detections of one recording over a dedicated connection.
// A Batch is not safe for concurrent use.
type Batch struct {
	db      *sql.DB
	conn    *sql.Conn
	mode    Mode
	logger  *slog.Logger
	metrics *metrics.Metrics

	tx      *sql.Tx
	aborted bool
	ids     []int64
	out     Outcome
}

// Write inserts one detection. It returns the generated id and true on success.
// Failures are logged and absorbed; the caller continues with the next detection.
//
// In batch mode the id is provisional until Commit, and once one insert fails
// every later Write fails without reaching the database.
func (b *Batch) Write(ctx context.Context, p Provenance, d classifier.Detection) (int64, bool) {
	b.out.Attempted++
	rec := NewRecord(p, d)

	var (
		id  int64
		err error
	)
	if b.mode == ModeBatch {
		id, err = b.writeInBatch(ctx, rec)
	} else {
		id, err = repository.WithTx(ctx, b.conn, func(tx *sql.Tx) (int64, error) {
			return insert(ctx, tx, rec)
		})
	}

	if err != nil {
		b.out.Failed++
		if !errors.Is(err, errBatchAborted) {
			b.logger.Error(
				"detection write failed",
				"audio_file", rec.AudioFile,
				"label", rec.Label,
				"mode", b.mode,
				"invalid_input", repository.IsInvalidInput(err),
				"error", err,
			)
		}
		if b.mode == ModePerDetection {
			b.metrics.RecordWrites(string(b.mode), metrics.WriteFailed, 1)
			if brokenConn(err) {
				b.reconnect(ctx)
			}
		}
		return 0, false
	}

	b.ids = append(b.ids, id)
	if b.mode == ModePerDetection {
		b.out.Committed++
		b.metrics.RecordWrites(string(b.mode), metrics.WriteCommitted, 1)
		b.logger.Debug("detection committed", "id", id, "audio_file", rec.AudioFile, "label", rec.Label)
	}
	return id, true
}

func (b *Batch) reconnect(ctx context.Context) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		b.logger.Error("reacquire connection failed", "error", err)
		return
	}
	b.conn.Close()
	b.conn = conn
	b.logger.Warn("connection replaced after a broken write")
}

func brokenConn(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}

func (b *Batch) writeInBatch(ctx context.Context, rec Record) (int64, error) {
	if b.aborted {
		return 0, errBatchAborted
	}
	if b.tx == nil {
		tx, err := b.conn.BeginTx(ctx, nil)
		if err != nil {
			b.aborted = true
			return 0, fmt.Errorf("begin batch: %w", err)
		}
		b.tx = tx
	}

	id, err := insert(ctx, b.tx, rec)
	if err != nil {
		b.aborted = true
		return 0, err
	}
	return id, nil
}

// Commit finishes the batch and releases its connection.
//
// In per-detection mode every write was already committed and Commit only reports.
// In batch mode the transaction commits when every write succeeded; otherwise it
// rolls back and every attempted write is reported as failed.
func (b *Batch) Commit() Outcome {
	defer b.conn.Close()

	if b.mode != ModeBatch {
		b.out.IDs = b.ids
		return b.out
	}

	if b.tx == nil {
		b.metrics.RecordWrites(string(b.mode), metrics.WriteFailed, b.out.Failed)
		return b.out
	}

	if b.aborted {
		if err := b.tx.Rollback(); err != nil {
			b.logger.Warn("batch rollback failed", "error", err)
		}
		return b.rolledBack()
	}

	if err := b.tx.Commit(); err != nil {
		b.logger.Error("batch commit failed", "attempted", b.out.Attempted, "error", err)
		return b.rolledBack()
	}

	b.out.Committed = len(b.ids)
	b.out.IDs = b.ids
	b.metrics.RecordWrites(string(b.mode), metrics.WriteCommitted, b.out.Committed)
	return b.out
}

func (b *Batch) rolledBack() Outcome {
	b.metrics.RecordWrites(string(b.mode), metrics.WriteRolledBack, b.out.Attempted)
	return Outcome{Attempted: b.out.Attempted, Failed: b.out.Attempted}
}

func insert(ctx context.Context, q repository.Querier, rec Record) (int64, error) {
	args := []any{
		rec.CommonName,
		rec.ScientificName,
		rec.StartTime,
		rec.EndTime,
		rec.DetectionDate,
		rec.Confidence,
		rec.Label,
		rec.AudioFile,
		rec.Lon,
		rec.Lat,
	}
	return repository.QueryOne(ctx, q, insertRecord, args, repository.ScanID)
}
