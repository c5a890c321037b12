package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Execer runs a statement. *pgxpool.Pool, *pgx.Conn and pgx.Tx all qualify.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Record is one entity to persist. Payload is stored as JSONB.
type Record struct {
	Kind    string
	ID      string
	Payload any
}

const upsertSnapshot = `
	INSERT INTO clinic_snapshot (kind, entity_id, payload, captured_at)
	VALUES ($1, $2, $3::jsonb, $4)
	ON CONFLICT (kind, entity_id)
	DO UPDATE SET payload = EXCLUDED.payload, captured_at = EXCLUDED.captured_at`

// pruneSnapshot drops rows not written by the current capture, i.e.
// entities removed since the previous snapshot.
const pruneSnapshot = `DELETE FROM clinic_snapshot WHERE captured_at <> $1`

// SnapshotWriter mirrors the in-memory entities into clinic_snapshot.
type SnapshotWriter struct {
	db     Execer
	logger zerolog.Logger
	now    func() time.Time
}

func NewSnapshotWriter(db Execer, logger zerolog.Logger) *SnapshotWriter {
	return &SnapshotWriter{
		db:     db,
		logger: logger.With().Str("component", "snapshot").Logger(),
		now:    time.Now,
	}
}

// Write upserts every record with a shared capture time, then deletes every
// row from earlier captures so the table holds exactly the given records.
// When the underlying handle can open a transaction the batch commits or
// fails as a whole.
func (w *SnapshotWriter) Write(ctx context.Context, records []Record) (int, error) {
	capturedAt := w.now().UTC()

	payloads := make([]string, len(records))
	for i, r := range records {
		b, err := json.Marshal(r.Payload)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", r.Kind, r.ID, err)
		}
		payloads[i] = string(b)
	}

	var pruned int64
	write := func(db Execer) error {
		for i, r := range records {
			if _, err := db.Exec(ctx, upsertSnapshot, r.Kind, r.ID, payloads[i], capturedAt); err != nil {
				return fmt.Errorf("upsert %s %s: %w", r.Kind, r.ID, err)
			}
		}
		tag, err := db.Exec(ctx, pruneSnapshot, capturedAt)
		if err != nil {
			return fmt.Errorf("prune snapshot: %w", err)
		}
		pruned = tag.RowsAffected()
		return nil
	}

	var err error
	if b, ok := w.db.(beginner); ok {
		err = pgx.BeginFunc(ctx, b, func(tx pgx.Tx) error { return write(tx) })
	} else {
		err = write(w.db)
	}
	if err != nil {
		return 0, err
	}

	w.logger.Info().
		Int("records", len(records)).
		Int64("pruned", pruned).
		Time("captured_at", capturedAt).
		Msg("snapshot written")
	return len(records), nil
}
