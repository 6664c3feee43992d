package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/store"
)

var ErrEncodeEntity = errors.New("failed to encode entity")

const (
	upsertEntityQuery = `
		INSERT INTO entities (kind, id, data, updated_at)
		VALUES (:kind, :id, :data, now())
		ON CONFLICT (kind, id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	deleteEntityQuery = `DELETE FROM entities WHERE kind = $1 AND id = $2`

	selectEntitiesQuery = `SELECT kind, id, data FROM entities ORDER BY kind, id`
)

type entityRow struct {
	Kind string `db:"kind"`
	ID   string `db:"id"`
	Data string `db:"data"`
}

// PostgresEntityRepository stores every entity as one JSONB document keyed
// by (kind, id). It is the store's Persister.
type PostgresEntityRepository struct {
	db *sqlx.DB
}

func NewPostgresEntityRepository(db *sqlx.DB) *PostgresEntityRepository {
	return &PostgresEntityRepository{db: db}
}

// Apply writes one store change in a single transaction.
func (r *PostgresEntityRepository) Apply(ctx context.Context, change store.Change) (err error) {
	if change.Empty() {
		return nil
	}

	rows := make([]entityRow, 0, len(change.Upserts))
	for _, rec := range change.Upserts {
		data, err := gojson.Marshal(rec.Data)
		if err != nil {
			return fmt.Errorf("%w %s/%s: %w", ErrEncodeEntity, rec.Kind, rec.ID, err)
		}
		rows = append(rows, entityRow{Kind: string(rec.Kind), ID: rec.ID, Data: string(data)})
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, row := range rows {
		if _, err = tx.NamedExecContext(ctx, upsertEntityQuery, row); err != nil {
			return fmt.Errorf("failed to upsert %s/%s: %w", row.Kind, row.ID, err)
		}
	}
	for _, ref := range change.Deletes {
		if _, err = tx.ExecContext(ctx, deleteEntityQuery, string(ref.Kind), ref.ID); err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", ref.Kind, ref.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresEntityRepository) LoadAll(ctx context.Context) (map[models.Kind][]json.RawMessage, error) {
	var rows []entityRow
	if err := r.db.SelectContext(ctx, &rows, selectEntitiesQuery); err != nil {
		return nil, fmt.Errorf("failed to select entities: %w", err)
	}
	out := make(map[models.Kind][]json.RawMessage)
	for _, row := range rows {
		kind := models.Kind(row.Kind)
		out[kind] = append(out[kind], json.RawMessage(row.Data))
	}
	return out, nil
}
