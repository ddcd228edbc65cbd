// Package repositories contains the PostgreSQL implementations of the domain
// repository interfaces.
package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/ChemRxn-Core/pkg/errors"
	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// ─────────────────────────────────────────────────────────────────────────────
// ReactionRepository
// ─────────────────────────────────────────────────────────────────────────────

// ReactionRepository is the PostgreSQL implementation of the reaction
// domain's Repository interface.  The explicit record shape is stored as a
// JSONB document next to the indexed identity columns (id, label), so schema
// evolution of optional attributes does not require column migrations.
type ReactionRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewReactionRepository constructs a ready-to-use ReactionRepository.
func NewReactionRepository(pool *pgxpool.Pool, logger logging.Logger) *ReactionRepository {
	return &ReactionRepository{pool: pool, logger: logger}
}

// Save inserts the reaction or, when the ID already exists, replaces its
// stored record.
func (r *ReactionRepository) Save(ctx context.Context, rxn *reaction.Reaction) error {
	rec := rxn.ToRecord()
	doc, err := json.Marshal(rec)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal reaction record")
	}

	now := time.Now().UTC()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO reactions (id, label, record, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE
		SET label = EXCLUDED.label, record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`,
		string(rxn.ID), rec.Label, doc, now,
	)
	if err != nil {
		r.logger.Error("ReactionRepository.Save",
			logging.String("id", string(rxn.ID)), logging.Err(err))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to save reaction")
	}
	return nil
}

// FindByID retrieves a reaction by its unique identifier.
func (r *ReactionRepository) FindByID(ctx context.Context, id common.ID) (*reaction.Reaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, record FROM reactions WHERE id = $1`, string(id))
	return r.scanReaction(row)
}

// FindByLabel retrieves a reaction by its canonical label.
func (r *ReactionRepository) FindByLabel(ctx context.Context, label string) (*reaction.Reaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, record FROM reactions WHERE label = $1`, label)
	return r.scanReaction(row)
}

// List returns one page of reactions ordered by creation time, plus the
// total count.
func (r *ReactionRepository) List(ctx context.Context, page common.Pagination) ([]*reaction.Reaction, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reactions`).Scan(&total); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count reactions")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, record FROM reactions
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2`,
		page.PageSize, page.Offset(),
	)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list reactions")
	}
	defer rows.Close()

	var out []*reaction.Reaction
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan reaction row")
		}
		rxn, err := rehydrate(id, doc)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rxn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to iterate reaction rows")
	}
	return out, total, nil
}

// Delete removes a reaction by ID.
func (r *ReactionRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reactions WHERE id = $1`, string(id))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete reaction")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodeReactionNotFound, "reaction not found").
			WithDetail("id=" + string(id))
	}
	return nil
}

// Count returns the total number of stored reactions.
func (r *ReactionRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reactions`).Scan(&total); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count reactions")
	}
	return total, nil
}

// NextIndex reserves the next project-wide reaction ordinal from a dedicated
// sequence, so concurrent creations never collide.
func (r *ReactionRepository) NextIndex(ctx context.Context) (int, error) {
	var index int
	if err := r.pool.QueryRow(ctx, `SELECT nextval('reaction_index_seq')`).Scan(&index); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to reserve reaction index")
	}
	return index, nil
}

// scanReaction maps one (id, record) row onto a rehydrated aggregate.
func (r *ReactionRepository) scanReaction(row pgx.Row) (*reaction.Reaction, error) {
	var id string
	var doc []byte
	if err := row.Scan(&id, &doc); err != nil {
		if err == pgx.ErrNoRows {
			return nil, appErrors.New(appErrors.ErrCodeReactionNotFound, "reaction not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan reaction row")
	}
	return rehydrate(id, doc)
}

// rehydrate unmarshals a stored record and rebuilds the aggregate, restoring
// its persistent identity.
func rehydrate(id string, doc []byte) (*reaction.Reaction, error) {
	var rec rxntypes.ReactionRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to unmarshal reaction record")
	}
	rxn, err := reaction.FromRecord(rec)
	if err != nil {
		return nil, err
	}
	rxn.ID = common.ID(id)
	return rxn, nil
}
