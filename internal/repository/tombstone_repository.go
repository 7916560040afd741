package repository

import (
	"context"
	"fmt"

	"fieldsync-server/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TombstoneRepository retains a marker for every deleted record so a pull can
// report deletions that happened after the client's watermark. Re-creating an
// id clears its marker.
type TombstoneRepository interface {
	Record(ctx context.Context, kind domain.EntityKind, id string, deletedAt int64) error
	Clear(ctx context.Context, kind domain.EntityKind, id string) error
	ListSince(ctx context.Context, kind domain.EntityKind, since int64) ([]string, error)
}

type tombstoneRepository struct {
	pool *pgxpool.Pool
}

func NewTombstoneRepository(pool *pgxpool.Pool) TombstoneRepository {
	return &tombstoneRepository{pool: pool}
}

func (r *tombstoneRepository) Record(ctx context.Context, kind domain.EntityKind, id string, deletedAt int64) error {
	query := `INSERT INTO tombstones (entity_kind, entity_id, deleted_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (entity_kind, entity_id) DO UPDATE SET deleted_at = EXCLUDED.deleted_at`

	if _, err := r.pool.Exec(ctx, query, kind, id, deletedAt); err != nil {
		return fmt.Errorf("failed to record tombstone: %w", err)
	}

	return nil
}

func (r *tombstoneRepository) Clear(ctx context.Context, kind domain.EntityKind, id string) error {
	query := `DELETE FROM tombstones WHERE entity_kind = $1 AND entity_id = $2`

	if _, err := r.pool.Exec(ctx, query, kind, id); err != nil {
		return fmt.Errorf("failed to clear tombstone: %w", err)
	}

	return nil
}

func (r *tombstoneRepository) ListSince(ctx context.Context, kind domain.EntityKind, since int64) ([]string, error) {
	query := `SELECT entity_id FROM tombstones
	          WHERE entity_kind = $1 AND deleted_at >= $2
	          ORDER BY deleted_at ASC`

	rows, err := r.pool.Query(ctx, query, kind, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list tombstones: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tombstone: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tombstones: %w", err)
	}

	return ids, nil
}
