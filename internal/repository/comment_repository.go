package repository

import (
	"context"
	"errors"
	"fmt"

	"fieldsync-server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	List(ctx context.Context) ([]*domain.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	// UpdateIfUnmodified is the compare-and-swap variant used by the sync
	// engine; it returns ErrNotFound when the stored row no longer carries
	// expectedUpdatedAt.
	UpdateIfUnmodified(ctx context.Context, comment *domain.Comment, expectedUpdatedAt int64) error
	Delete(ctx context.Context, id string) error
	ListChangedSince(ctx context.Context, since int64) ([]*domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

const commentColumns = `id, body, post_id, user_id, created_at, updated_at`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `INSERT INTO comments (` + commentColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.Body,
		comment.PostID,
		comment.UserID,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}

	return comment, nil
}

func (r *commentRepository) List(ctx context.Context) ([]*domain.Comment, error) {
	return r.queryComments(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY created_at DESC`)
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	return r.queryComments(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at ASC`, postID)
}

func (r *commentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Comment, error) {
	return r.queryComments(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `UPDATE comments
	          SET body = $2, post_id = $3, user_id = $4, updated_at = $5
	          WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.Body,
		comment.PostID,
		comment.UserID,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *commentRepository) UpdateIfUnmodified(ctx context.Context, comment *domain.Comment, expectedUpdatedAt int64) error {
	query := `UPDATE comments
	          SET body = $2, post_id = $3, user_id = $4, updated_at = $5
	          WHERE id = $1 AND updated_at = $6`

	tag, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.Body,
		comment.PostID,
		comment.UserID,
		comment.UpdatedAt,
		expectedUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *commentRepository) ListChangedSince(ctx context.Context, since int64) ([]*domain.Comment, error) {
	return r.queryComments(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE created_at >= $1 OR updated_at >= $1
		 ORDER BY updated_at ASC`, since)
}

func (r *commentRepository) queryComments(ctx context.Context, query string, args ...interface{}) ([]*domain.Comment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return comments, nil
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	err := row.Scan(
		&comment.ID,
		&comment.Body,
		&comment.PostID,
		&comment.UserID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
