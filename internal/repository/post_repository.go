package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fieldsync-server/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context, q *domain.PostQuery) ([]*domain.Post, int, error)
	FindPinned(ctx context.Context) ([]*domain.Post, error)
	Search(ctx context.Context, term string) ([]*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	// UpdateIfUnmodified persists post only if the stored row still carries
	// expectedUpdatedAt, returning ErrNotFound when another writer got there
	// first. This is the compare-and-swap used by the sync engine.
	UpdateIfUnmodified(ctx context.Context, post *domain.Post, expectedUpdatedAt int64) error
	TouchLastEvent(ctx context.Context, id string, at int64) error
	Delete(ctx context.Context, id string) error
	ListChangedSince(ctx context.Context, since int64) ([]*domain.Post, error)
}

type postRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

const postColumns = `id, title, subtitle, body, is_pinned, last_event_at, created_at, updated_at, user_id`

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `INSERT INTO posts (` + postColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Subtitle,
		post.Body,
		post.IsPinned,
		post.LastEventAt,
		post.CreatedAt,
		post.UpdatedAt,
		post.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return post, nil
}

var postSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"lastEventAt": "last_event_at",
	"title":       "title",
}

func (r *postRepository) List(ctx context.Context, q *domain.PostQuery) ([]*domain.Post, int, error) {
	where := ""
	args := []interface{}{}
	if q.Search != "" {
		where = ` WHERE title ILIKE $1 OR subtitle ILIKE $1 OR body ILIKE $1`
		args = append(args, "%"+q.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	sortBy, ok := postSortColumns[q.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM posts%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		postColumns, where, sortBy, order, len(args)+1, len(args)+2)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) FindPinned(ctx context.Context) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE is_pinned ORDER BY last_event_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pinned posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (r *postRepository) Search(ctx context.Context, term string) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
	          WHERE title ILIKE $1 OR subtitle ILIKE $1 OR body ILIKE $1
	          ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, "%"+term+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	query := `UPDATE posts
	          SET title = $2, subtitle = $3, body = $4, is_pinned = $5,
	              last_event_at = $6, updated_at = $7, user_id = $8
	          WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Subtitle,
		post.Body,
		post.IsPinned,
		post.LastEventAt,
		post.UpdatedAt,
		post.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postRepository) UpdateIfUnmodified(ctx context.Context, post *domain.Post, expectedUpdatedAt int64) error {
	query := `UPDATE posts
	          SET title = $2, subtitle = $3, body = $4, is_pinned = $5,
	              last_event_at = $6, updated_at = $7, user_id = $8
	          WHERE id = $1 AND updated_at = $9`

	tag, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Subtitle,
		post.Body,
		post.IsPinned,
		post.LastEventAt,
		post.UpdatedAt,
		post.UserID,
		expectedUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postRepository) TouchLastEvent(ctx context.Context, id string, at int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE posts SET last_event_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch post last event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postRepository) ListChangedSince(ctx context.Context, since int64) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
	          WHERE created_at >= $1 OR updated_at >= $1
	          ORDER BY updated_at ASC`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Subtitle,
		&post.Body,
		&post.IsPinned,
		&post.LastEventAt,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.UserID,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func scanPosts(rows pgx.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}
