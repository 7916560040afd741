package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldsync-server/internal/domain"
	"fieldsync-server/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type PostService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	tombstoneRepo repository.TombstoneRepository
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	tombstoneRepo repository.TombstoneRepository,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		tombstoneRepo: tombstoneRepo,
	}
}

func (s *PostService) Create(ctx context.Context, userID string, req *domain.CreatePostRequest) (*domain.Post, error) {
	now := time.Now().UnixMilli()

	post := &domain.Post{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Body:        req.Body,
		IsPinned:    req.IsPinned,
		LastEventAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

func (s *PostService) List(ctx context.Context, q *domain.PostQuery) (*domain.PostList, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}

	posts, total, err := s.postRepo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}

	totalPages := (total + q.Limit - 1) / q.Limit

	return &domain.PostList{
		Posts:      posts,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (s *PostService) Update(ctx context.Context, userID, id string, req *domain.UpdatePostRequest) (*domain.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotOwner
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Subtitle != nil {
		post.Subtitle = req.Subtitle
	}
	if req.Body != nil {
		post.Body = *req.Body
	}
	if req.IsPinned != nil {
		post.IsPinned = *req.IsPinned
	}

	now := time.Now().UnixMilli()
	post.LastEventAt = now
	post.UpdatedAt = now

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

func (s *PostService) Delete(ctx context.Context, userID, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotOwner
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if err := s.tombstoneRepo.Record(ctx, domain.KindPost, id, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to record tombstone: %w", err)
	}

	return nil
}

func (s *PostService) Comments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list post comments: %w", err)
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}

	return comments, nil
}

func (s *PostService) Pinned(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.postRepo.FindPinned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pinned posts: %w", err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}

	return posts, nil
}

func (s *PostService) Search(ctx context.Context, term string) ([]*domain.Post, error) {
	posts, err := s.postRepo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}

	return posts, nil
}
