package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fieldsync-server/internal/domain"
	"fieldsync-server/internal/repository"

	"github.com/google/uuid"
)

type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	tombstoneRepo repository.TombstoneRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	tombstoneRepo repository.TombstoneRepository,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		tombstoneRepo: tombstoneRepo,
	}
}

func (s *CommentService) Create(ctx context.Context, userID string, req *domain.CreateCommentRequest) (*domain.Comment, error) {
	if _, err := s.postRepo.FindByID(ctx, req.PostID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now().UnixMilli()
	comment := &domain.Comment{
		ID:        uuid.New().String(),
		Body:      req.Body,
		PostID:    req.PostID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	// commenting counts as activity on the post
	if err := s.postRepo.TouchLastEvent(ctx, req.PostID, now); err != nil {
		log.Printf("failed to touch post %s after comment %s: %v", req.PostID, comment.ID, err)
	}

	return comment, nil
}

func (s *CommentService) List(ctx context.Context) ([]*domain.Comment, error) {
	comments, err := s.commentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}

	return comments, nil
}

func (s *CommentService) Get(ctx context.Context, id string) (*domain.Comment, error) {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, userID, id string, req *domain.UpdateCommentRequest) (*domain.Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotOwner
	}

	if req.Body != nil {
		comment.Body = *req.Body
	}
	comment.UpdatedAt = time.Now().UnixMilli()

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotOwner
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if err := s.tombstoneRepo.Record(ctx, domain.KindComment, id, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to record tombstone: %w", err)
	}

	return nil
}

func (s *CommentService) ListByUser(ctx context.Context, userID string) ([]*domain.Comment, error) {
	comments, err := s.commentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user comments: %w", err)
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}

	return comments, nil
}
