package service

import (
	"context"
	"errors"
	"testing"

	"fieldsync-server/internal/domain"
)

func newCommentService() (*CommentService, *mockPostRepo, *mockCommentRepo, *mockTombstoneRepo) {
	posts := newMockPostRepo()
	comments := newMockCommentRepo()
	tombstones := newMockTombstoneRepo()
	return NewCommentService(comments, posts, tombstones), posts, comments, tombstones
}

func TestCommentService_Create(t *testing.T) {
	service, posts, _, _ := newCommentService()
	ctx := context.Background()

	posts.Create(ctx, &domain.Post{ID: "p1", Title: "parent", UserID: "user1", LastEventAt: 100})

	comment, err := service.Create(ctx, "user2", &domain.CreateCommentRequest{
		Body:   "nice post",
		PostID: "p1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if comment.ID == "" {
		t.Error("expected comment ID to be generated")
	}
	if comment.UserID != "user2" {
		t.Errorf("expected userID user2, got %s", comment.UserID)
	}

	post, _ := posts.FindByID(ctx, "p1")
	if post.LastEventAt <= 100 {
		t.Errorf("expected lastEventAt to advance, got %d", post.LastEventAt)
	}
}

func TestCommentService_CreateMissingPost(t *testing.T) {
	service, _, _, _ := newCommentService()

	_, err := service.Create(context.Background(), "user1", &domain.CreateCommentRequest{
		Body:   "orphan",
		PostID: "missing",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCommentService_Update(t *testing.T) {
	service, posts, _, _ := newCommentService()
	ctx := context.Background()

	posts.Create(ctx, &domain.Post{ID: "p1", UserID: "user1"})
	comment, _ := service.Create(ctx, "user1", &domain.CreateCommentRequest{Body: "old", PostID: "p1"})

	newBody := "edited"
	updated, err := service.Update(ctx, "user1", comment.ID, &domain.UpdateCommentRequest{Body: &newBody})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Body != "edited" {
		t.Errorf("expected body edited, got %s", updated.Body)
	}

	_, err = service.Update(ctx, "user2", comment.ID, &domain.UpdateCommentRequest{Body: &newBody})
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner for foreign user, got %v", err)
	}
}

func TestCommentService_Delete(t *testing.T) {
	service, posts, _, tombstones := newCommentService()
	ctx := context.Background()

	posts.Create(ctx, &domain.Post{ID: "p1", UserID: "user1"})
	comment, _ := service.Create(ctx, "user1", &domain.CreateCommentRequest{Body: "bye", PostID: "p1"})

	if err := service.Delete(ctx, "user2", comment.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner for foreign user, got %v", err)
	}

	if err := service.Delete(ctx, "user1", comment.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := service.Get(ctx, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected comment to be gone, got %v", err)
	}

	ids, _ := tombstones.ListSince(ctx, domain.KindComment, 0)
	if len(ids) != 1 || ids[0] != comment.ID {
		t.Errorf("expected tombstone for deleted comment, got %v", ids)
	}
}

func TestCommentService_ListByUser(t *testing.T) {
	service, posts, comments, _ := newCommentService()
	ctx := context.Background()

	posts.Create(ctx, &domain.Post{ID: "p1", UserID: "user1"})
	comments.Create(ctx, &domain.Comment{ID: "c1", Body: "mine", PostID: "p1", UserID: "user1"})
	comments.Create(ctx, &domain.Comment{ID: "c2", Body: "theirs", PostID: "p1", UserID: "user2"})

	got, err := service.ListByUser(ctx, "user1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("expected only user1's comment, got %v", got)
	}
}
