package service

import (
	"context"
	"errors"
	"sort"

	"fieldsync-server/internal/domain"
	"fieldsync-server/internal/repository"
)

type mockPostRepo struct {
	posts   map[string]*domain.Post
	failIDs map[string]bool
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{
		posts:   make(map[string]*domain.Post),
		failIDs: make(map[string]bool),
	}
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	if m.failIDs[post.ID] {
		return errors.New("storage failure")
	}
	copied := *post
	m.posts[post.ID] = &copied
	return nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	if m.failIDs[id] {
		return nil, errors.New("storage failure")
	}
	if p, exists := m.posts[id]; exists {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockPostRepo) List(ctx context.Context, q *domain.PostQuery) ([]*domain.Post, int, error) {
	posts := m.all()
	return posts, len(posts), nil
}

func (m *mockPostRepo) FindPinned(ctx context.Context) ([]*domain.Post, error) {
	var pinned []*domain.Post
	for _, p := range m.all() {
		if p.IsPinned {
			pinned = append(pinned, p)
		}
	}
	return pinned, nil
}

func (m *mockPostRepo) Search(ctx context.Context, term string) ([]*domain.Post, error) {
	return m.all(), nil
}

func (m *mockPostRepo) Update(ctx context.Context, post *domain.Post) error {
	if _, exists := m.posts[post.ID]; !exists {
		return repository.ErrNotFound
	}
	copied := *post
	m.posts[post.ID] = &copied
	return nil
}

func (m *mockPostRepo) UpdateIfUnmodified(ctx context.Context, post *domain.Post, expectedUpdatedAt int64) error {
	if m.failIDs[post.ID] {
		return errors.New("storage failure")
	}
	existing, exists := m.posts[post.ID]
	if !exists || existing.UpdatedAt != expectedUpdatedAt {
		return repository.ErrNotFound
	}
	copied := *post
	m.posts[post.ID] = &copied
	return nil
}

func (m *mockPostRepo) TouchLastEvent(ctx context.Context, id string, at int64) error {
	if p, exists := m.posts[id]; exists {
		p.LastEventAt = at
		return nil
	}
	return repository.ErrNotFound
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	if m.failIDs[id] {
		return errors.New("storage failure")
	}
	if _, exists := m.posts[id]; !exists {
		return repository.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepo) ListChangedSince(ctx context.Context, since int64) ([]*domain.Post, error) {
	var changed []*domain.Post
	for _, p := range m.all() {
		if p.CreatedAt >= since || p.UpdatedAt >= since {
			changed = append(changed, p)
		}
	}
	return changed, nil
}

func (m *mockPostRepo) all() []*domain.Post {
	var posts []*domain.Post
	for _, p := range m.posts {
		copied := *p
		posts = append(posts, &copied)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts
}

type mockCommentRepo struct {
	comments map[string]*domain.Comment
	failIDs  map[string]bool
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{
		comments: make(map[string]*domain.Comment),
		failIDs:  make(map[string]bool),
	}
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	if m.failIDs[comment.ID] {
		return errors.New("storage failure")
	}
	copied := *comment
	m.comments[comment.ID] = &copied
	return nil
}

func (m *mockCommentRepo) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	if m.failIDs[id] {
		return nil, errors.New("storage failure")
	}
	if c, exists := m.comments[id]; exists {
		copied := *c
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockCommentRepo) List(ctx context.Context) ([]*domain.Comment, error) {
	return m.all(), nil
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	for _, c := range m.all() {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

func (m *mockCommentRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	for _, c := range m.all() {
		if c.UserID == userID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

func (m *mockCommentRepo) Update(ctx context.Context, comment *domain.Comment) error {
	if _, exists := m.comments[comment.ID]; !exists {
		return repository.ErrNotFound
	}
	copied := *comment
	m.comments[comment.ID] = &copied
	return nil
}

func (m *mockCommentRepo) UpdateIfUnmodified(ctx context.Context, comment *domain.Comment, expectedUpdatedAt int64) error {
	if m.failIDs[comment.ID] {
		return errors.New("storage failure")
	}
	existing, exists := m.comments[comment.ID]
	if !exists || existing.UpdatedAt != expectedUpdatedAt {
		return repository.ErrNotFound
	}
	copied := *comment
	m.comments[comment.ID] = &copied
	return nil
}

func (m *mockCommentRepo) Delete(ctx context.Context, id string) error {
	if m.failIDs[id] {
		return errors.New("storage failure")
	}
	if _, exists := m.comments[id]; !exists {
		return repository.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *mockCommentRepo) ListChangedSince(ctx context.Context, since int64) ([]*domain.Comment, error) {
	var changed []*domain.Comment
	for _, c := range m.all() {
		if c.CreatedAt >= since || c.UpdatedAt >= since {
			changed = append(changed, c)
		}
	}
	return changed, nil
}

func (m *mockCommentRepo) all() []*domain.Comment {
	var comments []*domain.Comment
	for _, c := range m.comments {
		copied := *c
		comments = append(comments, &copied)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments
}

type tombstoneKey struct {
	kind domain.EntityKind
	id   string
}

type mockTombstoneRepo struct {
	deleted map[tombstoneKey]int64
}

func newMockTombstoneRepo() *mockTombstoneRepo {
	return &mockTombstoneRepo{deleted: make(map[tombstoneKey]int64)}
}

func (m *mockTombstoneRepo) Record(ctx context.Context, kind domain.EntityKind, id string, deletedAt int64) error {
	m.deleted[tombstoneKey{kind, id}] = deletedAt
	return nil
}

func (m *mockTombstoneRepo) Clear(ctx context.Context, kind domain.EntityKind, id string) error {
	delete(m.deleted, tombstoneKey{kind, id})
	return nil
}

func (m *mockTombstoneRepo) ListSince(ctx context.Context, kind domain.EntityKind, since int64) ([]string, error) {
	var ids []string
	for key, at := range m.deleted {
		if key.kind == kind && at >= since {
			ids = append(ids, key.id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type mockSyncStateRepo struct {
	states map[string]*domain.SyncState
}

func newMockSyncStateRepo() *mockSyncStateRepo {
	return &mockSyncStateRepo{states: make(map[string]*domain.SyncState)}
}

func (m *mockSyncStateRepo) Save(ctx context.Context, userID string, state *domain.SyncState) error {
	copied := *state
	m.states[userID] = &copied
	return nil
}

func (m *mockSyncStateRepo) Get(ctx context.Context, userID string) (*domain.SyncState, error) {
	if s, exists := m.states[userID]; exists {
		copied := *s
		return &copied, nil
	}
	return &domain.SyncState{Status: domain.SyncStatusSynced}, nil
}
