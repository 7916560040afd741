package service

import (
	"context"
	"errors"
	"log"
	"time"

	"fieldsync-server/internal/domain"
	"fieldsync-server/internal/repository"
	"fieldsync-server/internal/websocket"
)

// SyncService orchestrates push/pull exchanges with offline-first clients.
// It holds no state across calls; the record store is re-read on every
// operation. Records the store rejects are logged and omitted from the
// response, never reported as request failures, so one bad record cannot
// abort a batch.
type SyncService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	tombstoneRepo repository.TombstoneRepository
	stateRepo     repository.SyncStateRepository
	wsManager     *websocket.Manager
	now           func() int64
}

func NewSyncService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	tombstoneRepo repository.TombstoneRepository,
	stateRepo repository.SyncStateRepository,
	wsManager *websocket.Manager,
) *SyncService {
	return &SyncService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		tombstoneRepo: tombstoneRepo,
		stateRepo:     stateRepo,
		wsManager:     wsManager,
		now:           func() int64 { return time.Now().UnixMilli() },
	}
}

// Push applies the client's change sets for both collections and returns the
// subset the server accepted. The two collections are processed
// independently; pending counts the records the client must resubmit.
func (s *SyncService) Push(ctx context.Context, userID string, req *domain.SyncRequest) (*domain.SyncResponse, error) {
	start := time.Now()
	log.Printf("sync push started for user %s", userID)

	postChanges, postPending := s.processPostChanges(ctx, &req.Changes.Posts)
	commentChanges, commentPending := s.processCommentChanges(ctx, &req.Changes.Comments)

	resp := &domain.SyncResponse{
		Changes: domain.SyncChanges{
			Posts:    *postChanges,
			Comments: *commentChanges,
		},
		Timestamp: s.now(),
	}

	pending := postPending + commentPending
	s.saveState(ctx, userID, &domain.SyncState{
		LastSyncAt:     resp.Timestamp,
		Status:         statusForPending(pending),
		PendingChanges: pending,
	})

	if s.wsManager != nil && acceptedCount(resp) > 0 {
		s.notifyDevices(userID, resp.Timestamp)
	}

	log.Printf("sync push completed for user %s in %v (pending %d)", userID, time.Since(start), pending)
	return resp, nil
}

// Pull returns everything that changed at or after the client's watermark,
// partitioned into created/updated plus tombstoned deletions per collection.
func (s *SyncService) Pull(ctx context.Context, userID string, since int64) (*domain.SyncResponse, error) {
	start := time.Now()
	log.Printf("sync pull started for user %s since %d", userID, since)

	changes, err := s.collectChanges(ctx, since)
	if err != nil {
		s.recordFailure(ctx, userID, err)
		return nil, err
	}

	resp := &domain.SyncResponse{
		Changes:   *changes,
		Timestamp: s.now(),
	}

	s.touchState(ctx, userID, resp.Timestamp)

	log.Printf("sync pull completed for user %s in %v", userID, time.Since(start))
	return resp, nil
}

// ChangesSince is the read-only variant of Pull: same query and partition,
// no sync-state bookkeeping.
func (s *SyncService) ChangesSince(ctx context.Context, since int64) (*domain.SyncResponse, error) {
	changes, err := s.collectChanges(ctx, since)
	if err != nil {
		return nil, err
	}

	return &domain.SyncResponse{
		Changes:   *changes,
		Timestamp: s.now(),
	}, nil
}

// Status reports the caller's sync snapshot. A user who has never synced
// gets a zero "synced" snapshot; a broken state store degrades to the same
// default rather than failing the request.
func (s *SyncService) Status(ctx context.Context, userID string) *domain.SyncStatusResponse {
	state, err := s.stateRepo.Get(ctx, userID)
	if err != nil {
		log.Printf("sync: failed to load sync state for user %s: %v", userID, err)
		state = &domain.SyncState{Status: domain.SyncStatusSynced}
	}

	return &domain.SyncStatusResponse{
		LastSync:       state.LastSyncAt,
		Status:         state.Status,
		PendingChanges: state.PendingChanges,
		LastError:      state.LastError,
	}
}

// processPostChanges applies one post change set in fixed order: creations,
// then updates, then deletions. Returns the accepted subset and the number of
// records dropped by storage failures (stale updates discarded by conflict
// resolution are not pending; the client learns the server copy on its next
// pull).
func (s *SyncService) processPostChanges(ctx context.Context, changes *domain.PostChangeSet) (*domain.PostChangeSet, int) {
	processed := emptyPostChangeSet()
	pending := 0

	for _, post := range changes.Created {
		stored := *post
		now := s.now()
		stored.CreatedAt = now
		stored.UpdatedAt = now
		if stored.LastEventAt == 0 {
			stored.LastEventAt = now
		}

		if err := s.postRepo.Create(ctx, &stored); err != nil {
			log.Printf("sync: failed to create post %s: %v", post.ID, err)
			pending++
			continue
		}
		if err := s.tombstoneRepo.Clear(ctx, domain.KindPost, stored.ID); err != nil {
			log.Printf("sync: failed to clear tombstone for post %s: %v", stored.ID, err)
		}
		processed.Created = append(processed.Created, &stored)
	}

	for _, post := range changes.Updated {
		existing, err := s.postRepo.FindByID(ctx, post.ID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Printf("sync: failed to load post %s: %v", post.ID, err)
				pending++
			}
			// an id that no longer exists is not resurrected by an update
			continue
		}

		conflict := resolvePostConflict(existing, post)
		if conflict.Resolution == domain.ResolutionServerWins {
			continue
		}

		merged := *post
		merged.CreatedAt = existing.CreatedAt
		merged.UpdatedAt = s.now()
		if merged.LastEventAt == 0 {
			merged.LastEventAt = existing.LastEventAt
		}

		if err := s.postRepo.UpdateIfUnmodified(ctx, &merged, existing.UpdatedAt); err != nil {
			log.Printf("sync: failed to update post %s: %v", post.ID, err)
			pending++
			continue
		}
		processed.Updated = append(processed.Updated, &merged)
	}

	for _, id := range changes.Deleted {
		if _, err := s.postRepo.FindByID(ctx, id); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Printf("sync: failed to load post %s: %v", id, err)
				pending++
			}
			// deleting a missing id is a no-op
			continue
		}

		if err := s.postRepo.Delete(ctx, id); err != nil {
			log.Printf("sync: failed to delete post %s: %v", id, err)
			pending++
			continue
		}
		if err := s.tombstoneRepo.Record(ctx, domain.KindPost, id, s.now()); err != nil {
			log.Printf("sync: failed to record tombstone for post %s: %v", id, err)
		}
		processed.Deleted = append(processed.Deleted, id)
	}

	return processed, pending
}

func (s *SyncService) processCommentChanges(ctx context.Context, changes *domain.CommentChangeSet) (*domain.CommentChangeSet, int) {
	processed := emptyCommentChangeSet()
	pending := 0

	for _, comment := range changes.Created {
		stored := *comment
		now := s.now()
		stored.CreatedAt = now
		stored.UpdatedAt = now

		if err := s.commentRepo.Create(ctx, &stored); err != nil {
			log.Printf("sync: failed to create comment %s: %v", comment.ID, err)
			pending++
			continue
		}
		if err := s.tombstoneRepo.Clear(ctx, domain.KindComment, stored.ID); err != nil {
			log.Printf("sync: failed to clear tombstone for comment %s: %v", stored.ID, err)
		}
		// a new comment counts as activity on its post
		if err := s.postRepo.TouchLastEvent(ctx, stored.PostID, now); err != nil {
			log.Printf("sync: failed to touch post %s for comment %s: %v", stored.PostID, stored.ID, err)
		}
		processed.Created = append(processed.Created, &stored)
	}

	for _, comment := range changes.Updated {
		existing, err := s.commentRepo.FindByID(ctx, comment.ID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Printf("sync: failed to load comment %s: %v", comment.ID, err)
				pending++
			}
			continue
		}

		conflict := resolveCommentConflict(existing, comment)
		if conflict.Resolution == domain.ResolutionServerWins {
			continue
		}

		merged := *comment
		merged.CreatedAt = existing.CreatedAt
		merged.UpdatedAt = s.now()

		if err := s.commentRepo.UpdateIfUnmodified(ctx, &merged, existing.UpdatedAt); err != nil {
			log.Printf("sync: failed to update comment %s: %v", comment.ID, err)
			pending++
			continue
		}
		processed.Updated = append(processed.Updated, &merged)
	}

	for _, id := range changes.Deleted {
		if _, err := s.commentRepo.FindByID(ctx, id); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Printf("sync: failed to load comment %s: %v", id, err)
				pending++
			}
			continue
		}

		if err := s.commentRepo.Delete(ctx, id); err != nil {
			log.Printf("sync: failed to delete comment %s: %v", id, err)
			pending++
			continue
		}
		if err := s.tombstoneRepo.Record(ctx, domain.KindComment, id, s.now()); err != nil {
			log.Printf("sync: failed to record tombstone for comment %s: %v", id, err)
		}
		processed.Deleted = append(processed.Deleted, id)
	}

	return processed, pending
}

// collectChanges queries both collections for records created or updated at
// or after the watermark and partitions each result: created when the record
// is new to the client, updated when it existed before the watermark. The
// two buckets are disjoint by construction.
func (s *SyncService) collectChanges(ctx context.Context, since int64) (*domain.SyncChanges, error) {
	posts, err := s.postRepo.ListChangedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListChangedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	deletedPosts, err := s.tombstoneRepo.ListSince(ctx, domain.KindPost, since)
	if err != nil {
		return nil, err
	}
	deletedComments, err := s.tombstoneRepo.ListSince(ctx, domain.KindComment, since)
	if err != nil {
		return nil, err
	}

	postChanges := emptyPostChangeSet()
	for _, post := range posts {
		if post.CreatedAt >= since {
			postChanges.Created = append(postChanges.Created, post)
		} else {
			postChanges.Updated = append(postChanges.Updated, post)
		}
	}
	postChanges.Deleted = append(postChanges.Deleted, deletedPosts...)

	commentChanges := emptyCommentChangeSet()
	for _, comment := range comments {
		if comment.CreatedAt >= since {
			commentChanges.Created = append(commentChanges.Created, comment)
		} else {
			commentChanges.Updated = append(commentChanges.Updated, comment)
		}
	}
	commentChanges.Deleted = append(commentChanges.Deleted, deletedComments...)

	return &domain.SyncChanges{
		Posts:    *postChanges,
		Comments: *commentChanges,
	}, nil
}

func (s *SyncService) notifyDevices(userID string, timestamp int64) {
	msg, err := websocket.NewMessage(websocket.TypeChangesAvailable, &websocket.ChangesAvailablePayload{
		Timestamp: timestamp,
	})
	if err != nil {
		log.Printf("sync: failed to build notification for user %s: %v", userID, err)
		return
	}
	if err := s.wsManager.BroadcastToUser(userID, msg); err != nil {
		log.Printf("sync: failed to notify devices of user %s: %v", userID, err)
	}
}

// saveState persists the user's sync snapshot; state bookkeeping must never
// fail a sync, so errors are only logged.
func (s *SyncService) saveState(ctx context.Context, userID string, state *domain.SyncState) {
	if err := s.stateRepo.Save(ctx, userID, state); err != nil {
		log.Printf("sync: failed to save sync state for user %s: %v", userID, err)
	}
}

func (s *SyncService) touchState(ctx context.Context, userID string, at int64) {
	state, err := s.stateRepo.Get(ctx, userID)
	if err != nil {
		log.Printf("sync: failed to load sync state for user %s: %v", userID, err)
		state = &domain.SyncState{}
	}
	state.LastSyncAt = at
	state.Status = statusForPending(state.PendingChanges)
	state.LastError = ""
	s.saveState(ctx, userID, state)
}

func (s *SyncService) recordFailure(ctx context.Context, userID string, failure error) {
	state, err := s.stateRepo.Get(ctx, userID)
	if err != nil {
		log.Printf("sync: failed to load sync state for user %s: %v", userID, err)
		state = &domain.SyncState{}
	}
	state.Status = domain.SyncStatusError
	state.LastError = failure.Error()
	s.saveState(ctx, userID, state)
}

func statusForPending(pending int) string {
	if pending > 0 {
		return domain.SyncStatusPending
	}
	return domain.SyncStatusSynced
}

func acceptedCount(resp *domain.SyncResponse) int {
	return len(resp.Changes.Posts.Created) + len(resp.Changes.Posts.Updated) + len(resp.Changes.Posts.Deleted) +
		len(resp.Changes.Comments.Created) + len(resp.Changes.Comments.Updated) + len(resp.Changes.Comments.Deleted)
}

func emptyPostChangeSet() *domain.PostChangeSet {
	return &domain.PostChangeSet{
		Created: []*domain.Post{},
		Updated: []*domain.Post{},
		Deleted: []string{},
	}
}

func emptyCommentChangeSet() *domain.CommentChangeSet {
	return &domain.CommentChangeSet{
		Created: []*domain.Comment{},
		Updated: []*domain.Comment{},
		Deleted: []string{},
	}
}
