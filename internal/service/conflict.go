package service

import "fieldsync-server/internal/domain"

// resolvePostConflict decides which side of a concurrent edit is
// authoritative: the server copy wins only when the client's UpdatedAt is
// strictly older. The decision is advisory; nothing is written here.
func resolvePostConflict(server, client *domain.Post) *domain.PostConflict {
	resolution := domain.ResolutionLocalWins
	if client.UpdatedAt < server.UpdatedAt {
		resolution = domain.ResolutionServerWins
	}

	return &domain.PostConflict{
		Kind:       domain.KindPost,
		EntityID:   server.ID,
		Local:      client,
		Server:     server,
		Resolution: resolution,
	}
}

func resolveCommentConflict(server, client *domain.Comment) *domain.CommentConflict {
	resolution := domain.ResolutionLocalWins
	if client.UpdatedAt < server.UpdatedAt {
		resolution = domain.ResolutionServerWins
	}

	return &domain.CommentConflict{
		Kind:       domain.KindComment,
		EntityID:   server.ID,
		Local:      client,
		Server:     server,
		Resolution: resolution,
	}
}
