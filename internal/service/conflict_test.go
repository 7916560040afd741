package service

import (
	"testing"

	"fieldsync-server/internal/domain"
)

func TestResolvePostConflict(t *testing.T) {
	tests := []struct {
		name     string
		server   int64
		client   int64
		expected domain.Resolution
	}{
		{"client newer", 100, 200, domain.ResolutionLocalWins},
		{"client older", 200, 100, domain.ResolutionServerWins},
		{"equal timestamps", 150, 150, domain.ResolutionLocalWins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &domain.Post{ID: "p1", UpdatedAt: tt.server}
			client := &domain.Post{ID: "p1", UpdatedAt: tt.client}

			conflict := resolvePostConflict(server, client)
			if conflict.Resolution != tt.expected {
				t.Errorf("expected resolution %q, got %q", tt.expected, conflict.Resolution)
			}
			if conflict.EntityID != "p1" {
				t.Errorf("expected entity id p1, got %s", conflict.EntityID)
			}
			if conflict.Kind != domain.KindPost {
				t.Errorf("expected kind %q, got %q", domain.KindPost, conflict.Kind)
			}
		})
	}
}

func TestResolveCommentConflict(t *testing.T) {
	server := &domain.Comment{ID: "c1", UpdatedAt: 500}
	client := &domain.Comment{ID: "c1", UpdatedAt: 400}

	conflict := resolveCommentConflict(server, client)
	if conflict.Resolution != domain.ResolutionServerWins {
		t.Errorf("expected server to win, got %q", conflict.Resolution)
	}
	if conflict.Kind != domain.KindComment {
		t.Errorf("expected kind %q, got %q", domain.KindComment, conflict.Kind)
	}
}
