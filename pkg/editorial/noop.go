package editorial

import (
	"context"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) PostCreated(ctx context.Context, post *Post) error { return nil }

func (n *NoopEventSink) PostUpdated(ctx context.Context, post *Post) error { return nil }

func (n *NoopEventSink) PostStatusChanged(ctx context.Context, post *Post, from PostStatus) error {
	return nil
}

func (n *NoopEventSink) PostDeleted(ctx context.Context, postID uuid.UUID) error { return nil }

func (n *NoopEventSink) CommentCreated(ctx context.Context, comment *Comment) error { return nil }

func (n *NoopEventSink) CommentStatusChanged(ctx context.Context, comment *Comment, from CommentStatus) error {
	return nil
}

func (n *NoopEventSink) CommentDeleted(ctx context.Context, commentID uuid.UUID) error { return nil }

// RepositoryViewCounter writes every view straight to the repository
type RepositoryViewCounter struct {
	repo PostRepository
}

// NewRepositoryViewCounter creates a counter that increments the stored view count per view
func NewRepositoryViewCounter(repo PostRepository) ViewCounter {
	return &RepositoryViewCounter{repo: repo}
}

// Increment adds one view to the stored count
func (c *RepositoryViewCounter) Increment(ctx context.Context, post *Post) (int64, error) {
	return c.repo.AddViewCount(ctx, post.ID, 1)
}
