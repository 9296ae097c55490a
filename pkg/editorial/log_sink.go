package editorial

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogEventSink writes lifecycle events to a structured logger
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink that logs every event at info level
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger.With("component", "events")}
}

func (l *LogEventSink) PostCreated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post created", "post_id", post.ID, "slug", post.Slug, "status", post.Status)
	return nil
}

func (l *LogEventSink) PostUpdated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post updated", "post_id", post.ID, "slug", post.Slug)
	return nil
}

func (l *LogEventSink) PostStatusChanged(ctx context.Context, post *Post, from PostStatus) error {
	l.logger.InfoContext(ctx, "post status changed", "post_id", post.ID, "from", from, "to", post.Status)
	return nil
}

func (l *LogEventSink) PostDeleted(ctx context.Context, postID uuid.UUID) error {
	l.logger.InfoContext(ctx, "post deleted", "post_id", postID)
	return nil
}

func (l *LogEventSink) CommentCreated(ctx context.Context, comment *Comment) error {
	l.logger.InfoContext(ctx, "comment created", "comment_id", comment.ID, "post_id", comment.PostID)
	return nil
}

func (l *LogEventSink) CommentStatusChanged(ctx context.Context, comment *Comment, from CommentStatus) error {
	l.logger.InfoContext(ctx, "comment status changed", "comment_id", comment.ID, "from", from, "to", comment.Status)
	return nil
}

func (l *LogEventSink) CommentDeleted(ctx context.Context, commentID uuid.UUID) error {
	l.logger.InfoContext(ctx, "comment deleted", "comment_id", commentID)
	return nil
}
