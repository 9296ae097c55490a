// Package kafka publishes editorial lifecycle events to a Kafka topic.
//
// Every event is a JSON message keyed by the post id, so the events of one
// post land on one partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// Event types
const (
	EventPostCreated          = "post.created"
	EventPostUpdated          = "post.updated"
	EventPostStatusChanged    = "post.status_changed"
	EventPostDeleted          = "post.deleted"
	EventCommentCreated       = "comment.created"
	EventCommentStatusChanged = "comment.status_changed"
	EventCommentDeleted       = "comment.deleted"
)

// Event is the message payload
type Event struct {
	EventID    string     `json:"event_id"`
	Type       string     `json:"type"`
	Timestamp  time.Time  `json:"timestamp"`
	PostID     uuid.UUID  `json:"post_id,omitempty"`
	CommentID  *uuid.UUID `json:"comment_id,omitempty"`
	Slug       string     `json:"slug,omitempty"`
	Status     string     `json:"status,omitempty"`
	FromStatus string     `json:"from_status,omitempty"`
}

// Config configures the sink
type Config struct {
	Brokers []string
	Topic   string
	// WriteTimeout bounds a single publish. Defaults to 5s.
	WriteTimeout time.Duration
}

// messageWriter is the part of *kafka.Writer the sink uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sink is an editorial.EventSink backed by a Kafka writer
type Sink struct {
	writer  messageWriter
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

var _ editorial.EventSink = (*Sink)(nil)

// New creates a sink writing to cfg.Topic on cfg.Brokers
func New(cfg Config, logger *slog.Logger) (*Sink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newSink(writer, cfg.WriteTimeout, logger), nil
}

func newSink(writer messageWriter, timeout time.Duration, logger *slog.Logger) *Sink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{writer: writer, timeout: timeout, logger: logger, now: time.Now}
}

// Close flushes pending messages and closes the writer
func (s *Sink) Close() error {
	return s.writer.Close()
}

func (s *Sink) publish(ctx context.Context, event Event) error {
	event.EventID = uuid.NewString()
	event.Timestamp = s.now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PostID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	s.logger.Debug("published event", "type", event.Type, "post_id", event.PostID)
	return nil
}

func (s *Sink) PostCreated(ctx context.Context, post *editorial.Post) error {
	return s.publish(ctx, Event{Type: EventPostCreated, PostID: post.ID, Slug: post.Slug, Status: string(post.Status)})
}

func (s *Sink) PostUpdated(ctx context.Context, post *editorial.Post) error {
	return s.publish(ctx, Event{Type: EventPostUpdated, PostID: post.ID, Slug: post.Slug, Status: string(post.Status)})
}

func (s *Sink) PostStatusChanged(ctx context.Context, post *editorial.Post, from editorial.PostStatus) error {
	return s.publish(ctx, Event{
		Type:       EventPostStatusChanged,
		PostID:     post.ID,
		Slug:       post.Slug,
		Status:     string(post.Status),
		FromStatus: string(from),
	})
}

func (s *Sink) PostDeleted(ctx context.Context, postID uuid.UUID) error {
	return s.publish(ctx, Event{Type: EventPostDeleted, PostID: postID})
}

func (s *Sink) CommentCreated(ctx context.Context, comment *editorial.Comment) error {
	id := comment.ID
	return s.publish(ctx, Event{Type: EventCommentCreated, PostID: comment.PostID, CommentID: &id, Status: string(comment.Status)})
}

func (s *Sink) CommentStatusChanged(ctx context.Context, comment *editorial.Comment, from editorial.CommentStatus) error {
	id := comment.ID
	return s.publish(ctx, Event{
		Type:       EventCommentStatusChanged,
		PostID:     comment.PostID,
		CommentID:  &id,
		Status:     string(comment.Status),
		FromStatus: string(from),
	})
}

// CommentDeleted carries no post id; the message key is the nil uuid
func (s *Sink) CommentDeleted(ctx context.Context, commentID uuid.UUID) error {
	return s.publish(ctx, Event{Type: EventCommentDeleted, CommentID: &commentID})
}
