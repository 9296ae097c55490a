package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func decode(t *testing.T, msg kafka.Message) Event {
	t.Helper()
	var event Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	return event
}

func TestNew_RequiresBrokersAndTopic(t *testing.T) {
	_, err := New(Config{Topic: "editorial"}, nil)
	assert.Error(t, err)

	_, err = New(Config{Brokers: []string{"localhost:9092"}}, nil)
	assert.Error(t, err)

	sink, err := New(Config{Brokers: []string{"localhost:9092"}, Topic: "editorial"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, sink.timeout)
}

func TestSink_PostStatusChanged(t *testing.T) {
	writer := &fakeWriter{}
	sink := newSink(writer, time.Second, nil)
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return fixed }

	post := &editorial.Post{ID: uuid.New(), Slug: "derby-day-recap", Status: editorial.PostStatusPublished}
	require.NoError(t, sink.PostStatusChanged(context.Background(), post, editorial.PostStatusScheduled))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, post.ID.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, EventPostStatusChanged, string(msg.Headers[0].Value))

	event := decode(t, msg)
	assert.Equal(t, EventPostStatusChanged, event.Type)
	assert.Equal(t, "published", event.Status)
	assert.Equal(t, "scheduled", event.FromStatus)
	assert.Equal(t, "derby-day-recap", event.Slug)
	assert.True(t, event.Timestamp.Equal(fixed))
	_, err := uuid.Parse(event.EventID)
	assert.NoError(t, err)
}

func TestSink_CommentEvents(t *testing.T) {
	writer := &fakeWriter{}
	sink := newSink(writer, 0, nil)
	ctx := context.Background()

	comment := &editorial.Comment{ID: uuid.New(), PostID: uuid.New(), Status: editorial.CommentStatusPending}
	require.NoError(t, sink.CommentCreated(ctx, comment))
	require.NoError(t, sink.CommentDeleted(ctx, comment.ID))

	require.Len(t, writer.messages, 2)
	created := decode(t, writer.messages[0])
	assert.Equal(t, comment.PostID, created.PostID)
	require.NotNil(t, created.CommentID)
	assert.Equal(t, comment.ID, *created.CommentID)
	assert.Equal(t, comment.PostID.String(), string(writer.messages[0].Key))

	deleted := decode(t, writer.messages[1])
	assert.Equal(t, EventCommentDeleted, deleted.Type)
	assert.Equal(t, uuid.Nil.String(), string(writer.messages[1].Key))
}

func TestSink_WriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	sink := newSink(writer, time.Second, nil)

	err := sink.PostDeleted(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post.deleted")

	require.NoError(t, sink.Close())
	assert.True(t, writer.closed)
}
