package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-editorial/pkg/editorial"
	"github.com/tendant/simple-editorial/pkg/editorial/repo/memory"
	"github.com/tendant/simple-editorial/pkg/editorial/tasks"
)

type countingFlusher struct {
	calls int
	err   error
}

func (f *countingFlusher) Flush(ctx context.Context) (int, error) {
	f.calls++
	return 1, f.err
}

func TestScheduler_AddJob(t *testing.T) {
	s := tasks.New(nil)
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, s.AddJob(tasks.JobPublishScheduled, tasks.DefaultPublishSchedule, noop))
	assert.Error(t, s.AddJob(tasks.JobPublishScheduled, "@every 5m", noop), "duplicate names are rejected")
	assert.Error(t, s.AddJob("broken", "not a schedule", noop))
	require.NoError(t, s.AddJob(tasks.JobFlushViewCounts, "", noop))

	assert.Equal(t, []string{tasks.JobPublishScheduled}, s.Jobs())
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s := tasks.New(nil)
	require.NoError(t, s.AddJob(tasks.JobFlushViewCounts, tasks.DefaultFlushSchedule, func(ctx context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestPublishScheduled(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := now

	svc, err := editorial.New(
		editorial.WithRepository(memory.New()),
		editorial.WithClock(func() time.Time { return clock }),
	)
	require.NoError(t, err)

	author, err := svc.CreateProfile(ctx, editorial.CreateProfileRequest{Email: "a@example.com", DisplayName: "A", Role: editorial.RoleAuthor})
	require.NoError(t, err)
	when := now.Add(30 * time.Second)
	post, err := svc.CreatePost(ctx, editorial.Principal{ID: author.ID}, editorial.CreatePostRequest{
		Title: "Kickoff", Content: "body", Status: editorial.PostStatusScheduled, ScheduledFor: &when,
	})
	require.NoError(t, err)

	job := tasks.PublishScheduled(svc, func() time.Time { return clock }, nil)
	require.NoError(t, job(ctx))
	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, editorial.PostStatusScheduled, got.Status)

	clock = now.Add(time.Minute)
	require.NoError(t, job(ctx))
	got, err = svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, editorial.PostStatusPublished, got.Status)
}

func TestFlushViewCounts(t *testing.T) {
	f := &countingFlusher{}
	job := tasks.FlushViewCounts(f)
	require.NoError(t, job(context.Background()))
	assert.Equal(t, 1, f.calls)

	f.err = errors.New("redis down")
	assert.Error(t, job(context.Background()))
}
