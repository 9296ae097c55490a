package editorial

import (
	"errors"
	"testing"
	"time"
)

// TestCanTransitionPost tests the post state machine
func TestCanTransitionPost(t *testing.T) {
	tests := []struct {
		name      string
		from      PostStatus
		to        PostStatus
		wantOK    bool
		wantError error
	}{
		{"allow: draft to published", PostStatusDraft, PostStatusPublished, true, nil},
		{"allow: draft to scheduled", PostStatusDraft, PostStatusScheduled, true, nil},
		{"allow: scheduled to published", PostStatusScheduled, PostStatusPublished, true, nil},
		{"allow: scheduled to draft", PostStatusScheduled, PostStatusDraft, true, nil},
		{"allow: published to archived", PostStatusPublished, PostStatusArchived, true, nil},
		{"allow: published to draft", PostStatusPublished, PostStatusDraft, true, nil},
		{"allow: archived to draft", PostStatusArchived, PostStatusDraft, true, nil},
		{"allow: same state", PostStatusPublished, PostStatusPublished, true, nil},
		{"deny: draft to archived", PostStatusDraft, PostStatusArchived, false, ErrInvalidTransition},
		{"deny: scheduled to archived", PostStatusScheduled, PostStatusArchived, false, ErrInvalidTransition},
		{"deny: published to scheduled", PostStatusPublished, PostStatusScheduled, false, ErrInvalidTransition},
		{"deny: archived to published", PostStatusArchived, PostStatusPublished, false, ErrInvalidTransition},
		{"deny: archived to scheduled", PostStatusArchived, PostStatusScheduled, false, ErrInvalidTransition},
		{"deny: unknown target", PostStatusDraft, PostStatus("live"), false, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := canTransitionPost(tt.from, tt.to)
			if ok != tt.wantOK {
				t.Errorf("canTransitionPost(%s, %s) ok = %v, want %v", tt.from, tt.to, ok, tt.wantOK)
			}
			if tt.wantError == nil && err != nil {
				t.Errorf("canTransitionPost(%s, %s) unexpected error: %v", tt.from, tt.to, err)
			}
			if tt.wantError != nil && !errors.Is(err, tt.wantError) {
				t.Errorf("canTransitionPost(%s, %s) error = %v, want %v", tt.from, tt.to, err, tt.wantError)
			}
		})
	}
}

func TestInvalidTransitionIsConflict(t *testing.T) {
	_, err := canTransitionPost(PostStatusDraft, PostStatusArchived)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected conflict kind, got %v", err)
	}
}

func TestCanCreateWithStatus(t *testing.T) {
	for _, s := range []PostStatus{PostStatusDraft, PostStatusPublished, PostStatusScheduled} {
		if ok, err := canCreateWithStatus(s); !ok || err != nil {
			t.Errorf("canCreateWithStatus(%s) = %v, %v", s, ok, err)
		}
	}
	if _, err := canCreateWithStatus(PostStatusArchived); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input for archived, got %v", err)
	}
}

func TestValidateSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	if err := validateSchedule(nil, now); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing time: expected invalid input, got %v", err)
	}
	if err := validateSchedule(&past, now); !errors.Is(err, ErrScheduleInPast) {
		t.Errorf("past time: expected ErrScheduleInPast, got %v", err)
	}
	if err := validateSchedule(&now, now); !errors.Is(err, ErrScheduleInPast) {
		t.Errorf("current time: expected ErrScheduleInPast, got %v", err)
	}
	if err := validateSchedule(&future, now); err != nil {
		t.Errorf("future time: unexpected error %v", err)
	}
}

func TestValidateCommentStatus(t *testing.T) {
	for _, s := range []CommentStatus{CommentStatusPending, CommentStatusApproved, CommentStatusSpam, CommentStatusTrash} {
		if err := validateCommentStatus(s); err != nil {
			t.Errorf("validateCommentStatus(%s) unexpected error: %v", s, err)
		}
	}
	if err := validateCommentStatus("deleted"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
