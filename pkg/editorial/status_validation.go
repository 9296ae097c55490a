package editorial

import (
	"fmt"
	"time"
)

// canTransitionPost checks whether a post may move from one status to another.
// Moving into the current status is allowed and treated as a no-op by callers.
func canTransitionPost(from, to PostStatus) (bool, error) {
	if !to.IsValid() {
		return false, fmt.Errorf("%w: unknown post status %s", ErrInvalidStatus, to)
	}
	if from == to {
		return true, nil
	}
	switch from {
	case PostStatusDraft:
		if to == PostStatusPublished || to == PostStatusScheduled {
			return true, nil
		}
	case PostStatusScheduled:
		if to == PostStatusPublished || to == PostStatusDraft {
			return true, nil
		}
	case PostStatusPublished:
		if to == PostStatusArchived || to == PostStatusDraft {
			return true, nil
		}
	case PostStatusArchived:
		if to == PostStatusDraft {
			return true, nil
		}
	default:
		return false, fmt.Errorf("%w: unknown post status %s", ErrInvalidStatus, from)
	}
	return false, fmt.Errorf("%w: cannot move post from %s to %s", ErrInvalidTransition, from, to)
}

// canCreateWithStatus checks the status a post may be created in
func canCreateWithStatus(status PostStatus) (bool, error) {
	switch status {
	case PostStatusDraft, PostStatusPublished, PostStatusScheduled:
		return true, nil
	case PostStatusArchived:
		return false, invalidInput("a post cannot be created archived")
	default:
		return false, fmt.Errorf("%w: unknown post status %s", ErrInvalidStatus, status)
	}
}

// validateSchedule checks that a post entering the scheduled state carries a future time
func validateSchedule(scheduledFor *time.Time, now time.Time) error {
	if scheduledFor == nil {
		return invalidInput("scheduled_for is required to schedule a post")
	}
	if !scheduledFor.After(now) {
		return fmt.Errorf("%w (scheduled_for: %s)", ErrScheduleInPast, scheduledFor.UTC().Format(time.RFC3339))
	}
	return nil
}

// validateCommentStatus checks a moderation target status. Every known status is
// reachable from every other one.
func validateCommentStatus(status CommentStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown comment status %s", ErrInvalidStatus, status)
	}
	return nil
}
