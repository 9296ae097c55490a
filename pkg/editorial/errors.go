package editorial

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Every error returned by the engine matches exactly one of these with errors.Is.
var (
	// ErrNotFound indicates an id or slug lookup miss
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness collision or an invalid state transition
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates a missing required field or a malformed reference
	ErrInvalidInput = errors.New("invalid input")

	// ErrDependencyFailure indicates the repository or blob store failed
	ErrDependencyFailure = errors.New("dependency failure")
)

// kindError is a specific error that belongs to one of the error kinds
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

var (
	// ErrPostNotFound indicates a post was not found
	ErrPostNotFound = newKindError(ErrNotFound, "post not found")

	// ErrCommentNotFound indicates a comment was not found
	ErrCommentNotFound = newKindError(ErrNotFound, "comment not found")

	// ErrCategoryNotFound indicates a category was not found
	ErrCategoryNotFound = newKindError(ErrNotFound, "category not found")

	// ErrTagNotFound indicates a tag was not found
	ErrTagNotFound = newKindError(ErrNotFound, "tag not found")

	// ErrProfileNotFound indicates a profile was not found
	ErrProfileNotFound = newKindError(ErrNotFound, "profile not found")

	// ErrMediaNotFound indicates a media item was not found
	ErrMediaNotFound = newKindError(ErrNotFound, "media not found")

	// ErrSEOSettingsNotFound indicates a post has no SEO settings
	ErrSEOSettingsNotFound = newKindError(ErrNotFound, "seo settings not found")

	// ErrObjectNotFound indicates a blob store object does not exist
	ErrObjectNotFound = newKindError(ErrNotFound, "object not found")

	// ErrSlugTaken indicates the slug is already used by another record
	ErrSlugTaken = newKindError(ErrConflict, "slug already taken")

	// ErrDuplicate indicates a unique field other than the slug collided
	ErrDuplicate = newKindError(ErrConflict, "duplicate entry")

	// ErrInvalidTransition indicates the requested status change is not allowed
	ErrInvalidTransition = newKindError(ErrConflict, "invalid status transition")

	// ErrSlugUnavailable indicates no free disambiguated slug could be found
	ErrSlugUnavailable = newKindError(ErrConflict, "no free slug available")

	// ErrScheduleInPast indicates a post was scheduled for a time that is not in the future
	ErrScheduleInPast = newKindError(ErrInvalidInput, "scheduled time must be in the future")

	// ErrInvalidReference indicates a referenced record is missing or of the wrong shape
	ErrInvalidReference = newKindError(ErrInvalidInput, "invalid reference")

	// ErrInvalidStatus indicates an unknown status value
	ErrInvalidStatus = newKindError(ErrInvalidInput, "invalid status")
)

// Kind returns the error kind err belongs to, or nil when err is nil.
// Errors of no known kind are reported as ErrDependencyFailure.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict):
		return ErrConflict
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput
	default:
		return ErrDependencyFailure
	}
}

// dependencyError marks a collaborator failure that carries no error kind
type dependencyError struct {
	err error
}

func (e *dependencyError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDependencyFailure, e.err)
}

func (e *dependencyError) Unwrap() []error {
	return []error{ErrDependencyFailure, e.err}
}

// asDependency keeps kinded errors as they are and marks everything else as a
// dependency failure.
func asDependency(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDependencyFailure) {
		return err
	}
	return &dependencyError{err: err}
}

// invalidInput builds an InvalidInput error with a detail message
func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// PostError represents an error related to post operations
type PostError struct {
	PostID uuid.UUID
	Op     string
	Err    error
}

func (e *PostError) Error() string {
	if e.PostID == uuid.Nil {
		return fmt.Sprintf("post operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("post operation %s failed for post %s: %v", e.Op, e.PostID, e.Err)
}

func (e *PostError) Unwrap() error {
	return e.Err
}

// CommentError represents an error related to comment operations
type CommentError struct {
	CommentID uuid.UUID
	Op        string
	Err       error
}

func (e *CommentError) Error() string {
	if e.CommentID == uuid.Nil {
		return fmt.Sprintf("comment operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("comment operation %s failed for comment %s: %v", e.Op, e.CommentID, e.Err)
}

func (e *CommentError) Unwrap() error {
	return e.Err
}

// SyncStep names a relation sync step that runs after the post row is written
type SyncStep string

const (
	SyncStepTags SyncStep = "tags"
	SyncStepSEO  SyncStep = "seo_settings"
)

// SyncError reports a partial failure: the post row was written but a later
// relation sync step failed. The step can be re-issued idempotently through UpdatePost.
type SyncError struct {
	PostID uuid.UUID
	Step   SyncStep
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("post %s saved but %s sync failed: %v", e.PostID, e.Step, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob store operations
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
