package editorial

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

func (s *service) CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	req.AuthorName = strings.TrimSpace(req.AuthorName)
	req.AuthorEmail = strings.TrimSpace(req.AuthorEmail)
	req.Content = strings.TrimSpace(req.Content)
	if err := validateRequest(req); err != nil {
		return nil, &CommentError{Op: "create", Err: err}
	}
	if req.PostID == uuid.Nil {
		return nil, &CommentError{Op: "create", Err: invalidInput("post_id is required")}
	}

	if _, err := s.repo.GetPost(ctx, req.PostID); err != nil {
		if errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("%w: post %s does not exist", ErrInvalidReference, req.PostID)
		}
		return nil, &CommentError{Op: "create", Err: asDependency(err)}
	}

	if req.ParentID != nil {
		if err := s.checkParent(ctx, req.PostID, *req.ParentID); err != nil {
			return nil, &CommentError{Op: "create", Err: err}
		}
	}

	now := s.now()
	comment := &Comment{
		ID:          uuid.New(),
		PostID:      req.PostID,
		ParentID:    req.ParentID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Content:     req.Content,
		Status:      CommentStatusPending,
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, &CommentError{CommentID: comment.ID, Op: "create", Err: asDependency(err)}
	}
	s.notify("comment_created", func() error { return s.eventSink.CommentCreated(ctx, comment) })

	return comment, nil
}

// checkParent enforces one level of nesting: the parent is a root comment of the same post
func (s *service) checkParent(ctx context.Context, postID, parentID uuid.UUID) error {
	parent, err := s.repo.GetComment(ctx, parentID)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: parent comment %s does not exist", ErrInvalidReference, parentID)
	}
	if err != nil {
		return asDependency(err)
	}
	if parent.PostID != postID {
		return fmt.Errorf("%w: parent comment %s belongs to another post", ErrInvalidReference, parentID)
	}
	if !parent.IsRoot() {
		return fmt.Errorf("%w: comment %s is a reply and cannot be replied to", ErrInvalidReference, parentID)
	}
	return nil
}

func (s *service) GetComment(ctx context.Context, id uuid.UUID) (*Comment, error) {
	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, &CommentError{CommentID: id, Op: "get", Err: asDependency(err)}
	}
	return comment, nil
}

func (s *service) SetCommentStatus(ctx context.Context, id uuid.UUID, status CommentStatus) (*Comment, error) {
	if err := validateCommentStatus(status); err != nil {
		return nil, &CommentError{CommentID: id, Op: "set_status", Err: err}
	}

	comment, err := s.repo.GetComment(ctx, id)
	if err != nil {
		return nil, &CommentError{CommentID: id, Op: "set_status", Err: asDependency(err)}
	}

	from := comment.Status
	comment.Status = status
	comment.UpdatedAt = s.now()
	if err := s.repo.UpdateComment(ctx, comment); err != nil {
		return nil, &CommentError{CommentID: id, Op: "set_status", Err: asDependency(err)}
	}
	if from != status {
		s.notify("comment_status_changed", func() error { return s.eventSink.CommentStatusChanged(ctx, comment, from) })
	}

	return comment, nil
}

func (s *service) DeleteComment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetComment(ctx, id); err != nil {
		return &CommentError{CommentID: id, Op: "delete", Err: asDependency(err)}
	}
	if err := s.repo.DeleteComment(ctx, id); err != nil {
		return &CommentError{CommentID: id, Op: "delete", Err: asDependency(err)}
	}
	s.notify("comment_deleted", func() error { return s.eventSink.CommentDeleted(ctx, id) })
	return nil
}

func (s *service) ListCommentsForPost(ctx context.Context, postID uuid.UUID, onlyApproved bool) ([]*Comment, error) {
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, &CommentError{Op: "list_for_post", Err: asDependency(err)}
	}

	all, err := s.repo.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, &CommentError{Op: "list_for_post", Err: asDependency(err)}
	}

	// The approval filter applies to replies as well as roots
	roots := []*Comment{}
	replies := make(map[uuid.UUID][]*Comment)
	for _, c := range all {
		if onlyApproved && c.Status != CommentStatusApproved {
			continue
		}
		if c.IsRoot() {
			roots = append(roots, c)
		} else {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}
	for _, root := range roots {
		thread := replies[root.ID]
		// Stored newest first; a thread reads oldest first
		slices.Reverse(thread)
		root.Replies = thread
	}

	return roots, nil
}

func (s *service) ListComments(ctx context.Context, filter CommentFilter) (*Page[*Comment], error) {
	if filter.Status != nil {
		if err := validateCommentStatus(*filter.Status); err != nil {
			return nil, &CommentError{Op: "list", Err: err}
		}
	}
	filter.Offset, filter.Limit = normalizePage(filter.Offset, filter.Limit)

	comments, total, err := s.repo.ListRootComments(ctx, filter)
	if err != nil {
		return nil, &CommentError{Op: "list", Err: asDependency(err)}
	}
	if err := s.attachPostSummaries(ctx, comments); err != nil {
		return nil, &CommentError{Op: "list", Err: err}
	}
	if comments == nil {
		comments = []*Comment{}
	}
	return &Page[*Comment]{Items: comments, Total: total, Offset: filter.Offset, Limit: filter.Limit}, nil
}

// attachPostSummaries sets the title and slug of each comment's post
func (s *service) attachPostSummaries(ctx context.Context, comments []*Comment) error {
	summaries := make(map[uuid.UUID]*PostSummary)
	for _, c := range comments {
		summary, seen := summaries[c.PostID]
		if !seen {
			post, err := s.repo.GetPost(ctx, c.PostID)
			switch {
			case err == nil:
				summary = &PostSummary{ID: post.ID, Title: post.Title, Slug: post.Slug}
			case errors.Is(err, ErrNotFound):
				// deleted between the list and the lookup
			default:
				return asDependency(err)
			}
			summaries[c.PostID] = summary
		}
		c.Post = summary
	}
	return nil
}
