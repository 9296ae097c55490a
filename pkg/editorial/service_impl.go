package editorial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-editorial/pkg/editorial/slug"
)

// service implements the Service interface
type service struct {
	repo        Repository
	blobStore   BlobStore
	eventSink   EventSink
	viewCounter ViewCounter
	logger      *slog.Logger
	slugs       slug.Resolver
	clock       func() time.Time
}

// Option configures a service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithBlobStore sets the blob store used by the media library
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithViewCounter replaces the default counter, which increments the repository directly
func WithViewCounter(counter ViewCounter) Option {
	return func(s *service) {
		s.viewCounter = counter
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithSlugResolver sets the resolver used to disambiguate post slugs
func WithSlugResolver(r slug.Resolver) Option {
	return func(s *service) {
		s.slugs = r
	}
}

// WithClock sets the time source of the service
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		s.clock = clock
	}
}

// New creates a new editorial service with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repo == nil {
		return nil, errors.New("repository is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.viewCounter == nil {
		s.viewCounter = NewRepositoryViewCounter(s.repo)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.slugs.Now == nil {
		s.slugs.Now = s.clock
	}

	return s, nil
}

func (s *service) now() time.Time {
	return s.clock().UTC()
}

// notify delivers an event. Sink failures never fail the operation.
func (s *service) notify(event string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Warn("event sink failed", "event", event, "error", err)
	}
}

// Post operations

func (s *service) CreatePost(ctx context.Context, principal Principal, req CreatePostRequest) (*Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateRequest(req); err != nil {
		return nil, &PostError{Op: "create", Err: err}
	}
	if principal.ID == uuid.Nil {
		return nil, &PostError{Op: "create", Err: invalidInput("principal is required")}
	}

	status := req.Status
	if status == "" {
		status = PostStatusDraft
	}
	if _, err := canCreateWithStatus(status); err != nil {
		return nil, &PostError{Op: "create", Err: err}
	}

	now := s.now()
	if status == PostStatusScheduled {
		if err := validateSchedule(req.ScheduledFor, now); err != nil {
			return nil, &PostError{Op: "create", Err: err}
		}
	}
	if req.CategoryID != nil {
		if err := s.checkCategoryRef(ctx, *req.CategoryID); err != nil {
			return nil, &PostError{Op: "create", Err: err}
		}
	}

	postSlug, err := s.resolvePostSlug(ctx, slug.MakeOr(req.Title, "post"), uuid.Nil)
	if err != nil {
		return nil, &PostError{Op: "create", Err: err}
	}

	post := &Post{
		ID:            uuid.New(),
		Title:         req.Title,
		Slug:          postSlug,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Status:        status,
		CategoryID:    req.CategoryID,
		AuthorID:      principal.ID,
		ScheduledFor:  utcPtr(req.ScheduledFor),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == PostStatusPublished {
		post.PublishedAt = &now
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, &PostError{Op: "create", Err: asDependency(err)}
	}
	s.notify("post_created", func() error { return s.eventSink.PostCreated(ctx, post) })

	// The post row stays even if a relation step fails; the caller re-issues the
	// failed step through UpdatePost.
	if len(req.TagIDs) > 0 {
		if _, err := s.syncTags(ctx, post.ID, req.TagIDs); err != nil {
			s.logger.Error("tag sync failed after post create", "post_id", post.ID, "error", err)
			return post, &SyncError{PostID: post.ID, Step: SyncStepTags, Err: err}
		}
	}
	if req.SEO != nil {
		settings, err := s.syncSEO(ctx, post.ID, *req.SEO)
		if err != nil {
			s.logger.Error("seo sync failed after post create", "post_id", post.ID, "error", err)
			return post, &SyncError{PostID: post.ID, Step: SyncStepSEO, Err: err}
		}
		post.SEO = settings
	}

	if err := s.hydrate(ctx, post); err != nil {
		return nil, &PostError{PostID: post.ID, Op: "create", Err: err}
	}
	return post, nil
}

func (s *service) UpdatePost(ctx context.Context, id uuid.UUID, req UpdatePostRequest) (*Post, error) {
	trimPtr(req.Title)
	trimPtr(req.Slug)
	if err := validateRequest(req); err != nil {
		return nil, &PostError{PostID: id, Op: "update", Err: err}
	}

	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, &PostError{PostID: id, Op: "update", Err: asDependency(err)}
	}

	now := s.now()
	from := post.Status

	if req.Title != nil && *req.Title != post.Title {
		post.Title = *req.Title
		if req.Slug == nil {
			candidate := slug.MakeOr(post.Title, "post")
			if candidate != post.Slug {
				resolved, err := s.resolvePostSlug(ctx, candidate, post.ID)
				if err != nil {
					return nil, &PostError{PostID: id, Op: "update", Err: err}
				}
				post.Slug = resolved
			}
		}
	}
	if req.Slug != nil {
		if err := s.renamePostSlug(ctx, post, *req.Slug); err != nil {
			return nil, &PostError{PostID: id, Op: "update", Err: err}
		}
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = *req.FeaturedImage
	}
	if req.ClearCategory {
		post.CategoryID = nil
	} else if req.CategoryID != nil {
		if err := s.checkCategoryRef(ctx, *req.CategoryID); err != nil {
			return nil, &PostError{PostID: id, Op: "update", Err: err}
		}
		post.CategoryID = req.CategoryID
	}
	if req.ScheduledFor != nil {
		post.ScheduledFor = utcPtr(req.ScheduledFor)
	}

	target := post.Status
	if req.Status != nil {
		target = *req.Status
		if _, err := canTransitionPost(from, target); err != nil {
			return nil, &PostError{PostID: id, Op: "update", Err: err}
		}
	}
	// Entering the scheduled state, or moving the time of a scheduled post,
	// needs a time in the future.
	if target == PostStatusScheduled && (from != PostStatusScheduled || req.ScheduledFor != nil) {
		if err := validateSchedule(post.ScheduledFor, now); err != nil {
			return nil, &PostError{PostID: id, Op: "update", Err: err}
		}
	}
	post.Status = target
	if post.Status == PostStatusPublished && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
	post.UpdatedAt = now

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, &PostError{PostID: id, Op: "update", Err: asDependency(err)}
	}
	s.notify("post_updated", func() error { return s.eventSink.PostUpdated(ctx, post) })
	if from != post.Status {
		s.logger.Info("post status changed", "post_id", post.ID, "from", from, "to", post.Status)
		s.notify("post_status_changed", func() error { return s.eventSink.PostStatusChanged(ctx, post, from) })
	}

	if req.TagIDs != nil {
		if _, err := s.syncTags(ctx, post.ID, *req.TagIDs); err != nil {
			return post, &SyncError{PostID: post.ID, Step: SyncStepTags, Err: err}
		}
	}
	if req.SEO != nil {
		if _, err := s.syncSEO(ctx, post.ID, *req.SEO); err != nil {
			return post, &SyncError{PostID: post.ID, Step: SyncStepSEO, Err: err}
		}
	}

	if err := s.hydrate(ctx, post); err != nil {
		return nil, &PostError{PostID: id, Op: "update", Err: err}
	}
	return post, nil
}

func (s *service) DeletePost(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetPost(ctx, id); err != nil {
		return &PostError{PostID: id, Op: "delete", Err: asDependency(err)}
	}
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return &PostError{PostID: id, Op: "delete", Err: asDependency(err)}
	}
	s.notify("post_deleted", func() error { return s.eventSink.PostDeleted(ctx, id) })
	return nil
}

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, &PostError{PostID: id, Op: "get", Err: asDependency(err)}
	}
	if err := s.hydrate(ctx, post); err != nil {
		return nil, &PostError{PostID: id, Op: "get", Err: err}
	}
	return post, nil
}

func (s *service) GetPostBySlug(ctx context.Context, postSlug string, includeUnpublished bool) (*Post, error) {
	post, err := s.repo.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return nil, &PostError{Op: "get_by_slug", Err: asDependency(err)}
	}

	if !includeUnpublished {
		if post.Status != PostStatusPublished {
			return nil, &PostError{Op: "get_by_slug", Err: ErrPostNotFound}
		}
		// A failed view count does not fail the read
		count, err := s.viewCounter.Increment(ctx, post)
		if err != nil {
			s.logger.Warn("failed to record post view", "post_id", post.ID, "error", err)
		} else {
			post.ViewCount = count
		}
	}

	if err := s.hydrate(ctx, post); err != nil {
		return nil, &PostError{PostID: post.ID, Op: "get_by_slug", Err: err}
	}
	return post, nil
}

func (s *service) ListPosts(ctx context.Context, filter PostFilter) (*Page[*Post], error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, &PostError{Op: "list", Err: fmt.Errorf("%w: unknown post status %s", ErrInvalidStatus, *filter.Status)}
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Offset, filter.Limit = normalizePage(filter.Offset, filter.Limit)

	posts, total, err := s.repo.ListPosts(ctx, filter)
	if err != nil {
		return nil, &PostError{Op: "list", Err: asDependency(err)}
	}
	if err := s.attachTags(ctx, posts); err != nil {
		return nil, &PostError{Op: "list", Err: err}
	}
	if posts == nil {
		posts = []*Post{}
	}

	return &Page[*Post]{Items: posts, Total: total, Offset: filter.Offset, Limit: filter.Limit}, nil
}

func (s *service) ListPublishedPosts(ctx context.Context, filter PostFilter) (*Page[*Post], error) {
	published := PostStatusPublished
	filter.Status = &published
	return s.ListPosts(ctx, filter)
}

func (s *service) PublishDue(ctx context.Context, now time.Time) (int, error) {
	scheduled := PostStatusScheduled
	before := now.UTC()
	filter := PostFilter{Status: &scheduled, ScheduledBefore: &before, Limit: MaxPageLimit}

	// Collect first: publishing removes posts from the filter as we go
	var due []*Post
	for {
		posts, _, err := s.repo.ListPosts(ctx, filter)
		if err != nil {
			return 0, &PostError{Op: "publish_due", Err: asDependency(err)}
		}
		due = append(due, posts...)
		if len(posts) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	published := PostStatusPublished
	var errs []error
	count := 0
	for _, post := range due {
		if _, err := s.UpdatePost(ctx, post.ID, UpdatePostRequest{Status: &published}); err != nil {
			s.logger.Error("failed to publish scheduled post", "post_id", post.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		count++
	}
	return count, errors.Join(errs...)
}

// resolvePostSlug finds a free slug for candidate, ignoring the post self
func (s *service) resolvePostSlug(ctx context.Context, candidate string, self uuid.UUID) (string, error) {
	exists := func(ctx context.Context, value string) (bool, error) {
		existing, err := s.repo.GetPostBySlug(ctx, value)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return existing.ID != self, nil
	}

	resolved, err := s.slugs.Resolve(ctx, candidate, exists)
	if errors.Is(err, slug.ErrExhausted) {
		return "", fmt.Errorf("%w: %s", ErrSlugUnavailable, candidate)
	}
	if err != nil {
		return "", asDependency(err)
	}
	return resolved, nil
}

// renamePostSlug applies an explicit slug. Unlike a title rename it never disambiguates.
func (s *service) renamePostSlug(ctx context.Context, post *Post, requested string) error {
	candidate := slug.Make(requested)
	if candidate == "" {
		return invalidInput("slug must contain letters or digits")
	}
	if candidate == post.Slug {
		return nil
	}
	existing, err := s.repo.GetPostBySlug(ctx, candidate)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return asDependency(err)
	}
	if err == nil && existing.ID != post.ID {
		return fmt.Errorf("%w: %s", ErrSlugTaken, candidate)
	}
	post.Slug = candidate
	return nil
}

func (s *service) checkCategoryRef(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.GetCategory(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: category %s does not exist", ErrInvalidReference, id)
	}
	return asDependency(err)
}

// hydrate attaches category, tags and SEO settings to a post
func (s *service) hydrate(ctx context.Context, post *Post) error {
	if err := s.attachTags(ctx, []*Post{post}); err != nil {
		return err
	}

	seo, err := s.repo.GetSEOSettings(ctx, post.ID)
	switch {
	case err == nil:
		post.SEO = seo
	case errors.Is(err, ErrNotFound):
		post.SEO = nil
	default:
		return asDependency(err)
	}

	post.Category = nil
	if post.CategoryID != nil {
		category, err := s.repo.GetCategory(ctx, *post.CategoryID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return asDependency(err)
		}
		post.Category = category
	}
	return nil
}

func (s *service) attachTags(ctx context.Context, posts []*Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	tags, err := s.repo.ListTagsForPosts(ctx, ids)
	if err != nil {
		return asDependency(err)
	}
	for _, p := range posts {
		p.Tags = tags[p.ID]
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
