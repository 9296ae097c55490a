package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// Repository implements editorial.Repository using in-memory storage
type Repository struct {
	mu sync.RWMutex
	// txMu serializes InTx callers; it does not provide rollback
	txMu sync.Mutex

	posts      map[uuid.UUID]*editorial.Post
	postOrder  []uuid.UUID
	postTags   map[uuid.UUID]map[uuid.UUID]struct{} // post_id -> tag ids
	seo        map[uuid.UUID]*editorial.SEOSettings
	comments   map[uuid.UUID]*editorial.Comment
	comOrder   []uuid.UUID
	categories map[uuid.UUID]*editorial.Category
	tags       map[uuid.UUID]*editorial.Tag
	profiles   map[uuid.UUID]*editorial.Profile
	profOrder  []uuid.UUID
	media      map[uuid.UUID]*editorial.Media
	mediaOrder []uuid.UUID
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		posts:      make(map[uuid.UUID]*editorial.Post),
		postTags:   make(map[uuid.UUID]map[uuid.UUID]struct{}),
		seo:        make(map[uuid.UUID]*editorial.SEOSettings),
		comments:   make(map[uuid.UUID]*editorial.Comment),
		categories: make(map[uuid.UUID]*editorial.Category),
		tags:       make(map[uuid.UUID]*editorial.Tag),
		profiles:   make(map[uuid.UUID]*editorial.Profile),
		media:      make(map[uuid.UUID]*editorial.Media),
	}
}

var _ editorial.Repository = (*Repository)(nil)

// InTx runs fn against the repository itself. Transactions are serialized
// against each other but writes made before an error are kept.
func (r *Repository) InTx(ctx context.Context, fn func(tx editorial.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}

// newestFirst returns ids ordered newest insertion first, then sorted by created
// time descending. Equal timestamps keep the newest insertion first.
func newestFirst[T any](order []uuid.UUID, items map[uuid.UUID]T, keep func(T) bool, less func(a, b T) bool) []T {
	result := make([]T, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		item := items[order[i]]
		if keep(item) {
			result = append(result, item)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return less(result[i], result[j])
	})
	return result
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func removeID(order []uuid.UUID, id uuid.UUID) []uuid.UUID {
	return slices.DeleteFunc(order, func(v uuid.UUID) bool { return v == id })
}

func copyPost(p *editorial.Post) *editorial.Post {
	c := *p
	c.Category = nil
	c.Tags = nil
	c.SEO = nil
	return &c
}

func copyComment(cm *editorial.Comment) *editorial.Comment {
	c := *cm
	c.Replies = nil
	c.Post = nil
	return &c
}

// Post operations

func (r *Repository) checkPostRefs(post *editorial.Post) error {
	if post.CategoryID != nil {
		if _, ok := r.categories[*post.CategoryID]; !ok {
			return fmt.Errorf("%w: category %s does not exist", editorial.ErrInvalidReference, *post.CategoryID)
		}
	}
	if _, ok := r.profiles[post.AuthorID]; !ok {
		return fmt.Errorf("%w: author %s does not exist", editorial.ErrInvalidReference, post.AuthorID)
	}
	return nil
}

func (r *Repository) slugTakenByOtherPost(slug string, self uuid.UUID) bool {
	for id, p := range r.posts {
		if p.Slug == slug && id != self {
			return true
		}
	}
	return false
}

func (r *Repository) CreatePost(ctx context.Context, post *editorial.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; exists {
		return fmt.Errorf("%w: post %s", editorial.ErrDuplicate, post.ID)
	}
	if r.slugTakenByOtherPost(post.Slug, post.ID) {
		return fmt.Errorf("%w: %s", editorial.ErrSlugTaken, post.Slug)
	}
	if err := r.checkPostRefs(post); err != nil {
		return err
	}

	r.posts[post.ID] = copyPost(post)
	r.postOrder = append(r.postOrder, post.ID)
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*editorial.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, editorial.ErrPostNotFound
	}
	return copyPost(post), nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*editorial.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, post := range r.posts {
		if post.Slug == slug {
			return copyPost(post), nil
		}
	}
	return nil, editorial.ErrPostNotFound
}

func (r *Repository) UpdatePost(ctx context.Context, post *editorial.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.posts[post.ID]
	if !exists {
		return editorial.ErrPostNotFound
	}
	if r.slugTakenByOtherPost(post.Slug, post.ID) {
		return fmt.Errorf("%w: %s", editorial.ErrSlugTaken, post.Slug)
	}
	if err := r.checkPostRefs(post); err != nil {
		return err
	}

	updated := copyPost(post)
	// Counters are owned by the repository
	updated.ViewCount = existing.ViewCount
	updated.LikeCount = existing.LikeCount
	r.posts[post.ID] = updated
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[id]; !exists {
		return editorial.ErrPostNotFound
	}
	delete(r.posts, id)
	r.postOrder = removeID(r.postOrder, id)
	delete(r.postTags, id)
	delete(r.seo, id)
	for cid, c := range r.comments {
		if c.PostID == id {
			delete(r.comments, cid)
			r.comOrder = removeID(r.comOrder, cid)
		}
	}
	return nil
}

func postMatches(p *editorial.Post, filter editorial.PostFilter) bool {
	if filter.Status != nil && p.Status != *filter.Status {
		return false
	}
	if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
		return false
	}
	if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
		return false
	}
	if filter.ScheduledBefore != nil && (p.ScheduledFor == nil || p.ScheduledFor.After(*filter.ScheduledBefore)) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) && !strings.Contains(strings.ToLower(p.Content), needle) {
			return false
		}
	}
	return true
}

func (r *Repository) ListPosts(ctx context.Context, filter editorial.PostFilter) ([]*editorial.Post, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := newestFirst(r.postOrder, r.posts,
		func(p *editorial.Post) bool { return postMatches(p, filter) },
		func(a, b *editorial.Post) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
	page := paginate(matched, filter.Offset, filter.Limit)

	result := make([]*editorial.Post, len(page))
	for i, p := range page {
		result[i] = copyPost(p)
	}
	return result, int64(len(matched)), nil
}

func (r *Repository) AddViewCount(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, exists := r.posts[id]
	if !exists {
		return 0, editorial.ErrPostNotFound
	}
	post.ViewCount += delta
	return post.ViewCount, nil
}

func (r *Repository) ListPostTagIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.postTags[postID]))
	for id := range r.postTags[postID] {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return ids, nil
}

func (r *Repository) AddPostTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[postID]; !exists {
		return fmt.Errorf("%w: post %s does not exist", editorial.ErrInvalidReference, postID)
	}
	for _, id := range tagIDs {
		if _, ok := r.tags[id]; !ok {
			return fmt.Errorf("%w: tag %s does not exist", editorial.ErrInvalidReference, id)
		}
	}

	set, ok := r.postTags[postID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		r.postTags[postID] = set
	}
	for _, id := range tagIDs {
		set[id] = struct{}{}
	}
	return nil
}

func (r *Repository) RemovePostTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.postTags[postID]
	for _, id := range tagIDs {
		delete(set, id)
	}
	if len(set) == 0 {
		delete(r.postTags, postID)
	}
	return nil
}

func (r *Repository) ListTagsForPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*editorial.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[uuid.UUID][]*editorial.Tag, len(postIDs))
	for _, postID := range postIDs {
		var tags []*editorial.Tag
		for tagID := range r.postTags[postID] {
			if tag, ok := r.tags[tagID]; ok {
				tagCopy := *tag
				tags = append(tags, &tagCopy)
			}
		}
		sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
		if tags != nil {
			result[postID] = tags
		}
	}
	return result, nil
}

func (r *Repository) GetSEOSettings(ctx context.Context, postID uuid.UUID) (*editorial.SEOSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings, exists := r.seo[postID]
	if !exists {
		return nil, editorial.ErrSEOSettingsNotFound
	}
	settingsCopy := *settings
	return &settingsCopy, nil
}

func (r *Repository) UpsertSEOSettings(ctx context.Context, settings *editorial.SEOSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[settings.PostID]; !exists {
		return fmt.Errorf("%w: post %s does not exist", editorial.ErrInvalidReference, settings.PostID)
	}
	settingsCopy := *settings
	if existing, ok := r.seo[settings.PostID]; ok {
		settingsCopy.CreatedAt = existing.CreatedAt
	}
	r.seo[settings.PostID] = &settingsCopy
	return nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *editorial.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.comments[comment.ID]; exists {
		return fmt.Errorf("%w: comment %s", editorial.ErrDuplicate, comment.ID)
	}
	if _, ok := r.posts[comment.PostID]; !ok {
		return fmt.Errorf("%w: post %s does not exist", editorial.ErrInvalidReference, comment.PostID)
	}
	if comment.ParentID != nil {
		if _, ok := r.comments[*comment.ParentID]; !ok {
			return fmt.Errorf("%w: parent comment %s does not exist", editorial.ErrInvalidReference, *comment.ParentID)
		}
	}

	r.comments[comment.ID] = copyComment(comment)
	r.comOrder = append(r.comOrder, comment.ID)
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*editorial.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, exists := r.comments[id]
	if !exists {
		return nil, editorial.ErrCommentNotFound
	}
	return copyComment(comment), nil
}

func (r *Repository) UpdateComment(ctx context.Context, comment *editorial.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.comments[comment.ID]; !exists {
		return editorial.ErrCommentNotFound
	}
	r.comments[comment.ID] = copyComment(comment)
	return nil
}

func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.comments[id]; !exists {
		return editorial.ErrCommentNotFound
	}
	delete(r.comments, id)
	r.comOrder = removeID(r.comOrder, id)
	for cid, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(r.comments, cid)
			r.comOrder = removeID(r.comOrder, cid)
		}
	}
	return nil
}

func commentsNewestFirst(a, b *editorial.Comment) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

func (r *Repository) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]*editorial.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := newestFirst(r.comOrder, r.comments,
		func(c *editorial.Comment) bool { return c.PostID == postID },
		commentsNewestFirst,
	)
	result := make([]*editorial.Comment, len(matched))
	for i, c := range matched {
		result[i] = copyComment(c)
	}
	return result, nil
}

func (r *Repository) ListRootComments(ctx context.Context, filter editorial.CommentFilter) ([]*editorial.Comment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := newestFirst(r.comOrder, r.comments,
		func(c *editorial.Comment) bool {
			if !c.IsRoot() {
				return false
			}
			if filter.PostID != nil && c.PostID != *filter.PostID {
				return false
			}
			return filter.Status == nil || c.Status == *filter.Status
		},
		commentsNewestFirst,
	)
	page := paginate(matched, filter.Offset, filter.Limit)

	result := make([]*editorial.Comment, len(page))
	for i, c := range page {
		result[i] = copyComment(c)
	}
	return result, int64(len(matched)), nil
}

// Taxonomy operations

func (r *Repository) CreateCategory(ctx context.Context, category *editorial.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.Slug == category.Slug {
			return fmt.Errorf("%w: %s", editorial.ErrSlugTaken, category.Slug)
		}
	}
	categoryCopy := *category
	categoryCopy.PostCount = 0
	r.categories[category.ID] = &categoryCopy
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*editorial.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, exists := r.categories[id]
	if !exists {
		return nil, editorial.ErrCategoryNotFound
	}
	categoryCopy := *category
	return &categoryCopy, nil
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*editorial.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, category := range r.categories {
		if category.Slug == slug {
			categoryCopy := *category
			return &categoryCopy, nil
		}
	}
	return nil, editorial.ErrCategoryNotFound
}

func (r *Repository) UpdateCategory(ctx context.Context, category *editorial.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[category.ID]; !exists {
		return editorial.ErrCategoryNotFound
	}
	for id, c := range r.categories {
		if c.Slug == category.Slug && id != category.ID {
			return fmt.Errorf("%w: %s", editorial.ErrSlugTaken, category.Slug)
		}
	}
	categoryCopy := *category
	r.categories[category.ID] = &categoryCopy
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[id]; !exists {
		return editorial.ErrCategoryNotFound
	}
	delete(r.categories, id)
	for _, p := range r.posts {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
		}
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*editorial.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[uuid.UUID]int64)
	for _, p := range r.posts {
		if p.CategoryID != nil {
			counts[*p.CategoryID]++
		}
	}

	result := make([]*editorial.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categoryCopy := *c
		categoryCopy.PostCount = counts[c.ID]
		result = append(result, &categoryCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *Repository) CreateTag(ctx context.Context, tag *editorial.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tags {
		if t.Slug == tag.Slug {
			return fmt.Errorf("%w: %s", editorial.ErrSlugTaken, tag.Slug)
		}
	}
	tagCopy := *tag
	r.tags[tag.ID] = &tagCopy
	return nil
}

func (r *Repository) GetTag(ctx context.Context, id uuid.UUID) (*editorial.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, exists := r.tags[id]
	if !exists {
		return nil, editorial.ErrTagNotFound
	}
	tagCopy := *tag
	return &tagCopy, nil
}

func (r *Repository) GetTagBySlug(ctx context.Context, slug string) (*editorial.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tag := range r.tags {
		if tag.Slug == slug {
			tagCopy := *tag
			return &tagCopy, nil
		}
	}
	return nil, editorial.ErrTagNotFound
}

func (r *Repository) UpdateTag(ctx context.Context, tag *editorial.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tags[tag.ID]; !exists {
		return editorial.ErrTagNotFound
	}
	for id, t := range r.tags {
		if t.Slug == tag.Slug && id != tag.ID {
			return fmt.Errorf("%w: %s", editorial.ErrSlugTaken, tag.Slug)
		}
	}
	tagCopy := *tag
	r.tags[tag.ID] = &tagCopy
	return nil
}

func (r *Repository) DeleteTag(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tags[id]; !exists {
		return editorial.ErrTagNotFound
	}
	delete(r.tags, id)
	for postID, set := range r.postTags {
		delete(set, id)
		if len(set) == 0 {
			delete(r.postTags, postID)
		}
	}
	return nil
}

func (r *Repository) ListTags(ctx context.Context) ([]*editorial.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*editorial.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		tagCopy := *t
		result = append(result, &tagCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Profile operations

func (r *Repository) emailTaken(email string, self uuid.UUID) bool {
	for id, p := range r.profiles {
		if p.Email == email && id != self {
			return true
		}
	}
	return false
}

func (r *Repository) CreateProfile(ctx context.Context, profile *editorial.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.ID]; exists {
		return fmt.Errorf("%w: profile %s", editorial.ErrDuplicate, profile.ID)
	}
	if r.emailTaken(profile.Email, profile.ID) {
		return fmt.Errorf("%w: email %s", editorial.ErrDuplicate, profile.Email)
	}
	profileCopy := *profile
	profileCopy.PostCount = 0
	r.profiles[profile.ID] = &profileCopy
	r.profOrder = append(r.profOrder, profile.ID)
	return nil
}

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*editorial.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, exists := r.profiles[id]
	if !exists {
		return nil, editorial.ErrProfileNotFound
	}
	profileCopy := *profile
	return &profileCopy, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, profile *editorial.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.ID]; !exists {
		return editorial.ErrProfileNotFound
	}
	if r.emailTaken(profile.Email, profile.ID) {
		return fmt.Errorf("%w: email %s", editorial.ErrDuplicate, profile.Email)
	}
	profileCopy := *profile
	r.profiles[profile.ID] = &profileCopy
	return nil
}

func (r *Repository) ListProfiles(ctx context.Context) ([]*editorial.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[uuid.UUID]int64)
	for _, p := range r.posts {
		counts[p.AuthorID]++
	}

	matched := newestFirst(r.profOrder, r.profiles,
		func(*editorial.Profile) bool { return true },
		func(a, b *editorial.Profile) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
	result := make([]*editorial.Profile, len(matched))
	for i, p := range matched {
		profileCopy := *p
		profileCopy.PostCount = counts[p.ID]
		result[i] = &profileCopy
	}
	return result, nil
}

// Media operations

func (r *Repository) CreateMedia(ctx context.Context, media *editorial.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.media[media.ID]; exists {
		return fmt.Errorf("%w: media %s", editorial.ErrDuplicate, media.ID)
	}
	if media.UploadedBy != nil {
		if _, ok := r.profiles[*media.UploadedBy]; !ok {
			return fmt.Errorf("%w: uploader %s does not exist", editorial.ErrInvalidReference, *media.UploadedBy)
		}
	}
	mediaCopy := *media
	r.media[media.ID] = &mediaCopy
	r.mediaOrder = append(r.mediaOrder, media.ID)
	return nil
}

func (r *Repository) GetMedia(ctx context.Context, id uuid.UUID) (*editorial.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	media, exists := r.media[id]
	if !exists {
		return nil, editorial.ErrMediaNotFound
	}
	mediaCopy := *media
	return &mediaCopy, nil
}

func (r *Repository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.media[id]; !exists {
		return editorial.ErrMediaNotFound
	}
	delete(r.media, id)
	r.mediaOrder = removeID(r.mediaOrder, id)
	return nil
}

func (r *Repository) ListMedia(ctx context.Context, filter editorial.MediaFilter) ([]*editorial.Media, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := newestFirst(r.mediaOrder, r.media,
		func(m *editorial.Media) bool {
			if filter.UploadedBy != nil && (m.UploadedBy == nil || *m.UploadedBy != *filter.UploadedBy) {
				return false
			}
			return strings.HasPrefix(m.FileType, filter.FileType)
		},
		func(a, b *editorial.Media) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
	page := paginate(matched, filter.Offset, filter.Limit)

	result := make([]*editorial.Media, len(page))
	for i, m := range page {
		mediaCopy := *m
		result[i] = &mediaCopy
	}
	return result, int64(len(matched)), nil
}
