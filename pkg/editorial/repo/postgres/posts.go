package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

const postColumns = `id, title, slug, content, excerpt, featured_image, status, category_id,
	author_id, published_at, scheduled_for, view_count, like_count, created_at, updated_at`

func scanPost(row pgx.Row) (*editorial.Post, error) {
	var post editorial.Post
	err := row.Scan(
		&post.ID, &post.Title, &post.Slug, &post.Content, &post.Excerpt, &post.FeaturedImage,
		&post.Status, &post.CategoryID, &post.AuthorID, &post.PublishedAt, &post.ScheduledFor,
		&post.ViewCount, &post.LikeCount, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *editorial.Post) error {
	query := `
		INSERT INTO posts (
			id, title, slug, content, excerpt, featured_image, status, category_id,
			author_id, published_at, scheduled_for, view_count, like_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Slug, post.Content, post.Excerpt, post.FeaturedImage,
		post.Status, post.CategoryID, post.AuthorID, post.PublishedAt, post.ScheduledFor,
		post.ViewCount, post.LikeCount, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create post", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*editorial.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.notFound("get post", err, editorial.ErrPostNotFound)
	}
	return post, nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*editorial.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1`

	post, err := scanPost(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, r.notFound("get post by slug", err, editorial.ErrPostNotFound)
	}
	return post, nil
}

// UpdatePost writes the editable fields. Counters are only changed through AddViewCount.
func (r *Repository) UpdatePost(ctx context.Context, post *editorial.Post) error {
	query := `
		UPDATE posts SET
			title = $2, slug = $3, content = $4, excerpt = $5, featured_image = $6,
			status = $7, category_id = $8, published_at = $9, scheduled_for = $10, updated_at = $11
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Slug, post.Content, post.Excerpt, post.FeaturedImage,
		post.Status, post.CategoryID, post.PublishedAt, post.ScheduledFor, post.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrPostNotFound
	}
	return nil
}

// DeletePost relies on ON DELETE CASCADE for tag links, SEO settings and comments
func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrPostNotFound
	}
	return nil
}

func (r *Repository) ListPosts(ctx context.Context, filter editorial.PostFilter) ([]*editorial.Post, int64, error) {
	var w where
	if filter.Status != nil {
		w.add("status = $%d", *filter.Status)
	}
	if filter.CategoryID != nil {
		w.add("category_id = $%d", *filter.CategoryID)
	}
	if filter.AuthorID != nil {
		w.add("author_id = $%d", *filter.AuthorID)
	}
	if filter.Search != "" {
		w.add("(title ILIKE $%[1]d OR content ILIKE $%[1]d)", "%"+escapeLike(filter.Search)+"%")
	}
	if filter.ScheduledBefore != nil {
		w.add("scheduled_for <= $%d", *filter.ScheduledBefore)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count posts", err)
	}

	limit, args := w.page(filter.Offset, filter.Limit)
	query := `SELECT ` + postColumns + ` FROM posts` + w.String() + ` ORDER BY created_at DESC, id` + limit

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, r.handlePostgresError("list posts", err)
	}
	defer rows.Close()

	var posts []*editorial.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.handlePostgresError("list posts", err)
	}
	return posts, total, nil
}

func (r *Repository) AddViewCount(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	query := `UPDATE posts SET view_count = view_count + $2 WHERE id = $1 RETURNING view_count`

	var count int64
	if err := r.db.QueryRow(ctx, query, id, delta).Scan(&count); err != nil {
		return 0, r.notFound("add view count", err, editorial.ErrPostNotFound)
	}
	return count, nil
}

// Post tag operations

func (r *Repository) ListPostTagIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT tag_id FROM post_tags WHERE post_id = $1`, postID)
	if err != nil {
		return nil, r.handlePostgresError("list post tags", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, r.handlePostgresError("scan post tag", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddPostTags inserts every link in one statement, so an unknown tag writes nothing
func (r *Repository) AddPostTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO post_tags (post_id, tag_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`

	if _, err := r.db.Exec(ctx, query, postID, tagIDs); err != nil {
		return r.handlePostgresError("add post tags", err)
	}
	return nil
}

func (r *Repository) RemovePostTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1 AND tag_id = ANY($2)`, postID, tagIDs)
	if err != nil {
		return r.handlePostgresError("remove post tags", err)
	}
	return nil
}

func (r *Repository) ListTagsForPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*editorial.Tag, error) {
	result := make(map[uuid.UUID][]*editorial.Tag, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY t.name, t.id`

	rows, err := r.db.Query(ctx, query, postIDs)
	if err != nil {
		return nil, r.handlePostgresError("list tags for posts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var tag editorial.Tag
		if err := rows.Scan(&postID, &tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan post tag", err)
		}
		result[postID] = append(result[postID], &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list tags for posts", err)
	}
	return result, nil
}

// SEO settings operations

func (r *Repository) GetSEOSettings(ctx context.Context, postID uuid.UUID) (*editorial.SEOSettings, error) {
	query := `
		SELECT post_id, meta_title, meta_description, keywords, og_title, og_description, og_image,
		       twitter_title, twitter_description, twitter_image, canonical_url, robots_meta,
		       created_at, updated_at
		FROM seo_settings WHERE post_id = $1`

	var s editorial.SEOSettings
	err := r.db.QueryRow(ctx, query, postID).Scan(
		&s.PostID, &s.MetaTitle, &s.MetaDescription, &s.Keywords, &s.OGTitle, &s.OGDescription,
		&s.OGImage, &s.TwitterTitle, &s.TwitterDescription, &s.TwitterImage, &s.CanonicalURL,
		&s.RobotsMeta, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, editorial.ErrSEOSettingsNotFound
		}
		return nil, r.handlePostgresError("get seo settings", err)
	}
	return &s, nil
}

// UpsertSEOSettings inserts or replaces the settings row, keeping its original created_at
func (r *Repository) UpsertSEOSettings(ctx context.Context, s *editorial.SEOSettings) error {
	query := `
		INSERT INTO seo_settings (
			post_id, meta_title, meta_description, keywords, og_title, og_description, og_image,
			twitter_title, twitter_description, twitter_image, canonical_url, robots_meta,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (post_id) DO UPDATE SET
			meta_title = EXCLUDED.meta_title,
			meta_description = EXCLUDED.meta_description,
			keywords = EXCLUDED.keywords,
			og_title = EXCLUDED.og_title,
			og_description = EXCLUDED.og_description,
			og_image = EXCLUDED.og_image,
			twitter_title = EXCLUDED.twitter_title,
			twitter_description = EXCLUDED.twitter_description,
			twitter_image = EXCLUDED.twitter_image,
			canonical_url = EXCLUDED.canonical_url,
			robots_meta = EXCLUDED.robots_meta,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		s.PostID, s.MetaTitle, s.MetaDescription, s.Keywords, s.OGTitle, s.OGDescription,
		s.OGImage, s.TwitterTitle, s.TwitterDescription, s.TwitterImage, s.CanonicalURL,
		s.RobotsMeta, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return r.handlePostgresError(fmt.Sprintf("upsert seo settings for post %s", s.PostID), err)
	}
	return nil
}
