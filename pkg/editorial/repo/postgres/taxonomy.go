package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, c *editorial.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.Color, c.CreatedAt); err != nil {
		return r.handlePostgresError("create category", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*editorial.Category, error) {
	return r.getCategory(ctx, "id", id)
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*editorial.Category, error) {
	return r.getCategory(ctx, "slug", slug)
}

// getCategory looks a category up by a trusted column name
func (r *Repository) getCategory(ctx context.Context, column string, value interface{}) (*editorial.Category, error) {
	query := `SELECT id, name, slug, description, color, created_at FROM categories WHERE ` + column + ` = $1`

	var c editorial.Category
	err := r.db.QueryRow(ctx, query, value).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.CreatedAt)
	if err != nil {
		return nil, r.notFound("get category", err, editorial.ErrCategoryNotFound)
	}
	return &c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *editorial.Category) error {
	query := `UPDATE categories SET name = $2, slug = $3, description = $4, color = $5 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.Color)
	if err != nil {
		return r.handlePostgresError("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory relies on ON DELETE SET NULL to clear posts
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*editorial.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.color, c.created_at, COUNT(p.id)
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name, c.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list categories", err)
	}
	defer rows.Close()

	var categories []*editorial.Category
	for rows.Next() {
		var c editorial.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.CreatedAt, &c.PostCount); err != nil {
			return nil, r.handlePostgresError("scan category", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list categories", err)
	}
	return categories, nil
}

// Tag operations

func (r *Repository) CreateTag(ctx context.Context, t *editorial.Tag) error {
	query := `INSERT INTO tags (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(ctx, query, t.ID, t.Name, t.Slug, t.CreatedAt); err != nil {
		return r.handlePostgresError("create tag", err)
	}
	return nil
}

func (r *Repository) GetTag(ctx context.Context, id uuid.UUID) (*editorial.Tag, error) {
	return r.getTag(ctx, "id", id)
}

func (r *Repository) GetTagBySlug(ctx context.Context, slug string) (*editorial.Tag, error) {
	return r.getTag(ctx, "slug", slug)
}

func (r *Repository) getTag(ctx context.Context, column string, value interface{}) (*editorial.Tag, error) {
	query := `SELECT id, name, slug, created_at FROM tags WHERE ` + column + ` = $1`

	var t editorial.Tag
	if err := r.db.QueryRow(ctx, query, value).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
		return nil, r.notFound("get tag", err, editorial.ErrTagNotFound)
	}
	return &t, nil
}

func (r *Repository) UpdateTag(ctx context.Context, t *editorial.Tag) error {
	tag, err := r.db.Exec(ctx, `UPDATE tags SET name = $2, slug = $3 WHERE id = $1`, t.ID, t.Name, t.Slug)
	if err != nil {
		return r.handlePostgresError("update tag", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrTagNotFound
	}
	return nil
}

// DeleteTag relies on ON DELETE CASCADE to remove post links
func (r *Repository) DeleteTag(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete tag", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrTagNotFound
	}
	return nil
}

func (r *Repository) ListTags(ctx context.Context) ([]*editorial.Tag, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, created_at FROM tags ORDER BY name, id`)
	if err != nil {
		return nil, r.handlePostgresError("list tags", err)
	}
	defer rows.Close()

	var tags []*editorial.Tag
	for rows.Next() {
		var t editorial.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan tag", err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list tags", err)
	}
	return tags, nil
}
