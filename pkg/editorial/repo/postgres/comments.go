package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

const commentColumns = `id, post_id, parent_id, author_name, author_email, content, status,
	ip_address, user_agent, created_at, updated_at`

func scanComment(row pgx.Row) (*editorial.Comment, error) {
	var c editorial.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.ParentID, &c.AuthorName, &c.AuthorEmail, &c.Content,
		&c.Status, &c.IPAddress, &c.UserAgent, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) CreateComment(ctx context.Context, c *editorial.Comment) error {
	query := `
		INSERT INTO comments (` + commentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query, c.ID, c.PostID, c.ParentID, c.AuthorName, c.AuthorEmail,
		c.Content, c.Status, c.IPAddress, c.UserAgent, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create comment", err)
	}
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*editorial.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return nil, r.notFound("get comment", err, editorial.ErrCommentNotFound)
	}
	return c, nil
}

func (r *Repository) UpdateComment(ctx context.Context, c *editorial.Comment) error {
	query := `
		UPDATE comments SET
			author_name = $2, author_email = $3, content = $4, status = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, c.ID, c.AuthorName, c.AuthorEmail, c.Content, c.Status, c.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update comment", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrCommentNotFound
	}
	return nil
}

// DeleteComment relies on ON DELETE CASCADE of parent_id to remove replies
func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete comment", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]*editorial.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 ORDER BY created_at DESC, id`
	return r.queryComments(ctx, "list comments by post", query, postID)
}

func (r *Repository) ListRootComments(ctx context.Context, filter editorial.CommentFilter) ([]*editorial.Comment, int64, error) {
	w := where{conds: []string{"parent_id IS NULL"}}
	if filter.PostID != nil {
		w.add("post_id = $%d", *filter.PostID)
	}
	if filter.Status != nil {
		w.add("status = $%d", *filter.Status)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count comments", err)
	}

	limit, args := w.page(filter.Offset, filter.Limit)
	query := `SELECT ` + commentColumns + ` FROM comments` + w.String() + ` ORDER BY created_at DESC, id` + limit
	comments, err := r.queryComments(ctx, "list root comments", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *Repository) queryComments(ctx context.Context, operation, query string, args ...interface{}) ([]*editorial.Comment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	defer rows.Close()

	var comments []*editorial.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, r.handlePostgresError(operation, err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError(operation, err)
	}
	return comments, nil
}
