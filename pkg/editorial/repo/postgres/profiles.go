package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// Profile operations

func (r *Repository) CreateProfile(ctx context.Context, p *editorial.Profile) error {
	query := `
		INSERT INTO profiles (id, email, display_name, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query, p.ID, p.Email, p.DisplayName, p.AvatarURL, p.Role, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create profile", err)
	}
	return nil
}

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*editorial.Profile, error) {
	query := `
		SELECT id, email, display_name, avatar_url, role, created_at, updated_at
		FROM profiles WHERE id = $1`

	var p editorial.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.DisplayName, &p.AvatarURL, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, r.notFound("get profile", err, editorial.ErrProfileNotFound)
	}
	return &p, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, p *editorial.Profile) error {
	query := `
		UPDATE profiles SET email = $2, display_name = $3, avatar_url = $4, role = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, p.ID, p.Email, p.DisplayName, p.AvatarURL, p.Role, p.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrProfileNotFound
	}
	return nil
}

func (r *Repository) ListProfiles(ctx context.Context) ([]*editorial.Profile, error) {
	query := `
		SELECT pr.id, pr.email, pr.display_name, pr.avatar_url, pr.role, pr.created_at, pr.updated_at,
		       COUNT(p.id)
		FROM profiles pr
		LEFT JOIN posts p ON p.author_id = pr.id
		GROUP BY pr.id
		ORDER BY pr.created_at DESC, pr.id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list profiles", err)
	}
	defer rows.Close()

	var profiles []*editorial.Profile
	for rows.Next() {
		var p editorial.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.DisplayName, &p.AvatarURL, &p.Role,
			&p.CreatedAt, &p.UpdatedAt, &p.PostCount); err != nil {
			return nil, r.handlePostgresError("scan profile", err)
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list profiles", err)
	}
	return profiles, nil
}

// Media operations

const mediaColumns = `id, file_name, original_name, file_url, file_type, file_size,
	alt_text, caption, uploaded_by, created_at`

func scanMedia(row pgx.Row) (*editorial.Media, error) {
	var m editorial.Media
	err := row.Scan(&m.ID, &m.FileName, &m.OriginalName, &m.FileURL, &m.FileType, &m.FileSize,
		&m.AltText, &m.Caption, &m.UploadedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) CreateMedia(ctx context.Context, m *editorial.Media) error {
	query := `INSERT INTO media (` + mediaColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query, m.ID, m.FileName, m.OriginalName, m.FileURL, m.FileType,
		m.FileSize, m.AltText, m.Caption, m.UploadedBy, m.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create media", err)
	}
	return nil
}

func (r *Repository) GetMedia(ctx context.Context, id uuid.UUID) (*editorial.Media, error) {
	m, err := scanMedia(r.db.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
	if err != nil {
		return nil, r.notFound("get media", err, editorial.ErrMediaNotFound)
	}
	return m, nil
}

func (r *Repository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete media", err)
	}
	if tag.RowsAffected() == 0 {
		return editorial.ErrMediaNotFound
	}
	return nil
}

func (r *Repository) ListMedia(ctx context.Context, filter editorial.MediaFilter) ([]*editorial.Media, int64, error) {
	var w where
	if filter.UploadedBy != nil {
		w.add("uploaded_by = $%d", *filter.UploadedBy)
	}
	if filter.FileType != "" {
		w.add("file_type LIKE $%d", escapeLike(filter.FileType)+"%")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM media`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count media", err)
	}

	limit, args := w.page(filter.Offset, filter.Limit)
	rows, err := r.db.Query(ctx, `SELECT `+mediaColumns+` FROM media`+w.String()+` ORDER BY created_at DESC, id`+limit, args...)
	if err != nil {
		return nil, 0, r.handlePostgresError("list media", err)
	}
	defer rows.Close()

	var items []*editorial.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("scan media", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.handlePostgresError("list media", err)
	}
	return items, total, nil
}
