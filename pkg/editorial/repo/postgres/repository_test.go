package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

func TestHandlePostgresError(t *testing.T) {
	r := &Repository{}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "post slug collision",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "posts_slug_key"},
			want: editorial.ErrSlugTaken,
		},
		{
			name: "tag slug collision",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "tags_slug_key"},
			want: editorial.ErrSlugTaken,
		},
		{
			name: "email collision",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "profiles_email_key"},
			want: editorial.ErrDuplicate,
		},
		{
			name: "missing parent row",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "post_tags_tag_id_fkey"},
			want: editorial.ErrInvalidReference,
		},
		{
			name: "missing column value",
			err:  &pgconn.PgError{Code: "23502", ColumnName: "title"},
			want: editorial.ErrInvalidInput,
		},
		{
			name: "check constraint",
			err:  &pgconn.PgError{Code: "23514", ConstraintName: "posts_status_check"},
			want: editorial.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.handlePostgresError("op", tt.err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("UnknownErrorHasNoKind", func(t *testing.T) {
		err := r.handlePostgresError("op", errors.New("connection refused"))
		assert.Equal(t, editorial.ErrDependencyFailure, editorial.Kind(err))
		assert.Contains(t, err.Error(), "database error in op")
	})

	t.Run("MissingTable", func(t *testing.T) {
		err := r.handlePostgresError("op", &pgconn.PgError{Code: "42P01"})
		assert.Contains(t, err.Error(), "migration required")
		assert.Equal(t, editorial.ErrDependencyFailure, editorial.Kind(err))
	})

	t.Run("NoRows", func(t *testing.T) {
		err := r.notFound("get post", pgx.ErrNoRows, editorial.ErrPostNotFound)
		assert.ErrorIs(t, err, editorial.ErrPostNotFound)
	})
}

func TestWhereBuilder(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.add("status = $%d", "published")
	w.add("(title ILIKE $%[1]d OR content ILIKE $%[1]d)", "%derby%")
	assert.Equal(t, " WHERE status = $1 AND (title ILIKE $2 OR content ILIKE $2)", w.String())

	clause, args := w.page(40, 20)
	assert.Equal(t, " LIMIT $3 OFFSET $4", clause)
	assert.Equal(t, []interface{}{"published", "%derby%", 20, 40}, args)
	assert.Len(t, w.args, 2, "page must not grow the condition arguments")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\% \_real\_ a\\b`, escapeLike(`100% _real_ a\b`))
}

// setupTestRepository connects to TEST_DATABASE_URL, migrates a fresh schema and
// drops it after the test.
func setupTestRepository(t *testing.T) *Repository {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	schemaName := fmt.Sprintf("editorial_test_%d", time.Now().UnixNano())

	admin, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schemaName)
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(dbURL)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET search_path TO "+schemaName)
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schemaName+" CASCADE")
		admin.Close()
	})

	require.NoError(t, Migrate(ctx, pool))
	// Running twice must be harmless
	require.NoError(t, Migrate(ctx, pool))
	return NewWithPool(pool)
}

func TestRepository_Integration(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	author := &editorial.Profile{ID: uuid.New(), Email: "writer@example.com", DisplayName: "Writer", Role: editorial.RoleAuthor, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.CreateProfile(ctx, author))
	dup := *author
	dup.ID = uuid.New()
	assert.ErrorIs(t, repo.CreateProfile(ctx, &dup), editorial.ErrDuplicate)

	category := &editorial.Category{ID: uuid.New(), Name: "Sports", Slug: "sports", Color: editorial.DefaultCategoryColor, CreatedAt: now}
	require.NoError(t, repo.CreateCategory(ctx, category))

	post := &editorial.Post{
		ID: uuid.New(), Title: "Derby Day Recap", Slug: "derby-day-recap", Content: "body",
		Status: editorial.PostStatusDraft, CategoryID: &category.ID, AuthorID: author.ID,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.CreatePost(ctx, post))

	t.Run("SlugCollision", func(t *testing.T) {
		clash := *post
		clash.ID = uuid.New()
		assert.ErrorIs(t, repo.CreatePost(ctx, &clash), editorial.ErrSlugTaken)
	})

	t.Run("GetAndCount", func(t *testing.T) {
		got, err := repo.GetPostBySlug(ctx, "derby-day-recap")
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.ID)
		require.NotNil(t, got.CategoryID)
		assert.Nil(t, got.PublishedAt)

		n, err := repo.AddViewCount(ctx, post.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		got.Title = "Renamed"
		require.NoError(t, repo.UpdatePost(ctx, got))
		stored, err := repo.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", stored.Title)
		assert.Equal(t, int64(3), stored.ViewCount)

		_, err = repo.GetPost(ctx, uuid.New())
		assert.ErrorIs(t, err, editorial.ErrPostNotFound)
	})

	t.Run("TagsInTransaction", func(t *testing.T) {
		b := &editorial.Tag{ID: uuid.New(), Name: "Bravo", Slug: "bravo", CreatedAt: now}
		a := &editorial.Tag{ID: uuid.New(), Name: "Alpha", Slug: "alpha", CreatedAt: now}
		require.NoError(t, repo.CreateTag(ctx, b))
		require.NoError(t, repo.CreateTag(ctx, a))

		err := repo.InTx(ctx, func(tx editorial.Repository) error {
			return tx.AddPostTags(ctx, post.ID, []uuid.UUID{b.ID, a.ID})
		})
		require.NoError(t, err)

		err = repo.AddPostTags(ctx, post.ID, []uuid.UUID{uuid.New()})
		assert.ErrorIs(t, err, editorial.ErrInvalidReference)

		tags, err := repo.ListTagsForPosts(ctx, []uuid.UUID{post.ID})
		require.NoError(t, err)
		require.Len(t, tags[post.ID], 2)
		assert.Equal(t, "Alpha", tags[post.ID][0].Name)

		rollback := errors.New("rollback")
		err = repo.InTx(ctx, func(tx editorial.Repository) error {
			require.NoError(t, tx.RemovePostTags(ctx, post.ID, []uuid.UUID{a.ID}))
			return rollback
		})
		assert.ErrorIs(t, err, rollback)
		ids, err := repo.ListPostTagIDs(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, ids, 2, "failed transaction must roll back")
	})

	t.Run("SEOUpsertKeepsCreatedAt", func(t *testing.T) {
		title := "Meta"
		settings := &editorial.SEOSettings{PostID: post.ID, MetaTitle: &title, RobotsMeta: editorial.DefaultRobotsMeta, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.UpsertSEOSettings(ctx, settings))

		later := now.Add(time.Hour)
		settings.CreatedAt = later
		settings.UpdatedAt = later
		require.NoError(t, repo.UpsertSEOSettings(ctx, settings))

		got, err := repo.GetSEOSettings(ctx, post.ID)
		require.NoError(t, err)
		assert.True(t, got.CreatedAt.Equal(now))
		assert.True(t, got.UpdatedAt.Equal(later))
		assert.Nil(t, got.OGTitle)
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		root := &editorial.Comment{ID: uuid.New(), PostID: post.ID, AuthorName: "R", AuthorEmail: "r@example.com", Content: "hi", Status: editorial.CommentStatusPending, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.CreateComment(ctx, root))
		reply := &editorial.Comment{ID: uuid.New(), PostID: post.ID, ParentID: &root.ID, AuthorName: "R", AuthorEmail: "r@example.com", Content: "re", Status: editorial.CommentStatusPending, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.CreateComment(ctx, reply))

		roots, total, err := repo.ListRootComments(ctx, editorial.CommentFilter{PostID: &post.ID, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, roots, 1)

		require.NoError(t, repo.DeletePost(ctx, post.ID))

		_, err = repo.GetComment(ctx, reply.ID)
		assert.ErrorIs(t, err, editorial.ErrCommentNotFound)
		_, err = repo.GetSEOSettings(ctx, post.ID)
		assert.ErrorIs(t, err, editorial.ErrNotFound)
		ids, err := repo.ListPostTagIDs(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
