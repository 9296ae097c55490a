package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-editorial/pkg/editorial"
	"github.com/tendant/simple-editorial/pkg/editorial/repo/memory"
	memorystorage "github.com/tendant/simple-editorial/pkg/editorial/storage/memory"
)

type testServer struct {
	router  http.Handler
	service editorial.Service
	auth    *jwtauth.JWTAuth
	admin   editorial.Principal
	editor  editorial.Principal
	author  editorial.Principal
}

// setupTestServer creates a router over an in-memory service with one profile per role
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	service, err := editorial.New(
		editorial.WithRepository(memory.New()),
		editorial.WithBlobStore(memorystorage.New("/api/v1/public/files")),
	)
	require.NoError(t, err)

	ts := &testServer{service: service, auth: NewJWTAuth("test-secret")}
	ts.router = NewRouter(service, ts.auth, nil)

	for _, p := range []struct {
		email string
		role  editorial.Role
		dst   *editorial.Principal
	}{
		{"admin@example.com", editorial.RoleAdmin, &ts.admin},
		{"editor@example.com", editorial.RoleEditor, &ts.editor},
		{"author@example.com", editorial.RoleAuthor, &ts.author},
	} {
		profile, err := service.CreateProfile(context.Background(), editorial.CreateProfileRequest{
			Email: p.email, DisplayName: string(p.role), Role: p.role,
		})
		require.NoError(t, err)
		*p.dst = editorial.Principal{ID: profile.ID, Role: p.role}
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, as *editorial.Principal, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := IssueToken(ts.auth, *as, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (ts *testServer) publishedPost(t *testing.T, title string) *editorial.Post {
	t.Helper()
	post, err := ts.service.CreatePost(context.Background(), ts.author, editorial.CreatePostRequest{
		Title: title, Content: "body", Status: editorial.PostStatusPublished,
	})
	require.NoError(t, err)
	return post
}

func TestPublic_Posts(t *testing.T) {
	ts := setupTestServer(t)
	post := ts.publishedPost(t, "Season Opener")
	draft, err := ts.service.CreatePost(context.Background(), ts.author, editorial.CreatePostRequest{
		Title: "Unfinished", Content: "body",
	})
	require.NoError(t, err)

	w := ts.do(t, http.MethodGet, "/api/v1/public/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[editorial.Page[*editorial.Post]](t, w)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, post.ID, page.Items[0].ID)

	w = ts.do(t, http.MethodGet, "/api/v1/public/posts/"+post.Slug, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[editorial.Post](t, w)
	assert.Equal(t, int64(1), got.ViewCount)

	t.Run("DraftHidden", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/public/posts/"+draft.Slug, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, contentNotAvailable, decode[ErrorResponse](t, w).Error)
	})

	t.Run("UnknownSlug", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/public/posts/no-such-post", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, contentNotAvailable, decode[ErrorResponse](t, w).Error)
	})

	t.Run("BadPaging", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/public/posts?limit=-1", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPublic_CommentModeration(t *testing.T) {
	ts := setupTestServer(t)
	post := ts.publishedPost(t, "Great Match")
	threadPath := "/api/v1/public/posts/" + post.Slug + "/comments"

	w := ts.do(t, http.MethodPost, threadPath, nil, PublicCommentRequest{
		AuthorName: "Sam", AuthorEmail: "sam@example.com", Content: "Great match!",
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	comment := decode[editorial.Comment](t, w)
	assert.Equal(t, editorial.CommentStatusPending, comment.Status)

	w = ts.do(t, http.MethodGet, threadPath, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]*editorial.Comment](t, w), "pending comments stay hidden")

	statusPath := "/api/v1/admin/comments/" + comment.ID.String() + "/status"
	w = ts.do(t, http.MethodPut, statusPath, &ts.author, SetStatusRequest{Status: editorial.CommentStatusApproved})
	assert.Equal(t, http.StatusForbidden, w.Code, "authors cannot moderate")

	w = ts.do(t, http.MethodPut, statusPath, &ts.editor, SetStatusRequest{Status: editorial.CommentStatusApproved})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, threadPath, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	thread := decode[[]*editorial.Comment](t, w)
	require.Len(t, thread, 1)
	assert.Equal(t, comment.ID, thread[0].ID)

	t.Run("InvalidEmail", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, threadPath, nil, PublicCommentRequest{
			AuthorName: "Sam", AuthorEmail: "not-an-email", Content: "hi",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("QueueByStatus", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/admin/comments?status=approved", &ts.admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), decode[editorial.Page[*editorial.Comment]](t, w).Total)
	})
}

func TestAdmin_Auth(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/admin/posts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/posts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, token, err := ts.auth.Encode(map[string]interface{}{"sub": "someone", "role": "admin"})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/profiles", &ts.editor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/profiles/me", &ts.editor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ts.editor.ID, decode[editorial.Profile](t, w).ID)
}

func TestAdmin_PostLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/admin/posts", &ts.author, editorial.CreatePostRequest{
		Title: "Derby Day Recap", Content: "What a game",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[editorial.Post](t, w)
	assert.Equal(t, ts.author.ID, post.AuthorID)
	assert.Equal(t, editorial.PostStatusDraft, post.Status)
	assert.Equal(t, "derby-day-recap", post.Slug)

	path := "/api/v1/admin/posts/" + post.ID.String()
	published := editorial.PostStatusPublished
	w = ts.do(t, http.MethodPatch, path, &ts.editor, editorial.UpdatePostRequest{Status: &published})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[editorial.Post](t, w)
	assert.Equal(t, editorial.PostStatusPublished, updated.Status)
	assert.NotNil(t, updated.PublishedAt)

	t.Run("InvalidStatus", func(t *testing.T) {
		bogus := editorial.PostStatus("live")
		w := ts.do(t, http.MethodPatch, path, &ts.editor, editorial.UpdatePostRequest{Status: &bogus})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ListByStatus", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/admin/posts?status=published", &ts.author, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), decode[editorial.Page[*editorial.Post]](t, w).Total)
	})

	t.Run("BadID", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/admin/posts/not-a-uuid", &ts.author, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	w = ts.do(t, http.MethodDelete, path, &ts.admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, path, &ts.admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_TagsAndSEO(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/admin/tags", &ts.author, editorial.CreateTagRequest{Name: "Football"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/admin/tags", &ts.editor, editorial.CreateTagRequest{Name: "Football"})
	require.Equal(t, http.StatusCreated, w.Code)
	tag := decode[editorial.Tag](t, w)

	w = ts.do(t, http.MethodPost, "/api/v1/admin/tags", &ts.editor, editorial.CreateTagRequest{Name: "Football"})
	assert.Equal(t, http.StatusConflict, w.Code)

	post := ts.publishedPost(t, "Cup Final")
	tagsPath := "/api/v1/admin/posts/" + post.ID.String() + "/tags"

	w = ts.do(t, http.MethodPut, tagsPath, &ts.author, SyncTagsRequest{TagIDs: []uuid.UUID{tag.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{tag.ID}, decode[SyncTagsResponse](t, w).Added)

	w = ts.do(t, http.MethodPut, tagsPath, &ts.author, SyncTagsRequest{TagIDs: []uuid.UUID{tag.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	resync := decode[SyncTagsResponse](t, w)
	assert.Empty(t, resync.Added)
	assert.Empty(t, resync.Removed)

	w = ts.do(t, http.MethodGet, tagsPath, &ts.author, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]*editorial.Tag](t, w), 1)

	title := "Cup Final | Sports"
	w = ts.do(t, http.MethodPut, "/api/v1/admin/posts/"+post.ID.String()+"/seo", &ts.author, editorial.SEOPatch{MetaTitle: &title})
	require.Equal(t, http.StatusOK, w.Code)
	seo := decode[editorial.SEOSettings](t, w)
	require.NotNil(t, seo.MetaTitle)
	assert.Equal(t, title, *seo.MetaTitle)
	assert.Equal(t, editorial.DefaultRobotsMeta, seo.RobotsMeta)
}

func TestAdmin_CreatePostPartialSync(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/admin/posts", &ts.author, editorial.CreatePostRequest{
		Title: "Half Saved", Content: "body", TagIDs: []uuid.UUID{uuid.New()},
	})
	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())
	resp := decode[SyncFailureResponse](t, w)
	require.NotNil(t, resp.Post)
	assert.Equal(t, editorial.SyncStepTags, resp.Step)

	_, err := ts.service.GetPost(context.Background(), resp.Post.ID)
	assert.NoError(t, err, "the post row is kept")
}

func TestAdmin_Categories(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/admin/categories", &ts.editor, editorial.CreateCategoryRequest{Name: "Local News"})
	require.Equal(t, http.StatusCreated, w.Code)
	category := decode[editorial.Category](t, w)
	assert.Equal(t, "local-news", category.Slug)
	assert.Equal(t, editorial.DefaultCategoryColor, category.Color)

	name := "Regional News"
	w = ts.do(t, http.MethodPatch, "/api/v1/admin/categories/"+category.ID.String(), &ts.editor, editorial.UpdateCategoryRequest{Name: &name})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Regional News", decode[editorial.Category](t, w).Name)

	w = ts.do(t, http.MethodGet, "/api/v1/public/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]*editorial.Category](t, w), 1)

	w = ts.do(t, http.MethodDelete, "/api/v1/admin/categories/"+category.ID.String(), &ts.admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/admin/categories/"+category.ID.String(), &ts.author, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmin_Media(t *testing.T) {
	ts := setupTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "Kickoff.JPG")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("alt_text", "The kickoff"))
	require.NoError(t, mw.Close())

	token, err := IssueToken(ts.auth, ts.author, 0)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	media := decode[editorial.Media](t, w)
	assert.Equal(t, "Kickoff.JPG", media.OriginalName)
	assert.True(t, strings.HasSuffix(media.FileName, ".jpg"))
	assert.Equal(t, "The kickoff", media.AltText)
	assert.Equal(t, int64(len("jpeg bytes")), media.FileSize)
	require.NotNil(t, media.UploadedBy)
	assert.Equal(t, ts.author.ID, *media.UploadedBy)
	assert.Equal(t, "/api/v1/public/files/media/"+media.FileName, media.FileURL)

	w = ts.do(t, http.MethodGet, media.FileURL, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg bytes", w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/v1/admin/media?uploaded_by="+ts.author.ID.String(), &ts.author, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[editorial.Page[*editorial.Media]](t, w).Total)

	w = ts.do(t, http.MethodDelete, "/api/v1/admin/media/"+media.ID.String(), &ts.author, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, media.FileURL, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("MissingFile", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("alt_text", "nothing"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{editorial.ErrPostNotFound, http.StatusNotFound},
		{editorial.ErrSlugTaken, http.StatusConflict},
		{editorial.ErrInvalidTransition, http.StatusConflict},
		{editorial.ErrScheduleInPast, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusBadGateway},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
