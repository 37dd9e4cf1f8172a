package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ShivamG1979/Blog-Post-Api/models"
	"github.com/ShivamG1979/Blog-Post-Api/routes"
	"github.com/ShivamG1979/Blog-Post-Api/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	// Keep the per-IP limiter out of the way; every request here shares one IP.
	os.Setenv("RATE_LIMIT_PER_MINUTE", "1000000")
	// Point the cache at a closed port so tests never see a shared Redis.
	os.Setenv("REDIS_PORT", "6399")
	// Small cap so the size limit can be exercised with a ~1MB payload.
	os.Setenv("UPLOAD_MAX_SIZE_MB", "1")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeUploader struct {
	fail    bool
	uploads int
}

func (f *fakeUploader) Upload(_ context.Context, data []byte, contentType, publicID, folder string) (*utils.UploadResult, error) {
	if f.fail {
		return nil, errors.New("media host unavailable")
	}
	f.uploads++
	return &utils.UploadResult{
		PublicID: publicID,
		URL:      "https://cdn.test/" + folder + "/" + publicID,
	}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.PostLike{}, &models.Comment{}, &models.UploadedFile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newAPI(t *testing.T) (*gorm.DB, *gin.Engine, *fakeUploader) {
	t.Helper()
	db := newTestDB(t)
	up := &fakeUploader{}
	return db, routes.SetupRouter(db, up), up
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Auth", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func registerUser(t *testing.T, r *gin.Engine, name, email string) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/register", "", gin.H{
		"name": name, "email": email, "password": "password1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
}

func loginUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/login", "", gin.H{
		"email": email, "password": "password1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.Token == "" {
		t.Fatal("login returned empty token")
	}
	return data.Token
}

func createPost(t *testing.T, r *gin.Engine, token, title string) uint {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/addpost", token, gin.H{
		"title": title, "description": "a description", "imgUrl": "https://img.test/1.png",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("addpost: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Post models.Post `json:"post"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	if data.Post.ID == 0 {
		t.Fatal("created post has no id")
	}
	return data.Post.ID
}

func likeCount(t *testing.T, db *gorm.DB, postID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		t.Fatalf("count likes: %v", err)
	}
	return n
}

func TestRegisterValidation(t *testing.T) {
	_, r, _ := newAPI(t)

	w := doJSON(r, http.MethodPost, "/api/register", "", gin.H{"name": "alice"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: status %d, want 400", w.Code)
	}

	registerUser(t, r, "alice", "alice@example.com")
	w = doJSON(r, http.MethodPost, "/api/register", "", gin.H{
		"name": "alice2", "email": "alice@example.com", "password": "password1",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email: status %d, want 409", w.Code)
	}
}

func TestLogin(t *testing.T) {
	_, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")

	w := doJSON(r, http.MethodPost, "/api/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d, want 401", w.Code)
	}

	loginUser(t, r, "alice@example.com")
}

func TestMeAndGetUser(t *testing.T) {
	_, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	token := loginUser(t, r, "alice@example.com")

	w := doJSON(r, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/me: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("/me without token: status %d, want 401", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/user/1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/user/1: status %d body %s", w.Code, w.Body.String())
	}
	if b := w.Body.String(); bytes.Contains([]byte(b), []byte("password")) {
		t.Errorf("user payload leaks credential material: %s", b)
	}

	w = doJSON(r, http.MethodGet, "/api/user/99", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("/user/99: status %d, want 404", w.Code)
	}
}

func TestListPostsPublicAndUnpaginated(t *testing.T) {
	_, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	token := loginUser(t, r, "alice@example.com")
	for i := 0; i < 3; i++ {
		createPost(t, r, token, fmt.Sprintf("post %d", i))
	}

	// No token: listing is public.
	w := doJSON(r, http.MethodGet, "/api/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/posts: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Posts []models.Post `json:"posts"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatalf("decode posts: %v", err)
	}
	if len(data.Posts) != 3 {
		t.Fatalf("len(posts) = %d, want all 3", len(data.Posts))
	}
}

func TestGetPost(t *testing.T) {
	_, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	token := loginUser(t, r, "alice@example.com")
	postID := createPost(t, r, token, "hello")

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/post/%d", postID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/post/:id: status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Post      models.Post `json:"post"`
		LikeCount int64       `json:"like_count"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Post.Title != "hello" || data.LikeCount != 0 {
		t.Errorf("got title=%q like_count=%d", data.Post.Title, data.LikeCount)
	}

	w = doJSON(r, http.MethodGet, "/api/post/9999", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing post: status %d, want 404", w.Code)
	}
}

// Crafted :id values must behave like records that do not exist, never like
// conditions. "1 AND 1=1" would resolve post 1 if the raw string were
// interpreted, so a 200 here means the parameter reached the database.
func TestPathParamNeverInterpreted(t *testing.T) {
	_, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	token := loginUser(t, r, "alice@example.com")
	postID := createPost(t, r, token, "plain")

	for _, path := range []string{
		"/api/post/1%20AND%201%3D1",
		"/api/post/1%20OR%201%3D1",
		"/api/post/abc",
		"/api/post/-1",
		"/api/user/1%20OR%201%3D1",
	} {
		if w := doJSON(r, http.MethodGet, path, token, nil); w.Code != http.StatusNotFound {
			t.Fatalf("GET %s: status %d, want 404", path, w.Code)
		}
	}
	if w := doJSON(r, http.MethodPost, "/api/post/like/1%20OR%201%3D1", token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("like with crafted id: status %d, want 404", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/post/comment/1%20OR%201%3D1", token, gin.H{"comment": "x"}); w.Code != http.StatusNotFound {
		t.Fatalf("comment with crafted id: status %d, want 404", w.Code)
	}

	// Legitimate ids still resolve.
	if w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/post/%d", postID), token, nil); w.Code != http.StatusOK {
		t.Fatalf("GET real post: status %d body %s", w.Code, w.Body.String())
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	db, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	registerUser(t, r, "bob", "bob@example.com")
	aliceToken := loginUser(t, r, "alice@example.com")
	bobToken := loginUser(t, r, "bob@example.com")
	postID := createPost(t, r, aliceToken, "likeable")

	path := fmt.Sprintf("/api/post/like/%d", postID)

	w := doJSON(r, http.MethodPost, path, bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first like: status %d body %s", w.Code, w.Body.String())
	}
	if n := likeCount(t, db, postID); n != 1 {
		t.Fatalf("like count after first like = %d, want 1", n)
	}

	w = doJSON(r, http.MethodPost, path, bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second like: status %d", w.Code)
	}
	if msg := decode(t, w).Message; msg != "user already liked this post" {
		t.Errorf("second like message = %q", msg)
	}
	if n := likeCount(t, db, postID); n != 1 {
		t.Fatalf("like count after duplicate like = %d, want still 1", n)
	}
}

func TestUnlike(t *testing.T) {
	db, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	registerUser(t, r, "bob", "bob@example.com")
	aliceToken := loginUser(t, r, "alice@example.com")
	bobToken := loginUser(t, r, "bob@example.com")
	postID := createPost(t, r, aliceToken, "likeable")

	path := fmt.Sprintf("/api/post/like/%d", postID)

	// Unliking before ever liking is an informational no-op.
	w := doJSON(r, http.MethodDelete, path, bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unlike before like: status %d", w.Code)
	}
	if msg := decode(t, w).Message; msg != "you haven't liked this post yet" {
		t.Errorf("message = %q", msg)
	}

	doJSON(r, http.MethodPost, path, bobToken, nil)
	if n := likeCount(t, db, postID); n != 1 {
		t.Fatalf("like count = %d, want 1", n)
	}

	w = doJSON(r, http.MethodDelete, path, bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unlike: status %d", w.Code)
	}
	if n := likeCount(t, db, postID); n != 0 {
		t.Fatalf("like count after unlike = %d, want 0", n)
	}
}

func TestUpdatePostOwnership(t *testing.T) {
	db, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	registerUser(t, r, "bob", "bob@example.com")
	aliceToken := loginUser(t, r, "alice@example.com")
	bobToken := loginUser(t, r, "bob@example.com")
	postID := createPost(t, r, aliceToken, "original title")

	path := fmt.Sprintf("/api/post/%d", postID)
	update := gin.H{"title": "hacked", "description": "x", "imgUrl": ""}

	w := doJSON(r, http.MethodPut, path, bobToken, update)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: status %d, want 403", w.Code)
	}
	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if post.Title != "original title" {
		t.Fatalf("post mutated by forbidden update: %q", post.Title)
	}

	w = doJSON(r, http.MethodPut, path, aliceToken, gin.H{"title": "new title", "description": "y", "imgUrl": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("owner update: status %d body %s", w.Code, w.Body.String())
	}
	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if post.Title != "new title" {
		t.Fatalf("owner update not persisted: %q", post.Title)
	}
}

func TestDeletePostOwnership(t *testing.T) {
	db, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	registerUser(t, r, "bob", "bob@example.com")
	aliceToken := loginUser(t, r, "alice@example.com")
	bobToken := loginUser(t, r, "bob@example.com")
	postID := createPost(t, r, aliceToken, "doomed")

	// Comments must survive the post.
	doJSON(r, http.MethodPost, fmt.Sprintf("/api/post/comment/%d", postID), bobToken, gin.H{"comment": "nice"})

	path := fmt.Sprintf("/api/post/%d", postID)
	if w := doJSON(r, http.MethodDelete, path, bobToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: status %d, want 403", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, path, aliceToken, nil); w.Code != http.StatusOK {
		t.Fatalf("owner delete: status %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, path, aliceToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", w.Code)
	}

	var comments int64
	if err := db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&comments).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if comments != 1 {
		t.Fatalf("comments after post delete = %d, want orphaned 1", comments)
	}
	if n := likeCount(t, db, postID); n != 0 {
		t.Fatalf("likes after post delete = %d, want 0", n)
	}
}

func TestCommentsNewestFirst(t *testing.T) {
	db, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	token := loginUser(t, r, "alice@example.com")
	postID := createPost(t, r, token, "commented")

	var alice models.User
	if err := db.Where("email = ?", "alice@example.com").First(&alice).Error; err != nil {
		t.Fatalf("load alice: %v", err)
	}

	// Seed with distinct timestamps so the ordering assertion is meaningful.
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		cm := models.Comment{
			PostID:    postID,
			UserID:    alice.ID,
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&cm).Error; err != nil {
			t.Fatalf("seed comment: %v", err)
		}
	}

	// A newly added comment leads the returned thread.
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/post/comment/%d", postID), token, gin.H{"comment": "newest"})
	if w.Code != http.StatusOK {
		t.Fatalf("add comment: status %d body %s", w.Code, w.Body.String())
	}
	var addData struct {
		PostComment models.Comment       `json:"post_comment"`
		Comments    []models.CommentView `json:"comments"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &addData); err != nil {
		t.Fatalf("decode add: %v", err)
	}
	if len(addData.Comments) != 4 {
		t.Fatalf("thread length = %d, want 4", len(addData.Comments))
	}
	if addData.Comments[0].Text != "newest" {
		t.Errorf("thread head = %q, want the new comment", addData.Comments[0].Text)
	}

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/post/comment/%d", postID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list comments: status %d", w.Code)
	}
	var listData struct {
		PostComment []models.CommentView `json:"post_comment"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &listData); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listData.PostComment) != 4 {
		t.Fatalf("listed %d comments, want 4", len(listData.PostComment))
	}
	for i := 1; i < len(listData.PostComment); i++ {
		if listData.PostComment[i-1].CreatedAt.Before(listData.PostComment[i].CreatedAt) {
			t.Fatalf("comments not newest-first at index %d", i)
		}
	}
	for _, cm := range listData.PostComment {
		if cm.User != "alice" {
			t.Errorf("comment author = %q, want alice", cm.User)
		}
	}

	if w := doJSON(r, http.MethodGet, "/api/post/comment/9999", token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("comments of missing post: status %d, want 404", w.Code)
	}
}

func TestCommentAnonymousFallback(t *testing.T) {
	db, r, _ := newAPI(t)
	registerUser(t, r, "alice", "alice@example.com")
	token := loginUser(t, r, "alice@example.com")
	postID := createPost(t, r, token, "haunted")

	// A comment whose author no longer resolves must render as Anonymous
	// without failing the request.
	ghost := models.Comment{PostID: postID, UserID: 4242, Content: "who am i"}
	if err := db.Create(&ghost).Error; err != nil {
		t.Fatalf("seed ghost comment: %v", err)
	}

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/post/comment/%d", postID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d body %s", w.Code, w.Body.String())
	}
	var listData struct {
		PostComment []models.CommentView `json:"post_comment"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &listData); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listData.PostComment) != 1 {
		t.Fatalf("listed %d comments, want 1", len(listData.PostComment))
	}
	if listData.PostComment[0].User != "Anonymous" {
		t.Errorf("author = %q, want Anonymous", listData.PostComment[0].User)
	}
}

// The register→post→like→unlike→forbidden-update→delete walkthrough.
func TestEndToEndScenario(t *testing.T) {
	db, r, _ := newAPI(t)
	registerUser(t, r, "Alice", "alice@example.com")
	registerUser(t, r, "Bob", "bob@example.com")
	aliceToken := loginUser(t, r, "alice@example.com")
	bobToken := loginUser(t, r, "bob@example.com")

	postID := createPost(t, r, aliceToken, "Hello")

	likePath := fmt.Sprintf("/api/post/like/%d", postID)
	doJSON(r, http.MethodPost, likePath, bobToken, nil)
	if n := likeCount(t, db, postID); n != 1 {
		t.Fatalf("like count = %d, want 1", n)
	}

	doJSON(r, http.MethodDelete, likePath, bobToken, nil)
	if n := likeCount(t, db, postID); n != 0 {
		t.Fatalf("like count = %d, want 0", n)
	}

	postPath := fmt.Sprintf("/api/post/%d", postID)
	w := doJSON(r, http.MethodPut, postPath, bobToken, gin.H{"title": "Hacked"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("bob update: status %d, want 403", w.Code)
	}

	if w := doJSON(r, http.MethodDelete, postPath, aliceToken, nil); w.Code != http.StatusOK {
		t.Fatalf("alice delete: status %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, postPath, aliceToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", w.Code)
	}
}
