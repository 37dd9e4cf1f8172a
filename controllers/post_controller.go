package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ShivamG1979/Blog-Post-Api/middleware"
	"github.com/ShivamG1979/Blog-Post-Api/models"
	"github.com/ShivamG1979/Blog-Post-Api/utils"
)

// PostController manages CRUD operations for posts. The owning user is fixed
// at creation; update and delete enforce ownership.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

type postRequest struct {
	Title       string `json:"title" binding:"required,min=1"`
	Description string `json:"description"`
	ImgURL      string `json:"imgUrl"`
}

// CreatePost allows authenticated users to create new posts.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	post := models.Post{
		UserID:      user.ID,
		Title:       title,
		Description: utils.Sanitize(req.Description),
		ImageURL:    strings.TrimSpace(req.ImgURL),
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}
	post.User = user

	utils.InvalidateByPrefix(utils.PostListCacheKey())

	utils.SuccessMessage(ctx, "post uploaded", gin.H{"post": post})
}

// ListPosts returns every post with its author. The endpoint is public and
// deliberately unpaginated; that is the API contract, not an oversight.
func (p *PostController) ListPosts(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(utils.PostListCacheKey()); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var posts []models.Post
	if err := p.db.Preload("User").Order("created_at DESC").Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}

	payload := gin.H{"posts": posts}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(utils.PostListCacheKey(), wrapper, 0)
	utils.Success(ctx, payload)
}

// GetPost returns a single post together with its like count.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not exist")
		return
	}

	if b, ok := utils.CacheGetBytes(utils.PostDetailCacheKey(postID)); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var post models.Post
	if err := p.db.Preload("User").Preload("Files").First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not exist")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	var likeCount int64
	if err := p.db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likeCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to count likes")
		return
	}

	payload := gin.H{"post": post, "like_count": likeCount}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(utils.PostDetailCacheKey(postID), wrapper, 0)
	utils.Success(ctx, payload)
}

// UpdatePost overwrites title/description/image. Owner only; the owning
// user id itself is immutable.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40025, "title cannot be empty")
		return
	}

	postID, ok := pathID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40403, "post not exist")
		return
	}
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not exist")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	if post.UserID != user.ID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you are not authorized to update this post")
		return
	}

	post.Title = title
	post.Description = utils.Sanitize(req.Description)
	post.ImageURL = strings.TrimSpace(req.ImgURL)
	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}

	utils.InvalidatePostCaches(postID)

	utils.SuccessMessage(ctx, "your post has been updated", gin.H{"post": post})
}

// DeletePost removes a post and its likes. Owner only. Comments are left in
// place on purpose; the thread history outlives the post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40404, "post not exist")
		return
	}
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not exist")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load post")
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	if post.UserID != user.ID {
		utils.Error(ctx, http.StatusForbidden, 40302, "you are not authorized to delete this post")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}

	utils.InvalidatePostCaches(postID)

	utils.SuccessMessage(ctx, "your post has been deleted", nil)
}
