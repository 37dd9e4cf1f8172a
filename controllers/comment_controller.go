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

// CommentController owns comment creation and retrieval. Author names are
// resolved at read time so renamed users never leave stale names behind;
// unresolvable authors render as "Anonymous" rather than failing the list.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a CommentController.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// Add creates a comment on an existing post and returns both the new comment
// and the full re-sorted thread, sparing the client a second round-trip.
func (c *CommentController) Add(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40407, "post not exist")
		return
	}
	var post models.Post
	if err := c.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40407, "post not exist")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load post")
		return
	}

	var req struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Comment))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "comment cannot be empty")
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, "unauthorized")
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: content,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create comment")
		return
	}

	comments, err := c.formattedComments(post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load comments")
		return
	}

	utils.InvalidateByPrefix(utils.PostDetailCacheKey(postID))

	utils.SuccessMessage(ctx, "comment added successfully", gin.H{
		"post_comment": comment,
		"comments":     comments,
	})
}

// ListByPost returns all comments for a post, newest first, annotated with
// the author's display name.
func (c *CommentController) ListByPost(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40408, "post not exist")
		return
	}
	var post models.Post
	if err := c.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40408, "post not exist")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load post")
		return
	}

	comments, err := c.formattedComments(post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load comments")
		return
	}

	utils.SuccessMessage(ctx, "post comments retrieved", gin.H{"post_comment": comments})
}

// formattedComments loads a post's comments newest-first and resolves each
// author's current display name in a single batched user lookup.
func (c *CommentController) formattedComments(postID uint) ([]models.CommentView, error) {
	var comments []models.Comment
	if err := c.db.Where("post_id = ?", postID).Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	userIDs := make([]uint, 0, len(comments))
	seen := make(map[uint]bool, len(comments))
	for _, cm := range comments {
		if !seen[cm.UserID] {
			seen[cm.UserID] = true
			userIDs = append(userIDs, cm.UserID)
		}
	}

	// Name resolution is best-effort: a failed lookup must never fail the
	// whole request, the affected authors just render as Anonymous.
	nameByID := make(map[uint]string, len(userIDs))
	var users []models.User
	if err := c.db.Where("id IN ?", userIDs).Find(&users).Error; err == nil {
		for _, u := range users {
			nameByID[u.ID] = u.Name
		}
	} else if utils.Sugar != nil {
		utils.Sugar.Warnf("failed to resolve comment authors for post %d: %v", postID, err)
	}

	for _, cm := range comments {
		name, ok := nameByID[cm.UserID]
		if !ok || name == "" {
			name = "Anonymous"
		}
		views = append(views, models.CommentView{
			ID:        cm.ID,
			Text:      cm.Content,
			User:      name,
			UserID:    cm.UserID,
			CreatedAt: cm.CreatedAt,
		})
	}
	return views, nil
}
