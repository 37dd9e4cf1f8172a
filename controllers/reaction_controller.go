package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ShivamG1979/Blog-Post-Api/middleware"
	"github.com/ShivamG1979/Blog-Post-Api/models"
	"github.com/ShivamG1979/Blog-Post-Api/utils"
)

// ReactionController owns the like/unlike set on posts. Any authenticated
// user may like any post; the composite unique index on post_likes keeps the
// set duplicate-free without a read-modify-write cycle.
type ReactionController struct {
	db *gorm.DB
}

// NewReactionController creates a ReactionController.
func NewReactionController(db *gorm.DB) *ReactionController {
	return &ReactionController{db: db}
}

// Like adds the caller to a post's likes set. Liking twice is a harmless
// no-op reported as such, not a failure.
func (r *ReactionController) Like(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40405, "post not exist")
		return
	}
	var post models.Post
	if err := r.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not exist")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load post")
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	like := models.PostLike{PostID: post.ID, UserID: user.ID}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to like post")
		return
	}

	likeCount := r.countLikes(post.ID)
	utils.InvalidateByPrefix(utils.PostDetailCacheKey(postID))

	if res.RowsAffected == 0 {
		utils.SuccessMessage(ctx, "user already liked this post", gin.H{"like_count": likeCount})
		return
	}
	utils.SuccessMessage(ctx, "post liked", gin.H{"post": post, "like_count": likeCount})
}

// Unlike removes the caller from a post's likes set. Unliking a post the
// caller never liked is reported as an informational no-op.
func (r *ReactionController) Unlike(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40406, "post not exist")
		return
	}
	var post models.Post
	if err := r.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40406, "post not exist")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load post")
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return
	}

	res := r.db.Where("post_id = ? AND user_id = ?", post.ID, user.ID).Delete(&models.PostLike{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to unlike post")
		return
	}

	likeCount := r.countLikes(post.ID)
	utils.InvalidateByPrefix(utils.PostDetailCacheKey(postID))

	if res.RowsAffected == 0 {
		utils.SuccessMessage(ctx, "you haven't liked this post yet", gin.H{"like_count": likeCount})
		return
	}
	utils.SuccessMessage(ctx, "post unliked successfully", gin.H{"post": post, "like_count": likeCount})
}

func (r *ReactionController) countLikes(postID uint) int64 {
	var n int64
	if err := r.db.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("failed to count likes for post %d: %v", postID, err)
		}
	}
	return n
}
