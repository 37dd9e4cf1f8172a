package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ShivamG1979/Blog-Post-Api/config"
	"github.com/ShivamG1979/Blog-Post-Api/middleware"
	"github.com/ShivamG1979/Blog-Post-Api/models"
	"github.com/ShivamG1979/Blog-Post-Api/utils"
)

// UploadController proxies binary payloads to the external media host and
// records the returned URL/identifier. No retry on upstream failure.
type UploadController struct {
	db       *gorm.DB
	uploader utils.MediaUploader
}

// NewUploadController creates an UploadController with an injected media client.
func NewUploadController(db *gorm.DB, uploader utils.MediaUploader) *UploadController {
	return &UploadController{db: db, uploader: uploader}
}

// UploadFile stores a standalone file on the media host together with the
// submitted contact details.
func (u *UploadController) UploadFile(ctx *gin.Context) {
	name := strings.TrimSpace(ctx.PostForm("name"))
	email := strings.TrimSpace(ctx.PostForm("email"))
	password := ctx.PostForm("password")

	file, header, err := ctx.Request.FormFile("file")
	if err != nil || name == "" || email == "" || password == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "please provide all required information")
		return
	}
	defer file.Close()

	data, contentType, err := readUpload(file, header)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, err.Error())
		return
	}

	publicID := fmt.Sprintf("user_%s_%s", name, uuid.NewString())
	result, err := u.uploader.Upload(ctx.Request.Context(), data, contentType, publicID, config.Get().MediaFolder)
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("media upload failed: %v", err)
		}
		utils.Error(ctx, http.StatusBadGateway, 50250, "file upload failed")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to hash password")
		return
	}

	record := models.UploadedFile{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Filename:     filepath.Base(header.Filename),
		PublicID:     result.PublicID,
		URL:          result.URL,
	}
	if err := u.db.Create(&record).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to save upload record")
		return
	}

	utils.SuccessMessage(ctx, "file and user information uploaded successfully", gin.H{
		"user":     record,
		"file_url": result.URL,
	})
}

// UploadPostImage replaces a post's image. Only the post owner may do so.
func (u *UploadController) UploadPostImage(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40409, "post not found")
		return
	}

	file, header, err := ctx.Request.FormFile("image")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "please provide an image file")
		return
	}
	defer file.Close()

	var post models.Post
	if err := u.db.First(&post, postID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40409, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load post")
		return
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40116, "unauthorized")
		return
	}
	if post.UserID != user.ID {
		utils.Error(ctx, http.StatusForbidden, 40303, "you are not authorized to modify this post")
		return
	}

	data, contentType, err := readUpload(file, header)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40053, err.Error())
		return
	}

	publicID := fmt.Sprintf("post_%d_%s", postID, uuid.NewString())
	result, err := u.uploader.Upload(ctx.Request.Context(), data, contentType, publicID, "posts")
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Errorf("post image upload failed: %v", err)
		}
		utils.Error(ctx, http.StatusBadGateway, 50251, "image upload failed")
		return
	}

	post.ImageURL = result.URL
	if err := u.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to update post")
		return
	}

	record := models.UploadedFile{
		Name:     user.Name,
		Email:    user.Email,
		Filename: filepath.Base(header.Filename),
		PublicID: result.PublicID,
		URL:      result.URL,
		PostID:   &post.ID,
	}
	if err := u.db.Create(&record).Error; err != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("failed to record post image upload: %v", err)
	}

	utils.InvalidatePostCaches(postID)

	utils.SuccessMessage(ctx, "image uploaded successfully", gin.H{
		"post":      post,
		"image_url": result.URL,
	})
}

// readUpload drains a multipart file enforcing the configured size cap.
func readUpload(file multipart.File, header *multipart.FileHeader) ([]byte, string, error) {
	maxSize := int64(config.Get().UploadMaxSizeMB) << 20
	if header.Size > 0 && header.Size > maxSize {
		return nil, "", fmt.Errorf("file size exceeds %dMB", config.Get().UploadMaxSizeMB)
	}

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > maxSize {
		return nil, "", fmt.Errorf("file size exceeds %dMB", config.Get().UploadMaxSizeMB)
	}

	contentType := header.Header.Get("Content-Type")
	return data, contentType, nil
}
