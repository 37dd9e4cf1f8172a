package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ShivamG1979/Blog-Post-Api/models"
	"github.com/ShivamG1979/Blog-Post-Api/utils"
)

const (
	// ContextUserKey is the key used to store the resolved authenticated user in Gin context.
	ContextUserKey = "current_user"
	// ContextUserIDKey stores just the user ID for handlers that only need it.
	ContextUserIDKey = "user_id"
	// AuthHeader is the request header carrying the bare token. The original
	// API contract predates a Bearer scheme and clients still send it this way.
	AuthHeader = "Auth"
)

// AuthRequired resolves the caller's identity from the Auth header token and
// attaches the User to the request context, or rejects the request. The token
// must verify, be unexpired, and reference an existing user.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := strings.TrimSpace(ctx.GetHeader(AuthHeader))
		if token == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "login first")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				utils.Error(ctx, http.StatusUnauthorized, 40102, "token expired, please login again")
			} else {
				utils.Error(ctx, http.StatusUnauthorized, 40103, "invalid token")
			}
			ctx.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "user not exist")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserKey, user)
		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Next()
	}
}

// CurrentUser fetches the authenticated user attached by AuthRequired.
func CurrentUser(ctx *gin.Context) (models.User, bool) {
	value, exists := ctx.Get(ContextUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}
