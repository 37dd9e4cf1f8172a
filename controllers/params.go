package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// pathID parses the numeric :id path parameter. The raw string must never
// reach the database as a condition; anything non-numeric is handled exactly
// like a record that does not exist.
func pathID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
