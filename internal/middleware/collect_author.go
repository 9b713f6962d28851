package middleware

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // ID parsing

	"crowdfunding/internal/domain" // Importing domain models
	"crowdfunding/internal/repo"   // Repository functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// CollectKey is the context key holding the collect loaded by CollectAuthorOnly
const CollectKey = "collect"

// ParamID parses a positive numeric path parameter
func ParamID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// CollectAuthorOnly loads the collect named by the :id parameter and lets
// the request through only when the authenticated user is its author
func CollectAuthorOnly(store *repo.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c) // Get userID from context
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := ParamID(c, "id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Collect not found"})
			return
		}
		collect, err := store.FindCollect(c.Request.Context(), id) // Fetch collect from database
		if errors.Is(err, domain.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Collect not found"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"collect_id": id,
				"error":      err.Error(),
			}).Error("Failed to load collect")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load collect"})
			return
		}
		// Only the author may change or remove a collect
		if collect.AuthorID != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only the author can modify this collect"})
			return
		}
		c.Set(CollectKey, collect)
		c.Next()
	}
}
