package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleNews serves aggregated headlines. The news service degrades through
// cache, stale cache, and placeholder content; this endpoint never fails.
func HandleNews(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	articles := News.Headlines(c.Request.Context(), c.Query("topic"))
	respondData(c, http.StatusOK, articles)
}
