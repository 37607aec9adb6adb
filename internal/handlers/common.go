package handlers

import (
	"net/http"
	"strconv"

	"retail-backoffice/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondErr is the single place service errors become HTTP responses.
func respondErr(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if code := apperr.CodeOf(err); code != "" {
		body["code"] = code
	}
	c.JSON(apperr.HTTPStatus(err), body)
}

// idParam reads a positive integer path parameter. On failure it has
// already written the 400 response.
func idParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "code": "invalid_id"})
		return 0, false
	}
	return uint(id), true
}

// pageParams reads ?page= and ?per_page= with defaults. Range validation
// happens in the services.
func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	return page, perPage
}
