package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Download resolves a token to the stored image and delivers it as an
// attachment. HEAD performs the same resolution and sets the same
// headers, including the true Content-Length, without a body.
func (a *Api) Download(c *gin.Context) {
	token := c.Query("token")
	requestedBase := c.Query("name")

	result, err := a.downloads.Resolve(c.Request.Context(), token, requestedBase)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Paid downloads must never be cached by browsers or intermediaries.
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))

	if c.Request.Method == http.MethodHead {
		c.Header("Content-Type", result.Mime)
		c.Header("Content-Length", strconv.Itoa(result.Length()))
		c.Status(http.StatusOK)
		return
	}

	c.Data(http.StatusOK, result.Mime, result.Bytes)
}
