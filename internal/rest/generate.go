package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retouch-app/retouch/edit/domain"
)

// maxUploadBytes bounds the multipart payload; anything larger is
// rejected before it reaches the model.
const maxUploadBytes = 20 << 20

// Generate accepts a multipart upload (file + prompt), runs the edit,
// and answers with the edited bytes. The token travels in the
// TokenHeader, never in the body.
func (a *Api) Generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		abortWithError(c, domain.ErrInvalidInput)
		return
	}
	defer file.Close()

	upload, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, domain.ErrInvalidInput)
		return
	}

	prompt := c.PostForm("prompt")

	result, err := a.edits.Edit(
		c.Request.Context(),
		upload,
		header.Header.Get("Content-Type"),
		header.Filename,
		prompt,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header(TokenHeader, result.Token)
	c.Data(http.StatusOK, result.Mime, result.Bytes)
}
