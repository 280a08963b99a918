package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retouch-app/retouch/edit/domain"
	"github.com/rs/zerolog/log"
)

// abortWithError maps the domain error taxonomy onto HTTP status codes
// and a human-readable message. Every failure is distinguishable; none
// produce a 200.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.String(http.StatusBadRequest, "Missing or invalid input.")
	case errors.Is(err, domain.ErrNotFound):
		c.String(http.StatusNotFound, "This download is no longer available.")
	case errors.Is(err, domain.ErrRateLimited):
		c.String(http.StatusTooManyRequests, "The editing service is busy. Please try again shortly.")
	case errors.Is(err, domain.ErrNoImage):
		c.String(http.StatusBadGateway, "The model did not return an image. Please try again.")
	case errors.Is(err, domain.ErrUpstream):
		c.String(http.StatusBadGateway, "An upstream service failed. Please try again.")
	case errors.Is(err, domain.ErrStorage):
		c.String(http.StatusInternalServerError, "Storage is unavailable.")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unexpected error")
		c.String(http.StatusInternalServerError, "Something went wrong.")
	}
	c.Abort()
}
