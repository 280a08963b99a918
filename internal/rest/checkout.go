package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retouch-app/retouch/edit/domain"
	"github.com/rs/zerolog/log"
)

type checkoutRequest struct {
	Token        string `json:"token"`
	OriginalName string `json:"originalName"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// Checkout opens a payment session for a stored edit and returns the
// redirect URL. The token passes through to the payment collaborator
// unmodified.
func (a *Api) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		abortWithError(c, domain.ErrInvalidInput)
		return
	}

	url, err := a.checkout.CreateSession(c.Request.Context(), req.Token, req.OriginalName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create checkout session")
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkoutResponse{URL: url})
}
