package rest

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/retouch-app/retouch/edit/application"
	"github.com/retouch-app/retouch/edit/domain"
	"github.com/retouch-app/retouch/internal/middleware"
	"github.com/retouch-app/retouch/internal/observability"
)

// TokenHeader carries the edit token back to the client, out-of-band
// from the image body.
const TokenHeader = "X-Edit-Token"

type Api struct {
	edits     *application.EditService
	downloads *application.DownloadService
	checkout  domain.CheckoutProvider
}

func NewApi(edits *application.EditService, downloads *application.DownloadService, checkout domain.CheckoutProvider) *Api {
	return &Api{
		edits:     edits,
		downloads: downloads,
		checkout:  checkout,
	}
}

// Router builds the gin engine with the full route surface and the
// ambient middleware stack.
func (a *Api) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(gin.CustomRecovery(middleware.HandlePanics()))
	r.Use(cors.Default())

	apiV1 := r.Group("/api")
	{
		apiV1.POST("/generate", a.Generate)
		apiV1.GET("/download", a.Download)
		apiV1.HEAD("/download", a.Download)
		apiV1.POST("/checkout", a.Checkout)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(200, "ok")
	})
	r.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	return r
}
