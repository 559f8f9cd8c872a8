package api

import (
	"log"
	stdhttp "net/http"

	h "tourquote/internal/http/handlers"
	"tourquote/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

var (
	staffRoles   = []string{"admin", "sales", "operations"}
	confirmRoles = []string{"admin", "sales"}
)

func NewRouter(a *h.API) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(a.Env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", a.DBCheck)
		api.POST("/auth/login", a.Login)

		secured := api.Group("", middleware.Auth([]byte(a.Env.JWTSecret)), middleware.RequireRoles(staffRoles...))
		secured.GET("/routes", h.Routes)

		proposals := secured.Group("/proposals")
		proposals.GET("", a.ListProposals)
		proposals.POST("", a.CreateProposal)
		proposals.GET("/:id", a.GetProposal)
		proposals.PUT("/:id", a.UpdateProposal)
		proposals.POST("/:id/cancel", a.CancelProposal)
		proposals.POST("/:id/copy", a.CopyProposal)
		proposals.GET("/:id/totals", a.ProposalTotals)
		proposals.POST("/:id/validate", a.ValidateProposal)
		proposals.POST("/:id/lines/:kind", a.AddLine)
		proposals.PATCH("/:id/lines/:kind/:lineId", a.UpdateLine)
		proposals.DELETE("/:id/lines/:kind/:lineId", a.RemoveLine)
		proposals.POST("/:id/confirm", middleware.RequireRoles(confirmRoles...), a.ConfirmProposal)
		proposals.GET("/:id/vouchers", a.ListProposalVouchers)

		vouchers := secured.Group("/vouchers")
		vouchers.GET("", a.ListVouchers)
		vouchers.GET("/:id", a.GetVoucher)
		vouchers.PUT("/:id/status", middleware.RequireRoles(confirmRoles...), a.UpdateVoucherStatus)
		vouchers.PUT("/:id/travellers", a.UpdateVoucherTravellers)
	}

	h.SetRouter(r)
	return r
}
