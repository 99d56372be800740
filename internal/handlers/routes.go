package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/nyumba-homes/marketplace/internal/auth"
	"github.com/nyumba-homes/marketplace/internal/models"
)

// Routes holds every handler mounted by Register.
type Routes struct {
	Health      *HealthHandler
	Marketplace *MarketplaceHandler
	Dashboard   *DashboardHandler
	Admin       *AdminHandler
	Media       *MediaHandler
	Tracking    *TrackingHandler
	Diagnostics *DiagnosticsHandler
	Auth        *auth.Middleware
}

// Register mounts the API on router. Authenticated routes check the bearer
// token first and the caller's role second.
func (r Routes) Register(router *gin.Engine) {
	router.GET("/health", r.Health.Health)
	router.GET("/health/ready", r.Health.Ready)
	router.GET("/api/v1/info", r.Health.Info)

	requireAuth := r.Auth.RequireAuth()
	optionalAuth := r.Auth.OptionalAuth()
	listers := auth.RequireRole(models.RoleAgent, models.RoleOwner, models.RoleAdmin)

	api := router.Group("/api")
	{
		api.GET("/track-visit", r.Tracking.TrackVisit)
		api.POST("/track-visit", r.Tracking.TrackVisit)
		api.POST("/sessions", optionalAuth, r.Tracking.StartSession)
		api.POST("/end-session", r.Tracking.EndSession)

		api.GET("/test-tracking", r.Diagnostics.TestTracking)
		api.GET("/diagnose-tracking", r.Diagnostics.Diagnose)

		api.POST("/upload", requireAuth, listers, r.Media.Upload)
		api.POST("/delete-image", requireAuth, listers, r.Media.DeleteImage)
		api.GET("/images/presign", requireAuth, listers, r.Media.Presign)

		properties := api.Group("/properties")
		{
			properties.GET("", optionalAuth, r.Marketplace.ListProperties)
			properties.GET("/:id", optionalAuth, r.Marketplace.GetProperty)
			properties.GET("/:id/contact", requireAuth, r.Marketplace.Contact)
			properties.POST("/:id/inquiries", requireAuth, r.Marketplace.SubmitInquiry)
		}

		dashboard := api.Group("/dashboard", requireAuth, listers)
		{
			dashboard.GET("/listings", r.Dashboard.ListListings)
			dashboard.POST("/listings", r.Dashboard.CreateListing)
			dashboard.PUT("/listings/:id", r.Dashboard.UpdateListing)
			dashboard.PATCH("/listings/:id/status", r.Dashboard.ChangeStatus)
			dashboard.GET("/inquiries", r.Dashboard.ListInquiries)
			dashboard.PATCH("/inquiries/:id/status", r.Dashboard.UpdateInquiryStatus)
			dashboard.GET("/stats", r.Dashboard.Stats)
		}

		admin := api.Group("/admin", requireAuth, auth.RequireRole(models.RoleAdmin))
		{
			admin.GET("/overview", r.Admin.Overview)
			admin.GET("/analytics/buyers", r.Admin.Buyers)
			admin.GET("/analytics/search", r.Admin.Search)
			admin.GET("/analytics/traffic", r.Admin.Traffic)
			admin.GET("/market-intelligence", r.Admin.Market)
			admin.GET("/profiles", r.Admin.ListProfiles)
			admin.PATCH("/profiles/:id", r.Admin.UpdateProfile)
			admin.DELETE("/properties/:id", r.Admin.DeleteProperty)
		}
	}
}
