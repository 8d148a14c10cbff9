package routes

import (
	"docbadman_back_end/internal/handlers/admin"
	"docbadman_back_end/internal/handlers/checkout"
	"docbadman_back_end/internal/handlers/gallery"
	"docbadman_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers regroupe les handlers à état injectés au démarrage
type Handlers struct {
	Orders      *checkout.OrderHandler
	Payments    *checkout.PaymentHandler
	AdminOrders *admin.OrderHandler
	Stats       *admin.StatsHandler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	api := r.Group("/api/v1")

	// --- Boutique publique ---
	api.GET("/paintings", gallery.ListPaintings)
	api.GET("/paintings/featured", gallery.FeaturedPaintings)
	api.GET("/paintings/:id", gallery.GetPainting)
	api.GET("/artists", gallery.ListArtists)
	api.GET("/regions", gallery.ListRegions)

	// --- Checkout ---
	api.POST("/orders", h.Orders.Create)
	api.POST("/payments/initiate", h.Payments.Initiate)

	// PesaPal rappelle ces deux routes : IPN serveur-à-serveur et
	// vérification après retour navigateur
	api.GET("/payments/ipn", h.Payments.IPN)
	api.GET("/payments/verify", h.Payments.Verify)

	// --- Admin ---
	api.POST("/admin/login", admin.Login)

	adm := api.Group("/admin")
	adm.Use(middleware.AdminRequired())
	{
		adm.GET("/me", admin.Me)

		adm.GET("/paintings", admin.ListPaintings)
		adm.POST("/paintings", admin.CreatePainting)
		adm.PUT("/paintings/:id", admin.UpdatePainting)
		adm.DELETE("/paintings/:id", admin.DeletePainting)

		adm.POST("/paintings/:id/images", admin.UploadImage)
		adm.PUT("/paintings/:id/images/:imageId/primary", admin.SetPrimaryImage)
		adm.DELETE("/paintings/:id/images/:imageId", admin.DeleteImage)

		adm.GET("/orders", h.AdminOrders.List)
		adm.GET("/orders/:id", h.AdminOrders.Show)
		adm.PUT("/orders/:id/status", h.AdminOrders.UpdateStatus)

		adm.GET("/regions", admin.ListRegions)
		adm.POST("/regions", admin.CreateRegion)
		adm.PUT("/regions/:id", admin.UpdateRegion)
		adm.DELETE("/regions/:id", admin.DeleteRegion)

		adm.GET("/stats", h.Stats.Dashboard)
	}
}
