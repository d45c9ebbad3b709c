package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MikeMC777/customtees/internal/assets"
	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/httpx"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
)

type app struct {
	products product.Repository
	designs  design.Repository
	promoter *design.Promoter
	orders   order.Repository
	assets   assets.Storage
	maxBytes int64
	log      *zap.Logger
}

func newRouter(a *app, origins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(log), httpx.Recovery(log), httpx.CORS(origins))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")

	admin := api.Group("/admin/products")
	admin.GET("", listProductsHandler(a.products))
	admin.POST("", createProductHandler(a.products))
	admin.POST("/upload-image", uploadImageHandler(a.assets, a.maxBytes))
	admin.GET("/:id", getProductHandler(a.products))
	admin.PUT("/:id", updateProductHandler(a.products))
	admin.DELETE("/:id", deleteProductHandler(a.products))

	api.GET("/admin/analytics", analyticsHandler(a.orders, a.products))

	designs := api.Group("/design-submissions")
	designs.GET("", listDesignsHandler(a.designs))
	designs.POST("", submitDesignHandler(a.designs))
	designs.DELETE("/:id", deleteDesignHandler(a.designs))
	designs.POST("/:id/promote", promoteDesignHandler(a.promoter))

	orders := api.Group("/orders")
	orders.GET("", listOrdersHandler(a.orders))
	orders.POST("/export", exportOrderHandler(a.assets, a.orders, a.maxBytes))
	orders.GET("/:id", getOrderHandler(a.orders))

	return r
}
