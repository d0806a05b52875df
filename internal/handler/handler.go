package handler

import (
	"net/http"

	"item_catalog/internal/activity"
	"item_catalog/internal/auth"
	"item_catalog/internal/cache"
	"item_catalog/internal/dashboard"
	"item_catalog/internal/interaction"
	"item_catalog/internal/item"
	"item_catalog/internal/middleware"
	"item_catalog/internal/observability"
	"item_catalog/internal/store"
	"item_catalog/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the shared clients every controller is built from.
// Cache, Events, Metrics and Gatherer may be left nil.
type Dependencies struct {
	Store    *store.Store
	Tokens   *auth.TokenService
	Cache    cache.Cache
	Events   activity.Publisher
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

type controllers struct {
	user        *user.UserController
	item        *item.ItemController
	interaction *interaction.InteractionController
	dashboard   *dashboard.DashboardController
}

// SetupHandler initializes all dependencies and routes
func SetupHandler(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.PrometheusMiddleware(deps.Metrics))

	// Initialize services
	userService := user.NewUserService(deps.Store.Users, deps.Tokens, deps.Metrics)
	itemService := item.NewItemService(deps.Store.Items, deps.Cache, deps.Events, deps.Metrics)
	interactionService := interaction.NewInteractionService(deps.Store.Items, deps.Cache, deps.Events, deps.Metrics)
	dashboardService := dashboard.NewDashboardService(deps.Store.Items, deps.Metrics)

	// Initialize controllers
	ctrls := controllers{
		user:        user.NewUserController(userService),
		item:        item.NewItemController(itemService),
		interaction: interaction.NewInteractionController(interactionService),
		dashboard:   dashboard.NewDashboardController(dashboardService),
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	setupRoutes(r, ctrls, middleware.AuthMiddleware(deps.Tokens), gatherer)

	return r
}

// setupRoutes configures all application routes
func setupRoutes(r *gin.Engine, ctrls controllers, requireToken gin.HandlerFunc, gatherer prometheus.Gatherer) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Public routes - Authentication
	r.POST("/register", ctrls.user.Register)
	r.POST("/login", ctrls.user.Login)

	// Items: reads and interactions are public, mutations need a token
	items := r.Group("/items")
	{
		items.GET("", ctrls.item.ListItems)
		items.GET("/:id", ctrls.item.GetItem)
		items.POST("/:id/comments", ctrls.interaction.AddComment)
		items.POST("/:id/ratings", ctrls.interaction.AddRating)

		items.POST("", requireToken, ctrls.item.CreateItem)
		items.PUT("/:id", requireToken, ctrls.item.UpdateItem)
		items.DELETE("/:id", requireToken, ctrls.item.DeleteItem)
	}

	r.GET("/dashboard", requireToken, ctrls.dashboard.GetDashboard)
}
