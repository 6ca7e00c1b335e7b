package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/tillpoint/internal/clock"
	"github.com/sangkips/tillpoint/internal/config"
	domainRepo "github.com/sangkips/tillpoint/internal/domain/repository"
	"github.com/sangkips/tillpoint/internal/presentation/http/handler"
	"github.com/sangkips/tillpoint/internal/presentation/http/middleware"
	"github.com/sangkips/tillpoint/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Inventory   *handler.InventoryHandler
	Transaction *handler.TransactionHandler
	Credit      *handler.CreditHandler
	Terminal    *handler.TerminalHandler
	Register    *handler.RegisterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Gatherer        prometheus.Gatherer
	Clock           clock.Clock
	Log             *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-terminal rate limiter
		rateLimiter := middleware.NewTerminalRateLimiter(
			middleware.RateLimiterConfigFrom(deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration),
		)
		protected.Use(rateLimiter.Middleware())

		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:  deps.IdempotencyRepo,
			Clock: deps.Clock,
			Log:   log,
		}))

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	// Inventory
	registerInventoryRoutes(protected, h)

	// Transactions
	registerTransactionRoutes(protected, h)

	// Credit accounts
	registerCreditRoutes(protected, h)

	// Payment terminal
	protected.GET("/terminal/status", h.Terminal.GetStatus)

	// Register sessions
	registerRegisterRoutes(protected, h)
}

func registerInventoryRoutes(rg *gin.RouterGroup, h *Handlers) {
	inventory := rg.Group("/inventory")
	{
		inventory.GET("", h.Inventory.List)
		inventory.PATCH("", h.Inventory.UpdateStock)
		inventory.GET("/search", h.Inventory.Search)
		inventory.GET("/:id", h.Inventory.Get)
	}
}

func registerTransactionRoutes(rg *gin.RouterGroup, h *Handlers) {
	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.Transaction.List)
		transactions.POST("", h.Transaction.Create)
		transactions.GET("/:id", h.Transaction.Get)
	}
}

func registerCreditRoutes(rg *gin.RouterGroup, h *Handlers) {
	credit := rg.Group("/credit/accounts")
	{
		credit.GET("", h.Credit.Accounts)
		credit.POST("", h.Credit.Apply)
		credit.GET("/history", h.Credit.History)
	}
}

func registerRegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	reg := rg.Group("/registers/:terminal")
	reg.Use(middleware.RequireTerminal())
	{
		reg.GET("/state", h.Register.GetState)
		reg.POST("/inventory/refresh", h.Register.RefreshInventory)

		reg.POST("/cart/items", h.Register.AddItem)
		reg.PATCH("/cart/items/:identity", h.Register.ChangeQuantity)
		reg.DELETE("/cart/items/:identity", h.Register.RemoveItem)
		reg.POST("/cart/items/:identity/tax", h.Register.ToggleTax)
		reg.POST("/cart/scan", h.Register.Scan)
		reg.POST("/cart/manual", h.Register.AddManual)
		reg.DELETE("/cart/manual", h.Register.DismissDraft)
		reg.POST("/cart/void", h.Register.Void)
		reg.POST("/keys", h.Register.Keys)

		reg.PUT("/modifiers", h.Register.SetModifiers)
		reg.PUT("/tender", h.Register.SetTender)
		reg.POST("/customer", h.Register.SelectCustomer)
		reg.DELETE("/customer", h.Register.ClearCustomer)

		reg.POST("/checkout", h.Register.Checkout)
		reg.POST("/terminal/charge", h.Register.Charge)
	}
}
