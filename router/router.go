package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeremiapane/restaurant-dashboard/controllers"
	"github.com/yeremiapane/restaurant-dashboard/kds"
	"github.com/yeremiapane/restaurant-dashboard/middlewares"
	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/repositories"
	"github.com/yeremiapane/restaurant-dashboard/services"
)

// Dependencies is everything the HTTP layer is wired to.
type Dependencies struct {
	Repos     *repositories.Repositories
	Lifecycle *services.OrderLifecycle
	Hub       *kds.Hub
	QR        services.QRGenerator
	Images    services.ImageStorage

	// UploadDir is served under /uploads when images are stored locally.
	UploadDir      string
	AllowedOrigins []string
	RateLimit      rate.Limit
	RateBurst      int
	// AuthRateLimit throttles /login and /register; zero means 5 per minute.
	AuthRateLimit rate.Limit
	AuthRateBurst int
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.LoggerMiddleware(), middlewares.SecurityHeaders())
	if deps.RateLimit > 0 {
		r.Use(middlewares.NewRateLimiter(deps.RateLimit, deps.RateBurst).RateLimit())
	}

	if deps.UploadDir != "" {
		r.Static("/uploads", deps.UploadDir)
	}

	userController := controllers.NewUserController(deps.Repos.Users, deps.Repos.Sessions, deps.Hub)
	restaurantController := controllers.NewRestaurantController(deps.Repos.Restaurants, deps.QR)
	menuController := controllers.NewMenuItemController(deps.Repos.MenuItems, deps.Repos.Restaurants, deps.Hub)
	orderController := controllers.NewOrderController(deps.Repos.Orders, deps.Lifecycle)
	dashboardController := controllers.NewDashboardController(deps.Repos.Orders)
	uploadController := controllers.NewUploadController(deps.Images)
	kdsController := controllers.NewKDSController(deps.Hub, deps.AllowedOrigins)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Public routes
	strictLimiter := middlewares.NewStrictRateLimiter()
	if deps.AuthRateLimit > 0 {
		strictLimiter = middlewares.NewRateLimiter(deps.AuthRateLimit, deps.AuthRateBurst)
	}
	strict := strictLimiter.RateLimit()
	r.POST("/register", strict, userController.Register)
	r.POST("/login", strict, userController.Login)

	public := r.Group("/public/restaurants/:restaurant_id")
	{
		public.GET("/menu", menuController.PublicMenu)
		public.POST("/orders", orderController.PlaceOrder)
	}

	// Protected routes
	auth := r.Group("/", middlewares.AuthMiddleware(deps.Repos.Sessions), middlewares.RoleCheck(models.RoleRestaurant))
	{
		auth.POST("/logout", userController.Logout)
		auth.GET("/profile", userController.GetProfile)
		auth.POST("/uploads/images", uploadController.UploadImage)

		auth.GET("/restaurants", restaurantController.ListRestaurants)
		auth.POST("/restaurants", restaurantController.CreateRestaurant)

		owned := auth.Group("/restaurants/:restaurant_id", middlewares.RestaurantOwner(deps.Repos.Restaurants))
		{
			owned.GET("", restaurantController.GetRestaurant)
			owned.PUT("", restaurantController.UpdateRestaurant)
			owned.DELETE("", restaurantController.DeleteRestaurant)
			owned.GET("/qrcode", restaurantController.MenuQRCode)
			owned.GET("/dashboard", dashboardController.GetDashboardStats)
			owned.GET("/sales-report", dashboardController.GetSalesReport)

			menu := owned.Group("/menu-items")
			{
				menu.GET("", menuController.ListMenuItems)
				menu.POST("", menuController.CreateMenuItem)
				menu.GET("/:item_id", menuController.GetMenuItem)
				menu.PUT("/:item_id", menuController.UpdateMenuItem)
				menu.DELETE("/:item_id", menuController.DeleteMenuItem)
				menu.PATCH("/:item_id/availability", menuController.SetAvailability)
			}

			orders := owned.Group("/orders")
			{
				orders.GET("", orderController.GetOrderBoard)
				orders.GET("/ws", kdsController.OrderFeed)
				orders.GET("/:order_id", orderController.GetOrder)
				orders.PATCH("/:order_id/status", orderController.UpdateOrderStatus)
				orders.POST("/:order_id/accept", orderController.AcceptOrder)
				orders.POST("/:order_id/decline", orderController.DeclineOrder)
				orders.POST("/:order_id/complete", orderController.CompleteOrder)
			}
		}
	}

	return r
}

// Handler wraps the engine with CORS handling.
func Handler(r *gin.Engine, allowedOrigins []string) http.Handler {
	return middlewares.CORSHandler(allowedOrigins, r)
}
