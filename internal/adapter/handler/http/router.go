package http

import (
	"database/sql"
	"net/http"

	"github.com/voltride/rental-service/internal/config"
	"github.com/voltride/rental-service/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	router *gin.Engine
}

func NewRouter(
	cfg *config.HTTP,
	db *sql.DB,
	tokenService ports.TokenService,
	userHandler *UserHandler,
	tripHandler *TripHandler,
	vehicleHandler *VehicleHandler,
	stationHandler *StationHandler,
	membershipHandler *MembershipHandler,
	maintenanceHandler *MaintenanceHandler,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", userHandler.Login)
	}

	// User routes
	users := router.Group("/users")
	users.Use(AuthMiddleware(tokenService))
	{
		users.GET("/me", userHandler.GetProfile)
		users.PUT("/me", userHandler.UpdateProfile)
	}

	// Wallet routes
	wallet := router.Group("/wallet")
	wallet.Use(AuthMiddleware(tokenService))
	{
		wallet.GET("", userHandler.GetBalance)
		wallet.POST("/topup", userHandler.TopUpWallet)
	}

	// Trip routes
	trips := router.Group("/trips")
	trips.Use(AuthMiddleware(tokenService))
	{
		trips.POST("", tripHandler.BookTrip)
		trips.GET("", tripHandler.ListMyTrips)
		trips.GET("/:id", tripHandler.GetTrip)
		trips.POST("/:id/end", tripHandler.EndTrip)
		trips.POST("/:id/cancel", tripHandler.CancelTrip)
		trips.POST("/:id/review", tripHandler.ReviewTrip)
	}

	// Vehicle routes
	vehicles := router.Group("/vehicles")
	vehicles.Use(AuthMiddleware(tokenService))
	{
		vehicles.GET("", vehicleHandler.ListVehicles)
		vehicles.GET("/:id", vehicleHandler.GetVehicle)
		vehicles.POST("/:id/report", vehicleHandler.ReportIssue)
		vehicles.POST("", AdminMiddleware(), vehicleHandler.AddVehicle)
		vehicles.DELETE("/:id", AdminMiddleware(), vehicleHandler.DecommissionVehicle)
	}

	// Station routes
	stations := router.Group("/stations")
	stations.Use(AuthMiddleware(tokenService))
	{
		stations.GET("", stationHandler.ListStations)
		stations.GET("/:id/vehicles", stationHandler.ListStationVehicles)
		stations.POST("", AdminMiddleware(), stationHandler.AddStation)
		stations.DELETE("/:id", AdminMiddleware(), stationHandler.DeactivateStation)
	}

	// Membership routes
	memberships := router.Group("/memberships")
	memberships.Use(AuthMiddleware(tokenService))
	{
		memberships.GET("", membershipHandler.ListPlans)
		memberships.POST("/purchase", membershipHandler.PurchasePlan)
	}

	// Technician routes (admin only)
	technicians := router.Group("/technicians")
	technicians.Use(AuthMiddleware(tokenService), AdminMiddleware())
	{
		technicians.POST("", maintenanceHandler.AddTechnician)
		technicians.GET("", maintenanceHandler.ListTechnicians)
		technicians.PUT("/:id", maintenanceHandler.UpdateTechnician)
		technicians.DELETE("/:id", maintenanceHandler.DeleteTechnician)
	}

	// Maintenance routes (admin only)
	maintenance := router.Group("/maintenance")
	maintenance.Use(AuthMiddleware(tokenService), AdminMiddleware())
	{
		maintenance.GET("/assignments", maintenanceHandler.ListAssignments)
		maintenance.POST("/:id/complete", maintenanceHandler.CompleteMaintenance)
	}

	return &Router{router: router}, nil
}

func (r *Router) Serve(addr string) error {
	return r.router.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
