package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/config"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/controllers"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/middleware"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/models"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/services"
)

func main() {
	// Basic logging
	log.Println("Starting ASMS API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.User{}, &models.Appointment{}, &models.TeamMember{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize vehicle photo storage
	if cfg.HasS3() {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitPhotoService(s3Service)
		log.Println("Vehicle photo storage: S3")
	} else {
		services.SetPhotoService(&services.LocalPhotoService{})
		log.Println("Vehicle photo storage: local filesystem")
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures the Gin router with all middleware and routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	// CORS policy for the frontend
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Locally stored vehicle photos (public, keyed by filename)
		v1.GET("/uploads/:filename", controllers.GetUploadedPhoto)

		// Everything else requires a valid token
		authorized := v1.Group("")
		authorized.Use(middleware.EnsureValidToken(cfg))
		{
			// User profiles
			authorized.POST("/users", controllers.CreateUser)
			authorized.GET("/users/me", controllers.GetMyProfile)
			authorized.PUT("/users/me", controllers.UpdateMyProfile)

			// Appointments
			authorized.POST("/appointments", controllers.CreateAppointment)
			authorized.GET("/appointments", controllers.ListMyAppointments)
			authorized.GET("/appointments/:id/status", controllers.GetAppointmentStatus)
			authorized.PUT("/appointments/:id/cancel", controllers.CancelAppointment)
			authorized.POST("/appointments/:id/photo", controllers.UploadVehiclePhoto)

			// Team roster
			authorized.POST("/team-members", controllers.CreateTeamMember)
			authorized.GET("/team-members", controllers.ListTeamMembers)
			authorized.GET("/team-members/search", controllers.SearchTeamMembers)
			authorized.GET("/team-members/unassigned", controllers.ListUnassignedTeamMembers)
			authorized.GET("/team-members/specialization/:specialization", controllers.ListTeamMembersBySpecialization)
			authorized.GET("/team-members/city/:city", controllers.ListTeamMembersByCity)
			authorized.GET("/team-members/working-hours/:hours", controllers.ListTeamMembersByWorkingHours)
			authorized.GET("/team-members/joined", controllers.ListTeamMembersJoinedBetween)
			authorized.GET("/team-members/:id", controllers.GetTeamMember)
			authorized.PUT("/team-members/:id", controllers.UpdateTeamMember)
			authorized.DELETE("/team-members/:id", controllers.DeleteTeamMember)
			authorized.PUT("/team-members/:id/supervisor", controllers.AssignSupervisor)
			authorized.DELETE("/team-members/:id/supervisor", controllers.RemoveSupervisor)

			// Supervisor views
			authorized.GET("/supervisors/available", controllers.ListAvailableSupervisors)
			authorized.GET("/supervisors/counts", controllers.GetSupervisorTeamCounts)
			authorized.GET("/supervisors/:id/members", controllers.ListSupervisorMembers)
			authorized.GET("/supervisors/:id/members/count", controllers.GetSupervisorMemberCount)

			// Team views
			authorized.GET("/teams/:teamId/count", controllers.GetTeamMemberCount)
			authorized.GET("/teams/:teamId/members", controllers.ListTeamMembersByTeam)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "ASMS API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
