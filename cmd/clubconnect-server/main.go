package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/admin"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/auth"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/budget"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/clubs"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/database"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/events"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/memberships"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/models"
	"github.com/zahidul-islam-khan/club-connect/pkg/clubconnect/notify"

	_ "github.com/zahidul-islam-khan/club-connect/api/swagger"
)

// @title Club Connect API
// @version 1.0
// @description University club management: students discover and join clubs, leaders approve memberships and run events, admins oversee everything.

// @contact.name Club Connect
// @contact.url https://github.com/zahidul-islam-khan/club-connect

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	// Get database path from environment or use default
	dbPath := os.Getenv("CLUBCONNECT_DB_PATH")
	if dbPath == "" {
		dbPath = "clubconnect.db"
	}

	// Connect to database
	if err := database.Connect(dbPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Create default admin user if no admin exists
	if err := ensureAdminExists(); err != nil {
		log.Fatalf("Failed to ensure admin user exists: %v", err)
	}

	// Start the notification relayer
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayer := notify.NewRelayer(database.GetDB(), buildSender())
	go relayer.Run(ctx)

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "clubconnect",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB())
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Club routes, plus club-scoped membership/event/budget routes
		clubsHandler := clubs.NewHandler(database.GetDB())
		membershipsHandler := memberships.NewHandler(database.GetDB())
		eventsHandler := events.NewHandler(database.GetDB())
		budgetHandler := budget.NewHandler(database.GetDB())

		clubsGroup := api.Group("/clubs")
		clubsGroup.Use(auth.AuthMiddleware())
		clubsHandler.RegisterRoutes(clubsGroup)
		membershipsHandler.RegisterClubRoutes(clubsGroup)
		eventsHandler.RegisterClubRoutes(clubsGroup)
		budgetHandler.RegisterClubRoutes(clubsGroup)

		// Membership management routes
		membershipsGroup := api.Group("/memberships")
		membershipsGroup.Use(auth.AuthMiddleware())
		membershipsHandler.RegisterRoutes(membershipsGroup)

		// Event routes
		eventsGroup := api.Group("/events")
		eventsGroup.Use(auth.AuthMiddleware())
		eventsHandler.RegisterRoutes(eventsGroup)

		// Budget request routes
		budgetGroup := api.Group("/budget-requests")
		budgetGroup.Use(auth.AuthMiddleware())
		budgetHandler.RegisterRoutes(budgetGroup)

		// Notification routes
		notifyHandler := notify.NewHandler(database.GetDB())
		notifyGroup := api.Group("/notifications")
		notifyGroup.Use(auth.AuthMiddleware())
		notifyHandler.RegisterRoutes(notifyGroup)

		// Admin routes (admin role required)
		adminHandler := admin.NewHandler(database.GetDB())
		adminGroup := api.Group("/admin")
		adminGroup.Use(auth.AuthMiddleware(), auth.RequireAdmin())
		adminHandler.RegisterRoutes(adminGroup)
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Club Connect server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildSender assembles the notification sender from the environment.
// With no SMTP or Kafka configuration it falls back to log-only delivery.
func buildSender() notify.Sender {
	var senders []notify.Sender

	if host := os.Getenv("SMTP_HOST"); host != "" {
		port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if err != nil {
			port = 587
		}
		senders = append(senders, notify.NewMailSender(notify.SMTPConfig{
			Host:     host,
			Port:     port,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		}))
		log.Printf("Notification email delivery enabled via %s", host)
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		topic := os.Getenv("KAFKA_TOPIC")
		if topic == "" {
			topic = "clubconnect.notifications"
		}
		producer := notify.NewKafkaProducer(notify.KafkaConfig{
			Brokers: strings.Split(brokers, ","),
			Topic:   topic,
		})
		senders = append(senders, notify.NewKafkaSender(producer))
		log.Printf("Notification events publishing to Kafka topic %s", topic)
	}

	switch len(senders) {
	case 0:
		log.Println("No SMTP or Kafka configuration found - notifications will be logged only")
		return notify.LogSender
	case 1:
		return senders[0]
	default:
		return notify.MultiSender(senders...)
	}
}

// ensureAdminExists creates a default admin user if no admin exists in the database.
func ensureAdminExists() error {
	db := database.GetDB()

	// Check if any admin user exists
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil // Admin already exists
	}

	// Create default admin user
	hashedPassword, err := auth.HashPassword("changeme")
	if err != nil {
		return err
	}

	adminUser := models.User{
		Email:        "admin@clubconnect.local",
		Name:         "Admin",
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Printf("Created default admin user: admin@clubconnect.local (password: changeme)")
	return nil
}
