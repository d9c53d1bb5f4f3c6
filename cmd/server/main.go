package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"lift-social/internal/database"
	"lift-social/internal/feeds"
	"lift-social/internal/handlers"
	"lift-social/internal/identity"
	"lift-social/internal/profiles"
	"lift-social/internal/social"
	"lift-social/internal/store"
	"lift-social/internal/store/memstore"
	"lift-social/internal/store/pgstore"
	"lift-social/internal/worker"
)

// requestTimeout bounds every store-touching request so a slow backend
// surfaces as a timeout instead of hanging the caller.
const requestTimeout = 10 * time.Second

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	recordStore := openStore()

	registry := profiles.NewRegistry(recordStore)
	graph := social.NewGraph(recordStore, registry)
	feedService := feeds.NewService(recordStore, graph, registry)

	// Start the stats reconciler
	workerService := worker.NewWorkerService(recordStore, registry, 15*time.Minute)
	workerService.Start()

	setupGracefulShutdown(workerService)

	setupServer(registry, graph, feedService)
}

// openStore selects the record store backend. Postgres is the default;
// STORE_BACKEND=memory runs fully in-process for local development.
func openStore() store.Store {
	if os.Getenv("STORE_BACKEND") == "memory" {
		log.Println("Using in-memory record store")
		return memstore.New()
	}

	dbConfig := database.LoadConfig()
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	return pgstore.New(database.DB)
}

// newResolver builds the identity resolver. Without a configured secret
// the static resolver is used, which accepts any bearer token as a fixed
// development subject.
func newResolver() identity.Resolver {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("JWT_SECRET not set, using static development identity")
		return identity.NewStaticResolver("dev-subject")
	}
	return identity.NewJWTResolver([]byte(secret), os.Getenv("JWT_ISSUER"))
}

func setupGracefulShutdown(workerService *worker.WorkerService) {
	// Setup signal handling for graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")

		workerService.Stop()
		database.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer(registry *profiles.Registry, graph *social.Graph, feedService *feeds.Service) {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Per-request deadline for every downstream store call
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(registry, graph)
	socialHandler := handlers.NewSocialHandler(graph)
	feedHandler := handlers.NewFeedHandler(feedService)
	docsHandler := handlers.NewDocsHandler()

	// Health check
	r.GET("/health", feedHandler.HealthCheck)

	// Serve Markdown documentation as HTML
	r.GET("/doc/:doc", docsHandler.ServeMarkdownAsHTML)

	// API routes, all authenticated
	api := r.Group("/api", identity.Middleware(newResolver()))
	{
		profileRoutes := api.Group("/profiles")
		{
			profileRoutes.POST("", profileHandler.CreateProfile)
			profileRoutes.GET("/me", profileHandler.GetMyProfile)
			profileRoutes.PATCH("/me", profileHandler.UpdateMyProfile)
			profileRoutes.GET("/me/settings", profileHandler.GetMySettings)
			profileRoutes.PUT("/me/settings", profileHandler.UpdateMySettings)
			profileRoutes.GET("/search", profileHandler.SearchProfiles)
			profileRoutes.GET("/username/:username", profileHandler.GetProfileByUsername)
		}

		userRoutes := api.Group("/users")
		{
			userRoutes.GET("/:id", profileHandler.GetProfile)
			userRoutes.POST("/:id/follow", socialHandler.Follow)
			userRoutes.DELETE("/:id/follow", socialHandler.Unfollow)
			userRoutes.GET("/:id/follow", socialHandler.IsFollowing)
			userRoutes.GET("/:id/following", socialHandler.ListFollowing)
			userRoutes.GET("/:id/followers", socialHandler.ListFollowers)
			userRoutes.GET("/:id/workouts", feedHandler.GetUserWorkouts)
		}

		api.POST("/workouts", feedHandler.ShareWorkout)
		api.GET("/feed", feedHandler.GetFeed)
	}

	// Get port from environment or default to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
