package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rateworks/critica/internal/config"
	"github.com/rateworks/critica/internal/database"
	"github.com/rateworks/critica/internal/handler"
	"github.com/rateworks/critica/internal/middleware"
	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/notify"
	"github.com/rateworks/critica/internal/policy"
	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/internal/service"
	"github.com/rateworks/critica/internal/utils"
	"github.com/rateworks/critica/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	isProduction := cfg.Environment == "production"
	if err := logger.Init(!isProduction); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Redis backs the rate limiter on the auth endpoints
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Outbound mail: real SMTP in production, log-only otherwise
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.SMTPAddr != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPHost, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass)
	}

	codes := utils.NewCodeGenerator(cfg.ConfirmationSecret, cfg.ConfirmationTTL)

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	categoryRepo := repository.NewRefRepository[models.Category](database.DB)
	genreRepo := repository.NewRefRepository[models.Genre](database.DB)
	titleRepo := repository.NewTitleRepository(database.DB)
	reviewRepo := repository.NewReviewRepository(database.DB)
	commentRepo := repository.NewCommentRepository(database.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo, codes, notifier, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewRefService(categoryRepo, func(name, slug string) models.Category {
		return models.Category{Name: name, Slug: slug}
	}, "category")
	genreService := service.NewRefService(genreRepo, func(name, slug string) models.Genre {
		return models.Genre{Name: name, Slug: slug}
	}, "genre")
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo, titleRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewRefHandler(categoryService)
	genreHandler := handler.NewRefHandler(genreService)
	titleHandler := handler.NewTitleHandler(titleService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(commentService)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})

	// Setup Gin router
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(isProduction))
	router.Use(cors.Default())

	v1 := router.Group("/api/v1")

	// Auth: open to everyone, rate limited
	auth := v1.Group("/auth")
	auth.Use(rateLimiter.Middleware())
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/token", authHandler.Token)
	}

	// Users: admin management plus the self-profile routes
	users := v1.Group("/users")
	users.Use(middleware.Authenticate(cfg.JWTSecret, userRepo))
	{
		users.GET("/me", userHandler.Me)
		users.PATCH("/me", userHandler.UpdateMe)

		admin := users.Group("")
		admin.Use(middleware.RequirePolicy(policy.AdminOnly{}))
		{
			admin.GET("", userHandler.List)
			admin.POST("", userHandler.Create)
			admin.GET("/:username", userHandler.Get)
			admin.PATCH("/:username", userHandler.Update)
			admin.DELETE("/:username", userHandler.Delete)
		}
	}

	// Catalog: public reads, admin writes
	catalog := v1.Group("")
	catalog.Use(middleware.OptionalAuthenticate(cfg.JWTSecret, userRepo))
	catalog.Use(middleware.RequirePolicy(policy.AdminOrReadOnly{}))
	{
		catalog.GET("/categories", categoryHandler.List)
		catalog.POST("/categories", categoryHandler.Create)
		catalog.PATCH("/categories/:slug", categoryHandler.Rename)
		catalog.DELETE("/categories/:slug", categoryHandler.Delete)

		catalog.GET("/genres", genreHandler.List)
		catalog.POST("/genres", genreHandler.Create)
		catalog.PATCH("/genres/:slug", genreHandler.Rename)
		catalog.DELETE("/genres/:slug", genreHandler.Delete)

		catalog.GET("/titles", titleHandler.List)
		catalog.POST("/titles", titleHandler.Create)
		catalog.GET("/titles/:title_id", titleHandler.Get)
		catalog.PATCH("/titles/:title_id", titleHandler.Update)
		catalog.DELETE("/titles/:title_id", titleHandler.Delete)
	}

	// Reviews and comments: public reads, owner/moderator/admin writes
	owned := v1.Group("/titles/:title_id/reviews")
	owned.Use(middleware.OptionalAuthenticate(cfg.JWTSecret, userRepo))
	owned.Use(middleware.RequirePolicy(policy.AuthorModeratorAdminOrReadOnly{}))
	{
		owned.GET("", reviewHandler.List)
		owned.POST("", reviewHandler.Create)
		owned.GET("/:review_id", reviewHandler.Get)
		owned.PATCH("/:review_id", reviewHandler.Update)
		owned.DELETE("/:review_id", reviewHandler.Delete)

		owned.GET("/:review_id/comments", commentHandler.List)
		owned.POST("/:review_id/comments", commentHandler.Create)
		owned.GET("/:review_id/comments/:comment_id", commentHandler.Get)
		owned.PATCH("/:review_id/comments/:comment_id", commentHandler.Update)
		owned.DELETE("/:review_id/comments/:comment_id", commentHandler.Delete)
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
