package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rateworks/critica/internal/handler"
	"github.com/rateworks/critica/internal/middleware"
	"github.com/rateworks/critica/internal/models"
	"github.com/rateworks/critica/internal/policy"
	"github.com/rateworks/critica/internal/repository"
	"github.com/rateworks/critica/internal/service"
	"github.com/rateworks/critica/internal/testutil"
	"github.com/rateworks/critica/internal/utils"
	"github.com/rateworks/critica/pkg/logger"
)

// testEnv wires the full API against an in-memory database, mirroring the
// route layout of cmd/server.
type testEnv struct {
	testDB   *testutil.TestDatabase
	notifier *testutil.CaptureNotifier
	router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	logger.Init(false)

	testDB := testutil.SetupTestDatabase(t)
	notifier := &testutil.CaptureNotifier{}
	codes := utils.NewCodeGenerator("test-confirmation-secret", time.Hour)

	userRepo := repository.NewUserRepository(testDB.DB)
	categoryRepo := repository.NewRefRepository[models.Category](testDB.DB)
	genreRepo := repository.NewRefRepository[models.Genre](testDB.DB)
	titleRepo := repository.NewTitleRepository(testDB.DB)
	reviewRepo := repository.NewReviewRepository(testDB.DB)
	commentRepo := repository.NewCommentRepository(testDB.DB)

	authService := service.NewAuthService(userRepo, codes, notifier, testutil.TestJWTSecret, time.Hour)
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

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	categoryHandler := handler.NewRefHandler(categoryService)
	genreHandler := handler.NewRefHandler(genreService)
	titleHandler := handler.NewTitleHandler(titleService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(commentService)

	router := gin.New()
	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/token", authHandler.Token)
	}

	users := v1.Group("/users")
	users.Use(middleware.Authenticate(testutil.TestJWTSecret, userRepo))
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

	catalog := v1.Group("")
	catalog.Use(middleware.OptionalAuthenticate(testutil.TestJWTSecret, userRepo))
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

	owned := v1.Group("/titles/:title_id/reviews")
	owned.Use(middleware.OptionalAuthenticate(testutil.TestJWTSecret, userRepo))
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

	return &testEnv{
		testDB:   testDB,
		notifier: notifier,
		router:   router,
	}
}

// request performs a JSON request. authHeader may be empty for anonymous
// calls.
func (e *testEnv) request(t *testing.T, method, path string, body any, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body.
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}
