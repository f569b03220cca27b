package router

import (
	"net/http"

	"tutorhub/config"
	"tutorhub/internal/handler"
	"tutorhub/internal/middleware"
	"tutorhub/internal/repository"
	"tutorhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	adjustmentRepo := repository.NewAdjustmentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Services
	matcher := service.NewMatcher(userRepo, prefRepo, matchRepo, log)
	creditSvc := service.NewCreditService(creditRepo, log)
	creditPerSession, err := decimal.NewFromString(cfg.Credits.PerSession)
	if err != nil {
		log.Warn("invalid CREDITS_PER_SESSION, defaulting to 1.00", zap.String("value", cfg.Credits.PerSession))
		creditPerSession = decimal.NewFromInt(1)
	}
	bookingSvc := service.NewBookingService(bookingRepo, matchRepo, userRepo, creditPerSession, log)
	earningsSvc := service.NewEarningsService(bookingRepo, adjustmentRepo)

	// Handlers
	matchHandler := handler.NewMatchHandler(matchRepo, matcher)
	creditHandler := handler.NewCreditHandler(creditRepo, creditSvc)
	earningsHandler := handler.NewEarningsHandler(earningsSvc, adjustmentRepo, userRepo)
	preferenceHandler := handler.NewPreferenceHandler(prefRepo, userRepo)
	bookingHandler := handler.NewBookingHandler(bookingRepo, bookingSvc)
	reviewHandler := handler.NewReviewHandler(reviewRepo, bookingRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow)

	api := r.Group("/api/v1")
	api.Use(authMw)
	api.Use(middleware.RateLimit(limiter))
	{
		api.GET("/matches", matchHandler.List)
		api.POST("/matches", matchHandler.Create)
		api.POST("/matches/:id/accept", matchHandler.Accept)
		api.POST("/matches/:id/reject", matchHandler.Reject)
		api.POST("/matches/:id/complete", middleware.RequireRole("COORDINATOR"), matchHandler.Complete)

		api.GET("/credits", creditHandler.List)
		api.GET("/credits/balance", creditHandler.Balance)
		api.GET("/credits/export", middleware.RequireRole("REVIEWER", "COORDINATOR"), creditHandler.ExportCSV)
		api.POST("/credits/:id/approve", middleware.RequireRole("REVIEWER", "COORDINATOR"), creditHandler.Approve)
		api.POST("/credits/:id/reject", middleware.RequireRole("REVIEWER", "COORDINATOR"), creditHandler.Reject)
		api.POST("/credits/:id/credit", middleware.RequireRole("REVIEWER", "COORDINATOR"), creditHandler.Credit)

		api.GET("/earnings", earningsHandler.Get)
		api.POST("/earnings/adjustments", middleware.RequireRole("COORDINATOR"), earningsHandler.CreateAdjustment)
		api.GET("/earnings/adjustments", earningsHandler.ListAdjustments)

		api.GET("/preferences/:userId", preferenceHandler.Get)
		api.PUT("/preferences/:userId", preferenceHandler.Put)

		api.POST("/bookings", bookingHandler.Create)
		api.GET("/bookings", bookingHandler.List)
		api.POST("/bookings/:id/complete", bookingHandler.Complete)

		api.POST("/reviews", reviewHandler.Create)
		api.GET("/reviews", reviewHandler.List)
	}

	return r
}
