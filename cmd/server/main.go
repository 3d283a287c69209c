// @title Interiors Admin API
// @version 1.0
// @description Backend for the interior design studio admin dashboard
// @contact.name API Support
// @contact.email support@example.com
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"interiors-admin-be/config"
	"interiors-admin-be/internal/database"
	"interiors-admin-be/internal/handlers"
	"interiors-admin-be/internal/logging"
	"interiors-admin-be/internal/middleware"
	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/repository"
	"interiors-admin-be/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "interiors-admin-be/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongodb.Disconnect() }()

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := mongodb.EnsureIndexes(indexCtx); err != nil {
		logger.Warn("Failed to ensure indexes", zap.Error(err))
	}
	cancel()

	// Repositories
	db := mongodb.Database
	submissionRepo := repository.NewSubmissionRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	settingsRepo := repository.NewSettingsRepository(db, models.DefaultSettings(cfg.NotificationEmail))
	adminRepo := repository.NewAdminRepository(db)
	allowRepo := repository.NewAllowedEmailRepository(db)

	// Services
	mailer := newMailer(ctx, cfg, logger)
	images := newImageStore(ctx, cfg, logger)
	cache := newStatsCache(ctx, cfg, logger)

	templates, err := services.NewTemplateService()
	if err != nil {
		logger.Fatal("Failed to parse e-mail templates", zap.Error(err))
	}
	notifier := services.NewNotificationService(settingsRepo, templates, mailer, cfg.FrontendURL, logger)
	statsService := services.NewStatisticsService(statisticsRepo, settingsRepo, cache, logger)

	digest := services.NewDigestWorker(settingsRepo, statsService, notifier, cfg.DigestHour, logger)
	digest.Start(ctx, cfg.DigestInterval)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, adminRepo, allowRepo, handlers.NewGoogleIdentity(cfg), logger)
	submissionHandler := handlers.NewSubmissionHandler(submissionRepo, notifier, statsService, logger)
	statisticsHandler := handlers.NewStatisticsHandler(statsService, statisticsRepo, logger)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioRepo, images, logger)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, statsService, logger)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg))
	r.MaxMultipartMemory = services.MaxImageBytes + 1<<20

	// Public routes
	public := r.Group("/api")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":   "ok",
				"message":  "Interiors admin API is running",
				"database": cfg.MongoDBDatabase,
				"storage":  cfg.StorageConfigured(),
				"mail":     cfg.MailConfigured(),
			})
		})

		public.POST("/contact", submissionHandler.SubmitContact)
		public.GET("/portfolio", portfolioHandler.ListPortfolio)
		public.GET("/portfolio/options", portfolioHandler.PortfolioOptions)

		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/google", authHandler.GoogleAuth)
			auth.POST("/refresh", authHandler.RefreshToken)
		}
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg), middleware.NoStore())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetMe)

		protected.GET("/submissions", submissionHandler.ListSubmissions)
		protected.GET("/submissions/suggest", submissionHandler.SuggestSubmissions)
		protected.GET("/submissions/export", submissionHandler.ExportSubmissions)
		protected.GET("/submissions/:id", submissionHandler.GetSubmission)
		protected.PATCH("/submissions/:id/status", submissionHandler.UpdateStatus)
		protected.POST("/submissions/:id/notes", submissionHandler.AddNote)
		protected.DELETE("/submissions/:id", submissionHandler.DeleteSubmission)

		protected.GET("/statistics", statisticsHandler.GetStatistics)
		protected.GET("/statistics/project-types", statisticsHandler.GetProjectTypes)

		protected.POST("/portfolio", portfolioHandler.CreatePortfolioItem)
		protected.PUT("/portfolio/:id", portfolioHandler.UpdatePortfolioItem)
		protected.DELETE("/portfolio/:id", portfolioHandler.DeletePortfolioItem)

		protected.GET("/settings", settingsHandler.GetSettings)
		protected.PUT("/settings", settingsHandler.UpdateSettings)
	}

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("database", cfg.MongoDBDatabase))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

func newMailer(ctx context.Context, cfg *config.Config, logger *zap.Logger) services.Mailer {
	if !cfg.MailConfigured() {
		logger.Warn("SES_FROM_EMAIL not set; notification e-mails are logged only")
		return services.LogMailer{Logger: logger}
	}
	mailer, err := services.NewSESMailer(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.SESFromEmail, cfg.SESFromName, logger)
	if err != nil {
		logger.Warn("SES unavailable; notification e-mails are logged only", zap.Error(err))
		return services.LogMailer{Logger: logger}
	}
	return mailer
}

func newImageStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) services.ImageStore {
	if !cfg.StorageConfigured() {
		logger.Warn("S3_BUCKET not set; portfolio uploads are disabled")
		return services.DisabledImageStore{}
	}
	store, err := services.NewS3ImageStore(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.S3Bucket, cfg.S3PublicBaseURL)
	if err != nil {
		logger.Warn("S3 unavailable; portfolio uploads are disabled", zap.Error(err))
		return services.DisabledImageStore{}
	}
	return store
}

func newStatsCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) services.StatsCache {
	if cfg.RedisAddr == "" {
		return services.NoopStatsCache{}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable; statistics are not cached", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return services.NoopStatsCache{}
	}
	return services.NewRedisStatsCache(client, cfg.StatsCacheTTL)
}
