package main

import (
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/taskmint/reminder-api/internal/config"
	"github.com/taskmint/reminder-api/internal/constants"
	"github.com/taskmint/reminder-api/internal/database"
	"github.com/taskmint/reminder-api/internal/handlers"
	"github.com/taskmint/reminder-api/internal/middleware"
	"github.com/taskmint/reminder-api/internal/publisher"
	"github.com/taskmint/reminder-api/internal/repository"
	"github.com/taskmint/reminder-api/internal/services"
	"github.com/taskmint/reminder-api/internal/utils"
	"github.com/taskmint/reminder-api/internal/worker"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := utils.NewLogger(cfg.IsProduction())
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		logger.Fatal("failed to add indexes", zap.Error(err))
	}

	// Redis client for the outbound reminder stream
	streamClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisStreamDB,
	})

	// Delivery queue client
	queueOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	queueClient := asynq.NewClient(queueOpts)
	defer queueClient.Close()

	tokenIssuer := utils.NewJWTIssuer(cfg.JWTSecret, constants.AccessTokenTTL*time.Minute)
	pub := publisher.NewRedisPublisher(streamClient, tokenIssuer, logger, constants.ReminderStream)
	dispatch := worker.NewAsynqScheduler(queueClient)

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	quoteScheduleRepo := repository.NewQuoteScheduleRepository(db)

	// Services
	lifecycle := services.NewReminderLifecycle(reminderRepo, pub, dispatch, logger)
	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, categoryRepo, lifecycle, logger)
	categoryService := services.NewCategoryService(categoryRepo, logger)
	reminderService := services.NewReminderService(reminderRepo, taskRepo, pub, dispatch, logger)
	profileService := services.NewProfileService(userRepo, taskRepo)
	quoteScheduleService := services.NewQuoteScheduleService(quoteScheduleRepo, logger)

	// Background workers
	dispatchServer := worker.NewDispatchServer(queueOpts, reminderService, logger)
	if err := dispatchServer.Start(); err != nil {
		logger.Fatal("failed to start dispatch worker", zap.Error(err))
	}
	defer dispatchServer.Shutdown()

	sweeper := worker.NewSweeper(reminderService, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("failed to start sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokenIssuer)
	taskHandler := handlers.NewTaskHandler(taskService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	profileHandler := handlers.NewProfileHandler(profileService, authService)
	quoteScheduleHandler := handlers.NewQuoteScheduleHandler(quoteScheduleService)

	r := gin.Default()

	// Session middleware backed by Redis
	store, err := redisStore.NewStore(
		10,
		"tcp",
		cfg.RedisAddr,
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logger.Fatal("failed to create session store", zap.Error(err))
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: 2, // Lax
	})
	r.Use(sessions.Sessions("reminder_session", store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.GET("/token", middleware.RequireAuth(), authHandler.GetToken)
		}

		categories := api.Group("/categories")
		categories.Use(middleware.RequireAuth())
		{
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("", categoryHandler.ListCategories)
			categories.PUT("/:id", categoryHandler.UpdateCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
		}

		reminders := api.Group("/reminders")
		reminders.Use(middleware.RequireAuth())
		{
			reminders.GET("", reminderHandler.ListReminders)
			reminders.POST("", reminderHandler.CreateReminder)
			reminders.GET("/:id", reminderHandler.GetReminder)
			reminders.POST("/:id/sent", reminderHandler.MarkSent)
			reminders.POST("/:id/cancel", reminderHandler.Cancel)
			reminders.POST("/:id/reschedule", reminderHandler.Reschedule)
			reminders.POST("/:id/complete", reminderHandler.Complete)
		}

		profile := api.Group("/profile")
		profile.Use(middleware.RequireAuth())
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PUT("", profileHandler.UpdateProfile)
		}

		quoteSchedule := api.Group("/quote-schedule")
		quoteSchedule.Use(middleware.RequireAuth())
		{
			quoteSchedule.GET("", quoteScheduleHandler.GetQuoteSchedule)
			quoteSchedule.POST("", quoteScheduleHandler.CreateQuoteSchedule)
			quoteSchedule.PATCH("", quoteScheduleHandler.UpdateQuoteSchedule)
			quoteSchedule.DELETE("", quoteScheduleHandler.DeleteQuoteSchedule)
		}
	}

	logger.Info("server starting", zap.String("port", cfg.AppPort))
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
