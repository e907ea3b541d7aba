package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skedlyze/Skedlyze/internal/config"
	"github.com/Skedlyze/Skedlyze/internal/handler"
	"github.com/Skedlyze/Skedlyze/internal/middleware"
	"github.com/Skedlyze/Skedlyze/internal/repository"
	"github.com/Skedlyze/Skedlyze/internal/service"
	"github.com/Skedlyze/Skedlyze/pkg/storage"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func New(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	defaultTaskRepo := repository.NewDefaultTaskRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("WARNING: cloudinary storage disabled: %v", err)
		imageStorage = nil
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	searchSvc := service.NewTaskSearchService(meiliClient)

	notifier := service.NewAchievementNotifier(redisClient)
	gamificationSvc := service.NewGamificationService(profileRepo)
	achievementSvc := service.NewAchievementService(achievementRepo, gamificationSvc, notifier)
	calendarSvc := service.NewCalendarService(userRepo, taskRepo, cfg)
	taskSvc := service.NewTaskService(taskRepo, userRepo, gamificationSvc, achievementSvc, calendarSvc, searchSvc, redisClient, cfg.RateLimitTaskCreate)
	onboardingSvc := service.NewOnboardingService(userRepo, taskRepo, defaultTaskRepo, gamificationSvc)
	authSvc := service.NewAuthService(userRepo, cfg)
	userSvc := service.NewUserService(userRepo, taskRepo, achievementRepo, gamificationSvc, achievementSvc, imageStorage, cfg.CloudinaryUploadFolder)

	authHandler := handler.NewAuthHandler(authSvc, cfg.FrontendURL)
	taskHandler := handler.NewTaskHandler(taskSvc)
	userHandler := handler.NewUserHandler(userSvc, gamificationSvc)
	achievementHandler := handler.NewAchievementHandler(redisClient)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	onboardingHandler := handler.NewOnboardingHandler(onboardingSvc)

	go runCounterResets(gamificationSvc)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.GET("/google", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
		auth.POST("/dev-login", authHandler.DevLogin)
		auth.POST("/logout", authHandler.Logout)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)

		// Task routes
		protected.POST("/tasks", taskHandler.Create)
		protected.GET("/tasks", taskHandler.List)
		protected.GET("/tasks/search", taskHandler.Search)
		protected.GET("/tasks/due-today", taskHandler.DueToday)
		protected.GET("/tasks/due-this-week", taskHandler.DueThisWeek)
		protected.GET("/tasks/category/:category", taskHandler.ByCategory)
		protected.GET("/tasks/status/:status", taskHandler.ByStatus)
		protected.GET("/tasks/:id", taskHandler.Get)
		protected.PUT("/tasks/:id", taskHandler.Update)
		protected.DELETE("/tasks/:id", taskHandler.Delete)
		protected.PATCH("/tasks/:id/complete", taskHandler.Complete)
		protected.POST("/tasks/:id/complete", taskHandler.Complete)
		protected.POST("/tasks/:id/sync-calendar", taskHandler.SyncToCalendar)
		protected.DELETE("/tasks/:id/sync-calendar", taskHandler.UnsyncFromCalendar)

		// User routes
		protected.GET("/users/profile", userHandler.GetProfile)
		protected.PUT("/users/profile", userHandler.UpdateProfile)
		protected.PUT("/users/preferences", userHandler.UpdatePreferences)
		protected.POST("/users/avatar", userHandler.UploadAvatar)
		protected.GET("/users/stats", userHandler.GetStats)
		protected.GET("/users/level", userHandler.GetLevel)
		protected.GET("/users/streak", userHandler.GetStreak)
		protected.GET("/users/achievements", userHandler.GetAchievements)
		protected.GET("/users/achievements/ws", achievementHandler.HandleWebSocket)
		protected.PATCH("/users/achievements/:id/read", userHandler.MarkAchievementRead)
		protected.PUT("/users/achievements/:id/read", userHandler.MarkAchievementRead)
		protected.POST("/users/calendar-sync", userHandler.ToggleCalendarSync)
		protected.GET("/users/leaderboard", userHandler.GetLeaderboard)

		// Calendar routes
		protected.GET("/calendar/calendars", calendarHandler.ListCalendars)
		protected.GET("/calendar/events", calendarHandler.ListEvents)
		protected.POST("/calendar/events", calendarHandler.CreateEvent)
		protected.PUT("/calendar/events/:eventId", calendarHandler.UpdateEvent)
		protected.DELETE("/calendar/events/:eventId", calendarHandler.DeleteEvent)
		protected.POST("/calendar/sync-tasks", calendarHandler.SyncTasks)
		protected.GET("/calendar/sync-status", calendarHandler.SyncStatus)

		// Onboarding routes
		protected.GET("/onboarding/goals", onboardingHandler.GetGoals)
		protected.GET("/onboarding/needs-onboarding", onboardingHandler.NeedsOnboarding)
		protected.POST("/onboarding/set-goal", onboardingHandler.SetGoal)
		protected.POST("/onboarding/generate-tasks", onboardingHandler.GenerateTasks)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// runCounterResets zeroes the daily counters at midnight, the weekly ones on
// Monday and the monthly ones on the first of the month.
func runCounterResets(gamification service.GamificationService) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		time.Sleep(time.Until(next))

		ctx := context.Background()

		log.Println("🔄 Resetting daily task counters...")
		if err := gamification.ResetPeriodicCounters(ctx, service.PeriodDaily); err != nil {
			log.Printf("❌ Error resetting daily counters: %v", err)
		}

		if next.Weekday() == time.Monday {
			log.Println("🔄 Resetting weekly task counters...")
			if err := gamification.ResetPeriodicCounters(ctx, service.PeriodWeekly); err != nil {
				log.Printf("❌ Error resetting weekly counters: %v", err)
			}
		}

		if next.Day() == 1 {
			log.Println("🔄 Resetting monthly task counters...")
			if err := gamification.ResetPeriodicCounters(ctx, service.PeriodMonthly); err != nil {
				log.Printf("❌ Error resetting monthly counters: %v", err)
			}
		}
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
