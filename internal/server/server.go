package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/fitcoach/internal/config"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/handler"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/repository"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/mansoorceksport/fitcoach/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	FileStore   domain.FileRepository
	// ChatClient defaults to OpenRouter when nil
	ChatClient service.ChatClient
}

// Repositories is the persistence the services are built on
type Repositories struct {
	Users           domain.UserRepository
	Profiles        domain.ProfileRepository
	RefreshTokens   domain.RefreshTokenRepository
	Exercises       domain.ExerciseRepository
	Plans           domain.WorkoutPlanRepository
	Sessions        domain.WorkoutSessionRepository
	Sets            domain.SessionSetRepository
	DailyVolumes    domain.DailyVolumeRepository
	PersonalRecords domain.PersonalRecordRepository
	Recovery        domain.RecoveryRepository
	Foods           domain.FoodRepository
	NutritionLogs   domain.NutritionLogRepository
	Hydration       domain.HydrationRepository
	Measurements    domain.BodyMeasurementRepository
	Photos          domain.ProgressPhotoRepository
	Files           domain.FileRepository
}

// NewMongoRepositories wires every collection of db. Indexes are ensured by the constructors.
func NewMongoRepositories(db *mongo.Database, files domain.FileRepository) *Repositories {
	return &Repositories{
		Users:           repository.NewMongoUserRepository(db),
		Profiles:        repository.NewMongoProfileRepository(db),
		RefreshTokens:   repository.NewMongoRefreshTokenRepository(db),
		Exercises:       repository.NewMongoExerciseRepository(db),
		Plans:           repository.NewMongoWorkoutPlanRepository(db),
		Sessions:        repository.NewMongoWorkoutSessionRepository(db),
		Sets:            repository.NewMongoSessionSetRepository(db),
		DailyVolumes:    repository.NewMongoDailyVolumeRepository(db),
		PersonalRecords: repository.NewMongoPersonalRecordRepository(db),
		Recovery:        repository.NewMongoRecoveryRepository(db),
		Foods:           repository.NewMongoFoodRepository(db),
		NutritionLogs:   repository.NewMongoNutritionLogRepository(db),
		Hydration:       repository.NewMongoHydrationRepository(db),
		Measurements:    repository.NewMongoBodyMeasurementRepository(db),
		Photos:          repository.NewMongoProgressPhotoRepository(db),
		Files:           files,
	}
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	return NewAppWithRepositories(deps.Config, NewMongoRepositories(deps.MongoDB, deps.FileStore), deps.RedisClient, deps.ChatClient)
}

// NewAppWithRepositories builds services and routes over repos. Redis backs the
// cache, the PR lock, the AI token budget and idempotent replays.
func NewAppWithRepositories(cfg *config.Config, repos *Repositories, redisClient *redis.Client, chat service.ChatClient) *fiber.App {
	cache := repository.NewRedisCacheRepository(redisClient)
	locker := repository.NewRedisLocker(redisClient, cfg.Locks.PRLockTTL, cfg.Locks.PRLockWait)
	budget := repository.NewRedisTokenBudget(redisClient, cfg.AI.DailyTokenBudget)
	if chat == nil {
		chat = service.NewOpenRouterClient(cfg.OpenRouter)
	}

	// Initialize services
	tokenService := service.NewTokenService(cfg.JWT, repos.RefreshTokens, repos.Users)
	authService := service.NewAuthService(repos.Users, repos.Profiles, tokenService)
	userService := service.NewUserService(repos.Users, repos.Profiles, cache)
	prService := service.NewPRService(repos.PersonalRecords, repos.Exercises, locker, cache)
	workoutService := service.NewWorkoutService(repos.Exercises, repos.Plans, repos.Sessions, repos.Sets, repos.DailyVolumes, prService)
	recoveryService := service.NewRecoveryService(repos.Recovery, repos.DailyVolumes)
	nutritionService := service.NewNutritionService(repos.Profiles, repos.Foods, repos.NutritionLogs, cache)
	hydrationService := service.NewHydrationService(repos.Hydration)
	bodyStatsService := service.NewBodyStatsService(repos.Measurements, repos.Photos, repos.Profiles, repos.PersonalRecords, repos.Files, cache)
	reportService := service.NewReportService(repos.DailyVolumes, repos.PersonalRecords, repos.Recovery, repos.NutritionLogs, repos.Hydration)
	aiService := service.NewAIService(chat, budget, repos.Profiles, recoveryService)

	maxUpload := cfg.Server.MaxUploadSizeMB
	if maxUpload <= 0 {
		maxUpload = 10
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, tokenService)
	userHandler := handler.NewUserHandler(userService)
	workoutHandler := handler.NewWorkoutHandler(workoutService)
	prHandler := handler.NewPRHandler(prService)
	recoveryHandler := handler.NewRecoveryHandler(recoveryService)
	nutritionHandler := handler.NewNutritionHandler(nutritionService, hydrationService)
	bodyStatsHandler := handler.NewBodyStatsHandler(bodyStatsService, maxUpload)
	reportHandler := handler.NewReportHandler(reportService)
	aiHandler := handler.NewAIHandler(aiService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "FitCoach API",
		BodyLimit:    int(maxUpload * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(telemetry.FiberMiddleware())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID, X-Request-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "fitcoach-api",
		})
	})

	v1 := app.Group("/api/v1")

	// Auth endpoints (public)
	auth := v1.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	requireAuth := middleware.VerifyAccessToken(cfg.JWT.Secret)

	users := v1.Group("/users", requireAuth)
	users.Get("/me", userHandler.GetMe)
	users.Put("/me/profile", userHandler.UpdateProfile)

	workouts := v1.Group("/workouts", requireAuth)
	workouts.Get("/exercises", workoutHandler.ListExercises)
	workouts.Post("/exercises", workoutHandler.CreateExercise)
	workouts.Get("/plans", workoutHandler.ListPlans)
	workouts.Post("/plans", workoutHandler.CreatePlan)
	workouts.Get("/plans/:id", workoutHandler.GetPlan)
	workouts.Put("/plans/:id", workoutHandler.UpdatePlan)
	workouts.Delete("/plans/:id", workoutHandler.DeletePlan)
	workouts.Post("/sessions", workoutHandler.StartSession)
	workouts.Get("/sessions", workoutHandler.ListSessions)
	workouts.Get("/sessions/:id", workoutHandler.GetSession)
	workouts.Put("/sessions/:id/complete", workoutHandler.CompleteSession)
	workouts.Post("/sessions/:id/complete", workoutHandler.CompleteSession)
	// Retried set logs replay the first response instead of logging twice
	workouts.Post("/sessions/:id/sets", middleware.IdempotencyMiddleware(redisClient, cfg.Idempotency.TTL), workoutHandler.LogSet)

	prs := v1.Group("/personal-records", requireAuth)
	prs.Get("/", prHandler.List)
	prs.Get("/pending-celebrations", prHandler.PendingCelebrations)
	prs.Post("/:id/celebrate", prHandler.Celebrate)

	recovery := v1.Group("/recovery", requireAuth)
	recovery.Post("/checkin", recoveryHandler.Checkin)
	recovery.Get("/logs", recoveryHandler.ListLogs)
	recovery.Get("/recommendations", recoveryHandler.Recommendations)

	nutrition := v1.Group("/nutrition", requireAuth)
	nutrition.Get("/foods", nutritionHandler.SearchFoods)
	nutrition.Post("/foods", nutritionHandler.CreateFood)
	nutrition.Get("/logs/:date", nutritionHandler.GetDayLog)
	nutrition.Post("/logs/:date/meals", nutritionHandler.AddMeal)
	nutrition.Get("/tdee", nutritionHandler.TDEE)

	hydration := v1.Group("/hydration", requireAuth)
	hydration.Get("/:date", nutritionHandler.GetHydration)
	hydration.Post("/:date/entries", nutritionHandler.AddHydration)
	hydration.Put("/:date/target", nutritionHandler.SetHydrationTarget)

	bodyStats := v1.Group("/body-stats", requireAuth)
	bodyStats.Post("/measurements", bodyStatsHandler.AddMeasurement)
	bodyStats.Get("/measurements", bodyStatsHandler.ListMeasurements)
	bodyStats.Post("/photos", bodyStatsHandler.UploadPhoto)
	bodyStats.Get("/photos", bodyStatsHandler.ListPhotos)
	bodyStats.Get("/dashboard", bodyStatsHandler.Dashboard)

	reports := v1.Group("/reports", requireAuth)
	reports.Get("/weekly", reportHandler.Weekly)
	reports.Get("/monthly", reportHandler.Monthly)

	ai := v1.Group("/ai", requireAuth)
	ai.Post("/workout-plan", aiHandler.WorkoutPlan)
	ai.Post("/nutrition-plan", aiHandler.NutritionPlan)
	ai.Post("/recovery-advice", aiHandler.RecoveryAdvice)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": middleware.GetRequestID(c),
	})
	if code >= fiber.StatusInternalServerError {
		entry.Error("unhandled error")
	} else {
		entry.Debug("request rejected")
	}

	message := err.Error()
	if code >= fiber.StatusInternalServerError {
		message = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{
		"code":    errorCode(code),
		"message": message,
	})
}

func errorCode(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusInternalServerError:
		return "INTERNAL_ERROR"
	}
	return "ERROR"
}
