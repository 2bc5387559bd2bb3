package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/triplog/backend/internal/config"
	"github.com/triplog/backend/internal/handler"
	"github.com/triplog/backend/internal/middleware"
	"github.com/triplog/backend/internal/model"
	"github.com/triplog/backend/internal/repository"
	"github.com/triplog/backend/internal/service"
	"github.com/triplog/backend/pkg/database"
	"github.com/triplog/backend/pkg/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	}

	fileStorage := storage.NewDiskStorage(cfg.UploadDir)

	userRepo := repository.NewUserRepository(db)
	diaryRepo := repository.NewDiaryRepository(db)

	authService := service.NewAuthService(userRepo)
	authHandler := handler.NewAuthHandler(authService)

	userService := service.NewUserService(userRepo, fileStorage)
	userHandler := handler.NewUserHandler(userService)

	diaryService := service.NewDiaryService(diaryRepo, fileStorage, redisClient, cfg.RateLimitCreate)
	listingService := service.NewListingService(diaryRepo, userRepo)
	diaryHandler := handler.NewDiaryHandler(diaryService, listingService)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authMiddleware := middleware.NewAuthMiddleware()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		// Public approved listing needs no principal
		api.GET("/diaries", diaryHandler.ListPublic)
	}

	api.Use(authMiddleware.RequireAuth())
	{
		api.GET("/diaries/:id", diaryHandler.GetDiary)
		api.POST("/diaries", diaryHandler.CreateDiary)
		api.PUT("/diaries/:id", diaryHandler.UpdateDiary)
		api.DELETE("/diaries/:id", diaryHandler.DeleteDiary)

		moderation := api.Group("/admin")
		moderation.Use(authMiddleware.RequireModerator())
		{
			moderation.GET("/diaries", diaryHandler.ListForAdmin)
			moderation.PUT("/diaries/:id/review", diaryHandler.ReviewDiary)
		}

		users := api.Group("/users")
		{
			users.GET("", userHandler.GetAllUsers)
			users.GET("/me", userHandler.GetMe)
			users.GET("/:id", userHandler.GetUser)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Diary{},
	)
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@triplog.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     "admin",
		Email:        "admin@triplog.local",
		PasswordHash: string(hashed),
		Nickname:     "Administrator",
		Avatar:       storage.DefaultAvatarPath,
		Role:         model.RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded successfully")
	log.Println("   Email: admin@triplog.local")
	log.Println("   Password: admin123")

	return nil
}
