package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/davidlopz/expotec-api/internal/canvas"
	"github.com/davidlopz/expotec-api/internal/config"
	"github.com/davidlopz/expotec-api/internal/database"
	"github.com/davidlopz/expotec-api/internal/handler"
	"github.com/davidlopz/expotec-api/internal/middleware"
	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/observability"
	"github.com/davidlopz/expotec-api/internal/repository"
	"github.com/davidlopz/expotec-api/internal/router"
	"github.com/davidlopz/expotec-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.TeacherAssignment{},
		&models.Group{},
		&models.Course{},
		&models.Project{},
		&models.ContentBlock{},
		&models.Evaluation{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	observability.RegisterMetrics()

	validate := validator.New(validator.WithRequiredStructEnabled())
	cleaner := canvas.NewCleaner()
	scale := service.PointScale{
		GradeFloor: cfg.GradePointFloor,
		StarFactor: cfg.StarPointFactor,
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	userService := service.NewUserService(userRepo, groupRepo, validate, logger)
	membershipService := service.NewMembershipService(projectRepo, userRepo, logger)
	projectService := service.NewProjectService(projectRepo, userRepo, cleaner, validate, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, projectRepo, userRepo, scale, validate, logger)
	rankingService := service.NewRankingService(projectRepo, redisClient, cfg.RankingCacheTTL, scale, logger)
	catalogService := service.NewCatalogService(groupRepo, courseRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app)
	router.Register(app, cfg, router.Dependencies{
		UserHandler:       handler.NewUserHandler(userService, logger),
		ProjectHandler:    handler.NewProjectHandler(projectService, membershipService, logger),
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, logger),
		GalleryHandler:    handler.NewGalleryHandler(rankingService, logger),
		CatalogHandler:    handler.NewCatalogHandler(catalogService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
