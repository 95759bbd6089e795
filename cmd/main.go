package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"persona-movie-recommender/internal/cache"
	"persona-movie-recommender/internal/config"
	"persona-movie-recommender/internal/database"
	"persona-movie-recommender/internal/handler"
	"persona-movie-recommender/internal/llm"
	"persona-movie-recommender/internal/repository"
	"persona-movie-recommender/internal/service"
	"persona-movie-recommender/internal/tmdb"
	"persona-movie-recommender/internal/translate"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Missing API keys are surfaced per request, before any network
	// call, so the service still boots for the endpoints that don't
	// need them.
	if cfg.LLM.APIKey == "" {
		slog.Warn("OPENROUTER_API_KEY not set, recommendation generation will fail")
	}
	if cfg.TMDB.APIKey == "" {
		slog.Warn("TMDB_API_KEY not set, catalog enrichment will fail")
	}

	// Initialize layers
	personaRepo := repository.NewPersonaRepository(db)
	watchedRepo := repository.NewWatchedRepository(db)
	batchRepo := repository.NewBatchRepository(db)

	recSvc := service.NewRecommendationService(
		personaRepo, watchedRepo, batchRepo,
		cache.NewRedis(rdb),
		llm.NewClient(cfg.LLM),
		translate.NewClient(cfg.Translate),
		tmdb.NewClient(cfg.TMDB),
	)
	profileSvc := service.NewProfileService(personaRepo, watchedRepo, batchRepo)

	recHandler := handler.NewRecommendationHandler(recSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)

	// Load swagger spec
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger spec not found, swagger UI will be unavailable", "error", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "persona-movie-recommender",
		ServerHeader: "persona-movie-recommender",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Swagger
	if swaggerYAML != nil {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	// Routes
	app.Get("/health", recHandler.Health)

	api := app.Group("/api/v1")
	api.Put("/users/:id/persona", profileHandler.SavePersona)
	api.Get("/users/:id/persona", profileHandler.GetPersona)
	api.Post("/users/:id/recommendations", recHandler.Generate)
	api.Get("/users/:id/recommendations/history", recHandler.History)
	api.Put("/users/:id/watched", profileHandler.RateMovie)
	api.Get("/users/:id/watched", profileHandler.ListWatched)
	api.Get("/users/:id/dashboard", profileHandler.Dashboard)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("persona-movie-recommender starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down persona-movie-recommender")
	_ = app.Shutdown()
}
