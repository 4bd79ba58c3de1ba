package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/smartfridge-backend/internal/clients/gcp"
	"github.com/yungbote/smartfridge-backend/internal/clients/redis"
	"github.com/yungbote/smartfridge-backend/internal/db"
	"github.com/yungbote/smartfridge-backend/internal/handlers"
	"github.com/yungbote/smartfridge-backend/internal/logger"
	"github.com/yungbote/smartfridge-backend/internal/repos"
	"github.com/yungbote/smartfridge-backend/internal/server"
	"github.com/yungbote/smartfridge-backend/internal/services"
	"github.com/yungbote/smartfridge-backend/internal/sse"
	"github.com/yungbote/smartfridge-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	itemObservationRepo := repos.NewItemObservationRepo(thePG, log)
	notificationRepo := repos.NewNotificationRepo(thePG, log)
	fridgeStatusRepo := repos.NewFridgeStatusRepo(thePG, log)
	fridgeItemRepo := repos.NewFridgeItemRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewHub(log)

	// Redis event bus is optional; without it events stay on this instance.
	var eventBus redis.EventBus
	if os.Getenv("REDIS_ADDR") != "" {
		eventBus, err = redis.NewEventBus(log)
		if err != nil {
			log.Warn("Could not init Redis event bus", "error", err)
			eventBus = nil
		}
	}
	if eventBus != nil {
		defer eventBus.Close()
		if err := eventBus.StartForwarder(context.Background(), sseHub.Broadcast); err != nil {
			log.Warn("Could not start Redis forwarder", "error", err)
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Warn("Could not init OpenAIClient; analyses will degrade", "error", err)
		openaiClient = nil
	}
	labelDetector, err := gcp.NewLabelDetector(log)
	if err != nil {
		log.Warn("Could not init label detector; admission falls back to heuristics", "error", err)
		labelDetector = nil
	}
	if labelDetector != nil {
		defer labelDetector.Close()
	}

	shelfLife, err := services.LoadShelfLifeTable()
	if err != nil {
		log.Error("Could not load shelf life table", "error", err)
		os.Exit(1)
	}

	guardrail := services.NewImageGuardrail(log, labelDetector)
	visionService := services.NewVisionService(log, openaiClient)
	tracker := services.NewExpirationTracker(log, itemObservationRepo, openaiClient, shelfLife)
	validator := services.NewValidator(log, openaiClient)
	notificationService := services.NewNotificationService(log, notificationRepo, sseHub, eventBus)

	analyzers := []services.Analyzer{
		services.NewSafetyAnalyzer(log, openaiClient),
		services.NewFreshnessAnalyzer(log, openaiClient),
		services.NewRecipeAnalyzer(log, openaiClient),
		services.NewExpirationAnalyzer(log, tracker),
	}

	pipeline := services.NewPipeline(
		log,
		guardrail,
		visionService,
		tracker,
		validator,
		analyzers,
		itemObservationRepo,
		fridgeStatusRepo,
		notificationService,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	uploadHandler := handlers.NewUploadHandler(pipeline)
	statusHandler := handlers.NewStatusHandler(fridgeStatusRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationService, sseHub)
	itemHandler := handlers.NewItemHandler(fridgeItemRepo)

	// Router
	log.Info("Setting up router from main...")
	var origins []string
	if raw := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log); raw != "" {
		origins = strings.Split(raw, ",")
	}
	router := server.NewRouter(server.RouterConfig{
		UploadHandler:       uploadHandler,
		StatusHandler:       statusHandler,
		NotificationHandler: notificationHandler,
		ItemHandler:         itemHandler,
		AllowOrigins:        origins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
