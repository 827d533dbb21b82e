package main

import (
	"log"

	"infographic-service/internal/api"
	"infographic-service/internal/config"
	"infographic-service/internal/services"
	"infographic-service/internal/store"
	"infographic-service/internal/validation"

	"github.com/xeipuuv/gojsonschema"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Select the task store backend
	var taskStore store.TaskStore
	switch cfg.Store.Backend {
	case "mongo":
		taskStore, err = store.NewMongoTaskStore(cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB task store: %v", err)
		}
		log.Printf("Using MongoDB task store (database %s, collection %s)", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	case "redis":
		taskStore, err = store.NewRedisTaskStore(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis task store: %v", err)
		}
		log.Printf("Using Redis task store at %s (task TTL %s)", cfg.Redis.Addr, cfg.Redis.TTL)
	default:
		taskStore = store.NewMemoryTaskStore()
		log.Printf("Using in-memory task store: tasks are lost on restart and invisible to other instances; do not run multiple replicas with this backend")
	}
	defer taskStore.Close()

	// Initialize services
	aiService := services.NewAIService(cfg.OpenAI)
	generationService := services.NewGenerationService(taskStore, aiService, cfg.Generation)

	// Load the request schema (optional - binding validation still applies without it)
	var requestSchema *gojsonschema.Schema
	requestSchema, err = validation.LoadSchema("schemas/generate_request.json")
	if err != nil {
		log.Printf("WARNING: request schema not loaded, schema validation disabled: %v", err)
		requestSchema = nil
	}

	// Initialize handlers
	handlers := api.NewHandlers(generationService, taskStore, cfg.Generation.MaxContentLength, requestSchema)

	// Setup routes
	router := api.SetupRoutes(handlers)

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
