package main

import (
	"context"
	"log"

	"clauselens-backend/config"
	"clauselens-backend/extractor"
	"clauselens-backend/handlers"
	"clauselens-backend/service"
	"clauselens-backend/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize storage
	fileStorage, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage initialized (%s)", cfg.Storage.Type)

	// Initialize retrieval and language model clients
	components, err := service.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer components.Close()

	analysisHandler := handlers.NewAnalysisHandler(
		fileStorage,
		extractor.New(),
		components.Analysis,
		handlers.WithMaxFileSize(cfg.MaxUploadBytes),
		handlers.WithKeepUploads(cfg.KeepUploads),
	)

	// Setup Gin router
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(cors.Default())

	analysisHandler.RegisterRoutes(r)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
