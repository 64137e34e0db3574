/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/handler"
	"github.com/tieubaoca/docqa-be/middleware"
	"github.com/tieubaoca/docqa-be/repository"
	"github.com/tieubaoca/docqa-be/service"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document Q&A server",
	Long:  `Starts the HTTP server that handles document ingestion and scoped queries`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.Weaviate)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		mongoClient, err := database.NewMongoClient(context.Background(), cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database("docqa")

		//init repo
		documentRepo := repository.NewDocumentRepo(mongoDb.Collection("documents"))
		chunkRepo := repository.NewChunkRepo(mongoDb.Collection("chunks"))
		sessionRepo := repository.NewSessionRepo(mongoDb.Collection("sessions"))

		//init services
		embedder := service.NewOpenAIEmbedder(cfg.Embedding.Endpoint, cfg.AI.OpenAIAPIKey, cfg.Embedding.Model)
		synthesizer, err := newSynthesizer(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize AI backend: %v", err)
		}

		classifier := service.NewClassifier(cfg.Classifier.ConfidenceFloor)
		chunker := service.NewChunker(cfg.Chunking.MaxChunkSize, cfg.Chunking.OverlapSize)
		scorer := service.NewScorer()
		locks := service.NewSessionLocks()

		documentService := service.NewDocumentService(
			documentRepo, chunkRepo, sessionRepo, weaviateDb, embedder, classifier, chunker, locks)
		cleanupWorker := service.NewCleanupWorker(documentService.CleanupSession)
		queryService := service.NewQueryService(
			documentRepo, weaviateDb, embedder, synthesizer, scorer, documentService, cleanupWorker, locks, cfg.TopK)
		oneShotService := service.NewOneShotService(documentService, queryService)

		workerCtx, cancelWorker := context.WithCancel(context.Background())
		defer cancelWorker()
		go cleanupWorker.Run(workerCtx)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
			"vector_store": weaviateDb.Ready,
			"metadata_store": func(ctx context.Context) error {
				return mongoClient.Ping(ctx, readpref.Primary())
			},
			"embedding_service": nil,
			"llm_service":       nil,
		})
		sessionHandler := handler.NewSessionHandler(documentService)
		documentHandler := handler.NewDocumentHandler(documentService, cfg.UploadDir)
		queryHandler := handler.NewQueryHandler(queryService)
		oneShotHandler := handler.NewOneShotHandler(oneShotService)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/health", healthHandler.HealthHandler)

		protected := router.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg.AuthKey))
		{
			protected.POST("/documents/session/create", sessionHandler.CreateSessionHandler)
			protected.DELETE("/documents/session/:id", sessionHandler.DeleteSessionHandler)
			protected.POST("/documents/upload", documentHandler.UploadDocumentHandler)
			protected.POST("/documents/embed", documentHandler.EmbedDocumentHandler)
			protected.GET("/documents/list", documentHandler.ListDocumentsHandler)
			protected.DELETE("/documents/:id", documentHandler.DeleteDocumentHandler)
			protected.POST("/documents/query", queryHandler.QueryHandler)
			protected.POST("/hackrx/run", oneShotHandler.RunHandler)
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func newSynthesizer(cfg *config.Config) (service.Synthesizer, error) {
	switch cfg.AI.Provider {
	case "gemini":
		return service.NewGeminiService(cfg.AI.GeminiAPIKeys, cfg.AI.Model)
	default:
		return service.NewOpenAIService(cfg.AI.Endpoint, cfg.AI.OpenAIAPIKey, cfg.AI.Model), nil
	}
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
