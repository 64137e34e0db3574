/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/repository"
	"github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
)

// ingestDocumentCmd uploads and embeds a local file in one step, for
// seeding an instance without going through the HTTP API.
var ingestDocumentCmd = &cobra.Command{
	Use:   "ingest-document [file]",
	Short: "Upload and embed a local document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, _ := cmd.Flags().GetString("session")
		typeOverride, _ := cmd.Flags().GetString("type")

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

		documentRepo := repository.NewDocumentRepo(mongoDb.Collection("documents"))
		chunkRepo := repository.NewChunkRepo(mongoDb.Collection("chunks"))
		sessionRepo := repository.NewSessionRepo(mongoDb.Collection("sessions"))
		embedder := service.NewOpenAIEmbedder(cfg.Embedding.Endpoint, cfg.AI.OpenAIAPIKey, cfg.Embedding.Model)

		documentService := service.NewDocumentService(
			documentRepo, chunkRepo, sessionRepo, weaviateDb, embedder,
			service.NewClassifier(cfg.Classifier.ConfidenceFloor),
			service.NewChunker(cfg.Chunking.MaxChunkSize, cfg.Chunking.OverlapSize),
			service.NewSessionLocks(),
		)

		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[0], err)
		}

		ctx := context.Background()
		doc, err := documentService.Upload(ctx, sessionID, filepath.Base(args[0]), data)
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		log.Printf("uploaded %s as document %s (%s, %d chunks)",
			doc.Filename, doc.ID, doc.DocumentType, doc.TotalChunks)

		var override types.DocumentType
		if typeOverride != "" {
			override = types.ParseDocumentType(typeOverride)
		}
		resp, err := documentService.Embed(ctx, doc.ID, override)
		if err != nil {
			log.Fatalf("Embed failed: %v", err)
		}
		log.Printf("embedded document %s: %d vectors stored", doc.ID, resp.VectorsStored)
	},
}

func init() {
	rootCmd.AddCommand(ingestDocumentCmd)
	ingestDocumentCmd.Flags().StringP("session", "s", "", "session id to scope the document to")
	ingestDocumentCmd.Flags().StringP("type", "t", "", "document type override")
}
