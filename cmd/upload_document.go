/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docchat-be/config"
	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/types"
)

// uploadDocumentCmd represents the upload-document command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Ingest a single PDF into the index",
	Long: `Runs the full ingestion pipeline for one local PDF file:
parse, structure, analyze, chunk, embed and index.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		filePath, _ := cmd.Flags().GetString("file")
		if filePath == "" {
			logrus.Fatal("--file is required")
		}

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		fileService, err := buildIngestPipeline(context.Background(), cfg)
		if err != nil {
			logrus.Fatalf("Failed to initialize pipeline: %v", err)
		}

		if err := ingestFile(context.Background(), fileService, filePath); err != nil {
			logrus.Fatalf("Failed to ingest %s: %v", filePath, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)

	uploadDocumentCmd.Flags().StringP("file", "f", "", "Path to the PDF to ingest")
	uploadDocumentCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}

// buildIngestPipeline wires the services needed for CLI ingestion. The
// chat-only services (router, websocket) stay out of it.
func buildIngestPipeline(ctx context.Context, cfg *config.Config) (*service.FileService, error) {
	weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig, cfg.Embedding.Dimension, cfg.Embedding.Model)
	if err != nil {
		return nil, fmt.Errorf("weaviate: %w", err)
	}
	minioStorage, err := database.NewMinioStorage(ctx, cfg.MinioConfig)
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("mongodb: %w", err)
	}
	documentRepo := repository.NewDocumentRepo(mongoClient.Database(cfg.MongoDatabase).Collection("documents"))

	openaiClient := service.NewOpenAIClient(cfg.AIEndpoint, cfg.OpenAIAPIKey)
	embedder := service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Embedding)
	pipeline := service.NewEmbeddingPipeline(embedder, cfg.Embedding.BatchSize)

	var models []service.ChatModel
	for _, name := range cfg.ChatModels {
		models = append(models, service.NewOpenAIModel(openaiClient, name))
	}
	if len(cfg.GeminiAPIKeys) > 0 && cfg.GeminiModel != "" {
		gemini, err := service.NewGeminiModel(cfg.GeminiAPIKeys, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		models = append(models, gemini)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no chat models configured")
	}
	invoker := service.NewFallbackInvoker(models)

	return service.NewFileService(
		service.NewParserService(),
		service.NewStructureService(),
		service.NewChunkService(cfg.Chunking),
		pipeline,
		service.NewAnalysisService(invoker),
		weaviateDb,
		minioStorage,
		documentRepo,
	), nil
}

func ingestFile(ctx context.Context, fileService *service.FileService, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	statusChan := make(chan types.ProcessingDocumentStatus)
	go func() {
		for status := range statusChan {
			fmt.Printf("[%s] %.0f%%\n", status.Stage, status.Progress*100)
		}
	}()

	response, err := fileService.UploadDocument(ctx, filepath.Base(filePath), file, info.Size(), "application/pdf", statusChan)
	close(statusChan)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %s: file_id=%s pages=%d chunks=%d\n",
		response.FileName, response.FileID, response.TotalPages, response.ChunkCount)
	return nil
}
