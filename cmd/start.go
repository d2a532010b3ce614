/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docchat-be/config"
	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/handler"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/service"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document chat server",
	Long:  `Starts the HTTP server handling uploads, search and chat.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig, cfg.Embedding.Dimension, cfg.Embedding.Model)
		if err != nil {
			logrus.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if err := weaviateDb.EnsureCollection(ctx); err != nil {
			logrus.Fatalf("Failed to ensure chunk collection: %v", err)
		}

		minioStorage, err := database.NewMinioStorage(ctx, cfg.MinioConfig)
		if err != nil {
			logrus.Fatalf("Failed to connect to MinIO: %v", err)
		}

		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			logrus.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database(cfg.MongoDatabase)

		// init repo
		documentRepo := repository.NewDocumentRepo(mongoDb.Collection("documents"))

		// init services
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
				logrus.Fatalf("Failed to create Gemini model: %v", err)
			}
			models = append(models, gemini)
		}
		if len(models) == 0 {
			logrus.Fatal("No chat models configured")
		}
		invoker := service.NewFallbackInvoker(models)

		parserService := service.NewParserService()
		structureService := service.NewStructureService()
		chunkService := service.NewChunkService(cfg.Chunking)
		analysisService := service.NewAnalysisService(invoker)
		fileService := service.NewFileService(
			parserService,
			structureService,
			chunkService,
			pipeline,
			analysisService,
			weaviateDb,
			minioStorage,
			documentRepo,
		)
		routerService := service.NewRouterService(weaviateDb, pipeline)
		chatService := service.NewChatService(routerService, invoker)
		wsService := service.NewWebSocketService(chatService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(fileService)
		chatHandler := handler.NewChatHandler(chatService)
		searchHandler := handler.NewSearchHandler(routerService)
		documentHandler := handler.NewDocumentHandler(fileService, analysisService)
		healthHandler := handler.NewHealthHandler(weaviateDb, minioStorage)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/chat", chatHandler.HandleChat)
			apiV1.POST("/documents/search", searchHandler.HandleSearch)
			apiV1.GET("/documents", documentHandler.HandleListDocuments)
			apiV1.GET("/documents/:id", documentHandler.HandleGetDocument)
			apiV1.DELETE("/documents/:id", documentHandler.HandleDeleteDocument)
			apiV1.POST("/documents/:id/improve-section", documentHandler.HandleImproveSection)
			apiV1.GET("/healthz", healthHandler.HandleHealth)
			apiV1.GET("/ws/chat", func(c *gin.Context) {
				wsService.HandleChat(c.Writer, c.Request)
			})
		}

		adminRoutes := router.Group("/admin/api/v1")
		{
			adminRoutes.POST("/upload", uploadHandler.UploadDocumentHandler)
		}

		logrus.Infof("Starting server on port %s...", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			logrus.Fatalf("Server error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
