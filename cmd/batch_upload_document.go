/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docchat-be/config"
)

// batchUploadDocumentCmd represents the batch-upload-document command
var batchUploadDocumentCmd = &cobra.Command{
	Use:   "batch-upload-document",
	Short: "Ingest every PDF in a directory",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		directory, _ := cmd.Flags().GetString("directory")
		if directory == "" {
			logrus.Fatal("--directory is required")
		}

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		ctx := context.Background()
		fileService, err := buildIngestPipeline(ctx, cfg)
		if err != nil {
			logrus.Fatalf("Failed to initialize pipeline: %v", err)
		}

		files, err := filepath.Glob(filepath.Join(directory, "*"))
		if err != nil {
			logrus.Fatalf("Failed to read directory: %v", err)
		}
		for _, filePath := range files {
			if !strings.EqualFold(filepath.Ext(filePath), ".pdf") {
				continue
			}
			if err := ingestFile(ctx, fileService, filePath); err != nil {
				// One bad file should not stop the batch.
				logrus.Errorf("Failed to ingest %s: %v", filePath, err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(batchUploadDocumentCmd)

	batchUploadDocumentCmd.Flags().String("directory", "", "Path to the directory of PDFs to ingest")
	batchUploadDocumentCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
