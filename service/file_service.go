package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/types"
)

// FileService orchestrates the ingestion pipeline: blob storage, parsing,
// structuring, analysis, chunking, embedding and indexing. Cancellation
// is checked at every stage boundary so an aborted upload never leaves a
// stage half-written.
type FileService struct {
	parser    *ParserService
	structure *StructureService
	chunker   *ChunkService
	pipeline  *EmbeddingPipeline
	analysis  *AnalysisService
	index     database.VectorIndex
	blobs     database.BlobStorage
	records   repository.DocumentRepo
	log       *logrus.Entry
}

func NewFileService(
	parser *ParserService,
	structure *StructureService,
	chunker *ChunkService,
	pipeline *EmbeddingPipeline,
	analysis *AnalysisService,
	index database.VectorIndex,
	blobs database.BlobStorage,
	records repository.DocumentRepo,
) *FileService {
	return &FileService{
		parser:    parser,
		structure: structure,
		chunker:   chunker,
		pipeline:  pipeline,
		analysis:  analysis,
		index:     index,
		blobs:     blobs,
		records:   records,
		log:       logrus.WithField("component", "file_service"),
	}
}

// UploadDocument runs the full ingestion pipeline for one PDF. Stage
// progress is reported on statusChan when it is non-nil.
func (s *FileService) UploadDocument(ctx context.Context, fileName string, file io.Reader, size int64, contentType string, statusChan chan<- types.ProcessingDocumentStatus) (*types.UploadResponse, error) {
	if !isPDF(fileName, contentType) {
		return nil, types.ErrInvalidMimeType
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	fileID := uuid.NewString()
	objectName := blobObjectName(fileID)

	s.emit(ctx, statusChan, "storing", 0.1)
	blobURL, err := s.blobs.Put(ctx, objectName, bytes.NewReader(data), size, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.emit(ctx, statusChan, "parsing", 0.25)
	pages, err := s.parser.Parse(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.emit(ctx, statusChan, "structuring", 0.4)
	docType := s.structure.ClassifyDocument(pages)
	sections := s.structure.DetectSections(pages)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.emit(ctx, statusChan, "analyzing", 0.55)
	analysis, err := s.analysis.AnalyzeDocument(ctx, docType, pages)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &types.Document{
		FileID:       fileID,
		FileName:     fileName,
		DocumentType: docType,
		Pages:        pages,
		Sections:     sections,
		Summary:      analysis.Summary,
		Suggestions:  analysis.Suggestions,
		Explanations: analysis.Explanations,
	}

	s.emit(ctx, statusChan, "chunking", 0.7)
	chunks := s.chunker.BuildChunks(doc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.emit(ctx, statusChan, "embedding", 0.8)
	vectors, err := s.pipeline.Embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	embedded := make([]types.EmbeddedChunk, len(chunks))
	for i, chunk := range chunks {
		embedded[i] = types.EmbeddedChunk{
			ID:        uuid.NewString(),
			Chunk:     chunk,
			Embedding: vectors[i],
		}
	}

	s.emit(ctx, statusChan, "indexing", 0.9)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.index.EnsureCollection(ctx); err != nil {
		return nil, err
	}
	if err := s.index.UpsertChunks(ctx, embedded); err != nil {
		return nil, err
	}

	record := &types.DocumentRecord{
		FileID:       fileID,
		FileName:     fileName,
		BlobURL:      blobURL,
		DocumentType: docType,
		TotalPages:   len(pages),
		SectionCount: len(sections),
		ChunkCount:   len(chunks),
		Summary:      analysis.Summary,
		UploadedAt:   time.Now().Unix(),
	}
	if err := s.records.CreateRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	s.emit(ctx, statusChan, "completed", 1.0)
	s.log.WithFields(logrus.Fields{
		"file_id":     fileID,
		"pages":       len(pages),
		"chunk_count": len(chunks),
	}).Info("document ingested")

	return &types.UploadResponse{
		FileID:       fileID,
		FileName:     fileName,
		BlobURL:      blobURL,
		DocumentType: docType,
		TotalPages:   len(pages),
		SectionCount: len(sections),
		ChunkCount:   len(chunks),
		Summary:      analysis.Summary,
		Suggestions:  analysis.Suggestions,
	}, nil
}

// DeleteDocument removes a file's chunks, blob and registry record.
func (s *FileService) DeleteDocument(ctx context.Context, fileID string) error {
	if err := s.index.DeleteByFileID(ctx, fileID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, blobObjectName(fileID)); err != nil {
		s.log.WithField("file_id", fileID).Warnf("failed to delete blob: %v", err)
	}
	return s.records.DeleteRecord(ctx, fileID)
}

func (s *FileService) GetDocument(ctx context.Context, fileID string) (*types.DocumentRecord, error) {
	return s.records.GetRecord(ctx, fileID)
}

func (s *FileService) ListDocuments(ctx context.Context) ([]*types.DocumentRecord, error) {
	return s.records.ListRecords(ctx)
}

func (s *FileService) emit(ctx context.Context, statusChan chan<- types.ProcessingDocumentStatus, stage string, progress float64) {
	if statusChan == nil {
		return
	}
	status := types.ProcessingDocumentStatus{
		Status:   "processing",
		Message:  "Processing document",
		Stage:    stage,
		Progress: progress,
	}
	if stage == "completed" {
		status.Status = "completed"
		status.Message = "Done processing PDF"
	}
	select {
	case statusChan <- status:
	case <-ctx.Done():
	}
}

func isPDF(fileName, contentType string) bool {
	if contentType == "application/pdf" {
		return true
	}
	return strings.ToLower(filepath.Ext(fileName)) == ".pdf"
}

func blobObjectName(fileID string) string {
	return fileID + ".pdf"
}
