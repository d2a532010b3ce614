package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/types"
)

type DocumentHandler struct {
	fileService *service.FileService
	analysis    *service.AnalysisService
}

func NewDocumentHandler(fileService *service.FileService, analysis *service.AnalysisService) *DocumentHandler {
	return &DocumentHandler{
		fileService: fileService,
		analysis:    analysis,
	}
}

func (h *DocumentHandler) HandleListDocuments(c *gin.Context) {
	records, err := h.fileService.ListDocuments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to list documents",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   records,
	})
}

func (h *DocumentHandler) HandleGetDocument(c *gin.Context) {
	fileID := c.Param("id")
	record, err := h.fileService.GetDocument(c.Request.Context(), fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to get document",
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Document not found",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   record,
	})
}

func (h *DocumentHandler) HandleDeleteDocument(c *gin.Context) {
	fileID := c.Param("id")
	if err := h.fileService.DeleteDocument(c.Request.Context(), fileID); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to delete document",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "Document deleted",
	})
}

func (h *DocumentHandler) HandleImproveSection(c *gin.Context) {
	var req types.ImproveSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Section content is required",
		})
		return
	}

	improved, err := h.analysis.ImproveSection(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to improve section",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.ImproveSectionResponse{
			SectionTitle: req.SectionTitle,
			Improved:     improved,
		},
	})
}
