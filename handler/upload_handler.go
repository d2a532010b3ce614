package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/types"
)

type UploadHandler struct {
	fileService *service.FileService
}

func NewUploadHandler(fileService *service.FileService) *UploadHandler {
	return &UploadHandler{
		fileService: fileService,
	}
}

// UploadDocumentHandler ingests a PDF and streams stage progress as
// server-sent events until the final JSON result.
func (h *UploadHandler) UploadDocumentHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	const maxSize = 50 << 20
	if header.Size > maxSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File too large",
		})
		return
	}

	statusChan := make(chan types.ProcessingDocumentStatus)
	type uploadResult struct {
		response *types.UploadResponse
		err      error
	}
	resultChan := make(chan uploadResult, 1)

	go func() {
		defer close(statusChan)
		response, err := h.fileService.UploadDocument(
			c.Request.Context(),
			header.Filename,
			file,
			header.Size,
			header.Header.Get("Content-Type"),
			statusChan,
		)
		resultChan <- uploadResult{response: response, err: err}
	}()

	for {
		select {
		case <-c.Request.Context().Done():
			return // Client disconnected
		case status, ok := <-statusChan:
			if !ok {
				statusChan = nil
				continue
			}
			c.SSEvent("message", status)
			c.Writer.Flush()
		case result := <-resultChan:
			if result.err != nil {
				h.sendUploadError(c, result.err)
			} else {
				c.JSON(http.StatusOK, types.DataResponse{
					Status: true,
					Data:   result.response,
				})
			}
			return
		}
	}
}

func (h *UploadHandler) sendUploadError(c *gin.Context, err error) {
	if errors.Is(err, types.ErrInvalidMimeType) {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, types.DataResponse{
		Status:  false,
		Message: "Failed to process document",
	})
}
