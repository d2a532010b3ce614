package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/types"
)

type SearchHandler struct {
	router *service.RouterService
}

func NewSearchHandler(router *service.RouterService) *SearchHandler {
	return &SearchHandler{
		router: router,
	}
}

func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: types.ErrEmptyQuery.Error(),
		})
		return
	}
	if req.Limit == 0 {
		req.Limit = 5
	}

	chunks, err := h.router.Search(c.Request.Context(), req.Query, req.DocumentType, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Search failed",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   groupByFile(chunks),
	})
}

// groupByFile buckets matches per file, preserving score order inside
// each group.
func groupByFile(chunks []types.ScoredChunk) types.SearchResponse {
	var response types.SearchResponse
	groupIndex := make(map[string]int)

	for _, chunk := range chunks {
		idx, ok := groupIndex[chunk.Metadata.FileID]
		if !ok {
			response.Groups = append(response.Groups, types.SearchGroup{
				FileID:       chunk.Metadata.FileID,
				DocumentType: chunk.Metadata.DocumentType,
			})
			idx = len(response.Groups) - 1
			groupIndex[chunk.Metadata.FileID] = idx
		}

		section := chunk.Metadata.SectionTitle
		if section == "" {
			section = string(chunk.Metadata.SourceKind)
		}
		response.Groups[idx].Matches = append(response.Groups[idx].Matches, types.SearchMatch{
			Content: chunk.Content,
			Score:   chunk.Score,
			Section: section,
		})
	}
	return response
}
