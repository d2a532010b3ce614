package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/types"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	var chatRequest types.ChatRequest
	if err := c.ShouldBindJSON(&chatRequest); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	response, err := h.chatService.Chat(c.Request.Context(), chatRequest)
	if err != nil {
		if errors.Is(err, types.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  false,
				Message: err.Error(),
			})
			return
		}
		// Upstream detail stays out of client responses.
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to generate a response",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   response,
	})
}
