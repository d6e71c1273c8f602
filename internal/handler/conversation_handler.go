package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"painpoint-advisor/internal/model"
	"painpoint-advisor/internal/repository"
	"painpoint-advisor/internal/service"
	"painpoint-advisor/pkg/log"
)

// ConversationHandler 处理与对话相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetConversations 带 conversationId 时返回完整对话（含有序消息），否则返回最近更新的对话列表。
func (h *ConversationHandler) GetConversations(c *gin.Context) {
	if id := c.Query("conversationId"); id != "" {
		conv, err := h.service.Get(c.Request.Context(), id)
		switch {
		case errors.Is(err, repository.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		case err != nil:
			log.Errorw("Error fetching conversation", "conversationId", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		default:
			c.JSON(http.StatusOK, conv)
		}
		return
	}

	convs, err := h.service.ListRecent(c.Request.Context())
	if err != nil {
		log.Errorw("Error fetching conversations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	c.JSON(http.StatusOK, convs)
}
