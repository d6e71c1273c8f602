// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"painpoint-advisor/internal/service"
	"painpoint-advisor/pkg/log"
)

// ChatHandler 处理 POST /chat。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	UseWebSearch   bool   `json:"useWebSearch"`
	Stream         *bool  `json:"stream"`
}

// PostMessage 处理一条用户消息。默认以 SSE 流式返回，stream=false 时返回单个 JSON。
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	// 校验在任何持久化之前完成
	if strings.TrimSpace(body.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	req := service.ChatRequest{
		Message:        body.Message,
		ConversationID: body.ConversationID,
		UseWebSearch:   body.UseWebSearch,
	}
	if body.Stream == nil || *body.Stream {
		h.stream(c, req)
		return
	}
	h.complete(c, req)
}

func (h *ChatHandler) complete(c *gin.Context, req service.ChatRequest) {
	res, err := h.chatService.Complete(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message":        res.Message,
			"conversationId": res.ConversationID,
			"provider":       res.Provider,
		})
	case errors.Is(err, service.ErrProvidersNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": service.NotConfiguredMessage,
			"setup": service.DefaultSetupHints(),
		})
	case errors.Is(err, service.ErrNoProviderAvailable):
		log.Warnw("All providers failed", "conversationId", req.ConversationID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": service.AllUnavailableMessage})
	default:
		log.Errorw("Error in chat", "conversationId", req.ConversationID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": service.ProcessFailedMessage})
	}
}

func (h *ChatHandler) stream(c *gin.Context, req service.ChatRequest) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	state := h.chatService.Stream(c.Request.Context(), req, &sseWriter{w: c.Writer})
	log.Infow("Chat stream finished", "conversationId", req.ConversationID, "state", state)
}

// sseWriter 将事件编码为 "data: <json>\n\n" 并立即刷新。
type sseWriter struct {
	w gin.ResponseWriter
}

func (s *sseWriter) WriteEvent(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return s.writeLine(data)
}

func (s *sseWriter) WriteDone() error {
	return s.writeLine([]byte("[DONE]"))
}

func (s *sseWriter) writeLine(data []byte) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}
