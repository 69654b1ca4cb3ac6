package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mateolafalce/padelpro/internal/agent"
)

// ChatService answers chat messages and keeps their history.
type ChatService interface {
	WebChat(ctx context.Context, message string, history []agent.Message) string
	WhatsApp(ctx context.Context, phone, message string) string
	Forget(ctx context.Context, identity string) (int64, error)
}

type ChatHandler struct {
	chat ChatService
}

func NewChatHandler(chat ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string          `json:"message"`
	History *[]HistoryEntry `json:"history"`
}

func (h *ChatHandler) Message(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Success: false, Error: "El mensaje es requerido"})
		return
	}

	var history []agent.Message
	if req.History != nil {
		history = make([]agent.Message, 0, len(*req.History))
		for _, e := range *req.History {
			switch agent.Role(e.Role) {
			case agent.RoleUser, agent.RoleAssistant:
				history = append(history, agent.Message{Role: agent.Role(e.Role), Content: e.Content})
			}
		}
	}

	reply := h.chat.WebChat(c.Request.Context(), req.Message, history)
	c.JSON(http.StatusOK, gin.H{"response": reply, "success": true})
}
