package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/transport/middleware"
	"github.com/mateolafalce/padelpro/pkg/whatsapp"
)

const onlyTextReply = "Lo siento, solo puedo procesar mensajes de texto por ahora."

type TextSender interface {
	SendText(ctx context.Context, to, message string) error
}

// SessionClearer drops the agent state of an identity.
type SessionClearer interface {
	ClearSession(ctx context.Context, identity string) error
}

type WhatsAppHandler struct {
	chat        ChatService
	sender      TextSender
	sessions    SessionClearer
	limiter     middleware.Limiter
	verifyToken string
}

func NewWhatsAppHandler(chat ChatService, sender TextSender, sessions SessionClearer, limiter middleware.Limiter, verifyToken string) *WhatsAppHandler {
	return &WhatsAppHandler{
		chat:        chat,
		sender:      sender,
		sessions:    sessions,
		limiter:     limiter,
		verifyToken: verifyToken,
	}
}

// Verify answers the subscription handshake of the provider.
func (h *WhatsAppHandler) Verify(c *gin.Context) {
	if c.Query("hub.mode") == "subscribe" && h.verifyToken != "" && c.Query("hub.verify_token") == h.verifyToken {
		logrus.Info("WhatsApp webhook verified")
		c.String(http.StatusOK, c.Query("hub.challenge"))
		return
	}
	logrus.Warn("WhatsApp webhook verification failed")
	c.String(http.StatusForbidden, "Forbidden")
}

// Receive handles every message of a webhook delivery in order and always
// acknowledges a readable payload, so the provider does not redeliver.
func (h *WhatsAppHandler) Receive(c *gin.Context) {
	var payload whatsapp.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "payload inválido"})
		return
	}

	ctx := c.Request.Context()
	for _, msg := range payload.Messages() {
		h.handleMessage(ctx, msg)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WhatsAppHandler) handleMessage(ctx context.Context, msg whatsapp.Message) {
	from := msg.From
	log := logrus.WithFields(logrus.Fields{"from": from, "message_id": msg.ID, "type": msg.Type})

	if !h.allow(ctx, from) {
		log.Warn("WhatsApp sender over rate limit")
		h.send(ctx, from, middleware.TooManyMessages)
		return
	}

	if !msg.IsText() {
		h.send(ctx, from, onlyTextReply)
		return
	}

	log.Info("WhatsApp message received")
	reply := h.chat.WhatsApp(ctx, from, msg.Text.Body)
	h.send(ctx, from, reply)
}

func (h *WhatsAppHandler) allow(ctx context.Context, identity string) bool {
	if h.limiter == nil {
		return true
	}
	allowed, _, err := h.limiter.Allow(ctx, identity)
	if err != nil {
		logrus.WithFields(logrus.Fields{"identity": identity, "error": err}).Warn("Rate limiter unavailable")
		return true
	}
	return allowed
}

func (h *WhatsAppHandler) send(ctx context.Context, to, message string) {
	if err := h.sender.SendText(ctx, to, message); err != nil {
		logrus.WithFields(logrus.Fields{"to": to, "error": err}).Error("Failed to send WhatsApp message")
	}
}

type SendRequest struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
}

// Send lets operators write to a customer directly.
func (h *WhatsAppHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil || blank(req.PhoneNumber, req.Message) {
		badRequest(c, "phone_number y message son requeridos")
		return
	}

	if err := h.sender.SendText(c.Request.Context(), strings.TrimSpace(req.PhoneNumber), req.Message); err != nil {
		msg, ok := entity.MessageOf(err)
		if !ok {
			msg = "No se pudo enviar el mensaje"
		}
		logrus.WithFields(logrus.Fields{"to": req.PhoneNumber, "error": err}).Error("Operator WhatsApp send failed")
		c.JSON(statusFor(err), gin.H{"status": "failed", "success": false, "error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent", "success": true})
}

// ClearHistory forgets the stored conversation and agent state of a phone.
func (h *WhatsAppHandler) ClearHistory(c *gin.Context) {
	phone := c.Param("phone")
	ctx := c.Request.Context()

	removed, err := h.chat.Forget(ctx, phone)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.sessions != nil {
		if err := h.sessions.ClearSession(ctx, phone); err != nil {
			logrus.WithFields(logrus.Fields{"phone": phone, "error": err}).Warn("Failed to clear agent session")
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared", "success": true, "eliminados": removed})
}
