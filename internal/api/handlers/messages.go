package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/attributes/internal/api/middleware"
	"github.com/nebari-dev/attributes/internal/messenger"
)

// MessageHandler hands out the status messages queued for the caller.
type MessageHandler struct {
	messenger messenger.Messenger
}

func NewMessageHandler(m messenger.Messenger) *MessageHandler {
	return &MessageHandler{messenger: m}
}

// Drain godoc
// @Summary Fetch and clear pending status messages
// @Tags messages
// @Produce json
// @Success 200 {array} messenger.Message
// @Router /api/v1/messages [get]
func (h *MessageHandler) Drain(c *gin.Context) {
	msgs, err := h.messenger.Drain(c.Request.Context(), middleware.GetRecipient(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if msgs == nil {
		msgs = []messenger.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}
