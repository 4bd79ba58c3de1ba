package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/services"
	"github.com/yungbote/smartfridge-backend/internal/sse"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	hub           *sse.Hub
}

func NewNotificationHandler(notifications *services.NotificationService, hub *sse.Hub) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub}
}

func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.notifications.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "notification_list_failed", err)
		return
	}
	unread, err := h.notifications.CountUnread(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "notification_count_failed", err)
		return
	}
	RespondOK(c, gin.H{"notifications": list, "unread": unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", pkgerrors.ErrInvalidArgument)
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), id); err != nil {
		RespondError(c, http.StatusInternalServerError, "notification_update_failed", err)
		return
	}
	RespondOK(c, gin.H{"read": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context()); err != nil {
		RespondError(c, http.StatusInternalServerError, "notification_update_failed", err)
		return
	}
	RespondOK(c, gin.H{"read": true})
}

// Stream holds the connection open and pushes notification and status events
// as they happen.
func (h *NotificationHandler) Stream(c *gin.Context) {
	client := h.hub.NewClient()
	defer h.hub.CloseClient(client)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
