package handlers

import (
	"context"
	"net/http"
	"strings"

	"repairdesk/services/notification"
	"repairdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceTokenStore records the push token of an account.
type DeviceTokenStore interface {
	SetFCMToken(ctx context.Context, id, token string) error
}

type NotificationHandler struct {
	Notifications notification.NotificationService
	Tokens        DeviceTokenStore
}

func NewNotificationHandler(ns notification.NotificationService, tokens DeviceTokenStore) *NotificationHandler {
	return &NotificationHandler{Notifications: ns, Tokens: tokens}
}

// ListHandler returns the caller's recent notifications, then marks all of them read.
// The response carries the read state as it was before the call.
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	list, err := h.Notifications.ListRecent(ctx, actor.ID, notification.DefaultRecentLimit)
	if err != nil {
		respondError(c, "Failed to fetch notifications", err)
		return
	}
	if _, err := h.Notifications.MarkAllRead(ctx, actor.ID); err != nil {
		zap.L().Warn("Failed to mark notifications read after listing",
			zap.String("userId", actor.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, list)
}

func (h *NotificationHandler) UnreadCountHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	count, err := h.Notifications.CountUnread(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "Failed to count notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, "Failed to mark notifications read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read", "count": n})
}

type deviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterTokenHandler stores the FCM token that stored notifications get mirrored to.
func (h *NotificationHandler) RegisterTokenHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body deviceTokenRequest
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Token) == "" {
		utils.JSONError(c, http.StatusBadRequest, "A device token is required", "")
		return
	}
	if err := h.Tokens.SetFCMToken(c.Request.Context(), actor.ID, strings.TrimSpace(body.Token)); err != nil {
		respondError(c, "Failed to register device token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device token registered"})
}
