package handlers

import (
	"context"
	"errors"
	"net/http"

	"repairdesk/models"
	"repairdesk/services/chat"
	"repairdesk/utils"

	"github.com/gin-gonic/gin"
)

// CustomerLookup resolves the customer shown next to a shop-side thread.
type CustomerLookup interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}

type ChatHandler struct {
	Chat      chat.ChatService
	Customers CustomerLookup
}

func NewChatHandler(cs chat.ChatService, customers CustomerLookup) *ChatHandler {
	return &ChatHandler{Chat: cs, Customers: customers}
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type conversationResponse struct {
	Messages     []models.ChatMessage `json:"messages"`
	CustomerInfo *customerInfo        `json:"customerInfo,omitempty"`
}

type customerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SendToShopHandler posts a customer message into their thread with :shopId.
func (h *ChatHandler) SendToShopHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	h.send(c, actor, c.Param("shopId"), actor.ID)
}

// SendToUserHandler posts a shop message into the thread with :userId.
func (h *ChatHandler) SendToUserHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	h.send(c, actor, c.Param("shopId"), c.Param("userId"))
}

func (h *ChatHandler) send(c *gin.Context, actor models.Actor, shopID, userID string) {
	var body sendMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Message is required", "")
		return
	}
	msg, err := h.Chat.Send(c.Request.Context(), actor, shopID, userID, body.Message)
	if err != nil {
		respondError(c, "Failed to send message", err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// OwnThreadHandler returns the caller's thread with :shopId.
func (h *ChatHandler) OwnThreadHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	msgs, err := h.Chat.Conversation(c.Request.Context(), actor, c.Param("shopId"), actor.ID)
	if err != nil {
		respondError(c, "Failed to fetch messages", err)
		return
	}
	c.JSON(http.StatusOK, conversationResponse{Messages: msgs})
}

// ThreadHandler returns the :shopId/:userId thread along with the customer's contact details.
func (h *ChatHandler) ThreadHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID := c.Param("userId")

	msgs, err := h.Chat.Conversation(ctx, actor, c.Param("shopId"), userID)
	if err != nil {
		respondError(c, "Failed to fetch messages", err)
		return
	}

	resp := conversationResponse{Messages: msgs}
	if h.Customers != nil {
		customer, err := h.Customers.GetByID(ctx, userID)
		switch {
		case err == nil:
			resp.CustomerInfo = &customerInfo{ID: customer.ID, Name: customer.Name, Email: customer.Email}
		case !errors.Is(err, models.ErrNotFound):
			respondError(c, "Failed to fetch customer", err)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) MarkReadHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	n, err := h.Chat.MarkRead(c.Request.Context(), actor, c.Param("shopId"), c.Param("userId"))
	if err != nil {
		respondError(c, "Failed to mark messages read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Messages marked as read", "count": n})
}

func (h *ChatHandler) ConversationsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	list, err := h.Chat.Conversations(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "Failed to fetch conversations", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ChatHandler) UnreadCountHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	n, err := h.Chat.UnreadCountFor(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "Failed to count unread messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
