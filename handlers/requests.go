package handlers

import (
	"net/http"

	"repairdesk/models"
	"repairdesk/services/lifecycle"
	"repairdesk/services/payment"
	"repairdesk/utils"

	"github.com/gin-gonic/gin"
)

// RequestHandler exposes the service request lifecycle.
type RequestHandler struct {
	Lifecycle lifecycle.LifecycleService
	// Payments is nil when Stripe is not configured.
	Payments payment.PaymentService
}

func NewRequestHandler(ls lifecycle.LifecycleService, ps payment.PaymentService) *RequestHandler {
	return &RequestHandler{Lifecycle: ls, Payments: ps}
}

type statusUpdateRequest struct {
	Status       models.RequestStatus `json:"status" binding:"required"`
	RepairUpdate *models.RepairFields `json:"repairUpdate,omitempty"`
}

type completeRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

// CreateHandler files a new request from the authenticated customer.
func (h *RequestHandler) CreateHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var input models.ServiceRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	req, err := h.Lifecycle.Create(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, "Failed to create service request", err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *RequestHandler) GetHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	req, err := h.Lifecycle.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch service request", err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) ListForUserHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	list, err := h.Lifecycle.ListForUser(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "Failed to fetch service requests", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *RequestHandler) ListForShopHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	list, err := h.Lifecycle.ListForShop(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "Failed to fetch service requests", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateStatusHandler moves a request to a new status, optionally with repair details.
func (h *RequestHandler) UpdateStatusHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body statusUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	req, err := h.Lifecycle.Transition(c.Request.Context(), actor, c.Param("id"), body.Status, body.RepairUpdate)
	if err != nil {
		respondError(c, "Failed to update service request", err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) CompleteHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body completeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "A numeric amount is required", err.Error())
		return
	}

	req, err := h.Lifecycle.Complete(c.Request.Context(), actor, c.Param("id"), *body.Amount)
	if err != nil {
		respondError(c, "Failed to complete service request", err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) RecordPaymentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var outcome models.PaymentOutcome
	if err := c.ShouldBindJSON(&outcome); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	req, err := h.Lifecycle.RecordPayment(c.Request.Context(), actor, c.Param("id"), outcome)
	if err != nil {
		respondError(c, "Failed to record payment", err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *RequestHandler) PaymentIntentHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	if h.Payments == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Card payments are not configured", "")
		return
	}

	intent, err := h.Payments.CreateIntent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, "Failed to start payment", err)
		return
	}
	c.JSON(http.StatusOK, intent)
}
