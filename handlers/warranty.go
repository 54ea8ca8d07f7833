package handlers

import (
	"net/http"

	"repairdesk/models"
	"repairdesk/services/warranty"
	"repairdesk/utils"

	"github.com/gin-gonic/gin"
)

// WarrantyHandler exposes warranty registration and lookup.
type WarrantyHandler struct {
	Warranties warranty.WarrantyRegistry
}

func NewWarrantyHandler(wr warranty.WarrantyRegistry) *WarrantyHandler {
	return &WarrantyHandler{Warranties: wr}
}

func (h *WarrantyHandler) RegisterHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var input models.WarrantyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	w, err := h.Warranties.Register(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, "Failed to add warranty", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Warranty added successfully", "warranty": w})
}

func (h *WarrantyHandler) ListHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	list, err := h.Warranties.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "Failed to fetch warranties", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *WarrantyHandler) GetHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	w, err := h.Warranties.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, "Warranty not found", err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WarrantyHandler) ByModelNumberHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	w, err := h.Warranties.FindByModelNumber(c.Request.Context(), actor, c.Param("modelNumber"))
	if err != nil {
		respondError(c, "No warranty found for this model number", err)
		return
	}
	c.JSON(http.StatusOK, w)
}
