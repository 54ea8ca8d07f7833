package handlers

import (
	"net/http"

	"repairdesk/services/lifecycle"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Lifecycle lifecycle.LifecycleService
}

func NewAdminHandler(ls lifecycle.LifecycleService) *AdminHandler {
	return &AdminHandler{Lifecycle: ls}
}

// TransactionsHandler lists every paid request.
func (h *AdminHandler) TransactionsHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	list, err := h.Lifecycle.ListTransactions(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "Failed to fetch transactions", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
