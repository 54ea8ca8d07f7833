package handlers

import (
	"net/http"

	"repairdesk/middleware"
	"repairdesk/models"
	"repairdesk/utils"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, message string, err error) {
	utils.RespondError(c, message, err)
}

// mustActor fetches the authenticated caller or writes a 401.
func mustActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "")
		return models.Actor{}, false
	}
	return actor, true
}
