package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/repos"
	"github.com/yungbote/smartfridge-backend/internal/services"
)

type StatusHandler struct {
	statusRepo repos.FridgeStatusRepo
}

func NewStatusHandler(statusRepo repos.FridgeStatusRepo) *StatusHandler {
	return &StatusHandler{statusRepo: statusRepo}
}

// GetStatus serves the latest persisted snapshot. 404 until the first cycle
// completes for the fridge.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	fridgeID := c.DefaultQuery("fridge_id", services.DefaultFridgeID)

	status, err := h.statusRepo.GetByFridge(c.Request.Context(), nil, fridgeID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			RespondError(c, http.StatusNotFound, "no_status", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "status_lookup_failed", err)
		return
	}

	RespondOK(c, status.ToResponse())
}
