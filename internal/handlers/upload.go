package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/services"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

type UploadHandler struct {
	pipeline *services.Pipeline
}

func NewUploadHandler(pipeline *services.Pipeline) *UploadHandler {
	return &UploadHandler{pipeline: pipeline}
}

type uploadRequest struct {
	FridgeID    string   `json:"fridge_id"`
	Temp        *float64 `json:"temp" binding:"required"`
	Humidity    *float64 `json:"humidity" binding:"required"`
	Gas         *int     `json:"gas" binding:"required"`
	ImageBase64 string   `json:"image_base64"`
}

// Upload ingests one sensor reading with an optional fridge photo and runs
// the analysis cycle synchronously.
func (h *UploadHandler) Upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	outcome, err := h.pipeline.Process(c.Request.Context(), services.ProcessInput{
		FridgeID: req.FridgeID,
		Reading: types.SensorReading{
			Temp:      *req.Temp,
			Humidity:  *req.Humidity,
			Gas:       *req.Gas,
			Timestamp: time.Now(),
		},
		ImageBase64: stripDataURLPrefix(req.ImageBase64),
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInvalidImage) {
			RespondError(c, http.StatusBadRequest, "invalid_image", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "pipeline_failed", err)
		return
	}

	RespondOK(c, outcome)
}

// stripDataURLPrefix accepts both raw base64 and data: URLs from clients.
func stripDataURLPrefix(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}
