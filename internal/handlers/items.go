package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/repos"
)

// ItemHandler serves the manually managed per-user item list. This store is
// independent of the pipeline's observation history.
type ItemHandler struct {
	items repos.FridgeItemRepo
}

func NewItemHandler(items repos.FridgeItemRepo) *ItemHandler {
	return &ItemHandler{items: items}
}

type addItemRequest struct {
	Name       string     `json:"name" binding:"required"`
	Quantity   int        `json:"quantity"`
	ExpiryDate *time.Time `json:"expiry_date"`
}

func (h *ItemHandler) ListItems(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))

	user, err := h.items.GetUser(c.Request.Context(), nil, username)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			RespondOK(c, gin.H{"items": []any{}})
			return
		}
		RespondError(c, http.StatusInternalServerError, "item_list_failed", err)
		return
	}

	list, err := h.items.ListItems(c.Request.Context(), nil, user.ID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "item_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"items": list})
}

func (h *ItemHandler) AddItem(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	user, err := h.items.EnsureUser(c.Request.Context(), nil, username)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "user_create_failed", err)
		return
	}

	item, err := h.items.AddOrUpdateItem(c.Request.Context(), nil, user.ID, req.Name, req.Quantity, req.ExpiryDate)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "item_create_failed", err)
		return
	}
	RespondOK(c, gin.H{"item": item})
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", pkgerrors.ErrInvalidArgument)
		return
	}

	user, err := h.items.GetUser(c.Request.Context(), nil, username)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			RespondError(c, http.StatusNotFound, "user_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "item_delete_failed", err)
		return
	}

	if err := h.items.DeleteItem(c.Request.Context(), nil, user.ID, itemID); err != nil {
		RespondError(c, http.StatusInternalServerError, "item_delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
