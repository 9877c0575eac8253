package handlers

import (
	"net/http"

	"customer_registry_backend/internal/flash"
	"customer_registry_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// FlashHandler serves the read-once message channel.
type FlashHandler struct {
	flashStore *flash.Store
}

// NewFlashHandler creates a new FlashHandler.
func NewFlashHandler(fs *flash.Store) *FlashHandler {
	return &FlashHandler{flashStore: fs}
}

// PopMessages returns and clears the messages stored under a key. A second
// read of the same key, or a read after expiry, finds nothing.
func (h *FlashHandler) PopMessages(c *gin.Context) {
	messages, ok := h.flashStore.Pop(c.Param("key"))
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No messages for this key.", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
