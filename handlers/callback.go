package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatchly/services/callback"
	"dispatchly/utils"
)

// CallbackHandler exposes the owner's callback queue.
type CallbackHandler struct {
	Queue *callback.Queue
}

func NewCallbackHandler(queue *callback.Queue) *CallbackHandler {
	return &CallbackHandler{Queue: queue}
}

// ListPendingHandler returns a tenant's open callbacks, most recent first.
func (h *CallbackHandler) ListPendingHandler(c *gin.Context) {
	businessID := c.Param("businessID")
	items := h.Queue.Pending(businessID)
	if items == nil {
		items = []callback.Item{}
	}
	c.JSON(http.StatusOK, gin.H{"callbacks": items})
}

type resolveCallbackRequest struct {
	Phone  string `json:"phone" binding:"required"`
	Result string `json:"result"`
}

// ResolveHandler marks a callback handled after the owner rang the caller.
func (h *CallbackHandler) ResolveHandler(c *gin.Context) {
	businessID := c.Param("businessID")
	var req resolveCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if !h.Queue.Resolve(businessID, req.Phone, req.Result) {
		utils.JSONError(c, http.StatusNotFound, "no pending callback for phone", req.Phone)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}
