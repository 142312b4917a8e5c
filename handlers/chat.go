package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatchly/services/conversation"
	"dispatchly/utils"
)

// ChatHandler serves the embeddable web-chat widget. It shares the session
// manager with the voice surface but defaults the channel to "web" and
// lazily creates the session on the visitor's first message.
type ChatHandler struct {
	Manager *conversation.Manager
}

func NewChatHandler(manager *conversation.Manager) *ChatHandler {
	return &ChatHandler{Manager: manager}
}

type chatTurnRequest struct {
	SessionID  string `json:"sessionId"`
	BusinessID string `json:"businessId"`
	Phone      string `json:"phone"`
	LeadSource string `json:"leadSource"`
	Text       string `json:"text"`
}

// TurnHandler handles one widget message. Without a sessionId it starts a
// new web session first, so the widget needs no separate start call.
func (h *ChatHandler) TurnHandler(c *gin.Context) {
	var req chatTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		if req.BusinessID == "" {
			utils.JSONError(c, http.StatusBadRequest, "invalid request", "businessId is required for a new chat")
			return
		}
		sess, err := h.Manager.StartSession(c.Request.Context(), conversation.StartParams{
			BusinessID:  req.BusinessID,
			Channel:     "web",
			CallerPhone: req.Phone,
			LeadSource:  req.LeadSource,
		})
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "failed to start chat", err.Error())
			return
		}
		sessionID = sess.ID
	}

	result, err := h.Manager.HandleTurn(c.Request.Context(), sessionID, req.Text)
	if errors.Is(err, conversation.ErrSessionNotFound) {
		utils.JSONError(c, http.StatusNotFound, "chat session not found", sessionID)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to process message", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"replyText": result.ReplyText,
		"state":     result.NewState,
	})
}
