package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatchly/services/conversation"
	"dispatchly/utils"
)

// SessionHandler exposes the conversation manager over HTTP. Telephony
// adapters call these endpoints once per caller utterance.
type SessionHandler struct {
	Manager *conversation.Manager
}

func NewSessionHandler(manager *conversation.Manager) *SessionHandler {
	return &SessionHandler{Manager: manager}
}

type startSessionRequest struct {
	BusinessID  string `json:"businessId" binding:"required"`
	Channel     string `json:"channel"`
	CallerPhone string `json:"callerPhone"`
	LeadSource  string `json:"leadSource"`
}

type turnRequest struct {
	Text string `json:"text"`
}

// StartSessionHandler creates a session and runs the greeting turn, so the
// caller's first reply comes back in one round trip.
func (h *SessionHandler) StartSessionHandler(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	sess, err := h.Manager.StartSession(c.Request.Context(), conversation.StartParams{
		BusinessID:  req.BusinessID,
		Channel:     req.Channel,
		CallerPhone: req.CallerPhone,
		LeadSource:  req.LeadSource,
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to start session", err.Error())
		return
	}

	result, err := h.Manager.HandleTurn(c.Request.Context(), sess.ID, "")
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to process greeting", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": sess.ID,
		"replyText": result.ReplyText,
		"state":     result.NewState,
	})
}

// TurnHandler processes one caller utterance for an existing session.
func (h *SessionHandler) TurnHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.Manager.HandleTurn(c.Request.Context(), sessionID, req.Text)
	if errors.Is(err, conversation.ErrSessionNotFound) {
		utils.JSONError(c, http.StatusNotFound, "session not found", sessionID)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to process turn", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"replyText": result.ReplyText,
		"state":     result.NewState,
	})
}

// EndSessionHandler closes a session, e.g. when the telephony adapter sees
// the call hang up. Unknown sessions are treated as already closed.
func (h *SessionHandler) EndSessionHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if err := h.Manager.EndSession(c.Request.Context(), sessionID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to end session", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
