package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appointmentRepo "dispatchly/database/repository/appointment"
	"dispatchly/models"
	"dispatchly/services/appointment"
	"dispatchly/utils"
)

// AppointmentHandler serves owner-facing appointment management.
type AppointmentHandler struct {
	Actions      *appointment.Actions
	Appointments appointmentRepo.AppointmentRepository
}

func NewAppointmentHandler(actions *appointment.Actions, repo appointmentRepo.AppointmentRepository) *AppointmentHandler {
	return &AppointmentHandler{Actions: actions, Appointments: repo}
}

// ListHandler returns all of a tenant's appointments.
func (h *AppointmentHandler) ListHandler(c *gin.Context) {
	businessID := c.Param("businessID")
	appts, err := h.Appointments.ListForBusiness(c.Request.Context(), businessID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list appointments", err.Error())
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

type cancelAppointmentRequest struct {
	BusinessID     string `json:"businessId" binding:"required"`
	Reason         string `json:"reason"`
	NotifyCustomer bool   `json:"notifyCustomer"`
}

// CancelHandler cancels an appointment idempotently.
func (h *AppointmentHandler) CancelHandler(c *gin.Context) {
	appointmentID := c.Param("appointmentID")
	var req cancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.Actions.Cancel(c.Request.Context(), appointmentID, req.BusinessID, req.Reason, req.NotifyCustomer)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel appointment", err.Error())
		return
	}
	c.JSON(actionStatus(result.Code), result)
}

type rescheduleAppointmentRequest struct {
	BusinessID     string    `json:"businessId" binding:"required"`
	NewStart       time.Time `json:"newStart" binding:"required"`
	NewEnd         time.Time `json:"newEnd" binding:"required"`
	TechnicianID   string    `json:"technicianId"`
	Address        string    `json:"address"`
	IsEmergency    bool      `json:"isEmergency"`
	NotifyCustomer bool      `json:"notifyCustomer"`
}

// RescheduleHandler moves an appointment to a new window after conflict checks.
func (h *AppointmentHandler) RescheduleHandler(c *gin.Context) {
	appointmentID := c.Param("appointmentID")
	var req rescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.Actions.Reschedule(c.Request.Context(), appointment.RescheduleParams{
		AppointmentID:  appointmentID,
		BusinessID:     req.BusinessID,
		NewStart:       req.NewStart.UTC(),
		NewEnd:         req.NewEnd.UTC(),
		TechnicianID:   req.TechnicianID,
		Address:        req.Address,
		IsEmergency:    req.IsEmergency,
		NotifyCustomer: req.NotifyCustomer,
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to reschedule appointment", err.Error())
		return
	}
	c.JSON(actionStatus(result.Code), result)
}

type pendingRescheduleRequest struct {
	BusinessID string `json:"businessId" binding:"required"`
}

// PendingRescheduleHandler flags an appointment for manual rebooking.
func (h *AppointmentHandler) PendingRescheduleHandler(c *gin.Context) {
	appointmentID := c.Param("appointmentID")
	var req pendingRescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.Actions.MarkPendingReschedule(c.Request.Context(), appointmentID, req.BusinessID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to flag appointment", err.Error())
		return
	}
	c.JSON(actionStatus(result.Code), result)
}

// actionStatus maps action result codes onto HTTP statuses.
func actionStatus(code string) int {
	switch code {
	case appointment.CodeNotFound:
		return http.StatusNotFound
	case appointment.CodeInvalidRange:
		return http.StatusBadRequest
	case appointment.CodeConflict:
		return http.StatusConflict
	case appointment.CodeCalendarError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}
