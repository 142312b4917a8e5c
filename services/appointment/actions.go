package appointment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appointmentRepo "dispatchly/database/repository/appointment"
	businessRepo "dispatchly/database/repository/business"
	customerRepo "dispatchly/database/repository/customer"
	"dispatchly/models"
	"dispatchly/services/calendar"
	"dispatchly/services/i18n"
	"dispatchly/services/notification"
	"dispatchly/services/scheduling"
	"dispatchly/utils"
)

// Action result codes.
const (
	CodeCancelled        = "cancelled"
	CodeAlreadyCancelled = "already_cancelled"
	CodeRescheduled      = "rescheduled"
	CodeNoChange         = "no_change"
	CodePendingResched   = "pending_reschedule"
	CodeAlreadyPending   = "already_pending"
	CodeNotFound         = "not_found"
	CodeInvalidRange     = "invalid_range"
	CodeConflict         = "conflict"
	CodeCalendarError    = "calendar_error"
)

// ActionResult reports the outcome of a cancel or reschedule.
type ActionResult struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	AppointmentID string `json:"appointmentId,omitempty"`
}

// Actions mutates booked appointments on behalf of owners and the assistant.
// Every mutation validates against the same scheduling constraints the
// original booking passed.
type Actions struct {
	Appointments appointmentRepo.AppointmentRepository
	Businesses   businessRepo.BusinessRepository
	Customers    customerRepo.CustomerRepository
	Engine       *scheduling.Engine
	Calendar     calendar.Provider
	Notifier     notification.Service
	// Defaults apply when the tenant row has no calendar overrides.
	Defaults models.BusinessCalendarConfig
}

// RescheduleParams identifies the appointment and the new window.
type RescheduleParams struct {
	AppointmentID  string
	BusinessID     string
	NewStart       time.Time
	NewEnd         time.Time
	TechnicianID   string
	Address        string
	IsEmergency    bool
	NotifyCustomer bool
}

// Cancel cancels an appointment idempotently. The calendar event is removed
// best-effort; a calendar failure never blocks the cancellation.
func (a *Actions) Cancel(ctx context.Context, appointmentID, businessID, reason string, notifyCustomer bool) (ActionResult, error) {
	appt, err := a.Appointments.Get(ctx, appointmentID)
	if err != nil {
		return ActionResult{}, err
	}
	if appt == nil || appt.BusinessID != businessID {
		return ActionResult{Code: CodeNotFound, Message: "Appointment not found"}, nil
	}
	if appt.Status == models.AppointmentCancelled {
		return ActionResult{
			Code:          CodeAlreadyCancelled,
			Message:       "Appointment already cancelled",
			AppointmentID: appointmentID,
		}, nil
	}

	business, err := a.Businesses.Get(ctx, businessID)
	if err != nil {
		utils.GetLogger().Warn("business lookup failed during cancel",
			zap.String("businessID", businessID), zap.Error(err))
	}

	if appt.CalendarEventID != "" {
		calendarID := ""
		if business != nil {
			calendarID = business.CalendarID
		}
		if err := a.Calendar.DeleteEvent(ctx, calendarID, appt.CalendarEventID); err != nil {
			utils.GetLogger().Warn("calendar delete failed during cancel",
				zap.String("appointmentID", appointmentID), zap.Error(err))
		}
	}

	status := models.AppointmentCancelled
	jobStage := appt.JobStage
	if jobStage == "" {
		jobStage = "Cancelled"
	}
	if _, err := a.Appointments.Update(ctx, appointmentID, models.AppointmentUpdate{
		Status:   &status,
		JobStage: &jobStage,
	}); err != nil {
		return ActionResult{}, fmt.Errorf("error cancelling appointment %s: %w", appointmentID, err)
	}

	if notifyCustomer {
		body := i18n.Text(locale(business), "appointment_cancelled_sms", i18n.Vars{
			"business_name": businessName(business),
			"when":          appt.StartTime.UTC().Format("2006-01-02 15:04 UTC"),
		})
		if reason != "" {
			body += " Reason: " + reason
		}
		a.notifyCustomer(ctx, business, appt.CustomerID, body)
	}

	return ActionResult{Code: CodeCancelled, Message: "Appointment cancelled", AppointmentID: appointmentID}, nil
}

// Reschedule moves an appointment to a new window. The calendar is updated
// before the repository so a calendar failure leaves everything unchanged.
func (a *Actions) Reschedule(ctx context.Context, params RescheduleParams) (ActionResult, error) {
	appt, err := a.Appointments.Get(ctx, params.AppointmentID)
	if err != nil {
		return ActionResult{}, err
	}
	if appt == nil || appt.BusinessID != params.BusinessID {
		return ActionResult{Code: CodeNotFound, Message: "Appointment not found"}, nil
	}
	if !params.NewStart.Before(params.NewEnd) {
		return ActionResult{Code: CodeInvalidRange, Message: "Start must be before end"}, nil
	}
	if appt.StartTime.Equal(params.NewStart) && appt.EndTime.Equal(params.NewEnd) {
		return ActionResult{
			Code:          CodeNoChange,
			Message:       "Appointment already at requested time",
			AppointmentID: params.AppointmentID,
		}, nil
	}

	business, err := a.Businesses.Get(ctx, params.BusinessID)
	if err != nil {
		utils.GetLogger().Warn("business lookup failed during reschedule",
			zap.String("businessID", params.BusinessID), zap.Error(err))
	}
	cfg := scheduling.ResolveCalendarConfig(business, a.Defaults)

	existing, err := a.Appointments.ListForBusiness(ctx, params.BusinessID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("error listing appointments for %s: %w", params.BusinessID, err)
	}
	// The appointment being moved must not conflict with itself.
	others := existing[:0:0]
	for _, e := range existing {
		if e.ID != params.AppointmentID {
			others = append(others, e)
		}
	}

	technicianID := params.TechnicianID
	if technicianID == "" {
		technicianID = appt.TechnicianID
	}
	if a.Engine.HasConflict(cfg, params.NewStart, params.NewEnd, others, technicianID, params.Address, params.IsEmergency) {
		return ActionResult{Code: CodeConflict, Message: "Requested time conflicts with another booking"}, nil
	}

	if appt.CalendarEventID != "" {
		calendarID := ""
		if business != nil {
			calendarID = business.CalendarID
		}
		err := a.Calendar.UpdateEvent(ctx, calendarID, appt.CalendarEventID, calendar.Event{
			Summary:     appt.ServiceType,
			Description: appt.Description,
			Location:    appt.Address,
			Start:       params.NewStart,
			End:         params.NewEnd,
		})
		if err != nil {
			return ActionResult{Code: CodeCalendarError, Message: "Calendar update failed; no changes applied"}, nil
		}
	}

	status := models.AppointmentScheduled
	jobStage := "Rescheduled"
	updated, err := a.Appointments.Update(ctx, params.AppointmentID, models.AppointmentUpdate{
		StartTime: &params.NewStart,
		EndTime:   &params.NewEnd,
		Status:    &status,
		JobStage:  &jobStage,
	})
	if err != nil {
		return ActionResult{}, fmt.Errorf("error rescheduling appointment %s: %w", params.AppointmentID, err)
	}
	if updated == nil {
		return ActionResult{Code: CodeNotFound, Message: "Appointment not found after update"}, nil
	}

	if params.NotifyCustomer {
		body := i18n.Text(locale(business), "appointment_rescheduled_sms", i18n.Vars{
			"business_name": businessName(business),
			"when":          params.NewStart.UTC().Format("2006-01-02 15:04 UTC"),
		})
		a.notifyCustomer(ctx, business, appt.CustomerID, body)
	}

	return ActionResult{Code: CodeRescheduled, Message: "Appointment rescheduled", AppointmentID: params.AppointmentID}, nil
}

// MarkPendingReschedule flags an appointment for manual rebooking, used when
// a caller asks to move a job the assistant cannot negotiate live.
func (a *Actions) MarkPendingReschedule(ctx context.Context, appointmentID, businessID string) (ActionResult, error) {
	appt, err := a.Appointments.Get(ctx, appointmentID)
	if err != nil {
		return ActionResult{}, err
	}
	if appt == nil || appt.BusinessID != businessID {
		return ActionResult{Code: CodeNotFound, Message: "Appointment not found"}, nil
	}
	if appt.Status == models.AppointmentPendingReschedule {
		return ActionResult{
			Code:          CodeAlreadyPending,
			Message:       "Appointment already pending reschedule",
			AppointmentID: appointmentID,
		}, nil
	}

	status := models.AppointmentPendingReschedule
	jobStage := appt.JobStage
	if jobStage == "" {
		jobStage = "Pending Reschedule"
	}
	if _, err := a.Appointments.Update(ctx, appointmentID, models.AppointmentUpdate{
		Status:   &status,
		JobStage: &jobStage,
	}); err != nil {
		return ActionResult{}, fmt.Errorf("error marking appointment %s pending reschedule: %w", appointmentID, err)
	}
	return ActionResult{
		Code:          CodePendingResched,
		Message:       "Appointment marked for reschedule",
		AppointmentID: appointmentID,
	}, nil
}

func (a *Actions) notifyCustomer(ctx context.Context, business *models.Business, customerID, body string) {
	if a.Notifier == nil || a.Customers == nil || business == nil || customerID == "" {
		return
	}
	// Customer lookup by ID goes through the phone index the repo maintains;
	// fall back to skipping when the contact is gone.
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		customer, err := a.Customers.GetByID(notifyCtx, customerID)
		if err != nil || customer == nil || customer.Phone == "" || customer.SMSOptOut {
			return
		}
		if err := a.Notifier.NotifyCustomer(notifyCtx, business, customer.Phone, body); err != nil {
			utils.GetLogger().Warn("customer notification failed",
				zap.String("businessID", business.ID), zap.Error(err))
		}
	}()
}

func locale(business *models.Business) string {
	if business != nil && business.LanguageCode != "" {
		return business.LanguageCode
	}
	return i18n.DefaultLocale
}

func businessName(business *models.Business) string {
	if business != nil && business.Name != "" {
		return business.Name
	}
	return "our office"
}
