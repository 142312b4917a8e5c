package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dispatchly/config"
	appointmentRepo "dispatchly/database/repository/appointment"
	businessRepo "dispatchly/database/repository/business"
	customerRepo "dispatchly/database/repository/customer"
	"dispatchly/models"
	"dispatchly/services/calendar"
	"dispatchly/services/callback"
	"dispatchly/services/i18n"
	"dispatchly/services/intelligence"
	"dispatchly/services/notification"
	"dispatchly/services/scheduling"
	"dispatchly/services/session"
	"dispatchly/utils"
)

// ErrSessionNotFound is returned when a turn references an unknown or
// expired session.
var ErrSessionNotFound = fmt.Errorf("session not found")

// AccessGate is the booking permission check consulted before an appointment
// is committed.
type AccessGate interface {
	CheckAccess(ctx context.Context, business *models.Business) error
}

// Manager drives the per-call intake dialogue. One instance serves all
// tenants; all per-call state lives in the session store.
type Manager struct {
	Sessions     session.Store
	Businesses   businessRepo.BusinessRepository
	Customers    customerRepo.CustomerRepository
	Appointments appointmentRepo.AppointmentRepository
	Engine       *scheduling.Engine
	Classifier   intelligence.IntentClassifier
	// Fallback handles turns when the primary classifier errors.
	Fallback  intelligence.IntentClassifier
	Calendar  calendar.Provider
	Notifier  notification.Service
	Gate      AccessGate
	Callbacks *callback.Queue
}

// StartParams identifies the caller and channel for a new session.
type StartParams struct {
	BusinessID  string
	Channel     string // phone | web | sms
	CallerPhone string
	LeadSource  string
}

// StartSession creates a fresh session at the greeting stage.
func (m *Manager) StartSession(ctx context.Context, params StartParams) (*models.CallSession, error) {
	if params.Channel == "" {
		params.Channel = "phone"
	}
	now := time.Now().UTC()
	sess := &models.CallSession{
		ID:          uuid.New().String(),
		BusinessID:  params.BusinessID,
		Channel:     params.Channel,
		CallerPhone: params.CallerPhone,
		LeadSource:  params.LeadSource,
		Stage:       models.StageGreeting,
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.Sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	return sess, nil
}

// HandleTurn processes one caller turn. Turns for the same session are
// serialized; turns for different sessions run concurrently.
func (m *Manager) HandleTurn(ctx context.Context, sessionID, text string) (*models.ConversationResult, error) {
	unlock := m.Sessions.Lock(sessionID)
	defer unlock()

	sess, err := m.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	start := time.Now()
	result, err := m.handleInput(ctx, sess, text)
	utils.ConversationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		utils.ConversationFailures.WithLabelValues(sess.BusinessID).Inc()
		return nil, err
	}
	utils.ConversationTurns.WithLabelValues(sess.BusinessID).Inc()

	if err := m.Sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("error saving session %s: %w", sess.ID, err)
	}
	return result, nil
}

// EndSession marks a session completed. Unknown or expired ids are a no-op.
func (m *Manager) EndSession(ctx context.Context, sessionID string) error {
	unlock := m.Sessions.Lock(sessionID)
	defer unlock()

	sess, err := m.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	sess.Stage = models.StageCompleted
	if !sess.Status.IsTerminal() {
		sess.Status = models.StatusCompleted
	}
	return m.Sessions.Save(ctx, sess)
}

// turnContext carries the tenant configuration resolved once per turn.
type turnContext struct {
	business     *models.Business
	cfg          models.BusinessCalendarConfig
	locale       string
	businessName string
	vertical     string
	keywords     []string
	threshold    float64

	returningName    string
	returningAddress string
	isReturning      bool
}

func (m *Manager) handleInput(ctx context.Context, sess *models.CallSession, raw string) (*models.ConversationResult, error) {
	sess.UpdatedAt = time.Now().UTC()
	normalized := strings.TrimSpace(raw)

	tc := m.resolveTenant(ctx, sess)

	if normalized != "" {
		m.classify(ctx, sess, tc, normalized)
		sess.RecentUtterances = appendRecent(sess.RecentUtterances, normalized)
	}

	// Emergency confirmation short-circuit. The yes/no answer is consumed
	// here and never reaches the ordinary stage dispatch.
	skipNoInput := false
	if sess.EmergencyConfirmationPending {
		switch {
		case isAffirmative(normalized):
			sess.EmergencyConfirmationPending = false
			sess.IsEmergency = true
			if sess.EmergencyConfidence < 0.95 {
				sess.EmergencyConfidence = 0.95
			}
			// Replay the utterance that triggered the question so the
			// interrupted stage still gets its answer.
			normalized = sess.PendingConfirmationInput
			sess.PendingConfirmationInput = ""
		case isNegative(normalized):
			sess.EmergencyConfirmationPending = false
			sess.EmergencyConfirmationDenied = true
			if sess.EmergencyConfidence > 0.3 {
				sess.EmergencyConfidence = 0.3
			}
			sess.PendingConfirmationInput = ""
			normalized = ""
			skipNoInput = true
		default:
			reply := i18n.Text(tc.locale, "emergency_confirm", i18n.Vars{
				"reason": reasonLabel(sess.EmergencyReasons),
			})
			return m.result(sess, reply), nil
		}
	}

	// No-input handling runs before the stage dispatch for every stage that
	// expects speech. The greeting turn is started with empty input, and an
	// empty ASK_ADDRESS turn from a known caller offers address reuse.
	if normalized == "" && !skipNoInput &&
		sess.Stage != models.StageGreeting && sess.Stage != models.StageCompleted &&
		!(sess.Stage == models.StageAskAddress && tc.returningAddress != "") {
		sess.NoInputCount++
		if sess.NoInputCount == 1 {
			return m.result(sess, i18n.Text(tc.locale, "no_input_reprompt", nil)), nil
		}
		m.enqueueCallback(sess, callback.ReasonNoInput)
		sess.Stage = models.StageCompleted
		sess.Status = models.StatusPendingFollowup
		return m.result(sess, i18n.Text(tc.locale, "no_input_followup", nil)), nil
	}
	if normalized != "" {
		sess.NoInputCount = 0
	}

	// Emergency scoring accumulates monotonically across turns.
	if normalized != "" {
		confidence, reasons := scoreEmergency(
			normalized, sess.Intent, tc.keywords,
			sess.EmergencyConfidence, sess.EmergencyReasons,
		)
		sess.EmergencyConfidence = confidence
		sess.EmergencyReasons = reasons
		if confidence >= emergencyThreshold {
			sess.IsEmergency = true
		} else if confidence >= confirmThreshold &&
			!sess.IsEmergency && !sess.EmergencyConfirmationDenied {
			sess.EmergencyConfirmationPending = true
			sess.PendingConfirmationInput = normalized
			reply := i18n.Text(tc.locale, "emergency_confirm", i18n.Vars{
				"reason": reasonLabel(sess.EmergencyReasons),
			})
			return m.result(sess, reply), nil
		}
	}

	// Guardrails apply only in the action stages, where a misread intent
	// could book or cancel work.
	if normalized != "" &&
		(sess.Stage == models.StageAskSchedule || sess.Stage == models.StageConfirmSlot) {
		switch sess.Intent {
		case models.IntentCancel:
			return m.handoff(tc, sess, "INTENT_CANCEL"), nil
		case models.IntentReschedule:
			return m.handoff(tc, sess, "INTENT_RESCHEDULE"), nil
		case models.IntentFAQ:
			return m.handoff(tc, sess, "INTENT_FAQ"), nil
		case models.IntentFallback:
			return m.handoff(tc, sess, callback.ReasonLowConfidence), nil
		}
	}

	result, err := m.dispatchStage(ctx, tc, sess, normalized)
	if err != nil {
		return nil, err
	}

	// Never leave an untyped terminal status.
	if sess.Stage == models.StageCompleted && !sess.Status.IsTerminal() {
		sess.Status = models.StatusAbandoned
	}
	return result, nil
}

func (m *Manager) dispatchStage(ctx context.Context, tc *turnContext, sess *models.CallSession, normalized string) (*models.ConversationResult, error) {
	switch sess.Stage {
	case models.StageGreeting:
		return m.stageGreeting(tc, sess, normalized), nil
	case models.StageAskName:
		return m.stageAskName(tc, sess, normalized), nil
	case models.StageAskAddress:
		return m.stageAskAddress(tc, sess, normalized), nil
	case models.StageConfirmAddress:
		return m.stageConfirmAddress(tc, sess, normalized), nil
	case models.StageAskProblem:
		return m.stageAskProblem(tc, sess, normalized), nil
	case models.StageAskSchedule:
		return m.stageAskSchedule(ctx, tc, sess, normalized)
	case models.StageConfirmSlot:
		return m.stageConfirmSlot(ctx, tc, sess, normalized)
	default:
		sess.Stage = models.StageCompleted
		return m.result(sess, i18n.Text(tc.locale, "completed_fallback", nil)), nil
	}
}

func (m *Manager) stageGreeting(tc *turnContext, sess *models.CallSession, normalized string) *models.ConversationResult {
	utils.GetLogger().Info("conversation start",
		zap.String("sessionID", sess.ID),
		zap.String("businessID", sess.BusinessID),
		zap.String("channel", sess.Channel))

	if normalized == "" {
		var reply string
		if tc.isReturning {
			namePart := ""
			if tc.returningName != "" {
				namePart = " " + tc.returningName
			}
			reply = i18n.Text(tc.locale, "greeting_returning", i18n.Vars{
				"name_part":     namePart,
				"business_name": tc.businessName,
			})
		} else {
			reply = i18n.Text(tc.locale, "greeting_new", i18n.Vars{
				"business_name": tc.businessName,
				"vertical":      tc.vertical,
			})
		}
		sess.Stage = models.StageAskName
		return m.result(sess, reply)
	}

	// A caller who talks over the greeting is giving their name.
	name := parseName(normalized)
	if name == "" {
		name = normalized
	}
	sess.CallerName = name
	sess.Stage = models.StageAskAddress
	return m.result(sess, i18n.Text(tc.locale, "ask_address_after_greeting", i18n.Vars{"name": name}))
}

func (m *Manager) stageAskName(tc *turnContext, sess *models.CallSession, normalized string) *models.ConversationResult {
	if normalized == "" {
		return m.result(sess, i18n.Text(tc.locale, "ask_name_missing", nil))
	}
	name := parseName(normalized)
	if name == "" {
		name = normalized
	}
	sess.CallerName = name
	sess.Stage = models.StageAskAddress
	return m.result(sess, i18n.Text(tc.locale, "ask_address_after_name", nil))
}

func (m *Manager) stageAskAddress(tc *turnContext, sess *models.CallSession, normalized string) *models.ConversationResult {
	if normalized == "" && tc.returningAddress != "" {
		sess.Address = tc.returningAddress
		sess.Stage = models.StageConfirmAddress
		return m.result(sess, i18n.Text(tc.locale, "offer_existing_address", i18n.Vars{
			"address": tc.returningAddress,
		}))
	}
	if normalized == "" {
		return m.result(sess, i18n.Text(tc.locale, "ask_address_full", nil))
	}

	address := parseAddress(normalized)
	if address == "" {
		address = normalized
	}
	sess.Address = address
	sess.Stage = models.StageAskProblem
	return m.result(sess, i18n.Text(tc.locale, "ask_problem", i18n.Vars{"vertical": tc.vertical}))
}

func (m *Manager) stageConfirmAddress(tc *turnContext, sess *models.CallSession, normalized string) *models.ConversationResult {
	if isNegative(normalized) {
		sess.Address = ""
		sess.Stage = models.StageAskAddress
		return m.result(sess, i18n.Text(tc.locale, "ask_address_after_name", nil))
	}
	sess.Stage = models.StageAskProblem
	return m.result(sess, i18n.Text(tc.locale, "ask_problem", i18n.Vars{"vertical": tc.vertical}))
}

func (m *Manager) stageAskProblem(tc *turnContext, sess *models.CallSession, normalized string) *models.ConversationResult {
	if normalized == "" {
		return m.result(sess, i18n.Text(tc.locale, "ask_problem_missing", i18n.Vars{"vertical": tc.vertical}))
	}
	sess.ProblemSummary = normalized
	sess.Stage = models.StageAskSchedule

	prefixKey := "schedule_prefix_standard"
	if sess.IsEmergency {
		prefixKey = "schedule_prefix_emergency"
	}
	reply := i18n.Text(tc.locale, prefixKey, nil) + i18n.Text(tc.locale, "schedule_question", nil)
	return m.result(sess, reply)
}

func (m *Manager) stageAskSchedule(ctx context.Context, tc *turnContext, sess *models.CallSession, normalized string) (*models.ConversationResult, error) {
	if isNegative(normalized) {
		sess.Stage = models.StageCompleted
		sess.Status = models.StatusPendingFollowup
		return m.result(sess, i18n.Text(tc.locale, "schedule_decline", i18n.Vars{
			"business_name": tc.businessName,
		})), nil
	}
	if sess.Address == "" {
		sess.Stage = models.StageAskAddress
		return m.result(sess, i18n.Text(tc.locale, "schedule_need_address", nil)), nil
	}

	duration := inferDurationMinutes(sess.ProblemSummary, sess.IsEmergency, tc.cfg.ServiceDurations)
	existing, err := m.Appointments.ListForBusiness(ctx, sess.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments for %s: %w", sess.BusinessID, err)
	}

	slots := m.Engine.FindSlots(duration, tc.cfg, existing, time.Now().UTC(), sess.IsEmergency, "", sess.Address)
	if len(slots) == 0 {
		sess.Stage = models.StageCompleted
		sess.Status = models.StatusPendingFollowup
		return m.result(sess, i18n.Text(tc.locale, "schedule_no_slot", nil)), nil
	}

	slot := slots[0]
	sess.RequestedTime = slot.Start.Format(time.RFC3339)
	sess.Stage = models.StageConfirmSlot
	reply := i18n.Text(tc.locale, "schedule_propose", i18n.Vars{
		"when": slot.Start.Format("Monday at 03:04 PM") + " UTC",
	})
	return m.resultWithSlot(sess, reply, &slot), nil
}

func (m *Manager) stageConfirmSlot(ctx context.Context, tc *turnContext, sess *models.CallSession, normalized string) (*models.ConversationResult, error) {
	if isNegative(normalized) {
		sess.Stage = models.StageCompleted
		sess.Status = models.StatusPendingFollowup
		return m.result(sess, i18n.Text(tc.locale, "confirm_slot_decline", nil)), nil
	}
	if sess.Address == "" {
		return m.handoff(tc, sess, callback.ReasonPartialIntake), nil
	}

	duration := inferDurationMinutes(sess.ProblemSummary, sess.IsEmergency, tc.cfg.ServiceDurations)
	existing, err := m.Appointments.ListForBusiness(ctx, sess.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments for %s: %w", sess.BusinessID, err)
	}

	slot, ok := m.proposedSlot(sess, duration)
	if !ok {
		// The stored proposal is gone; search again before giving up.
		slots := m.Engine.FindSlots(duration, tc.cfg, existing, time.Now().UTC(), sess.IsEmergency, "", sess.Address)
		if len(slots) == 0 {
			sess.Stage = models.StageCompleted
			sess.Status = models.StatusPendingFollowup
			return m.result(sess, i18n.Text(tc.locale, "confirm_slot_unable", nil)), nil
		}
		slot = slots[0]
	}

	// The proposal may be minutes old or may have come from the fallback
	// path, so the exact window is re-validated before committing.
	if m.Engine.HasConflict(tc.cfg, slot.Start, slot.End, existing, "", sess.Address, sess.IsEmergency) {
		m.enqueueCallback(sess, callback.ReasonPartialIntake)
		sess.Stage = models.StageCompleted
		sess.Status = models.StatusPendingFollowup
		return m.result(sess, i18n.Text(tc.locale, "confirm_slot_unable", nil)), nil
	}

	if err := m.book(ctx, tc, sess, slot); err != nil {
		utils.GetLogger().Warn("booking failed",
			zap.String("sessionID", sess.ID),
			zap.String("businessID", sess.BusinessID),
			zap.Error(err))
		m.enqueueCallback(sess, callback.ReasonPartialIntake)
		sess.Stage = models.StageCompleted
		sess.Status = models.StatusPendingFollowup
		return m.result(sess, i18n.Text(tc.locale, "confirm_slot_unable", nil)), nil
	}

	sess.Stage = models.StageCompleted
	sess.Status = models.StatusScheduled
	reply := i18n.Text(tc.locale, "completed_standard", nil)
	if sess.IsEmergency {
		reply += i18n.Text(tc.locale, "completed_emergency_append", nil)
	}
	return m.resultWithSlot(sess, reply, &slot), nil
}

// book runs the best-effort booking sequence: gate, calendar event,
// appointment row, then notifications. A calendar failure aborts before
// anything is persisted; a notification failure never rolls anything back.
func (m *Manager) book(ctx context.Context, tc *turnContext, sess *models.CallSession, slot models.TimeSlot) error {
	if m.Gate != nil {
		if err := m.Gate.CheckAccess(ctx, tc.business); err != nil {
			return fmt.Errorf("booking blocked: %w", err)
		}
	}

	callerName := sess.CallerName
	if callerName == "" {
		callerName = "Customer"
	}
	serviceType := inferServiceType(sess.ProblemSummary)

	descriptionParts := []string{
		"Phone: " + sess.CallerPhone,
		"Address: " + sess.Address,
		"Problem: " + sess.ProblemSummary,
	}
	if serviceType != "" {
		descriptionParts = append(descriptionParts, "Service type: "+serviceType)
	}
	if sess.IsEmergency {
		descriptionParts = append(descriptionParts, "EMERGENCY: true")
	}

	calendarID := ""
	if tc.business != nil {
		calendarID = tc.business.CalendarID
	}
	eventID, err := m.Calendar.CreateEvent(ctx, calendarID, calendar.Event{
		Summary:     fmt.Sprintf("%s appointment for %s", titleCase(tc.vertical), callerName),
		Description: strings.Join(descriptionParts, "\n"),
		Location:    sess.Address,
		Start:       slot.Start,
		End:         slot.End,
	})
	if err != nil {
		return fmt.Errorf("calendar event creation failed: %w", err)
	}

	customerID := ""
	customer, err := m.Customers.Upsert(ctx, &models.Customer{
		BusinessID: sess.BusinessID,
		Name:       callerName,
		Phone:      sess.CallerPhone,
		Address:    sess.Address,
	})
	if err != nil {
		utils.GetLogger().Warn("customer upsert failed",
			zap.String("sessionID", sess.ID), zap.Error(err))
	} else if customer != nil {
		customerID = customer.ID
	}

	var quotedValue *float64
	quoteStatus := ""
	if low, high, ok := inferQuote(serviceType, sess.IsEmergency); ok {
		mid := (low + high) / 2
		quotedValue = &mid
		quoteStatus = "QUOTED"
	}

	appt := &models.Appointment{
		ID:              uuid.New().String(),
		BusinessID:      sess.BusinessID,
		CustomerID:      customerID,
		StartTime:       slot.Start,
		EndTime:         slot.End,
		Status:          models.AppointmentScheduled,
		Address:         sess.Address,
		ServiceType:     serviceType,
		IsEmergency:     sess.IsEmergency,
		Description:     sess.ProblemSummary,
		LeadSource:      normalizeLeadSource(sess.Channel, sess.LeadSource),
		JobStage:        "Booked",
		CalendarEventID: eventID,
		QuotedValue:     quotedValue,
		QuoteStatus:     quoteStatus,
		CreatedAt:       time.Now().UTC(),
	}
	if err := m.Appointments.Create(ctx, appt); err != nil {
		if delErr := m.Calendar.DeleteEvent(ctx, calendarID, eventID); delErr != nil {
			utils.GetLogger().Warn("orphaned calendar event after persist failure",
				zap.String("eventID", eventID), zap.Error(delErr))
		}
		return fmt.Errorf("appointment persist failed: %w", err)
	}

	utils.AppointmentsScheduled.WithLabelValues(sess.BusinessID).Inc()
	utils.GetLogger().Info("appointment created",
		zap.String("appointmentID", appt.ID),
		zap.String("businessID", sess.BusinessID),
		zap.Bool("isEmergency", sess.IsEmergency),
		zap.Time("startTime", slot.Start))

	m.notifyBooking(tc, sess, callerName, slot, customer)
	return nil
}

// notifyBooking fires owner and customer notifications in the background so
// the caller's reply is never held up by a slow provider.
func (m *Manager) notifyBooking(tc *turnContext, sess *models.CallSession, callerName string, slot models.TimeSlot, customer *models.Customer) {
	if m.Notifier == nil || tc.business == nil {
		return
	}
	business := tc.business
	locale := tc.locale
	businessName := tc.businessName
	callerPhone := sess.CallerPhone
	address := sess.Address
	problem := sess.ProblemSummary
	isEmergency := sess.IsEmergency
	smsOptOut := customer != nil && customer.SMSOptOut

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		when := slot.Start.Format("Mon Jan 02 at 03:04 PM") + " UTC"

		tag := "[Standard]"
		if isEmergency {
			tag = "[EMERGENCY]"
		}
		ownerBody := fmt.Sprintf("%s New appointment for %s on %s.\nAddress: %s\nProblem: %s",
			tag, callerName, when, orNA(address), orNA(problem))
		if err := m.Notifier.NotifyOwner(ctx, business, "New appointment booked", ownerBody, map[string]string{
			"type":      "appointment_booked",
			"emergency": fmt.Sprintf("%t", isEmergency),
		}); err != nil {
			utils.GetLogger().Warn("owner notification failed",
				zap.String("businessID", business.ID), zap.Error(err))
		}

		if callerPhone != "" && !smsOptOut {
			body := i18n.Text(locale, "customer_sms_confirm", i18n.Vars{
				"business_name": businessName,
				"when":          when,
			})
			if err := m.Notifier.NotifyCustomer(ctx, business, callerPhone, body); err != nil {
				utils.GetLogger().Warn("customer notification failed",
					zap.String("businessID", business.ID), zap.Error(err))
			}
		}
	}()
}

// handoff escalates to the human callback queue and closes the session.
func (m *Manager) handoff(tc *turnContext, sess *models.CallSession, reason string) *models.ConversationResult {
	m.enqueueCallback(sess, reason)
	sess.Stage = models.StageCompleted
	sess.Status = models.StatusPendingFollowup

	reply := i18n.Text(tc.locale, "handoff_base", nil)
	if sess.IsEmergency {
		reply += i18n.Text(tc.locale, "handoff_emergency_append", nil)
	}
	return m.result(sess, reply)
}

func (m *Manager) enqueueCallback(sess *models.CallSession, reason string) {
	if m.Callbacks == nil || sess.CallerPhone == "" {
		return
	}
	m.Callbacks.Enqueue(callback.Event{
		BusinessID: sess.BusinessID,
		Phone:      sess.CallerPhone,
		Channel:    sess.Channel,
		LeadSource: sess.LeadSource,
		Reason:     reason,
	})
}

// classify runs the intent classifier and applies the per-tenant confidence
// threshold. Low-confidence labels are discarded so they cannot trigger
// destructive guardrails.
func (m *Manager) classify(ctx context.Context, sess *models.CallSession, tc *turnContext, normalized string) {
	req := intelligence.Request{
		Utterance:    normalized,
		LanguageCode: tc.locale,
		BusinessID:   sess.BusinessID,
		History:      sess.RecentUtterances,
	}
	result, err := m.Classifier.Classify(ctx, req)
	if err != nil && m.Fallback != nil {
		utils.GetLogger().Debug("primary intent classifier failed, using fallback",
			zap.String("sessionID", sess.ID), zap.Error(err))
		result, err = m.Fallback.Classify(ctx, req)
	}
	if err != nil {
		// Keep whatever intent state the session already had.
		return
	}

	sess.Intent = result.Intent
	sess.IntentConfidence = result.Confidence
	if result.Confidence < tc.threshold {
		sess.Intent = ""
	}
}

func (m *Manager) resolveTenant(ctx context.Context, sess *models.CallSession) *turnContext {
	tc := &turnContext{
		locale:       config.AppConfig.DefaultLanguageCode,
		businessName: config.AppConfig.DefaultBusinessName,
		vertical:     strings.ToLower(config.AppConfig.DefaultVertical),
		keywords:     defaultEmergencyKeywords,
		threshold:    normalizeThreshold(config.AppConfig.IntentConfidenceDefault),
	}

	business, err := m.Businesses.Get(ctx, sess.BusinessID)
	if err != nil {
		utils.GetLogger().Warn("business lookup failed, using defaults",
			zap.String("businessID", sess.BusinessID), zap.Error(err))
	}
	tc.business = business
	tc.cfg = scheduling.ResolveCalendarConfig(business, models.BusinessCalendarConfig{
		OpenHour:   config.AppConfig.DefaultOpenHour,
		CloseHour:  config.AppConfig.DefaultCloseHour,
		ClosedDays: scheduling.ParseClosedDays(config.AppConfig.DefaultClosedDays),
	})

	if business != nil {
		if business.LanguageCode != "" {
			tc.locale = business.LanguageCode
		}
		if business.Name != "" {
			tc.businessName = business.Name
		}
		if business.Vertical != "" {
			tc.vertical = strings.ToLower(business.Vertical)
		}
		if keywords := parseKeywords(business.EmergencyKeywords); len(keywords) > 0 {
			tc.keywords = keywords
		}
		if business.IntentThreshold != nil {
			tc.threshold = normalizeThreshold(*business.IntentThreshold)
		}
	}

	if sess.CallerPhone != "" {
		customer, err := m.Customers.GetByPhone(ctx, sess.CallerPhone, sess.BusinessID)
		if err != nil {
			utils.GetLogger().Warn("customer lookup failed",
				zap.String("businessID", sess.BusinessID), zap.Error(err))
		} else if customer != nil {
			tc.isReturning = true
			tc.returningName = customer.Name
			tc.returningAddress = customer.Address
		}
	}
	return tc
}

func (m *Manager) result(sess *models.CallSession, reply string) *models.ConversationResult {
	return m.resultWithSlot(sess, reply, nil)
}

func (m *Manager) resultWithSlot(sess *models.CallSession, reply string, slot *models.TimeSlot) *models.ConversationResult {
	return &models.ConversationResult{
		ReplyText: reply,
		NewState: models.SessionState{
			SessionID:                    sess.ID,
			Stage:                        sess.Stage,
			Status:                       sess.Status,
			CallerPhone:                  sess.CallerPhone,
			CallerName:                   sess.CallerName,
			Address:                      sess.Address,
			ProblemSummary:               sess.ProblemSummary,
			RequestedTime:                sess.RequestedTime,
			IsEmergency:                  sess.IsEmergency,
			EmergencyConfidence:          sess.EmergencyConfidence,
			EmergencyReasons:             sess.EmergencyReasons,
			EmergencyConfirmationPending: sess.EmergencyConfirmationPending,
			ProposedSlot:                 slot,
		},
	}
}

// proposedSlot re-derives the exact slot from the stored proposal time.
func (m *Manager) proposedSlot(sess *models.CallSession, durationMinutes int) (models.TimeSlot, bool) {
	if sess.RequestedTime == "" {
		return models.TimeSlot{}, false
	}
	start, err := time.Parse(time.RFC3339, sess.RequestedTime)
	if err != nil {
		return models.TimeSlot{}, false
	}
	start = start.UTC()
	return models.TimeSlot{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}, true
}

// classifierHistoryDepth bounds how many prior caller turns are replayed to
// the classifier as dialogue context.
const classifierHistoryDepth = 4

func appendRecent(history []string, utterance string) []string {
	history = append(history, utterance)
	if len(history) > classifierHistoryDepth {
		history = history[len(history)-classifierHistoryDepth:]
	}
	return history
}

func parseKeywords(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizeThreshold accepts either a fraction or a percentage.
func normalizeThreshold(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
