package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"dispatchly/config"
	appointmentRepo "dispatchly/database/repository/appointment"
	businessRepo "dispatchly/database/repository/business"
	customerRepo "dispatchly/database/repository/customer"
	"dispatchly/models"
	"dispatchly/services/calendar"
	"dispatchly/services/callback"
	"dispatchly/services/intelligence"
	"dispatchly/services/scheduling"
	"dispatchly/services/session"
)

const testBusinessID = "biz-1"

type noopNotifier struct{}

func (noopNotifier) NotifyOwner(context.Context, *models.Business, string, string, map[string]string) error {
	return nil
}

func (noopNotifier) NotifyCustomer(context.Context, *models.Business, string, string) error {
	return nil
}

// stubClassifier returns a fixed result, or a fixed error.
type stubClassifier struct {
	result models.IntentResult
	err    error
}

func (s stubClassifier) Classify(context.Context, intelligence.Request) (models.IntentResult, error) {
	return s.result, s.err
}

// recordingClassifier captures every request it receives.
type recordingClassifier struct {
	requests []intelligence.Request
}

func (r *recordingClassifier) Classify(_ context.Context, req intelligence.Request) (models.IntentResult, error) {
	r.requests = append(r.requests, req)
	return models.IntentResult{Intent: models.IntentOther, Provider: "stub"}, nil
}

type testEnv struct {
	mgr          *Manager
	sessions     session.Store
	businesses   *businessRepo.InMemoryBusinessRepo
	customers    *customerRepo.InMemoryCustomerRepo
	appointments *appointmentRepo.InMemoryAppointmentRepo
	calendar     *calendar.InMemoryProvider
	callbacks    *callback.Queue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.AppConfig.DefaultLanguageCode = "en"
	config.AppConfig.DefaultBusinessName = "Bristol Plumbing"
	config.AppConfig.DefaultVertical = "plumbing"
	// Always open keeps slot proposals independent of the wall clock.
	config.AppConfig.DefaultOpenHour = 0
	config.AppConfig.DefaultCloseHour = 0
	config.AppConfig.DefaultClosedDays = ""
	config.AppConfig.IntentConfidenceDefault = 0.35

	env := &testEnv{
		sessions:     session.NewInMemoryStore(time.Hour),
		businesses:   businessRepo.NewInMemoryBusinessRepo(),
		customers:    customerRepo.NewInMemoryCustomerRepo(),
		appointments: appointmentRepo.NewInMemoryAppointmentRepo(),
		calendar:     calendar.NewInMemoryProvider(),
		callbacks:    callback.NewQueue(),
	}
	env.businesses.Put(models.Business{
		ID:       testBusinessID,
		Name:     "Bristol Plumbing",
		Vertical: "plumbing",
	})
	env.mgr = &Manager{
		Sessions:     env.sessions,
		Businesses:   env.businesses,
		Customers:    env.customers,
		Appointments: env.appointments,
		Engine:       &scheduling.Engine{},
		Classifier:   intelligence.NewKeywordClassifier(),
		Calendar:     env.calendar,
		Notifier:     noopNotifier{},
		Callbacks:    env.callbacks,
	}
	return env
}

func (env *testEnv) start(t *testing.T, phone string) *models.CallSession {
	t.Helper()
	sess, err := env.mgr.StartSession(context.Background(), StartParams{
		BusinessID:  testBusinessID,
		Channel:     "phone",
		CallerPhone: phone,
	})
	require.NoError(t, err)
	return sess
}

func (env *testEnv) turn(t *testing.T, sessionID, text string) *models.ConversationResult {
	t.Helper()
	result, err := env.mgr.HandleTurn(context.Background(), sessionID, text)
	require.NoError(t, err)
	return result
}

func TestFullIntakeFlow(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "+15551234567")

	res := env.turn(t, sess.ID, "")
	require.Equal(t, models.StageAskName, res.NewState.Stage)
	require.Contains(t, res.ReplyText, "Bristol Plumbing")

	res = env.turn(t, sess.ID, "Jane Doe")
	require.Equal(t, models.StageAskAddress, res.NewState.Stage)
	require.Equal(t, "Jane Doe", res.NewState.CallerName)

	res = env.turn(t, sess.ID, "123 Main St")
	require.Equal(t, models.StageAskProblem, res.NewState.Stage)
	require.Equal(t, "123 Main St", res.NewState.Address)

	// One emergency keyword lands in the ambiguous band, so the dialogue
	// pauses on a yes/no question without advancing the stage.
	res = env.turn(t, sess.ID, "there is no hot water in the house")
	require.Equal(t, models.StageAskProblem, res.NewState.Stage)
	require.True(t, res.NewState.EmergencyConfirmationPending)
	require.False(t, res.NewState.IsEmergency)
	require.InDelta(t, 0.7, res.NewState.EmergencyConfidence, 1e-9)

	// YES confirms and replays the held utterance through the stage, so the
	// problem description is not lost.
	res = env.turn(t, sess.ID, "yes")
	require.Equal(t, models.StageAskSchedule, res.NewState.Stage)
	require.True(t, res.NewState.IsEmergency)
	require.False(t, res.NewState.EmergencyConfirmationPending)
	require.GreaterOrEqual(t, res.NewState.EmergencyConfidence, 0.95)
	require.Equal(t, "there is no hot water in the house", res.NewState.ProblemSummary)
	require.Contains(t, res.ReplyText, "911")

	res = env.turn(t, sess.ID, "yes")
	require.Equal(t, models.StageConfirmSlot, res.NewState.Stage)
	require.NotEmpty(t, res.NewState.RequestedTime)
	require.NotNil(t, res.NewState.ProposedSlot)

	res = env.turn(t, sess.ID, "yes")
	require.Equal(t, models.StageCompleted, res.NewState.Stage)
	require.Equal(t, models.StatusScheduled, res.NewState.Status)

	appts, err := env.appointments.ListForBusiness(context.Background(), testBusinessID)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	appt := appts[0]
	require.True(t, appt.IsEmergency)
	require.Equal(t, models.AppointmentScheduled, appt.Status)
	require.Equal(t, "123 Main St", appt.Address)
	require.Equal(t, "Booked", appt.JobStage)
	require.NotEmpty(t, appt.CalendarEventID)

	event, ok := env.calendar.Get(appt.CalendarEventID)
	require.True(t, ok)
	require.Equal(t, appt.StartTime, event.Start)
	require.Contains(t, event.Description, "EMERGENCY: true")

	// Booking also creates the CRM contact.
	customer, err := env.customers.GetByPhone(context.Background(), "+15551234567", testBusinessID)
	require.NoError(t, err)
	require.NotNil(t, customer)
	require.Equal(t, "Jane Doe", customer.Name)
}

func TestDoubleSilenceEscalates(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "+15550001111")

	env.turn(t, sess.ID, "") // greeting

	res := env.turn(t, sess.ID, "")
	require.Equal(t, models.StageAskName, res.NewState.Stage)
	require.Contains(t, res.ReplyText, "didn't hear")

	res = env.turn(t, sess.ID, "")
	require.Equal(t, models.StageCompleted, res.NewState.Stage)
	require.Equal(t, models.StatusPendingFollowup, res.NewState.Status)

	pending := env.callbacks.Pending(testBusinessID)
	require.Len(t, pending, 1)
	require.Equal(t, callback.ReasonNoInput, pending[0].Reason)
	require.Equal(t, "+15550001111", pending[0].Phone)
}

func TestSpeechResetsNoInputCounter(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "")

	env.turn(t, sess.ID, "")
	env.turn(t, sess.ID, "") // first silence
	env.turn(t, sess.ID, "Jane Doe")

	// The counter reset, so a later silence re-prompts instead of escalating.
	res := env.turn(t, sess.ID, "")
	require.Equal(t, models.StageAskAddress, res.NewState.Stage)
	require.Contains(t, res.ReplyText, "didn't hear")
}

func TestEmergencyConfirmationDenied(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "+15552223333")

	env.turn(t, sess.ID, "")

	res := env.turn(t, sess.ID, "there's no hot water")
	require.True(t, res.NewState.EmergencyConfirmationPending)

	// NO discards the held utterance: the stage re-prompts for its answer
	// rather than treating the denied input as a name.
	res = env.turn(t, sess.ID, "no")
	require.Equal(t, models.StageAskName, res.NewState.Stage)
	require.False(t, res.NewState.EmergencyConfirmationPending)
	require.False(t, res.NewState.IsEmergency)
	require.InDelta(t, 0.3, res.NewState.EmergencyConfidence, 1e-9)
	require.Contains(t, res.ReplyText, "didn't catch your name")

	// A later keyword hit in the same band must not re-ask the question.
	res = env.turn(t, sess.ID, "still no hot water here, anyway my name is Jane Doe")
	require.False(t, res.NewState.EmergencyConfirmationPending)
	require.Equal(t, models.StageAskAddress, res.NewState.Stage)
}

func TestUnclearConfirmationReprompts(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "")

	env.turn(t, sess.ID, "")
	env.turn(t, sess.ID, "there's no hot water")

	res := env.turn(t, sess.ID, "maybe, I guess")
	require.True(t, res.NewState.EmergencyConfirmationPending)
	require.Equal(t, models.StageAskName, res.NewState.Stage)
	require.Contains(t, res.ReplyText, "YES or NO")
}

func TestHighConfidenceSkipsConfirmation(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "")

	env.turn(t, sess.ID, "")

	// Multiple keyword hits plus the emergency intent go straight to the
	// emergency path without a confirmation question.
	res := env.turn(t, sess.ID, "a pipe burst and the basement is flooding")
	require.False(t, res.NewState.EmergencyConfirmationPending)
	require.True(t, res.NewState.IsEmergency)
	require.GreaterOrEqual(t, res.NewState.EmergencyConfidence, 0.8)
	require.Equal(t, models.StageAskAddress, res.NewState.Stage)
}

// driveToSchedule advances a fresh session to ASK_SCHEDULE with a
// non-emergency problem on record.
func driveToSchedule(t *testing.T, env *testEnv, sessionID string) {
	t.Helper()
	env.turn(t, sessionID, "")
	env.turn(t, sessionID, "Jane Doe")
	env.turn(t, sessionID, "123 Main St")
	res := env.turn(t, sessionID, "dripping faucet in the kitchen")
	require.Equal(t, models.StageAskSchedule, res.NewState.Stage)
	require.False(t, res.NewState.IsEmergency)
}

func TestGuardrailCancelHandsOff(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "+15554445555")
	driveToSchedule(t, env, sess.ID)

	res := env.turn(t, sess.ID, "actually I want to cancel my appointment")
	require.Equal(t, models.StageCompleted, res.NewState.Stage)
	require.Equal(t, models.StatusPendingFollowup, res.NewState.Status)
	require.Contains(t, res.ReplyText, "hand this off")

	pending := env.callbacks.Pending(testBusinessID)
	require.Len(t, pending, 1)
	require.Equal(t, "INTENT_CANCEL", pending[0].Reason)
}

func TestGuardrailFallbackHandsOffAsLowConfidence(t *testing.T) {
	env := newTestEnv(t)
	env.mgr.Classifier = stubClassifier{result: models.IntentResult{
		Intent: models.IntentFallback, Confidence: 0.9, Provider: "stub",
	}}
	sess := env.start(t, "+15556667777")

	env.turn(t, sess.ID, "")
	env.turn(t, sess.ID, "Jane Doe")
	env.turn(t, sess.ID, "123 Main St")
	env.turn(t, sess.ID, "dripping faucet in the kitchen")

	res := env.turn(t, sess.ID, "the thing with the whatsit")
	require.Equal(t, models.StatusPendingFollowup, res.NewState.Status)

	pending := env.callbacks.Pending(testBusinessID)
	require.Len(t, pending, 1)
	require.Equal(t, callback.ReasonLowConfidence, pending[0].Reason)
}

func TestLowConfidenceIntentDiscarded(t *testing.T) {
	env := newTestEnv(t)
	threshold := 0.9
	env.businesses.Put(models.Business{
		ID:              testBusinessID,
		Name:            "Bristol Plumbing",
		Vertical:        "plumbing",
		IntentThreshold: &threshold,
	})
	sess := env.start(t, "+15558889999")
	driveToSchedule(t, env, sess.ID)

	// "cancel" classifies at 0.85, below the tenant's 0.9 threshold, so the
	// label is dropped and no destructive handoff fires.
	res := env.turn(t, sess.ID, "cancel my appointment")
	require.Equal(t, models.StageConfirmSlot, res.NewState.Stage)
	require.Empty(t, env.callbacks.Pending(testBusinessID))
}

func TestScheduleDecline(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "+15551112222")
	driveToSchedule(t, env, sess.ID)

	res := env.turn(t, sess.ID, "no thanks")
	require.Equal(t, models.StageCompleted, res.NewState.Stage)
	require.Equal(t, models.StatusPendingFollowup, res.NewState.Status)
	require.Contains(t, res.ReplyText, "follow up")
}

func TestSlotDecline(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "+15553334444")
	driveToSchedule(t, env, sess.ID)

	env.turn(t, sess.ID, "yes please")

	res := env.turn(t, sess.ID, "no")
	require.Equal(t, models.StageCompleted, res.NewState.Stage)
	require.Equal(t, models.StatusPendingFollowup, res.NewState.Status)

	appts, err := env.appointments.ListForBusiness(context.Background(), testBusinessID)
	require.NoError(t, err)
	require.Empty(t, appts)
}

func TestReturningCustomerAddressReuse(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.customers.Upsert(context.Background(), &models.Customer{
		BusinessID: testBusinessID,
		Name:       "Jane Doe",
		Phone:      "+15559990000",
		Address:    "9 Oak Ave",
	})
	require.NoError(t, err)

	sess := env.start(t, "+15559990000")

	res := env.turn(t, sess.ID, "")
	require.Contains(t, res.ReplyText, "Jane Doe")
	require.Contains(t, res.ReplyText, "worked with you before")

	env.turn(t, sess.ID, "Jane Doe")

	// Silence at the address stage offers the address on file instead of
	// counting as no-input.
	res = env.turn(t, sess.ID, "")
	require.Equal(t, models.StageConfirmAddress, res.NewState.Stage)
	require.Contains(t, res.ReplyText, "9 Oak Ave")

	res = env.turn(t, sess.ID, "yes")
	require.Equal(t, models.StageAskProblem, res.NewState.Stage)
	require.Equal(t, "9 Oak Ave", res.NewState.Address)
}

func TestConfirmAddressRejectionAsksAgain(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.customers.Upsert(context.Background(), &models.Customer{
		BusinessID: testBusinessID,
		Name:       "Jane Doe",
		Phone:      "+15559990001",
		Address:    "9 Oak Ave",
	})
	require.NoError(t, err)

	sess := env.start(t, "+15559990001")
	env.turn(t, sess.ID, "")
	env.turn(t, sess.ID, "Jane Doe")
	env.turn(t, sess.ID, "")

	res := env.turn(t, sess.ID, "no, I moved")
	require.Equal(t, models.StageAskAddress, res.NewState.Stage)
	require.Empty(t, res.NewState.Address)

	res = env.turn(t, sess.ID, "42 Elm Street")
	require.Equal(t, models.StageAskProblem, res.NewState.Stage)
	require.Equal(t, "42 Elm Street", res.NewState.Address)
}

func TestFallbackClassifierOnPrimaryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mgr.Classifier = stubClassifier{err: context.DeadlineExceeded}
	env.mgr.Fallback = intelligence.NewKeywordClassifier()
	sess := env.start(t, "+15557778888")
	driveToSchedule(t, env, sess.ID)

	// The fallback still catches the cancel intent when the primary is down.
	res := env.turn(t, sess.ID, "cancel my appointment")
	require.Equal(t, models.StatusPendingFollowup, res.NewState.Status)
	pending := env.callbacks.Pending(testBusinessID)
	require.Len(t, pending, 1)
	require.Equal(t, "INTENT_CANCEL", pending[0].Reason)
}

func TestClassifierReceivesTenantAndHistory(t *testing.T) {
	env := newTestEnv(t)
	rec := &recordingClassifier{}
	env.mgr.Classifier = rec
	sess := env.start(t, "+15551112233")

	env.turn(t, sess.ID, "")
	for _, text := range []string{"Jane Doe", "123 Main St", "dripping faucet", "yes", "yes"} {
		env.turn(t, sess.ID, text)
	}

	require.Len(t, rec.requests, 5)
	first := rec.requests[0]
	require.Equal(t, testBusinessID, first.BusinessID)
	require.Equal(t, "en", first.LanguageCode)
	require.Empty(t, first.History)

	// Each request carries the prior caller turns, capped at four.
	last := rec.requests[len(rec.requests)-1]
	require.Equal(t, "yes", last.Utterance)
	require.Equal(t, []string{"Jane Doe", "123 Main St", "dripping faucet", "yes"}, last.History)
}

func TestConfirmSlotRechecksConflict(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "+15550007777")
	driveToSchedule(t, env, sess.ID)

	res := env.turn(t, sess.ID, "yes")
	require.Equal(t, models.StageConfirmSlot, res.NewState.Stage)
	start, err := time.Parse(time.RFC3339, res.NewState.RequestedTime)
	require.NoError(t, err)

	// Another channel takes the proposed window before the caller confirms.
	require.NoError(t, env.appointments.Create(context.Background(), &models.Appointment{
		ID:         uuid.New().String(),
		BusinessID: testBusinessID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     models.AppointmentScheduled,
	}))

	res = env.turn(t, sess.ID, "yes")
	require.Equal(t, models.StageCompleted, res.NewState.Stage)
	require.Equal(t, models.StatusPendingFollowup, res.NewState.Status)

	// Only the racing appointment exists; nothing was double-booked.
	appts, err := env.appointments.ListForBusiness(context.Background(), testBusinessID)
	require.NoError(t, err)
	require.Len(t, appts, 1)
}

func TestEndSession(t *testing.T) {
	env := newTestEnv(t)
	sess := env.start(t, "")
	env.turn(t, sess.ID, "")

	require.NoError(t, env.mgr.EndSession(context.Background(), sess.ID))

	stored, err := env.sessions.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, models.StageCompleted, stored.Stage)
	require.Equal(t, models.StatusCompleted, stored.Status)

	// Ending an already-scheduled session keeps its terminal status.
	sess2 := env.start(t, "+15550009999")
	driveToSchedule(t, env, sess2.ID)
	env.turn(t, sess2.ID, "yes")
	env.turn(t, sess2.ID, "yes")
	require.NoError(t, env.mgr.EndSession(context.Background(), sess2.ID))
	stored, err = env.sessions.Get(context.Background(), sess2.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusScheduled, stored.Status)

	// Unknown sessions are a no-op for EndSession but an error for turns.
	require.NoError(t, env.mgr.EndSession(context.Background(), "nope"))
	_, err = env.mgr.HandleTurn(context.Background(), "nope", "hello")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
