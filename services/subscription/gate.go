package subscription

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	stripesub "github.com/stripe/stripe-go/v76/subscription"
	"go.uber.org/zap"

	"dispatchly/config"
	appointmentRepo "dispatchly/database/repository/appointment"
	"dispatchly/models"
	"dispatchly/services/notification"
	"dispatchly/utils"
)

// planLimits caps monthly bookings per plan. Unknown plans fall back to
// starter so a typo in the plan field never unlocks unlimited usage.
var planLimits = map[string]int{
	"starter": 50,
	"basic":   50,
	"growth":  200,
	"scale":   1000,
}

const reminderInterval = 12 * time.Hour

// AccessError explains why a booking was refused. It maps to HTTP 402 at the
// transport layer.
type AccessError struct {
	Reason             string // subscription_inactive | appointment_limit
	Message            string
	SubscriptionStatus string
}

func (e *AccessError) Error() string { return e.Message }

// StatusLookup resolves the billing status of a subscription ID.
// The default implementation asks Stripe; tests inject a stub.
type StatusLookup func(subscriptionID string) (string, error)

// StripeStatusLookup fetches the live subscription status. stripe.Key must be
// set at startup.
func StripeStatusLookup(subscriptionID string) (string, error) {
	sub, err := stripesub.Get(subscriptionID, nil)
	if err != nil {
		return "", fmt.Errorf("stripe subscription lookup error: %w", err)
	}
	return string(sub.Status), nil
}

// Gate enforces plan limits before a booking is committed. When enforcement
// is disabled in config, CheckAccess always passes.
type Gate struct {
	appointments appointmentRepo.AppointmentRepository
	notifier     notification.Service
	statusFor    StatusLookup

	mu           sync.Mutex
	lastReminder map[string]time.Time // businessID:status -> last notify
}

func NewGate(
	appointments appointmentRepo.AppointmentRepository,
	notifier notification.Service,
	statusFor StatusLookup,
) *Gate {
	if statusFor == nil {
		statusFor = StripeStatusLookup
	}
	return &Gate{
		appointments: appointments,
		notifier:     notifier,
		statusFor:    statusFor,
		lastReminder: make(map[string]time.Time),
	}
}

// CheckAccess returns an *AccessError when the tenant may not book another
// appointment. Any infrastructure failure fails open: a billing outage must
// never drop an inbound emergency call.
func (g *Gate) CheckAccess(ctx context.Context, business *models.Business) error {
	if business == nil || !config.AppConfig.EnforceSubscription {
		return nil
	}

	if business.StripeSubscriptionID != "" {
		status, err := g.statusFor(business.StripeSubscriptionID)
		if err != nil {
			utils.GetLogger().Warn("subscription status lookup failed, allowing access",
				zap.String("businessID", business.ID), zap.Error(err))
		} else if status != "active" && status != "trialing" {
			g.remindOwner(ctx, business, status)
			return &AccessError{
				Reason:             "subscription_inactive",
				Message:            "Subscription inactive. Please upgrade or resume billing.",
				SubscriptionStatus: status,
			}
		}
	}

	limit := planLimit(business.Plan)
	count, err := g.monthlyAppointments(ctx, business.ID)
	if err != nil {
		utils.GetLogger().Warn("appointment usage lookup failed, allowing access",
			zap.String("businessID", business.ID), zap.Error(err))
		return nil
	}
	if count >= limit {
		return &AccessError{
			Reason: "appointment_limit",
			Message: fmt.Sprintf("Appointment limit reached for plan %s (%d/%d).",
				planName(business.Plan), count, limit),
			SubscriptionStatus: "active",
		}
	}
	return nil
}

func (g *Gate) monthlyAppointments(ctx context.Context, businessID string) (int, error) {
	appts, err := g.appointments.ListForBusiness(ctx, businessID)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	count := 0
	for _, appt := range appts {
		created := appt.CreatedAt.UTC()
		if created.Year() == now.Year() && created.Month() == now.Month() {
			count++
		}
	}
	return count, nil
}

// remindOwner nudges the owner about billing at most once per interval per
// status, so a burst of calls does not spam them.
func (g *Gate) remindOwner(ctx context.Context, business *models.Business, status string) {
	if g.notifier == nil {
		return
	}
	key := business.ID + ":" + status

	g.mu.Lock()
	last, seen := g.lastReminder[key]
	now := time.Now()
	if seen && now.Sub(last) < reminderInterval {
		g.mu.Unlock()
		return
	}
	g.lastReminder[key] = now
	g.mu.Unlock()

	body := fmt.Sprintf("Your subscription status is '%s'. Please update billing to avoid interruptions.", status)
	if err := g.notifier.NotifyOwner(ctx, business, "Subscription attention needed", body, map[string]string{
		"type": "subscription_reminder",
	}); err != nil {
		utils.GetLogger().Warn("subscription reminder failed",
			zap.String("businessID", business.ID), zap.Error(err))
	}
}

func planLimit(plan string) int {
	if limit, ok := planLimits[strings.ToLower(plan)]; ok {
		return limit
	}
	return planLimits["starter"]
}

func planName(plan string) string {
	if plan == "" {
		return "starter"
	}
	return strings.ToLower(plan)
}
