package subscription

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatchly/config"
	appointmentRepo "dispatchly/database/repository/appointment"
	"dispatchly/models"
)

func enableEnforcement(t *testing.T) {
	t.Helper()
	prev := config.AppConfig.EnforceSubscription
	config.AppConfig.EnforceSubscription = true
	t.Cleanup(func() { config.AppConfig.EnforceSubscription = prev })
}

func TestCheckAccessDisabledEnforcement(t *testing.T) {
	config.AppConfig.EnforceSubscription = false
	gate := NewGate(appointmentRepo.NewInMemoryAppointmentRepo(), nil, func(string) (string, error) {
		t.Fatal("status lookup should not run when enforcement is off")
		return "", nil
	})

	err := gate.CheckAccess(context.Background(), &models.Business{ID: "biz-1", StripeSubscriptionID: "sub_1"})
	assert.NoError(t, err)
}

func TestCheckAccessInactiveSubscription(t *testing.T) {
	enableEnforcement(t)
	gate := NewGate(appointmentRepo.NewInMemoryAppointmentRepo(), nil, func(string) (string, error) {
		return "past_due", nil
	})

	err := gate.CheckAccess(context.Background(), &models.Business{ID: "biz-1", StripeSubscriptionID: "sub_1"})
	require.Error(t, err)

	var accessErr *AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, "subscription_inactive", accessErr.Reason)
	assert.Equal(t, "past_due", accessErr.SubscriptionStatus)
}

func TestCheckAccessTrialingPasses(t *testing.T) {
	enableEnforcement(t)
	gate := NewGate(appointmentRepo.NewInMemoryAppointmentRepo(), nil, func(string) (string, error) {
		return "trialing", nil
	})

	err := gate.CheckAccess(context.Background(), &models.Business{ID: "biz-1", StripeSubscriptionID: "sub_1"})
	assert.NoError(t, err)
}

func TestCheckAccessFailsOpenOnLookupError(t *testing.T) {
	enableEnforcement(t)
	gate := NewGate(appointmentRepo.NewInMemoryAppointmentRepo(), nil, func(string) (string, error) {
		return "", assert.AnError
	})

	err := gate.CheckAccess(context.Background(), &models.Business{ID: "biz-1", StripeSubscriptionID: "sub_1"})
	assert.NoError(t, err)
}

func TestCheckAccessAppointmentLimit(t *testing.T) {
	enableEnforcement(t)
	repo := appointmentRepo.NewInMemoryAppointmentRepo()
	ctx := context.Background()
	for i := 0; i < planLimits["starter"]; i++ {
		require.NoError(t, repo.Create(ctx, &models.Appointment{
			ID:         fmt.Sprintf("appt-%d", i),
			BusinessID: "biz-1",
			Status:     models.AppointmentScheduled,
			StartTime:  time.Now().UTC(),
			EndTime:    time.Now().UTC().Add(time.Hour),
			CreatedAt:  time.Now().UTC(),
		}))
	}
	gate := NewGate(repo, nil, func(string) (string, error) { return "active", nil })

	err := gate.CheckAccess(ctx, &models.Business{ID: "biz-1"})
	require.Error(t, err)

	var accessErr *AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.Equal(t, "appointment_limit", accessErr.Reason)
}

func TestCheckAccessUnknownPlanUsesStarterLimit(t *testing.T) {
	assert.Equal(t, planLimits["starter"], planLimit("platinum-deluxe"))
	assert.Equal(t, planLimits["growth"], planLimit("Growth"))
}
