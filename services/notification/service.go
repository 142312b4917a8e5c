package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"dispatchly/models"
	"dispatchly/utils"
)

// DefaultService sends owner pushes over FCM and customer messages through
// the configured SMS gateway.
type DefaultService struct {
	sms SMSSender
}

func NewDefaultService(sms SMSSender) (*DefaultService, error) {
	if sms == nil {
		return nil, fmt.Errorf("notification service initialization error: sms sender is nil")
	}
	return &DefaultService{sms: sms}, nil
}

func (s *DefaultService) NotifyOwner(
	ctx context.Context,
	business *models.Business,
	title, body string,
	data map[string]string,
) error {
	if business == nil {
		return fmt.Errorf("NotifyOwner: business is nil")
	}
	if business.OwnerFCMToken == "" {
		// No push target registered; not an error for the caller.
		utils.GetLogger().Debug("NotifyOwner skipped, no FCM token",
			zap.String("businessID", business.ID))
		return nil
	}
	if utils.FCMClient == nil {
		return fmt.Errorf("NotifyOwner: FCM client not initialized")
	}

	if data == nil {
		data = map[string]string{}
	}
	data["businessId"] = business.ID

	msg := &messaging.Message{
		Token: business.OwnerFCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if data["emergency"] == "true" {
		msg.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		}
		msg.APNS = &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		}
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("NotifyOwner: failed to send FCM message: %w", err)
	}
	return nil
}

func (s *DefaultService) NotifyCustomer(
	ctx context.Context,
	business *models.Business,
	toPhone, body string,
) error {
	if business == nil {
		return fmt.Errorf("NotifyCustomer: business is nil")
	}
	if toPhone == "" {
		return fmt.Errorf("NotifyCustomer: destination phone is empty")
	}
	if err := s.sms.Send(ctx, business.ID, toPhone, body); err != nil {
		return fmt.Errorf("NotifyCustomer: sms send failed: %w", err)
	}
	return nil
}

// LogSMSSender writes messages to the log instead of a gateway. It backs
// development setups and tests.
type LogSMSSender struct{}

func (LogSMSSender) Send(_ context.Context, fromBusinessID, toPhone, body string) error {
	utils.GetLogger().Info("sms send",
		zap.String("businessID", fromBusinessID),
		zap.String("to", toPhone),
		zap.String("body", body))
	return nil
}
