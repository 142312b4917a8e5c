package models

import "time"

// Customer is a CRM contact used for returning-caller recognition.
type Customer struct {
	ID         string    `bson:"id" json:"id"`
	BusinessID string    `bson:"business_id" json:"businessId"`
	Name       string    `bson:"name" json:"name"`
	Phone      string    `bson:"phone" json:"phone"`
	Address    string    `bson:"address,omitempty" json:"address,omitempty"`
	SMSOptOut  bool      `bson:"sms_opt_out" json:"smsOptOut"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}
