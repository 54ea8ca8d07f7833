package models

import "time"

// Notification type tags carried in Data["type"].
const (
	NotifNewServiceRequest    = "new_service_request"
	NotifServiceRequestUpdate = "service_request_update"
	NotifPaymentRequired      = "payment_required"
	NotifPaymentReceived      = "payment_received"
	NotifPaymentSuccessful    = "payment_successful"
	NotifPaymentFailed        = "payment_failed"
	NotifWarrantyExpiration   = "warranty_expiration"
	NotifNewMessage           = "new_message"
)

// Notification is an append-only in-app message addressed to one identity.
type Notification struct {
	ID        string         `bson:"id" json:"id"`
	UserID    string         `bson:"userId" json:"userId"`
	Title     string         `bson:"title" json:"title"`
	Message   string         `bson:"message" json:"message"`
	Data      map[string]any `bson:"data" json:"data"`
	Read      bool           `bson:"read" json:"read"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}

// Type returns the navigation tag stored in the payload, if any.
func (n Notification) Type() string {
	if n.Data == nil {
		return ""
	}
	t, _ := n.Data["type"].(string)
	return t
}
