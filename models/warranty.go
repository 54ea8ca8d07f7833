package models

import "time"

// WarrantySent records that the reminder for one interval threshold went out.
type WarrantySent struct {
	Interval int       `bson:"interval" json:"interval"`
	SentDate time.Time `bson:"sentDate" json:"sentDate"`
}

type Warranty struct {
	ID                string         `bson:"id" json:"id"`
	UserID            string         `bson:"userId" json:"userId"`
	ModelName         string         `bson:"modelName" json:"modelName"`
	ModelNumber       string         `bson:"modelNumber" json:"modelNumber"`
	Company           string         `bson:"company" json:"company"`
	PurchaseDate      time.Time      `bson:"purchaseDate" json:"purchaseDate"`
	UserEmail         string         `bson:"userEmail" json:"userEmail"`
	PhoneNumber       string         `bson:"phoneNumber" json:"phoneNumber"`
	NotificationsSent []WarrantySent `bson:"notificationsSent" json:"notificationsSent"`
	CreatedAt         time.Time      `bson:"createdAt" json:"createdAt"`
}

// WarrantyInput is the registration form. PurchaseDate takes 2006-01-02 or RFC 3339;
// contact details default to the account's.
type WarrantyInput struct {
	ModelName    string `json:"modelName"`
	ModelNumber  string `json:"modelNumber"`
	Company      string `json:"company"`
	PurchaseDate string `json:"purchaseDate"`
	UserEmail    string `json:"userEmail,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

// ExpiresAt is one year after purchase.
func (w Warranty) ExpiresAt() time.Time {
	return w.PurchaseDate.AddDate(1, 0, 0)
}

// AlreadySent reports whether the reminder for interval was recorded.
func (w Warranty) AlreadySent(interval int) bool {
	for _, n := range w.NotificationsSent {
		if n.Interval == interval {
			return true
		}
	}
	return false
}
