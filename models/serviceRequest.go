package models

import "time"

// RequestStatus is the lifecycle state of a ServiceRequest.
type RequestStatus string

const (
	StatusPending        RequestStatus = "pending"
	StatusAccepted       RequestStatus = "accepted"
	StatusDeclined       RequestStatus = "declined"
	StatusInProgress     RequestStatus = "in_progress"
	StatusCompleted      RequestStatus = "completed"
	StatusPaymentPending RequestStatus = "payment_pending"
	StatusPaid           RequestStatus = "paid"
)

// Valid reports whether s is one of the known lifecycle states.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusInProgress,
		StatusCompleted, StatusPaymentPending, StatusPaid:
		return true
	}
	return false
}

// Priority of a repair job as chosen by the customer.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// PaymentStatus is the state of the nested payment sub-record.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type GeoLocation struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

type CostRange struct {
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max" json:"max"`
}

// RepairUpdate is populated once work begins and re-submitted while in progress.
type RepairUpdate struct {
	Details                 string     `bson:"details" json:"details"`
	PartsReplaced           string     `bson:"partsReplaced" json:"partsReplaced"`
	LaborCost               float64    `bson:"laborCost" json:"laborCost"`
	PartsCost               float64    `bson:"partsCost" json:"partsCost"`
	TotalCost               float64    `bson:"totalCost" json:"totalCost"`
	WarrantyAfterRepair     string     `bson:"warrantyAfterRepair" json:"warrantyAfterRepair"`
	Notes                   string     `bson:"notes" json:"notes"`
	ServicePersonName       string     `bson:"servicePersonName" json:"servicePersonName"`
	EstimatedCompletionDate *time.Time `bson:"estimatedCompletionDate,omitempty" json:"estimatedCompletionDate,omitempty"`
}

// Payment is initialised when the shop marks the job complete.
type Payment struct {
	Amount        float64       `bson:"amount" json:"amount"`
	Status        PaymentStatus `bson:"status" json:"status"`
	PaymentMethod string        `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	TransactionID string        `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaidAt        *time.Time    `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	PaymentNotes  string        `bson:"paymentNotes,omitempty" json:"paymentNotes,omitempty"`
}

// ServiceRequest is a customer-initiated repair job tracked through its lifecycle.
type ServiceRequest struct {
	ID     string `bson:"id" json:"id"`
	UserID string `bson:"userId" json:"userId"`
	ShopID string `bson:"shopId" json:"shopId"`

	DeviceType         string       `bson:"deviceType" json:"deviceType"`
	Brand              string       `bson:"brand" json:"brand"`
	ModelName          string       `bson:"modelName" json:"modelName"`
	ModelNumber        string       `bson:"modelNumber" json:"modelNumber"`
	Problem            string       `bson:"problem" json:"problem"`
	Description        string       `bson:"description,omitempty" json:"description,omitempty"`
	CustomerName       string       `bson:"customerName" json:"customerName"`
	CustomerPhone      string       `bson:"customerPhone" json:"customerPhone"`
	CustomerAddress    string       `bson:"customerAddress" json:"customerAddress"`
	UserLocation       *GeoLocation `bson:"userLocation,omitempty" json:"userLocation,omitempty"`
	Priority           Priority     `bson:"priority" json:"priority"`
	EstimatedCostRange *CostRange   `bson:"estimatedCostRange,omitempty" json:"estimatedCostRange,omitempty"`

	Status       RequestStatus `bson:"status" json:"status"`
	RepairUpdate *RepairUpdate `bson:"repairUpdate" json:"repairUpdate"`
	Payment      *Payment      `bson:"payment" json:"payment"`

	Version int64 `bson:"version" json:"-"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	AcceptedAt  *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// ServiceRequestInput carries the descriptive fields a customer submits.
type ServiceRequestInput struct {
	ShopID             string       `json:"shopId"`
	DeviceType         string       `json:"deviceType"`
	Brand              string       `json:"brand"`
	ModelName          string       `json:"modelName"`
	ModelNumber        string       `json:"modelNumber"`
	Problem            string       `json:"problem"`
	Description        string       `json:"description"`
	CustomerName       string       `json:"customerName"`
	CustomerPhone      string       `json:"customerPhone"`
	CustomerAddress    string       `json:"customerAddress"`
	UserLocation       *GeoLocation `json:"userLocation,omitempty"`
	Priority           Priority     `json:"priority,omitempty"`
	EstimatedCostRange *CostRange   `json:"estimatedCostRange,omitempty"`
}

// RepairFields are the optional repair details sent with a status update.
// Nil pointers leave the stored value untouched.
type RepairFields struct {
	Details                 *string    `json:"details,omitempty"`
	PartsReplaced           *string    `json:"partsReplaced,omitempty"`
	LaborCost               *float64   `json:"laborCost,omitempty"`
	PartsCost               *float64   `json:"partsCost,omitempty"`
	TotalCost               *float64   `json:"totalCost,omitempty"`
	WarrantyAfterRepair     *string    `json:"warrantyAfterRepair,omitempty"`
	Notes                   *string    `json:"notes,omitempty"`
	EstimatedCompletionDate *time.Time `json:"estimatedCompletionDate,omitempty"`
}

// PaymentOutcome is the result of an out-of-band payment attempt.
type PaymentOutcome struct {
	Status        PaymentStatus `json:"paymentStatus"`
	Amount        *float64      `json:"amount,omitempty"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}
