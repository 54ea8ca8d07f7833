package lifecycle

import (
	"fmt"

	"repairdesk/models"
)

type customerCopy struct {
	title   string
	message string // formatted with the device label
}

var statusCopy = map[models.RequestStatus]customerCopy{
	models.StatusAccepted: {
		title:   "Service Request Accepted",
		message: "Your repair request for %s has been accepted by the shop.",
	},
	models.StatusDeclined: {
		title:   "Service Request Declined",
		message: "Your repair request for %s was declined by the shop.",
	},
	models.StatusInProgress: {
		title:   "Repair In Progress",
		message: "Work on your %s is in progress. Check the request for the latest repair details.",
	},
	models.StatusCompleted: {
		title:   "Repair Completed",
		message: "The repair of your %s is complete.",
	},
	models.StatusPaymentPending: {
		title:   "Payment Pending",
		message: "The repair of your %s is complete and awaiting payment.",
	},
}

var genericCopy = customerCopy{
	title:   "Service Request Updated",
	message: "Your service request for %s has been updated.",
}

// updateCopy picks the customer-facing title and message for a status change.
func updateCopy(status models.RequestStatus, req *models.ServiceRequest) (string, string) {
	c, ok := statusCopy[status]
	if !ok {
		c = genericCopy
	}
	return c.title, fmt.Sprintf(c.message, deviceLabel(req))
}

func deviceLabel(req *models.ServiceRequest) string {
	if req.Brand == "" {
		return req.ModelName
	}
	return req.Brand + " " + req.ModelName
}
