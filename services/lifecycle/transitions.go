package lifecycle

import (
	"slices"

	"repairdesk/models"
)

// allowedTransitions is the graph Transition enforces. payment_pending and paid are
// reached only through Complete and RecordPayment.
var allowedTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.StatusPending:    {models.StatusAccepted, models.StatusDeclined},
	models.StatusAccepted:   {models.StatusInProgress},
	models.StatusInProgress: {models.StatusInProgress, models.StatusCompleted},
}

var (
	completableFrom = []models.RequestStatus{models.StatusInProgress, models.StatusCompleted}
	payableFrom     = []models.RequestStatus{models.StatusPaymentPending}
)

// CanTransition reports whether Transition may move a request from one status to another.
func CanTransition(from, to models.RequestStatus) bool {
	return slices.Contains(allowedTransitions[from], to)
}

// CanComplete reports whether a request in status may be marked complete with an amount.
func CanComplete(status models.RequestStatus) bool {
	return slices.Contains(completableFrom, status)
}

// CanRecordPayment reports whether a payment outcome may be recorded in status.
func CanRecordPayment(status models.RequestStatus) bool {
	return slices.Contains(payableFrom, status)
}

// acceptsRepairDetails lists the target statuses a repair update may ride along with.
func acceptsRepairDetails(to models.RequestStatus) bool {
	return to == models.StatusInProgress || to == models.StatusCompleted
}
