// Package lifecycle holds the transition tables of the status machines.
package lifecycle

import (
	"slices"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/models"
)

// Table lists, for each state, the states it may move to. A state without
// an entry is terminal.
type Table[S ~string] map[S][]S

func (t Table[S]) Allows(from, to S) bool {
	return slices.Contains(t[from], to)
}

func (t Table[S]) IsTerminal(s S) bool {
	return len(t[s]) == 0
}

// Check returns an invalid_transition error naming entity when from -> to is
// not in the table.
func (t Table[S]) Check(entity string, from, to S) error {
	if !t.Allows(from, to) {
		return apperr.InvalidTransition(entity, from, to)
	}
	return nil
}

var Reception = Table[models.ReceptionStatus]{
	models.ReceptionStatusDraft: {
		models.ReceptionStatusAccepted,
		models.ReceptionStatusCancelled,
	},
	models.ReceptionStatusAccepted: {
		models.ReceptionStatusInProgress,
		models.ReceptionStatusSuspended,
		models.ReceptionStatusCancelled,
	},
	models.ReceptionStatusInProgress: {
		models.ReceptionStatusCompleted,
		models.ReceptionStatusSuspended,
		models.ReceptionStatusCancelled,
		models.ReceptionStatusInProgress,
	},
	// suspended lots get re-evaluated
	models.ReceptionStatusSuspended: {
		models.ReceptionStatusAccepted,
		models.ReceptionStatusInProgress,
		models.ReceptionStatusCancelled,
	},
}

var Classification = Table[models.ClassificationStatus]{
	models.ClassificationStatusDraft: {
		models.ClassificationStatusValidated,
		models.ClassificationStatusCancelled,
	},
	models.ClassificationStatusValidated: {
		models.ClassificationStatusInTunnel,
		models.ClassificationStatusCancelled,
	},
	models.ClassificationStatusInTunnel: {
		models.ClassificationStatusCompleted,
		models.ClassificationStatusCancelled,
	},
}

var PurchaseRequest = Table[models.PurchaseRequestStatus]{
	models.PurchaseRequestStatusDraft: {
		models.PurchaseRequestStatusApproved,
		models.PurchaseRequestStatusRejected,
		models.PurchaseRequestStatusCancelled,
	},
}

var PurchaseOrder = Table[models.PurchaseOrderStatus]{
	models.PurchaseOrderStatusDraft: {
		models.PurchaseOrderStatusPending,
		models.PurchaseOrderStatusCancelled,
	},
	models.PurchaseOrderStatusPending: {
		models.PurchaseOrderStatusApproved,
		models.PurchaseOrderStatusCancelled,
	},
	models.PurchaseOrderStatusApproved: {
		models.PurchaseOrderStatusPaid,
		models.PurchaseOrderStatusCancelled,
	},
}
