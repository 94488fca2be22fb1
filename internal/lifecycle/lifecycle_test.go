package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"seafood-backend/internal/apperr"
	"seafood-backend/internal/models"
)

func TestReceptionTable(t *testing.T) {
	tests := []struct {
		from, to models.ReceptionStatus
		ok       bool
	}{
		{models.ReceptionStatusDraft, models.ReceptionStatusAccepted, true},
		{models.ReceptionStatusDraft, models.ReceptionStatusCompleted, false},
		{models.ReceptionStatusDraft, models.ReceptionStatusInProgress, false},
		{models.ReceptionStatusAccepted, models.ReceptionStatusInProgress, true},
		{models.ReceptionStatusAccepted, models.ReceptionStatusDraft, false},
		{models.ReceptionStatusInProgress, models.ReceptionStatusInProgress, true},
		{models.ReceptionStatusInProgress, models.ReceptionStatusCompleted, true},
		{models.ReceptionStatusSuspended, models.ReceptionStatusAccepted, true},
		{models.ReceptionStatusCompleted, models.ReceptionStatusCancelled, false},
		{models.ReceptionStatusCancelled, models.ReceptionStatusDraft, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, Reception.Allows(tt.from, tt.to))
		})
	}
	assert.True(t, Reception.IsTerminal(models.ReceptionStatusCompleted))
	assert.True(t, Reception.IsTerminal(models.ReceptionStatusCancelled))
	assert.False(t, Reception.IsTerminal(models.ReceptionStatusSuspended))
}

func TestCheckReturnsInvalidTransition(t *testing.T) {
	err := Classification.Check("classification", models.ClassificationStatusDraft, models.ClassificationStatusCompleted)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
	assert.NoError(t, Classification.Check("classification", models.ClassificationStatusDraft, models.ClassificationStatusValidated))
}

func TestPurchaseTables(t *testing.T) {
	assert.False(t, PurchaseRequest.Allows(models.PurchaseRequestStatusRejected, models.PurchaseRequestStatusApproved))
	assert.True(t, PurchaseOrder.Allows(models.PurchaseOrderStatusApproved, models.PurchaseOrderStatusPaid))
	assert.False(t, PurchaseOrder.Allows(models.PurchaseOrderStatusPending, models.PurchaseOrderStatusPaid))
	assert.True(t, PurchaseOrder.IsTerminal(models.PurchaseOrderStatusPaid))
}
