package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dineqr_backend/internal/models"
)

func TestCanPaymentTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.PaymentStatusPending, models.PaymentStatusProcessing, true},
		{models.PaymentStatusPending, models.PaymentStatusCompleted, true},
		{models.PaymentStatusPending, models.PaymentStatusFailed, true},
		{models.PaymentStatusPending, models.PaymentStatusRefunded, false},
		{models.PaymentStatusProcessing, models.PaymentStatusCompleted, true},
		{models.PaymentStatusProcessing, models.PaymentStatusCancelled, true},
		{models.PaymentStatusCompleted, models.PaymentStatusRefunded, true},
		{models.PaymentStatusCompleted, models.PaymentStatusPending, false},
		{models.PaymentStatusFailed, models.PaymentStatusPending, true},
		{models.PaymentStatusFailed, models.PaymentStatusProcessing, true},
		{models.PaymentStatusFailed, models.PaymentStatusCompleted, false},
		{models.PaymentStatusCancelled, models.PaymentStatusPending, false},
		{models.PaymentStatusRefunded, models.PaymentStatusCompleted, false},
		{"UNKNOWN", models.PaymentStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPaymentTransition(tt.from, tt.to))
		})
	}
}
