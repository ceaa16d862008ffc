package payroll

import "testing"

func TestPaymentTransitions(t *testing.T) {
	if !PaymentPending.CanTransitionTo(PaymentPaid) {
		t.Fatal("expected pending -> paid")
	}
	if PaymentPaid.CanTransitionTo(PaymentPending) {
		t.Fatal("paid must be terminal")
	}
	if PaymentPending.CanTransitionTo(PaymentPending) {
		t.Fatal("expected no self transition")
	}
}

func TestPaymentStatusValid(t *testing.T) {
	if !PaymentPending.Valid() || !PaymentPaid.Valid() {
		t.Fatal("expected known statuses to be valid")
	}
	if PaymentStatus("refunded").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}
}
