package service

import (
	"errors"
	"testing"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/models"
)

func TestOutboundTransitionTable(t *testing.T) {
	cases := []struct {
		from  string
		to    string
		legal bool
	}{
		{constants.TxnStatusPending, constants.TxnStatusPaymentConfirmed, true},
		{constants.TxnStatusPending, constants.TxnStatusCancelled, true},
		{constants.TxnStatusPending, constants.TxnStatusProcessing, false},
		{constants.TxnStatusPending, constants.TxnStatusCompleted, false},
		{constants.TxnStatusPaymentConfirmed, constants.TxnStatusProcessing, true},
		{constants.TxnStatusPaymentConfirmed, constants.TxnStatusCancelled, true},
		{constants.TxnStatusPaymentConfirmed, constants.TxnStatusShipping, false},
		{constants.TxnStatusProcessing, constants.TxnStatusReadyForPickup, true},
		{constants.TxnStatusProcessing, constants.TxnStatusShipping, true},
		{constants.TxnStatusProcessing, constants.TxnStatusCancelled, true},
		{constants.TxnStatusProcessing, constants.TxnStatusCompleted, false},
		{constants.TxnStatusReadyForPickup, constants.TxnStatusCompleted, true},
		{constants.TxnStatusReadyForPickup, constants.TxnStatusCancelled, false},
		{constants.TxnStatusShipping, constants.TxnStatusCompleted, true},
		{constants.TxnStatusShipping, constants.TxnStatusCancelled, false},
		{constants.TxnStatusCompleted, constants.TxnStatusProcessing, true},
		{constants.TxnStatusCompleted, constants.TxnStatusCancelled, false},
		{constants.TxnStatusCancelled, constants.TxnStatusPending, false},
		{constants.TxnStatusCancelled, constants.TxnStatusPaymentConfirmed, false},
	}
	for _, c := range cases {
		if got := isLegalOutboundTransition(c.from, c.to); got != c.legal {
			t.Fatalf("%s -> %s: expected legal=%v, got %v", c.from, c.to, c.legal, got)
		}
	}
}

func TestAuthorizeTransitionRoles(t *testing.T) {
	owner := Actor{UserID: 7, Role: constants.RoleUser}
	other := Actor{UserID: 8, Role: constants.RoleUser}
	admin := Actor{UserID: 1, Role: constants.RoleAdmin}

	txn := &models.Transaction{
		Type:   constants.TxnTypeOut,
		UserID: 7,
		Status: constants.TxnStatusPending,
	}

	if err := authorizeTransition(txn, constants.TxnStatusPaymentConfirmed, owner); err != nil {
		t.Fatalf("owner confirm should be allowed: %v", err)
	}
	if err := authorizeTransition(txn, constants.TxnStatusPaymentConfirmed, admin); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("admin confirm should be rejected, got: %v", err)
	}
	if err := authorizeTransition(txn, constants.TxnStatusCancelled, other); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("other user cancel should be rejected, got: %v", err)
	}
	if err := authorizeTransition(txn, constants.TxnStatusCancelled, admin); err != nil {
		t.Fatalf("admin cancel should be allowed: %v", err)
	}

	txn.Status = constants.TxnStatusPaymentConfirmed
	if err := authorizeTransition(txn, constants.TxnStatusProcessing, owner); !errors.Is(err, ErrActorNotAllowed) {
		t.Fatalf("owner processing should be rejected, got: %v", err)
	}
	if err := authorizeTransition(txn, constants.TxnStatusProcessing, admin); err != nil {
		t.Fatalf("admin processing should be allowed: %v", err)
	}
}

func TestAuthorizeTransitionRejectsInbound(t *testing.T) {
	admin := Actor{UserID: 1, Role: constants.RoleAdmin}
	txn := &models.Transaction{
		Type:   constants.TxnTypeIn,
		Status: constants.TxnStatusCompleted,
	}
	if err := authorizeTransition(txn, constants.TxnStatusProcessing, admin); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected inbound transition rejected, got: %v", err)
	}
}
