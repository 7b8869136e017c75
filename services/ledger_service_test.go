package services

import (
	"errors"
	"testing"

	"investment-platform/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestBalanceRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)
	user := seedUser(t, db, nil)

	credits := []string{"1000.00", "250.50", "0.01", "399999.99"}
	debits := []string{"100.10", "0.02", "1200.00"}

	// interleave postings: balance must be order-independent
	for i := 0; i < len(credits) || i < len(debits); i++ {
		if i < len(debits) {
			if err := svc.Post(&models.Transaction{
				UserID: user.ID,
				Type:   models.TransactionTypeDebit,
				Amount: decimal.RequireFromString(debits[i]),
				Note:   "Withdrawal request TEST",
			}); err != nil {
				t.Fatalf("post debit: %v", err)
			}
		}
		if i < len(credits) {
			if err := svc.Post(&models.Transaction{
				UserID: user.ID,
				Type:   models.TransactionTypeCredit,
				Amount: decimal.RequireFromString(credits[i]),
				Note:   "Installment credit",
			}); err != nil {
				t.Fatalf("post credit: %v", err)
			}
		}
	}

	// 401250.50 - 1300.12
	want := decimal.RequireFromString("399950.38")
	if got := mustBalance(t, db, user.ID); !got.Equal(want) {
		t.Errorf("balance: got %s, want %s", got, want)
	}
}

func TestPostRejectsMalformedEntries(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)
	user := seedUser(t, db, nil)

	cases := []models.Transaction{
		{UserID: user.ID, Type: models.TransactionTypeCredit, Amount: decimal.NewFromInt(-5)},
		{UserID: user.ID, Type: models.TransactionTypeCredit, Amount: decimal.Zero},
		{UserID: user.ID, Type: models.TransactionType("ajuste"), Amount: decimal.NewFromInt(5)},
		{UserID: "", Type: models.TransactionTypeCredit, Amount: decimal.NewFromInt(5)},
	}
	for i := range cases {
		var verr *ValidationError
		if err := svc.Post(&cases[i]); !errors.As(err, &verr) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
	if n := transactionCount(t, db, user.ID); n != 0 {
		t.Errorf("transactions after rejected posts: got %d, want 0", n)
	}
}

func TestTransferMovesBalanceAtomically(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)
	sender := seedUser(t, db, nil)
	recipient := seedUser(t, db, nil)
	creditUser(t, db, sender.ID, "100.00")

	got, err := svc.Transfer(sender.ID, recipient.ReferralCode, decimal.RequireFromString("40.00"))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got.ID != recipient.ID {
		t.Errorf("recipient: got %s, want %s", got.ID, recipient.ID)
	}

	if balance := mustBalance(t, db, sender.ID); !balance.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("sender balance: got %s, want 60.00", balance)
	}
	if balance := mustBalance(t, db, recipient.ID); !balance.Equal(decimal.RequireFromString("40.00")) {
		t.Errorf("recipient balance: got %s, want 40.00", balance)
	}

	var events int64
	if err := db.Model(&models.DomainEvent{}).Where("type = ?", models.EventTransferCompleted).Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 1 {
		t.Errorf("transfer events: got %d, want 1", events)
	}
}

func TestTransferInsufficientBalanceLeavesNoTrace(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)
	sender := seedUser(t, db, nil)
	recipient := seedUser(t, db, nil)
	creditUser(t, db, sender.ID, "10.00")

	_, err := svc.Transfer(sender.ID, recipient.ReferralCode, decimal.RequireFromString("50.00"))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if balance := mustBalance(t, db, sender.ID); !balance.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("sender balance changed: got %s, want 10.00", balance)
	}
	if balance := mustBalance(t, db, recipient.ID); !balance.IsZero() {
		t.Errorf("recipient balance changed: got %s, want 0", balance)
	}
	if n := transactionCount(t, db, sender.ID); n != 1 { // the seed credit only
		t.Errorf("sender transactions: got %d, want 1", n)
	}
	if n := transactionCount(t, db, recipient.ID); n != 0 {
		t.Errorf("recipient transactions: got %d, want 0", n)
	}
}

func TestTransferToOwnAccountRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)
	sender := seedUser(t, db, nil)
	creditUser(t, db, sender.ID, "100.00")

	_, err := svc.Transfer(sender.ID, sender.ReferralCode, decimal.NewFromInt(10))
	if !errors.Is(err, ErrSelfTransfer) {
		t.Fatalf("expected ErrSelfTransfer, got %v", err)
	}
	if n := transactionCount(t, db, sender.ID); n != 1 {
		t.Errorf("transactions: got %d, want 1", n)
	}
}

func TestStatementClassifiesEntries(t *testing.T) {
	db := newTestDB(t)
	svc := NewLedgerService(db)
	user := seedUser(t, db, nil)

	entries := []struct {
		entryType models.TransactionType
		note      string
		want      string
	}{
		{models.TransactionTypeDebit, "Balance sent to Jane Doe", "Transfer Sent"},
		{models.TransactionTypeCredit, "Balance received from Jane Doe", "Transfer Received"},
		{models.TransactionTypeDebit, "Withdrawal request ABC123", "Withdrawal Request"},
		{models.TransactionTypeCredit, "Rank reward for reaching Gold (referred: Jane Doe)", "Rank Reward"},
		{models.TransactionTypeCredit, "Reversal for rejected withdrawal (code ABC123)", "Withdrawal Reversal"},
		{models.TransactionTypeDebit, "Reinvested in plan Premium", "Reinvested in Plan"},
		{models.TransactionTypeCredit, "Installment credit for subscription #1", "Installment Credit"},
	}
	for _, e := range entries {
		if err := svc.Post(&models.Transaction{
			ID:     uuid.NewString(),
			UserID: user.ID,
			Type:   e.entryType,
			Amount: decimal.NewFromInt(10),
			Note:   e.note,
		}); err != nil {
			t.Fatalf("post: %v", err)
		}
	}

	lines, err := svc.Statement(user.ID)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if len(lines) != len(entries) {
		t.Fatalf("lines: got %d, want %d", len(lines), len(entries))
	}
	byNote := map[string]string{}
	for _, l := range lines {
		byNote[l.Note] = l.TypeDetail
	}
	for _, e := range entries {
		if got := byNote[e.note]; got != e.want {
			t.Errorf("detail for %q: got %q, want %q", e.note, got, e.want)
		}
	}
}
