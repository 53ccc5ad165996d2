package calculator

import (
	"testing"

	"github.com/mmynk/tabshare/internal/models"
)

func TestSummarize(t *testing.T) {
	r := &models.Receipt{
		Items: []models.ReceiptItem{
			{ID: "1", Name: "Pizza", Price: dec("20"), Purchasers: []string{"alice", "bob"}},
			{ID: "2", Name: "Salad", Price: dec("10"), Purchasers: []string{"alice"}, Paid: true},
			{ID: "3", Name: "Wine", Price: dec("30")},
		},
	}

	s := Summarize(r)

	if !s.Received.Equal(dec("10")) {
		t.Errorf("received = %s, want 10", s.Received)
	}
	if !s.Outstanding.Equal(dec("50")) {
		t.Errorf("outstanding = %s, want 50", s.Outstanding)
	}
	if !s.Unclaimed.Equal(dec("30")) {
		t.Errorf("unclaimed = %s, want 30", s.Unclaimed)
	}
	if len(s.Shares) != 2 {
		t.Fatalf("shares = %d, want 2", len(s.Shares))
	}

	alice := s.Shares[0]
	if alice.UserID != "alice" {
		t.Fatalf("shares not sorted: %s", alice.UserID)
	}
	// Alice: 10 (half pizza) + 10 (salad) = 20, tax 1.40, total 21.40
	if !alice.Subtotal.Equal(dec("20")) || !alice.Tax.Equal(dec("1.4")) || !alice.Total.Equal(dec("21.4")) {
		t.Errorf("alice = %s/%s/%s", alice.Subtotal, alice.Tax, alice.Total)
	}
	if len(alice.Items) != 2 {
		t.Errorf("alice items = %d, want 2", len(alice.Items))
	}

	bob := s.Shares[1]
	if !bob.Subtotal.Equal(dec("10")) || !bob.Total.Equal(dec("10.7")) {
		t.Errorf("bob = %s/%s", bob.Subtotal, bob.Total)
	}
}

func TestSummarizeThreeWaySplitRounds(t *testing.T) {
	r := &models.Receipt{
		Items: []models.ReceiptItem{
			{ID: "1", Name: "Pitcher", Price: dec("10"), Purchasers: []string{"a", "b", "c"}},
		},
	}
	for _, share := range Summarize(r).Shares {
		if !share.Subtotal.Equal(dec("3.33")) {
			t.Errorf("%s subtotal = %s, want 3.33", share.UserID, share.Subtotal)
		}
	}
}
