package service

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/tabshare/internal/joincode"
	"github.com/mmynk/tabshare/pkg/api"
)

func TestCreateAndGetReceipt(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.createUser(t, "Alice")

	r := env.createReceipt(t, alice.ID,
		api.ItemInput{Name: "Pizza", Price: "20.00"},
		api.ItemInput{Name: "Beer", Price: "10"},
	)

	if r.HostID != alice.ID {
		t.Errorf("expected host %s, got %s", alice.ID, r.HostID)
	}
	if r.Subtotal != "30.00" || r.Tax != "2.10" || r.Total != "32.10" {
		t.Errorf("unexpected totals: subtotal=%s tax=%s total=%s", r.Subtotal, r.Tax, r.Total)
	}
	if r.JoinCode != joincode.FromID(r.ID) {
		t.Errorf("join code %s does not match ID %s", r.JoinCode, r.ID)
	}

	resp, err := env.receipts.GetReceipt(ctx, as(alice.ID, &api.GetReceiptRequest{ReceiptID: r.ID}))
	if err != nil {
		t.Fatalf("GetReceipt failed: %v", err)
	}
	if len(resp.Msg.Receipt.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Msg.Receipt.Items))
	}
	if resp.Msg.Names[alice.ID] != "Alice" {
		t.Errorf("expected host name Alice, got %q", resp.Msg.Names[alice.ID])
	}
	if resp.Msg.Unclaimed != "30.00" {
		t.Errorf("expected 30.00 unclaimed, got %s", resp.Msg.Unclaimed)
	}
}

func TestCreateReceipt_Validation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		items []api.ItemInput
	}{
		{"missing name", []api.ItemInput{{Price: "1.00"}}},
		{"negative price", []api.ItemInput{{Name: "Soda", Price: "-1"}}},
		{"three decimals", []api.ItemInput{{Name: "Soda", Price: "1.005"}}},
		{"not a number", []api.ItemInput{{Name: "Soda", Price: "abc"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.receipts.CreateReceipt(ctx, as("u1", &api.CreateReceiptRequest{Items: tt.items}))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}

	_, err := env.receipts.CreateReceipt(ctx, connect.NewRequest(&api.CreateReceiptRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestJoinReceipt(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")

	r := env.createReceipt(t, alice.ID, api.ItemInput{Name: "Pizza", Price: "20.00"})

	// Guests may type the code in lowercase and with the display dash.
	code := strings.ToLower(joincode.Display(r.JoinCode))
	resp, err := env.receipts.JoinReceipt(ctx, as(bob.ID, &api.JoinReceiptRequest{JoinCode: code}))
	if err != nil {
		t.Fatalf("JoinReceipt failed: %v", err)
	}
	if resp.Msg.ReceiptID != r.ID {
		t.Errorf("expected receipt %s, got %s", r.ID, resp.Msg.ReceiptID)
	}
	if len(resp.Msg.Receipt.GuestIDs) != 1 || resp.Msg.Receipt.GuestIDs[0] != bob.ID {
		t.Errorf("expected Bob as guest, got %v", resp.Msg.Receipt.GuestIDs)
	}

	// Joining twice keeps a single entry.
	resp, err = env.receipts.JoinReceipt(ctx, as(bob.ID, &api.JoinReceiptRequest{JoinCode: r.JoinCode}))
	if err != nil {
		t.Fatalf("second JoinReceipt failed: %v", err)
	}
	if len(resp.Msg.Receipt.GuestIDs) != 1 {
		t.Errorf("expected 1 guest after rejoin, got %v", resp.Msg.Receipt.GuestIDs)
	}

	_, err = env.receipts.JoinReceipt(ctx, as(bob.ID, &api.JoinReceiptRequest{JoinCode: "ZZZZZZZZ"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = env.receipts.JoinReceipt(ctx, as(bob.ID, &api.JoinReceiptRequest{JoinCode: "abc"}))
	assertCode(t, err, connect.CodeInvalidArgument)

	list, err := env.receipts.ListReceipts(ctx, as(bob.ID, &api.ListReceiptsRequest{}))
	if err != nil {
		t.Fatalf("ListReceipts failed: %v", err)
	}
	if len(list.Msg.Hosted) != 0 || len(list.Msg.Requested) != 1 {
		t.Fatalf("expected 0 hosted and 1 requested, got %d and %d", len(list.Msg.Hosted), len(list.Msg.Requested))
	}
	if list.Msg.Requested[0].HostName != "Alice" {
		t.Errorf("expected host name Alice, got %q", list.Msg.Requested[0].HostName)
	}
	if names := list.Msg.Requested[0].MemberNames; len(names) != 1 || names[0] != "Bob" {
		t.Errorf("expected member names [Bob], got %v", names)
	}
}

func TestGetReceipt_RequiresMembership(t *testing.T) {
	env := setupTestServer(t)
	alice := env.createUser(t, "Alice")
	r := env.createReceipt(t, alice.ID)

	_, err := env.receipts.GetReceipt(context.Background(), as("stranger", &api.GetReceiptRequest{ReceiptID: r.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.receipts.GetReceipt(context.Background(), as(alice.ID, &api.GetReceiptRequest{ReceiptID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestAddAndRemoveItem(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	r := env.createReceipt(t, alice.ID, api.ItemInput{Name: "Pizza", Price: "20.00"})

	added, err := env.receipts.AddItem(ctx, as(alice.ID, &api.AddItemRequest{
		ReceiptID: r.ID,
		Name:      "Wings",
		Price:     "12.50",
	}))
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	got := added.Msg.Receipt
	if got.Subtotal != "32.50" || got.Tax != "2.28" || got.Total != "34.78" {
		t.Errorf("unexpected totals after add: %s %s %s", got.Subtotal, got.Tax, got.Total)
	}
	if added.Msg.Item.ID == "" || len(added.Msg.Item.PurchaserIDs) != 0 || added.Msg.Item.Paid {
		t.Errorf("unexpected new item: %+v", added.Msg.Item)
	}

	t.Run("guest cannot add", func(t *testing.T) {
		_, err := env.receipts.AddItem(ctx, as(bob.ID, &api.AddItemRequest{ReceiptID: r.ID, Name: "Soda", Price: "2"}))
		assertCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("invalid price", func(t *testing.T) {
		_, err := env.receipts.AddItem(ctx, as(alice.ID, &api.AddItemRequest{ReceiptID: r.ID, Name: "Soda", Price: "0"}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		_, err := env.receipts.AddItem(ctx, as(alice.ID, &api.AddItemRequest{
			ReceiptID:       r.ID,
			Name:            "Soda",
			Price:           "2",
			ExpectedVersion: r.Version,
		}))
		assertCode(t, err, connect.CodeAborted)
	})

	removed, err := env.receipts.RemoveItem(ctx, as(alice.ID, &api.RemoveItemRequest{
		ReceiptID: r.ID,
		ItemID:    added.Msg.Item.ID,
	}))
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if removed.Msg.Receipt.Subtotal != "20.00" || removed.Msg.Receipt.Total != "21.40" {
		t.Errorf("unexpected totals after remove: %s %s", removed.Msg.Receipt.Subtotal, removed.Msg.Receipt.Total)
	}

	_, err = env.receipts.RemoveItem(ctx, as(alice.ID, &api.RemoveItemRequest{ReceiptID: r.ID, ItemID: added.Msg.Item.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestMarkItemsPaid(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	r := env.createReceipt(t, alice.ID,
		api.ItemInput{Name: "Pizza", Price: "20.00"},
		api.ItemInput{Name: "Beer", Price: "10.00"},
	)
	if _, err := env.receipts.JoinReceipt(ctx, as(bob.ID, &api.JoinReceiptRequest{JoinCode: r.JoinCode})); err != nil {
		t.Fatalf("JoinReceipt failed: %v", err)
	}
	pizza, beer := r.Items[0].ID, r.Items[1].ID

	_, err := env.receipts.MarkItemsPaid(ctx, as(bob.ID, &api.MarkItemsPaidRequest{ReceiptID: r.ID, ItemIDs: []string{pizza}}))
	assertCode(t, err, connect.CodePermissionDenied)

	resp, err := env.receipts.MarkItemsPaid(ctx, as(alice.ID, &api.MarkItemsPaidRequest{ReceiptID: r.ID, ItemIDs: []string{pizza}}))
	if err != nil {
		t.Fatalf("MarkItemsPaid failed: %v", err)
	}
	if resp.Msg.Checkout.Amount != "20.00" {
		t.Errorf("expected checkout amount 20.00, got %s", resp.Msg.Checkout.Amount)
	}
	item := resp.Msg.Receipt.Items[0]
	if !item.Paid || len(item.PurchaserIDs) != 1 || item.PurchaserIDs[0] != alice.ID {
		t.Errorf("expected pizza paid by Alice, got %+v", item)
	}

	// A batch with an already-paid item changes nothing.
	_, err = env.receipts.MarkItemsPaid(ctx, as(alice.ID, &api.MarkItemsPaidRequest{ReceiptID: r.ID, ItemIDs: []string{beer, pizza}}))
	assertCode(t, err, connect.CodeInvalidArgument)

	get, err := env.receipts.GetReceipt(ctx, as(bob.ID, &api.GetReceiptRequest{ReceiptID: r.ID}))
	if err != nil {
		t.Fatalf("GetReceipt failed: %v", err)
	}
	if get.Msg.Receipt.Items[1].Paid {
		t.Error("expected beer to stay unpaid")
	}

	checkouts, err := env.receipts.ListCheckouts(ctx, as(bob.ID, &api.ListCheckoutsRequest{ReceiptID: r.ID}))
	if err != nil {
		t.Fatalf("ListCheckouts failed: %v", err)
	}
	if len(checkouts.Msg.Checkouts) != 1 {
		t.Errorf("expected 1 checkout, got %d", len(checkouts.Msg.Checkouts))
	}
}

func TestAddGuest(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.createUser(t, "Alice")
	carol := env.createUser(t, "Carol")
	r := env.createReceipt(t, alice.ID)

	existing, err := env.receipts.AddGuest(ctx, as(alice.ID, &api.AddGuestRequest{ReceiptID: r.ID, UserID: carol.ID}))
	if err != nil {
		t.Fatalf("AddGuest (existing) failed: %v", err)
	}
	if existing.Msg.Guest.ID != carol.ID || existing.Msg.Guest.Email != "" {
		t.Errorf("unexpected guest: %+v", existing.Msg.Guest)
	}

	placeholder, err := env.receipts.AddGuest(ctx, as(alice.ID, &api.AddGuestRequest{
		ReceiptID:   r.ID,
		DisplayName: "Dave",
		Phone:       "555-0100",
	}))
	if err != nil {
		t.Fatalf("AddGuest (placeholder) failed: %v", err)
	}
	if placeholder.Msg.Guest.HasAccount {
		t.Error("expected placeholder guest without account")
	}
	if len(placeholder.Msg.Receipt.GuestIDs) != 2 {
		t.Errorf("expected 2 guests, got %v", placeholder.Msg.Receipt.GuestIDs)
	}

	_, err = env.receipts.AddGuest(ctx, as(alice.ID, &api.AddGuestRequest{ReceiptID: r.ID}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.receipts.AddGuest(ctx, as(alice.ID, &api.AddGuestRequest{ReceiptID: r.ID, UserID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = env.receipts.AddGuest(ctx, as(carol.ID, &api.AddGuestRequest{ReceiptID: r.ID, DisplayName: "Eve"}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestQuotePayment(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	r := env.createReceipt(t, alice.ID,
		api.ItemInput{Name: "Pizza", Price: "20.00"},
		api.ItemInput{Name: "Beer", Price: "10.00"},
	)
	if _, err := env.receipts.JoinReceipt(ctx, as(bob.ID, &api.JoinReceiptRequest{JoinCode: r.JoinCode})); err != nil {
		t.Fatalf("JoinReceipt failed: %v", err)
	}

	resp, err := env.receipts.QuotePayment(ctx, as(bob.ID, &api.QuotePaymentRequest{
		ReceiptID: r.ID,
		ItemIDs:   []string{r.Items[0].ID, r.Items[1].ID},
		Method:    "venmo",
	}))
	if err != nil {
		t.Fatalf("QuotePayment failed: %v", err)
	}
	if resp.Msg.Subtotal != "30.00" || resp.Msg.Amount != "33.30" {
		t.Errorf("expected 30.00 -> 33.30, got %s -> %s", resp.Msg.Subtotal, resp.Msg.Amount)
	}
	want := "venmo://paycharge?txn=pay&recipients=alice&amount=33.30&note=Tabshare%3A+Dinner"
	if resp.Msg.Link != want {
		t.Errorf("link = %s, want %s", resp.Msg.Link, want)
	}

	exposition := env.scrapeMetrics(t)
	if !strings.Contains(exposition, `tabshare_payment_quotes_total{method="venmo"} 1`) {
		t.Errorf("quote not counted:\n%s", exposition)
	}
	if strings.Contains(exposition, `tabshare_checkouts_total{method="venmo"`) {
		t.Errorf("quote counted as a checkout:\n%s", exposition)
	}

	t.Run("host has no handle for method", func(t *testing.T) {
		_, err := env.receipts.QuotePayment(ctx, as(bob.ID, &api.QuotePaymentRequest{
			ReceiptID: r.ID, ItemIDs: []string{r.Items[0].ID}, Method: "paypal",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := env.receipts.QuotePayment(ctx, as(bob.ID, &api.QuotePaymentRequest{
			ReceiptID: r.ID, ItemIDs: []string{r.Items[0].ID}, Method: "zelle",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("host cannot quote", func(t *testing.T) {
		_, err := env.receipts.QuotePayment(ctx, as(alice.ID, &api.QuotePaymentRequest{
			ReceiptID: r.ID, ItemIDs: []string{r.Items[0].ID}, Method: "venmo",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("paid items are rejected", func(t *testing.T) {
		if _, err := env.receipts.MarkItemsPaid(ctx, as(alice.ID, &api.MarkItemsPaidRequest{
			ReceiptID: r.ID, ItemIDs: []string{r.Items[0].ID},
		})); err != nil {
			t.Fatalf("MarkItemsPaid failed: %v", err)
		}
		_, err := env.receipts.QuotePayment(ctx, as(bob.ID, &api.QuotePaymentRequest{
			ReceiptID: r.ID, ItemIDs: []string{r.Items[0].ID}, Method: "venmo",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})
}
