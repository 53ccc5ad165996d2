package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/tabshare/pkg/api"
)

func TestProfileService(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")

	t.Run("others see payments but not contact details", func(t *testing.T) {
		resp, err := env.profiles.GetUserProfile(ctx, as(bob.ID, &api.GetUserProfileRequest{UserID: alice.ID}))
		if err != nil {
			t.Fatalf("GetUserProfile failed: %v", err)
		}
		if resp.Msg.User.Payments.Venmo != "alice" {
			t.Errorf("expected venmo handle alice, got %q", resp.Msg.User.Payments.Venmo)
		}
		if resp.Msg.User.Email != "" {
			t.Errorf("expected email hidden, got %q", resp.Msg.User.Email)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.profiles.GetUserProfile(ctx, as(bob.ID, &api.GetUserProfileRequest{UserID: "missing"}))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("update profile", func(t *testing.T) {
		resp, err := env.profiles.UpdateProfile(ctx, as(alice.ID, &api.UpdateProfileRequest{
			DisplayName: "  Alice B ",
			Phone:       "555-0199",
		}))
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if resp.Msg.User.DisplayName != "Alice B" || resp.Msg.User.Phone != "555-0199" {
			t.Errorf("unexpected profile: %+v", resp.Msg.User)
		}

		_, err = env.profiles.UpdateProfile(ctx, as(alice.ID, &api.UpdateProfileRequest{DisplayName: "   "}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("update payment handles", func(t *testing.T) {
		resp, err := env.profiles.UpdatePaymentHandles(ctx, as(alice.ID, &api.UpdatePaymentHandlesRequest{
			Payments: api.PaymentHandles{CashApp: "alicecash"},
		}))
		if err != nil {
			t.Fatalf("UpdatePaymentHandles failed: %v", err)
		}
		if resp.Msg.User.Payments.Venmo != "" || resp.Msg.User.Payments.CashApp != "alicecash" {
			t.Errorf("unexpected payments: %+v", resp.Msg.User.Payments)
		}

		_, err = env.profiles.UpdatePaymentHandles(ctx, as(alice.ID, &api.UpdatePaymentHandlesRequest{}))
		assertCode(t, err, connect.CodeInvalidArgument)

		_, err = env.profiles.UpdatePaymentHandles(ctx, as(alice.ID, &api.UpdatePaymentHandlesRequest{
			Payments: api.PaymentHandles{PayPalEmail: "not-an-email"},
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})
}
