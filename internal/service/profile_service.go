package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/storage"
	"github.com/mmynk/tabshare/pkg/api"
)

// ProfileService implements the Connect ProfileService
type ProfileService struct {
	users storage.UserStore
}

// NewProfileService creates a new ProfileService with the given user store.
func NewProfileService(users storage.UserStore) *ProfileService {
	return &ProfileService{users: users}
}

// GetUserProfile returns a user's profile. Contact details are only
// included when callers look up themselves.
func (s *ProfileService) GetUserProfile(ctx context.Context, req *connect.Request[api.GetUserProfileRequest]) (*connect.Response[api.GetUserProfileResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetUserProfile request received", "user_id", req.Msg.UserID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	user, err := s.users.GetUserByID(ctx, req.Msg.UserID)
	if err != nil {
		slog.Error("GetUserProfile failed", "user_id", req.Msg.UserID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetUserProfileResponse{
		User: userToAPI(user, user.ID == sess.UserID),
	}), nil
}

// UpdateProfile changes the caller's display name and phone number.
func (s *ProfileService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateProfile request received", "user_id", sess.UserID)

	req.Msg.DisplayName = strings.TrimSpace(req.Msg.DisplayName)
	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	user, err := s.users.UpdateUserProfile(ctx, sess.UserID, req.Msg.DisplayName, strings.TrimSpace(req.Msg.Phone))
	if err != nil {
		slog.Error("UpdateProfile failed", "user_id", sess.UserID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Profile updated", "user_id", user.ID)
	return connect.NewResponse(&api.UpdateProfileResponse{User: userToAPI(user, true)}), nil
}

// UpdatePaymentHandles replaces the caller's payment handles. At least one
// must remain so guests can pay.
func (s *ProfileService) UpdatePaymentHandles(ctx context.Context, req *connect.Request[api.UpdatePaymentHandlesRequest]) (*connect.Response[api.UpdatePaymentHandlesResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdatePaymentHandles request received", "user_id", sess.UserID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	handles := handlesFromAPI(req.Msg.Payments)
	handles.Venmo = strings.TrimSpace(handles.Venmo)
	handles.CashApp = strings.TrimSpace(handles.CashApp)
	handles.PayPalEmail = strings.TrimSpace(handles.PayPalEmail)
	if !handles.Any() {
		return nil, toConnectError(apperr.Invalid("payments", "at least one payment method is required"))
	}

	user, err := s.users.UpdatePaymentHandles(ctx, sess.UserID, handles)
	if err != nil {
		slog.Error("UpdatePaymentHandles failed", "user_id", sess.UserID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Payment handles updated", "user_id", user.ID)
	return connect.NewResponse(&api.UpdatePaymentHandlesResponse{User: userToAPI(user, true)}), nil
}
