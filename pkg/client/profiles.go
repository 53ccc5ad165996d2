package client

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/pkg/api"
)

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, email, password, displayName, phone string, payments models.PaymentHandles) (*models.User, error) {
	resp, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
		Phone:       phone,
		Payments:    handlesToAPI(payments),
	}))
	if err != nil {
		return nil, fromConnect(err)
	}
	c.SetToken(resp.Msg.Token)
	return userFromAPI(resp.Msg.User), nil
}

// Login signs in and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: email, Password: password}))
	if err != nil {
		return nil, fromConnect(err)
	}
	c.SetToken(resp.Msg.Token)
	return userFromAPI(resp.Msg.User), nil
}

// Logout tells the server and forgets the token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.auth.Logout(ctx, connect.NewRequest(&api.LogoutRequest{}))
	c.SetToken("")
	if err != nil {
		return fromConnect(err)
	}
	return nil
}

// CurrentUser returns the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	resp, err := c.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return userFromAPI(resp.Msg.User), nil
}

// GetUserProfile implements settlement.Profiles.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	resp, err := c.profiles.GetUserProfile(ctx, connect.NewRequest(&api.GetUserProfileRequest{UserID: userID}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return userFromAPI(resp.Msg.User), nil
}

// UpdateProfile changes the signed-in user's display name and phone.
func (c *Client) UpdateProfile(ctx context.Context, displayName, phone string) (*models.User, error) {
	resp, err := c.profiles.UpdateProfile(ctx, connect.NewRequest(&api.UpdateProfileRequest{
		DisplayName: displayName,
		Phone:       phone,
	}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return userFromAPI(resp.Msg.User), nil
}

// UpdatePaymentHandles replaces the signed-in user's payment handles.
func (c *Client) UpdatePaymentHandles(ctx context.Context, handles models.PaymentHandles) (*models.User, error) {
	resp, err := c.profiles.UpdatePaymentHandles(ctx, connect.NewRequest(&api.UpdatePaymentHandlesRequest{
		Payments: handlesToAPI(handles),
	}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return userFromAPI(resp.Msg.User), nil
}
