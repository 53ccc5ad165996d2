package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tabshare/pkg/api"
)

// ProfileServiceName is the fully-qualified name of the ProfileService service.
const ProfileServiceName = "tabshare.v1.ProfileService"

// Procedure paths of the ProfileService RPCs.
const (
	ProfileServiceGetUserProfileProcedure       = "/tabshare.v1.ProfileService/GetUserProfile"
	ProfileServiceUpdateProfileProcedure        = "/tabshare.v1.ProfileService/UpdateProfile"
	ProfileServiceUpdatePaymentHandlesProcedure = "/tabshare.v1.ProfileService/UpdatePaymentHandles"
)

// ProfileServiceHandler is implemented by the server.
type ProfileServiceHandler interface {
	GetUserProfile(context.Context, *connect.Request[api.GetUserProfileRequest]) (*connect.Response[api.GetUserProfileResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error)
	UpdatePaymentHandles(context.Context, *connect.Request[api.UpdatePaymentHandlesRequest]) (*connect.Response[api.UpdatePaymentHandlesResponse], error)
}

// NewProfileServiceHandler builds an HTTP handler from the service implementation.
func NewProfileServiceHandler(svc ProfileServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ProfileServiceGetUserProfileProcedure, connect.NewUnaryHandler(ProfileServiceGetUserProfileProcedure, svc.GetUserProfile, opts...))
	mux.Handle(ProfileServiceUpdateProfileProcedure, connect.NewUnaryHandler(ProfileServiceUpdateProfileProcedure, svc.UpdateProfile, opts...))
	mux.Handle(ProfileServiceUpdatePaymentHandlesProcedure, connect.NewUnaryHandler(ProfileServiceUpdatePaymentHandlesProcedure, svc.UpdatePaymentHandles, opts...))
	return "/" + ProfileServiceName + "/", mux
}

// ProfileServiceClient is a client for the ProfileService service.
type ProfileServiceClient interface {
	GetUserProfile(context.Context, *connect.Request[api.GetUserProfileRequest]) (*connect.Response[api.GetUserProfileResponse], error)
	UpdateProfile(context.Context, *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error)
	UpdatePaymentHandles(context.Context, *connect.Request[api.UpdatePaymentHandlesRequest]) (*connect.Response[api.UpdatePaymentHandlesResponse], error)
}

// NewProfileServiceClient constructs a client for the ProfileService service.
func NewProfileServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ProfileServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &profileServiceClient{
		getUserProfile:       connect.NewClient[api.GetUserProfileRequest, api.GetUserProfileResponse](httpClient, baseURL+ProfileServiceGetUserProfileProcedure, opts...),
		updateProfile:        connect.NewClient[api.UpdateProfileRequest, api.UpdateProfileResponse](httpClient, baseURL+ProfileServiceUpdateProfileProcedure, opts...),
		updatePaymentHandles: connect.NewClient[api.UpdatePaymentHandlesRequest, api.UpdatePaymentHandlesResponse](httpClient, baseURL+ProfileServiceUpdatePaymentHandlesProcedure, opts...),
	}
}

type profileServiceClient struct {
	getUserProfile       *connect.Client[api.GetUserProfileRequest, api.GetUserProfileResponse]
	updateProfile        *connect.Client[api.UpdateProfileRequest, api.UpdateProfileResponse]
	updatePaymentHandles *connect.Client[api.UpdatePaymentHandlesRequest, api.UpdatePaymentHandlesResponse]
}

func (c *profileServiceClient) GetUserProfile(ctx context.Context, req *connect.Request[api.GetUserProfileRequest]) (*connect.Response[api.GetUserProfileResponse], error) {
	return c.getUserProfile.CallUnary(ctx, req)
}

func (c *profileServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}

func (c *profileServiceClient) UpdatePaymentHandles(ctx context.Context, req *connect.Request[api.UpdatePaymentHandlesRequest]) (*connect.Response[api.UpdatePaymentHandlesResponse], error) {
	return c.updatePaymentHandles.CallUnary(ctx, req)
}
