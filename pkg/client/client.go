// Package client is a Go SDK for the tabshare services. It speaks the
// Connect protocol with JSON messages and returns domain models.
package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/auth"
	"github.com/mmynk/tabshare/internal/settlement"
	"github.com/mmynk/tabshare/pkg/api/apiconnect"
)

// Client calls the receipt, profile, and auth services of one server.
// It is safe for concurrent use.
type Client struct {
	receipts apiconnect.ReceiptServiceClient
	profiles apiconnect.ProfileServiceClient
	auth     apiconnect.AuthServiceClient
	logger   *slog.Logger

	mu    sync.RWMutex
	token string
}

var (
	_ settlement.Repository = (*Client)(nil)
	_ settlement.Profiles   = (*Client)(nil)
)

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient connect.HTTPClient
	token      string
	logger     *slog.Logger
}

// WithHTTPClient sets the HTTP client. The default is http.DefaultClient.
func WithHTTPClient(c connect.HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithToken starts the client with a bearer token from an earlier login.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithLogger sets the logger used by Checkout.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	o := options{httpClient: http.DefaultClient, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{logger: o.logger, token: o.token}
	interceptors := connect.WithInterceptors(c.bearerInterceptor())
	c.receipts = apiconnect.NewReceiptServiceClient(o.httpClient, baseURL, interceptors)
	c.profiles = apiconnect.NewProfileServiceClient(o.httpClient, baseURL, interceptors)
	c.auth = apiconnect.NewAuthServiceClient(o.httpClient, baseURL, interceptors)
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Session returns the session for the current token. The user ID is read
// from the server, not from the token.
func (c *Client) Session(ctx context.Context) (settlement.Session, error) {
	token := c.Token()
	if token == "" {
		return settlement.Session{}, auth.ErrMissingToken
	}
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return settlement.Session{}, err
	}
	return settlement.Session{UserID: user.ID, Email: user.Email, Token: token}, nil
}

func (c *Client) bearerInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token := c.Token(); token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

// fromConnect turns a Connect error back into the matching apperr category.
func fromConnect(err error) error {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return err
	}
	msg := connectErr.Message()
	switch connectErr.Code() {
	case connect.CodeNotFound:
		return &codeError{msg: msg, sentinel: apperr.ErrNotFound}
	case connect.CodeInvalidArgument:
		return &apperr.ValidationError{Reason: msg}
	case connect.CodePermissionDenied:
		return &codeError{msg: msg, sentinel: apperr.ErrPermissionDenied}
	case connect.CodeAborted:
		return &codeError{msg: msg, sentinel: apperr.ErrVersionConflict}
	case connect.CodeUnauthenticated:
		return &codeError{msg: msg, sentinel: auth.ErrInvalidToken}
	case connect.CodeAlreadyExists:
		return &codeError{msg: msg, sentinel: auth.ErrEmailExists}
	}
	return err
}

// codeError keeps the server's message and matches a local sentinel.
type codeError struct {
	msg      string
	sentinel error
}

func (e *codeError) Error() string { return e.msg }

func (e *codeError) Unwrap() error { return e.sentinel }
