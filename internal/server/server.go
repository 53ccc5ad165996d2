// Package server assembles the HTTP handler that serves the Connect
// services, health checks and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/tabshare/internal/auth"
	"github.com/mmynk/tabshare/internal/metrics"
	"github.com/mmynk/tabshare/internal/middleware"
	"github.com/mmynk/tabshare/internal/service"
	"github.com/mmynk/tabshare/internal/storage"
	"github.com/mmynk/tabshare/pkg/api/apiconnect"
)

// Options configures New. Store and JWT are required.
type Options struct {
	Store         storage.Store
	JWT           *auth.JWTManager
	Authenticator auth.Authenticator // defaults to a bcrypt PasswordAuthenticator over Store
	Metrics       *metrics.Metrics   // nil disables /metrics
	Logger        *slog.Logger
	CORSOrigin    string
}

// New returns the root handler, wrapped for HTTP/2 without TLS.
func New(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	authenticator := opts.Authenticator
	if authenticator == nil {
		authenticator = auth.NewPasswordAuthenticator(opts.Store)
	}

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(opts.JWT,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
			apiconnect.AuthServiceLogoutProcedure,
		),
		middleware.LoggingInterceptor(logger, opts.Metrics),
	)

	mux := http.NewServeMux()

	receiptPath, receiptHandler := apiconnect.NewReceiptServiceHandler(
		service.NewReceiptService(opts.Store, opts.Metrics), interceptors)
	mux.Handle(receiptPath, receiptHandler)

	profilePath, profileHandler := apiconnect.NewProfileServiceHandler(
		service.NewProfileService(opts.Store), interceptors)
	mux.Handle(profilePath, profileHandler)

	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		service.NewAuthService(authenticator, opts.JWT, opts.Store, logger), interceptors)
	mux.Handle(authPath, authHandler)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	origin := opts.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	handler := loggingMiddleware(logger, corsMiddleware(origin, mux))

	return h2c.NewHandler(handler, &http2.Server{})
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", addr, "url", "http://localhost"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// loggingMiddleware logs all incoming requests except health probes.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()

		logger.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		logger.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(origin string, next http.Handler) http.Handler {
	allowHeaders := strings.Join([]string{
		"Content-Type", "Authorization", "Connect-Protocol-Version", "Connect-Timeout-Ms",
	}, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
