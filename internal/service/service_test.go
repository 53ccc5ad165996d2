package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tabshare/internal/auth"
	"github.com/mmynk/tabshare/internal/metrics"
	"github.com/mmynk/tabshare/internal/middleware"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/settlement"
	"github.com/mmynk/tabshare/internal/storage/sqlite"
	"github.com/mmynk/tabshare/pkg/api"
	"github.com/mmynk/tabshare/pkg/api/apiconnect"
)

// testUserHeader names the user a test request acts as.
const testUserHeader = "X-Test-User"

// testAuthInterceptor returns a Connect interceptor that puts the user
// named in testUserHeader into the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(testUserHeader); id != "" {
				ctx = middleware.WithSession(ctx, settlement.Session{UserID: id})
			}
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	store    *sqlite.SQLiteStore
	receipts apiconnect.ReceiptServiceClient
	profiles apiconnect.ProfileServiceClient
	auth     apiconnect.AuthServiceClient
	jwt      *auth.JWTManager
	metrics  *metrics.Metrics
}

// setupTestServer creates a test server backed by a temp-file SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	interceptors := connect.WithInterceptors(testAuthInterceptor())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewReceiptServiceHandler(NewReceiptService(store, m), interceptors))
	mux.Handle(apiconnect.NewProfileServiceHandler(NewProfileService(store), interceptors))
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:    store,
		receipts: apiconnect.NewReceiptServiceClient(http.DefaultClient, server.URL),
		profiles: apiconnect.NewProfileServiceClient(http.DefaultClient, server.URL),
		auth:     apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		jwt:      jwtManager,
		metrics:  m,
	}
}

// as builds a request acting as userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, userID)
	return req
}

// createUser stores a registered user with a Venmo handle.
func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := models.NewUser(strings.ToLower(name)+"@example.com", name, "")
	user.Payments.Venmo = strings.ToLower(name)
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func (e *testEnv) createReceipt(t *testing.T, hostID string, items ...api.ItemInput) api.Receipt {
	t.Helper()
	resp, err := e.receipts.CreateReceipt(context.Background(), as(hostID, &api.CreateReceiptRequest{
		Name:   "Dinner",
		Vendor: "Joe's Pizza",
		Items:  items,
	}))
	if err != nil {
		t.Fatalf("CreateReceipt failed: %v", err)
	}
	return resp.Msg.Receipt
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

// scrapeMetrics returns the text exposition of the env's metrics.
func (e *testEnv) scrapeMetrics(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}
