package cli

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/auth"
	"github.com/mmynk/tabshare/internal/server"
	"github.com/mmynk/tabshare/internal/storage/sqlite"
	"github.com/mmynk/tabshare/pkg/logging"
)

func startServer(t *testing.T) string {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(server.New(server.Options{
		Store:         store,
		JWT:           auth.NewJWTManager("cli-test-secret-0123456", time.Hour),
		Authenticator: auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost),
		Logger:        logging.Discard(),
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// run executes tabctl against server and returns stdout.
func run(t *testing.T, server, token string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--server", server, "--token", token}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, server, token string, args ...string) string {
	t.Helper()
	out, err := run(t, server, token, args...)
	require.NoError(t, err, "tabctl %s", strings.Join(args, " "))
	return out
}

// field returns the value of the first "key: value" line in out.
func field(t *testing.T, out, key string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, key+": "); ok {
			return v
		}
	}
	t.Fatalf("no %q in output:\n%s", key, out)
	return ""
}

// itemID finds the ID of the item row with name in receipt output.
func itemID(t *testing.T, out, name string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		cols := strings.Fields(line)
		if len(cols) >= 2 && cols[1] == name {
			return cols[0]
		}
	}
	t.Fatalf("no item %q in output:\n%s", name, out)
	return ""
}

func registerUser(t *testing.T, server, name string, extra ...string) string {
	t.Helper()
	args := append([]string{"register",
		"--email", strings.ToLower(name) + "@example.com",
		"--password", "password123",
		"--name", name,
	}, extra...)
	out := mustRun(t, server, "", args...)
	return field(t, out, "token")
}

func TestSettleReceipt(t *testing.T) {
	server := startServer(t)

	hostToken := registerUser(t, server, "Host", "--venmo", "host-v")
	guestToken := registerUser(t, server, "Guest", "--cashapp", "$guest")

	out := mustRun(t, server, hostToken, "receipt", "create",
		"--name", "Friday dinner",
		"--item", "Pizza=10.00",
		"--item", "Salad=5",
	)
	receiptID := field(t, out, "id")
	joinCode := field(t, out, "join code")
	assert.Equal(t, "$15.00", field(t, out, "subtotal"))
	assert.Equal(t, "$1.05", field(t, out, "tax"))
	assert.Equal(t, "$16.05", field(t, out, "total"))
	pizza := itemID(t, out, "Pizza")
	salad := itemID(t, out, "Salad")

	out = mustRun(t, server, guestToken, "receipt", "join", strings.ToLower(joinCode))
	assert.Equal(t, receiptID, field(t, out, "id"))

	out = mustRun(t, server, guestToken, "receipt", "list")
	assert.Contains(t, out, "hosted (0)")
	assert.Contains(t, out, "requested (1)")
	assert.Contains(t, out, receiptID)

	out = mustRun(t, server, guestToken, "checkout", receiptID, "--items", pizza, "--method", "venmo", "--quote")
	assert.Equal(t, "$11.10", field(t, out, "amount"))
	assert.Contains(t, field(t, out, "link"), "recipients=host-v")

	// venmo:// links are only printed when the scheme is allowed.
	out, err := run(t, server, guestToken, "checkout", receiptID, "--items", pizza, "--method", "venmo")
	assert.ErrorIs(t, err, apperr.ErrExternalLinkUnavailable)
	assert.True(t, strings.HasPrefix(field(t, out, "link"), "venmo://"))

	out = mustRun(t, server, guestToken, "--open-scheme", "venmo", "checkout", receiptID, "--items", pizza, "--method", "Venmo")
	assert.Equal(t, "guest", field(t, out, "role"))
	assert.Contains(t, out, "$11.10 via venmo")

	out = mustRun(t, server, hostToken, "checkout", receiptID, "--items", salad)
	assert.Equal(t, "host", field(t, out, "role"))
	assert.Equal(t, "$5.00", field(t, out, "subtotal"))

	out = mustRun(t, server, hostToken, "receipt", "show", receiptID)
	assert.Equal(t, "Host", field(t, out, "host"))
	assert.Equal(t, "$5.00", field(t, out, "received"))
	assert.Regexp(t, `Salad\s+\$5\.00\s+paid`, out)
	assert.Regexp(t, `Pizza\s+\$10\.00\s+open`, out)
}

func TestEditItems(t *testing.T) {
	server := startServer(t)
	hostToken := registerUser(t, server, "Host", "--paypal", "host@example.com")
	guestToken := registerUser(t, server, "Guest", "--venmo", "guest")

	out := mustRun(t, server, hostToken, "receipt", "create", "--vendor", "Cafe")
	receiptID := field(t, out, "id")
	assert.Equal(t, "1", field(t, out, "version"))

	out = mustRun(t, server, hostToken, "item", "add", receiptID, "--name", "Latte", "--price", "4.50", "--expect-version", "1")
	latte := field(t, out, "item")
	assert.Equal(t, "2", field(t, out, "version"))
	assert.Equal(t, "$4.50", field(t, out, "subtotal"))

	_, err := run(t, server, hostToken, "item", "add", receiptID, "--name", "Scone", "--price", "3", "--expect-version", "1")
	assert.ErrorIs(t, err, apperr.ErrVersionConflict)

	mustRun(t, server, guestToken, "receipt", "join", field(t, out, "join code"))
	_, err = run(t, server, guestToken, "item", "remove", receiptID, latte)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	out = mustRun(t, server, hostToken, "item", "remove", receiptID, latte)
	assert.Equal(t, "$0.00", field(t, out, "total"))

	out = mustRun(t, server, hostToken, "guest", "add", receiptID, "--name", "Sam", "--phone", "555-0100")
	assert.Equal(t, "Sam", field(t, out, "name"))

	_, err = run(t, server, hostToken, "receipt", "create", "--item", "Broken")
	assert.ErrorContains(t, err, "NAME=PRICE")
}

func TestProfileCommands(t *testing.T) {
	server := startServer(t)
	token := registerUser(t, server, "Alice", "--venmo", "alice")

	out := mustRun(t, server, token, "whoami")
	assert.Equal(t, "alice@example.com", field(t, out, "email"))

	out = mustRun(t, server, token, "profile", "payments", "--cashapp", "$alice")
	assert.Equal(t, "$alice", field(t, out, "cashapp"))
	assert.NotContains(t, out, "venmo:")

	out = mustRun(t, server, token, "profile", "update", "--name", "Alice B", "--phone", "555-0101")
	assert.Equal(t, "Alice B", field(t, out, "name"))

	out = mustRun(t, server, "", "login", "--email", "alice@example.com", "--password", "password123")
	assert.NotEmpty(t, field(t, out, "token"))

	_, err := run(t, server, "", "whoami")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseItems(t *testing.T) {
	items, err := parseItems([]string{"Pizza=10", " Soda = 2.50 ", "a=b=3"})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Soda", items[1].Name)
	assert.Equal(t, "2.50", items[1].Price)
	assert.Equal(t, "a=b", items[2].Name)

	for _, bad := range []string{"Pizza", "=10", "Pizza="} {
		_, err := parseItems([]string{bad})
		assert.Error(t, err, bad)
	}
}
