// Package cli implements tabctl, a command-line client for a tabshare
// server.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabshare/internal/settlement"
	"github.com/mmynk/tabshare/pkg/client"
	"github.com/mmynk/tabshare/pkg/logging"
)

const (
	defaultServer = "http://localhost:8080"
	envServer     = "TABCTL_SERVER"
	envToken      = "TABCTL_TOKEN"
)

// app carries the global flags to subcommands.
type app struct {
	server      string
	token       string
	logLevel    string
	openSchemes []string

	logger *slog.Logger
	client *client.Client
}

// NewRootCmd builds the tabctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tabctl",
		Short:         "Split receipts with a tabshare server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(a.logLevel)
			if err != nil {
				return err
			}
			a.logger = logging.New(cmd.ErrOrStderr(), level)
			a.client = client.New(a.server,
				client.WithToken(a.token),
				client.WithLogger(a.logger),
			)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.server, "server", envOr(envServer, defaultServer), "server base URL (env "+envServer+")")
	flags.StringVar(&a.token, "token", os.Getenv(envToken), "bearer token from register or login (env "+envToken+")")
	flags.StringVar(&a.logLevel, "log-level", "warn", "debug, info, warn or error")
	flags.StringSliceVar(&a.openSchemes, "open-scheme", nil, "extra URI schemes checkout may open besides https, e.g. venmo")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.whoamiCmd(),
		a.receiptCmd(),
		a.itemCmd(),
		a.guestCmd(),
		a.checkoutCmd(),
		a.profileCmd(),
	)
	return root
}

// Execute runs tabctl with os.Args and reports errors on stderr.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (a *app) opener(w io.Writer) settlement.Opener {
	return settlement.NewSchemeOpener(w, a.openSchemes...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
