package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabshare/internal/models"
)

func (a *app) registerCmd() *cobra.Command {
	var (
		email, password, name, phone string
		handles                      models.PaymentHandles
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Register(cmd.Context(), email, password, name, phone, handles)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), user)
			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", a.client.Token())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	addHandleFlags(cmd, &handles)
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user: %s\n", user.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", a.client.Token())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
}

func addHandleFlags(cmd *cobra.Command, h *models.PaymentHandles) {
	cmd.Flags().StringVar(&h.Venmo, "venmo", "", "Venmo username")
	cmd.Flags().StringVar(&h.CashApp, "cashapp", "", "Cash App $cashtag")
	cmd.Flags().StringVar(&h.PayPalEmail, "paypal", "", "PayPal email")
}
