package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmynk/tabshare/internal/models"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit profiles",
	}

	show := &cobra.Command{
		Use:   "show [USER_ID]",
		Short: "Show a profile, yours by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				user *models.User
				err  error
			)
			if len(args) == 1 {
				user, err = a.client.GetUserProfile(cmd.Context(), args[0])
			} else {
				user, err = a.client.CurrentUser(cmd.Context())
			}
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}

	var name, phone string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your display name and phone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.UpdateProfile(cmd.Context(), name, phone)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "display name")
	update.Flags().StringVar(&phone, "phone", "", "phone number")
	update.MarkFlagRequired("name")

	var handles models.PaymentHandles
	payments := &cobra.Command{
		Use:   "payments",
		Short: "Replace your payment handles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.UpdatePaymentHandles(cmd.Context(), handles)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}
	addHandleFlags(payments, &handles)

	cmd.AddCommand(show, update, payments)
	return cmd
}
