package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/money"
	"github.com/mmynk/tabshare/internal/settlement"
)

func (a *app) itemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Add or remove receipt items (host only)",
	}
	cmd.AddCommand(a.itemAddCmd(), a.itemRemoveCmd())
	return cmd
}

func (a *app) itemAddCmd() *cobra.Command {
	var (
		name, price string
		version     int64
	)
	cmd := &cobra.Command{
		Use:   "add RECEIPT_ID",
		Short: "Add an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, item, err := a.client.AddItem(cmd.Context(), args[0], name, price, version)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "item: %s\n", item.ID)
			printReceipt(cmd.OutOrStdout(), receipt, nil)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&price, "price", "", "pre-tax price, e.g. 12.50")
	cmd.Flags().Int64Var(&version, "expect-version", 0, "fail if the receipt changed since this version (0 skips the check)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("price")
	return cmd
}

func (a *app) itemRemoveCmd() *cobra.Command {
	var version int64
	cmd := &cobra.Command{
		Use:   "remove RECEIPT_ID ITEM_ID",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, err := a.client.RemoveItem(cmd.Context(), args[0], args[1], version)
			if err != nil {
				return err
			}
			printReceipt(cmd.OutOrStdout(), receipt, nil)
			return nil
		},
	}
	cmd.Flags().Int64Var(&version, "expect-version", 0, "fail if the receipt changed since this version (0 skips the check)")
	return cmd
}

func (a *app) guestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Manage receipt guests (host only)",
	}

	var userID, name, phone string
	add := &cobra.Command{
		Use:   "add RECEIPT_ID",
		Short: "Add a registered user or a placeholder guest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guest, err := a.client.AddGuest(cmd.Context(), args[0], userID, name, phone)
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), guest)
			return nil
		},
	}
	add.Flags().StringVar(&userID, "user", "", "ID of a registered user")
	add.Flags().StringVar(&name, "name", "", "display name for a guest without an account")
	add.Flags().StringVar(&phone, "phone", "", "phone number for a guest without an account")
	add.MarkFlagsMutuallyExclusive("user", "name")
	add.MarkFlagsOneRequired("user", "name")

	cmd.AddCommand(add)
	return cmd
}

func (a *app) checkoutCmd() *cobra.Command {
	var (
		itemIDs []string
		method  string
		quote   bool
	)
	cmd := &cobra.Command{
		Use:   "checkout RECEIPT_ID",
		Short: "Settle items: hosts mark them paid, guests get a payment link",
		Long: `Settle the selected items on a receipt.

For the host the items are marked paid. For a guest the amount due
(items plus tax and tip) is computed and a payment link for the host's
account is opened, which tabctl does by printing it when its scheme is
allowed (https always, others via --open-scheme).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var pm models.PaymentMethod
			if method != "" {
				var err error
				if pm, err = models.ParsePaymentMethod(method); err != nil {
					return err
				}
			}

			if quote {
				q, err := a.client.QuotePayment(cmd.Context(), args[0], itemIDs, pm)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "subtotal: %s\n", usd(q.Subtotal))
				fmt.Fprintf(out, "amount: %s\n", usd(q.Amount))
				fmt.Fprintf(out, "link: %s\n", q.Link)
				return nil
			}

			outcome, err := a.client.Checkout(cmd.Context(), args[0], itemIDs, pm, a.opener(out))
			if outcome != nil && outcome.Link != "" && err != nil {
				fmt.Fprintf(out, "link: %s\n", outcome.Link)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "role: %s\n", outcome.Role)
			fmt.Fprintf(out, "items: %s\n", strings.Join(outcome.ItemIDs, ","))
			fmt.Fprintf(out, "subtotal: %s\n", money.FormatUSD(outcome.Subtotal))
			if outcome.Role == settlement.RoleGuest {
				fmt.Fprintf(out, "amount: %s via %s\n", money.FormatUSD(outcome.Amount), outcome.Method)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&itemIDs, "items", nil, "comma-separated item IDs")
	cmd.Flags().StringVar(&method, "method", "", "venmo, cashapp or paypal (guests only)")
	cmd.Flags().BoolVar(&quote, "quote", false, "only show what a guest would pay")
	cmd.MarkFlagRequired("items")
	return cmd
}
