package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabshare/pkg/api"
	"github.com/mmynk/tabshare/pkg/client"
)

func (a *app) receiptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Create, join, and inspect receipts",
	}
	cmd.AddCommand(a.receiptCreateCmd(), a.receiptShowCmd(), a.receiptJoinCmd(), a.receiptListCmd())
	return cmd
}

func (a *app) receiptCreateCmd() *cobra.Command {
	var (
		name, vendor string
		items        []string
	)
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a receipt you host",
		Example: `  tabctl receipt create --name "Friday dinner" --item "Pizza=18.50" --item "Salad=9"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := parseItems(items)
			if err != nil {
				return err
			}
			receipt, err := a.client.CreateReceipt(cmd.Context(), name, vendor, inputs)
			if err != nil {
				return err
			}
			printReceipt(cmd.OutOrStdout(), receipt, nil)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "receipt label")
	cmd.Flags().StringVar(&vendor, "vendor", "", "where the bill came from")
	cmd.Flags().StringArrayVar(&items, "item", nil, "item as NAME=PRICE, repeatable")
	return cmd
}

func (a *app) receiptShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show RECEIPT_ID",
		Short: "Show a receipt with each person's share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := a.client.ReceiptDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			receipt, err := client.ReceiptFromAPI(details.Receipt)
			if err != nil {
				return err
			}
			printReceipt(cmd.OutOrStdout(), receipt, details.Names)
			printShares(cmd.OutOrStdout(), details)
			return nil
		},
	}
}

func (a *app) receiptJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join CODE",
		Short: "Join a receipt as a guest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, err := a.client.JoinReceipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReceipt(cmd.OutOrStdout(), receipt, nil)
			return nil
		},
	}
}

func (a *app) receiptListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List receipts you host and receipts you joined",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := a.client.ListReceipts(cmd.Context())
			if err != nil {
				return err
			}
			printSummaries(cmd.OutOrStdout(), "hosted", lists.Hosted)
			printSummaries(cmd.OutOrStdout(), "requested", lists.Requested)
			return nil
		},
	}
}

// parseItems reads NAME=PRICE pairs. The last '=' separates the price so
// names may contain '='.
func parseItems(raw []string) ([]api.ItemInput, error) {
	items := make([]api.ItemInput, 0, len(raw))
	for _, s := range raw {
		i := strings.LastIndex(s, "=")
		if i <= 0 || i == len(s)-1 {
			return nil, fmt.Errorf("invalid item %q, want NAME=PRICE", s)
		}
		items = append(items, api.ItemInput{
			Name:  strings.TrimSpace(s[:i]),
			Price: strings.TrimSpace(s[i+1:]),
		})
	}
	return items, nil
}
