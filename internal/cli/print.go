package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tabshare/internal/joincode"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/money"
	"github.com/mmynk/tabshare/pkg/api"
)

func printUser(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "user: %s\n", u.ID)
	fmt.Fprintf(w, "name: %s\n", u.DisplayName)
	if u.Email != "" {
		fmt.Fprintf(w, "email: %s\n", u.Email)
	}
	if u.Phone != "" {
		fmt.Fprintf(w, "phone: %s\n", u.Phone)
	}
	for _, m := range models.PaymentMethods {
		if h := u.Payments.For(m); h != "" {
			fmt.Fprintf(w, "%s: %s\n", m, h)
		}
	}
}

func printReceipt(w io.Writer, r *models.Receipt, names map[string]string) {
	fmt.Fprintf(w, "id: %s\n", r.ID)
	if r.Name != "" {
		fmt.Fprintf(w, "name: %s\n", r.Name)
	}
	if r.Vendor != "" {
		fmt.Fprintf(w, "vendor: %s\n", r.Vendor)
	}
	fmt.Fprintf(w, "join code: %s\n", joincode.Display(r.JoinCode))
	fmt.Fprintf(w, "host: %s\n", nameOr(names, r.HostID))
	fmt.Fprintf(w, "version: %d\n", r.Version)

	if len(r.Items) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ITEM\tNAME\tPRICE\tSTATUS")
		for _, item := range r.Items {
			status := "open"
			if item.Paid {
				status = "paid"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.ID, item.Name, money.FormatUSD(item.Price), status)
		}
		tw.Flush()
	}

	fmt.Fprintf(w, "subtotal: %s\n", money.FormatUSD(r.Subtotal))
	fmt.Fprintf(w, "tax: %s\n", money.FormatUSD(r.Tax))
	fmt.Fprintf(w, "total: %s\n", money.FormatUSD(r.Total))
}

func printShares(w io.Writer, details *api.GetReceiptResponse) {
	if len(details.Shares) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PERSON\tITEMS\tTOTAL")
		for _, s := range details.Shares {
			itemNames := make([]string, len(s.Items))
			for i, it := range s.Items {
				itemNames[i] = it.Name
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.DisplayName, strings.Join(itemNames, ", "), usd(s.Total))
		}
		tw.Flush()
	}
	fmt.Fprintf(w, "received: %s\n", usd(details.Received))
	fmt.Fprintf(w, "outstanding: %s\n", usd(details.Outstanding))
	fmt.Fprintf(w, "unclaimed: %s\n", usd(details.Unclaimed))
}

func printSummaries(w io.Writer, title string, list []api.ReceiptSummary) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(list))
	if len(list) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range list {
		label := s.Receipt.Name
		if label == "" {
			label = s.Receipt.Vendor
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\thost %s\n",
			s.Receipt.ID, joincode.Display(s.Receipt.JoinCode), label, usd(s.Receipt.Total), s.HostName)
	}
	tw.Flush()
}

// usd formats a wire amount for display, falling back to the raw string.
func usd(amount string) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	return money.FormatUSD(d)
}

func nameOr(names map[string]string, id string) string {
	if n := names[id]; n != "" {
		return n
	}
	return id
}
