package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/apiclient"
	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/dmitrijs2005/paychain/internal/client/toolkit"
)

// QR prints the receive QR payload and its payment link.
func (a *App) QR(ctx context.Context) error {
	qr, err := a.api.GetReceiveQRCode(ctx)
	if err != nil {
		return a.report(ctx, "QR code", err)
	}
	a.printf("QR payload: %s\n", qr.QRCode)
	if qr.PaymentLink != "" {
		a.printf("Payment link: %s\n", qr.PaymentLink)
	}
	return nil
}

// Link prompts for an amount and a description and prints a payment link.
func (a *App) Link(ctx context.Context) error {
	amount, err := a.readAmount()
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}

	link, err := a.api.GeneratePaymentLink(ctx, amount, desc)
	if err != nil {
		return a.report(ctx, "Payment link", err)
	}
	a.println(link.Link)
	if link.ExpiresAt != nil {
		a.printf("expires %s\n", link.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// Scheduled lists scheduled payments, soonest first. "scheduled delete <id>"
// removes one.
func (a *App) Scheduled(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if args[0] != "delete" || len(args) != 2 {
			a.println("Usage: scheduled [delete <id>]")
			return errUsage
		}
		if err := a.api.DeleteScheduledPayment(ctx, models.ID(args[1])); err != nil {
			return a.report(ctx, "Delete", err)
		}
		a.printf("Scheduled payment %s deleted.\n", args[1])
		return nil
	}

	list, err := a.api.ListScheduledPayments(ctx)
	if err != nil {
		return a.report(ctx, "Scheduled payments", err)
	}
	if len(list) == 0 {
		a.println("No scheduled payments.")
		return nil
	}

	sorter := toolkit.NewSorter[models.ScheduledPayment](&toolkit.SortState{Field: "next_payment_date", Direction: toolkit.Asc}, nil)
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTO\tAMOUNT\tFREQUENCY\tNEXT\tMADE\tACTIVE")
	for _, p := range sorter.Apply(list) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%t\n",
			p.ID, p.RecipientPrincipal, p.Amount.StringFixed(2), p.Frequency, p.NextPaymentDate, p.PaymentsMade, p.IsActive)
	}
	return w.Flush()
}

// Receipts lists NFT receipts, newest first, falling back to the offline
// copy when the backend is unreachable. "receipts new <transaction id>"
// mints one.
func (a *App) Receipts(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if args[0] != "new" || len(args) != 2 {
			a.println("Usage: receipts [new <transaction id>]")
			return errUsage
		}
		r, err := a.api.GenerateReceipt(ctx, models.ID(args[1]))
		if err != nil {
			return a.report(ctx, "Receipt", err)
		}
		a.printf("Receipt %s minted: %s\n", r.ID, r.ImageURL)
		return nil
	}

	list, err := a.api.ListReceipts(ctx)
	switch {
	case err == nil:
		if serr := a.local.SaveReceipts(ctx, list); serr != nil {
			a.log.Warn(ctx, "failed to cache receipts", "error", serr)
		}
	case errors.Is(err, apiclient.ErrUnavailable):
		cached, cerr := a.local.CachedReceipts(ctx)
		if cerr != nil || cached == nil {
			return a.report(ctx, "Receipts", err)
		}
		a.println("(offline: showing cached receipts)")
		list = cached
	default:
		return a.report(ctx, "Receipts", err)
	}

	if len(list) == 0 {
		a.println("No receipts.")
		return nil
	}
	sorter := toolkit.NewSorter[models.NFTReceipt](&toolkit.SortState{Field: "created_at", Direction: toolkit.Desc}, nil)
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRANSACTION\tCREATED\tIMAGE")
	for _, r := range sorter.Apply(list) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.TransactionID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.ImageURL)
	}
	return w.Flush()
}

// Stats prints the transaction summary and spending by category for a
// period (week, month or year; month when omitted).
func (a *App) Stats(ctx context.Context, args []string) error {
	period := models.PeriodMonth
	if len(args) > 0 {
		period = models.Period(args[0])
	}

	sum, err := a.api.GetTransactionSummary(ctx, period)
	if err != nil {
		return a.report(ctx, "Analytics", err)
	}
	cats, err := a.api.GetSpendingByCategory(ctx, period)
	if err != nil {
		return a.report(ctx, "Analytics", err)
	}

	a.printf("Period: %s\n", period)
	a.printf("sent %s, received %s, %d transactions, average %s\n",
		sum.TotalSent.StringFixed(2), sum.TotalReceived.StringFixed(2), sum.TransactionCount, sum.AverageAmount.StringFixed(2))

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tAMOUNT\tCOUNT")
	for _, c := range cats {
		fmt.Fprintf(w, "%s\t%s\t%d\n", c.Category, c.Amount.StringFixed(2), c.Count)
	}
	return w.Flush()
}
