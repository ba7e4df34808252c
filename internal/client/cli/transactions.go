package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/dmitrijs2005/paychain/internal/client/toolkit"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var errUsage = errors.New("usage")

// txView is the search, filter, sort and page state of the transaction list.
type txView struct {
	search  *toolkit.Search[models.Transaction]
	filters *toolkit.Filters[models.Transaction]
	sorter  *toolkit.Sorter[models.Transaction]
	pages   *toolkit.Paginator
}

func newTxView(delay time.Duration) *txView {
	v := &txView{
		pages: toolkit.NewPaginator(0, toolkit.DefaultPageSize, nil),
	}
	backToFirst := func() { v.pages.HandlePageSizeChange(v.pages.PageSize()) }

	v.search = toolkit.NewSearch[models.Transaction](toolkit.SearchConfig{
		Fields:    []string{"description", "toAddress", "fromAddress", "id"},
		MinLength: 2,
		MaxLength: 64,
		Delay:     delay,
		OnChange:  func(string) { backToFirst() },
	})
	v.filters = toolkit.NewFilters[models.Transaction](toolkit.FilterConfig{
		Delay:    delay,
		OnChange: func(map[string]any) { backToFirst() },
		Fields: []toolkit.FilterField{
			{
				Field: "status", Label: "Status", Kind: toolkit.FilterSelect,
				Options: []toolkit.FilterOption{
					{Label: "Pending", Value: string(models.TransactionPending)},
					{Label: "Completed", Value: string(models.TransactionCompleted)},
					{Label: "Failed", Value: string(models.TransactionFailed)},
				},
			},
			{
				Field: "type", Label: "Type", Kind: toolkit.FilterSelect,
				Options: []toolkit.FilterOption{
					{Label: "Payment", Value: string(models.TransactionPayment)},
					{Label: "Deposit", Value: string(models.TransactionDeposit)},
					{Label: "Withdrawal", Value: string(models.TransactionWithdrawal)},
				},
			},
			{
				Field: "amount", Label: "Min amount", Kind: toolkit.FilterNumber,
				Validate:     blankOr(validAmount),
				ErrorMessage: "Min amount must be a non-negative number",
				Match: func(field, filter any) bool {
					got, ok := field.(decimal.Decimal)
					floor, err := decimal.NewFromString(fmt.Sprint(filter))
					return ok && err == nil && got.GreaterThanOrEqual(floor)
				},
			},
			{
				Field: "timestamp", Label: "Since", Kind: toolkit.FilterDate,
				Validate:     blankOr(validDate),
				ErrorMessage: "Since must be a date like 2024-01-31",
				Match: func(field, filter any) bool {
					got, ok := field.(time.Time)
					since, err := time.Parse(dateLayout, fmt.Sprint(filter))
					return ok && err == nil && !got.Before(since)
				},
			},
		},
	})
	v.sorter = toolkit.NewSorter[models.Transaction](&toolkit.SortState{Field: "timestamp", Direction: toolkit.Desc}, func(*toolkit.SortState) { backToFirst() })
	return v
}

func blankOr(check func(string) bool) func(any) bool {
	return func(v any) bool {
		if v == nil {
			return true
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		return s == "" || check(s)
	}
}

func validAmount(s string) bool {
	d, err := decimal.NewFromString(s)
	return err == nil && !d.IsNegative()
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// view runs the search, filter, sort and paginate pipeline over all. It
// returns the visible page and the number of matching items.
func (v *txView) view(all []models.Transaction) ([]models.Transaction, int) {
	items := v.search.Apply(all)
	items = v.filters.Apply(items)
	items = v.sorter.Apply(items)
	v.pages.SetTotalItems(len(items))
	return toolkit.Paginate(v.pages, items), len(items)
}

// Transactions prints the current page of the transaction list.
func (a *App) Transactions(ctx context.Context) error {
	st := a.session.Snapshot()
	page, matched := a.view().view(st.Transactions)

	if a.view().search.IsSearching() {
		a.printf("search: %q\n", a.view().search.Term())
	}
	for _, f := range a.view().filters.Active() {
		a.printf("filter: %s = %v\n", f.Field, f.Value)
	}
	if st.Offline {
		a.println("(offline: showing cached transactions)")
	}
	if matched == 0 {
		a.println("No transactions.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tDATE %s\tAMOUNT %s\tTO\tSTATUS %s\tTYPE %s\tDESCRIPTION\n",
		a.view().sorter.Icon("timestamp"), a.view().sorter.Icon("amount"),
		a.view().sorter.Icon("status"), a.view().sorter.Icon("type"))
	for _, t := range page {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Timestamp.Local().Format("2006-01-02 15:04"), t.Amount.StringFixed(2),
			t.ToAddress, t.Status, t.Type, t.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	a.printf("page %d of %d (%d matching) %s\n", a.view().pages.Page(), a.view().pages.TotalPages(), matched, pageLinks(a.view().pages))
	return nil
}

func pageLinks(p *toolkit.Paginator) string {
	return joinLinks(p.Range(), p.Page())
}

// joinLinks renders page links with the current page in brackets.
func joinLinks(links []toolkit.PageLink, current int) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		if int(l) == current {
			parts = append(parts, "["+l.String()+"]")
			continue
		}
		parts = append(parts, l.String())
	}
	return strings.Join(parts, " ")
}

// Search sets the free-text search term; no arguments clears it.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.view().search.Clear()
		return a.Transactions(ctx)
	}
	a.view().search.Handle(strings.Join(args, " "))
	a.view().search.Flush()
	if !a.view().search.IsSearching() {
		a.println(a.view().search.Placeholder())
	}
	return a.Transactions(ctx)
}

// Filter handles "filter <field> <value>", "filter clear [field]" and a bare
// "filter" listing the available fields.
func (a *App) Filter(ctx context.Context, args []string) error {
	switch {
	case len(args) == 0:
		a.println("Filters: status <pending|completed|failed>, type <payment|deposit|withdrawal>, amount <min>, timestamp <since YYYY-MM-DD>")
		a.println("         filter clear [field]")
		return nil
	case args[0] == "clear" && len(args) == 1:
		a.view().filters.Reset()
		return a.Transactions(ctx)
	case args[0] == "clear":
		if err := a.view().filters.Clear(args[1]); err != nil {
			return a.report(ctx, "Filter", err)
		}
		a.view().filters.Flush()
		return a.Transactions(ctx)
	case len(args) < 2:
		a.println("Usage: filter <field> <value>")
		return errUsage
	}

	field, value := args[0], strings.Join(args[1:], " ")
	if err := a.view().filters.Handle(field, value); err != nil {
		return a.report(ctx, "Filter", err)
	}
	a.view().filters.Flush()
	if msg, bad := a.view().filters.Errors()[field]; bad {
		a.println(msg)
		_ = a.view().filters.Clear(field)
		a.view().filters.Flush()
		return errUsage
	}
	return a.Transactions(ctx)
}

// Sort toggles the sort on a column; "sort clear" removes it.
func (a *App) Sort(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: sort <timestamp|amount|status|type|toAddress> | sort clear")
		return errUsage
	}
	if args[0] == "clear" {
		a.view().sorter.Clear()
	} else {
		a.view().sorter.Sort(args[0])
	}
	return a.Transactions(ctx)
}

// Page moves through the list: "page <n|next|prev|first|last>" or
// "page size <n>".
func (a *App) Page(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: page <n|next|prev|first|last> | page size <n>")
		return errUsage
	}

	v := a.view()
	v.view(a.session.Snapshot().Transactions)
	p := v.pages
	ok := true
	switch args[0] {
	case "next", "n":
		ok = p.Next()
	case "prev", "p":
		ok = p.Previous()
	case "first":
		ok = p.First()
	case "last":
		ok = p.Last()
	case "size":
		n, err := atoiArg(args, 1)
		if err != nil || n <= 0 {
			a.println("Usage: page size <n>")
			return errUsage
		}
		p.HandlePageSizeChange(n)
	default:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			a.println("Usage: page <n|next|prev|first|last>")
			return errUsage
		}
		ok = p.HandlePageChange(n)
	}
	if !ok {
		a.println("No such page.")
	}
	return a.Transactions(ctx)
}

func atoiArg(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, errUsage
	}
	return strconv.Atoi(args[i])
}

// Refresh reloads the transaction list and the balance.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.session.FetchTransactions(ctx); err != nil {
		a.report(ctx, "Refresh", err)
		if !a.session.Snapshot().Offline {
			return err
		}
	}
	if err := a.session.FetchBalance(ctx); err != nil {
		a.log.Warn(ctx, "balance refresh failed", "error", err)
	}
	return a.Transactions(ctx)
}

// Send prompts for a recipient, an amount and a description and sends the
// payment.
func (a *App) Send(ctx context.Context) error {
	to, err := getSimpleText(a.reader, "Recipient principal ID", a.out)
	if err != nil {
		return err
	}
	if to == "" {
		a.println("Recipient is required.")
		return errUsage
	}
	amount, err := a.readAmount()
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	ok, err := a.confirm(fmt.Sprintf("Send %s to %s?", amount.StringFixed(2), to))
	if err != nil || !ok {
		return err
	}

	tx, err := a.session.SendPayment(ctx, to, amount, desc)
	if err != nil {
		return a.report(ctx, "Payment", err)
	}
	a.printf("Payment %s sent (%s).\n", tx.ID, tx.Status)
	if u := a.session.Snapshot().User; u != nil && u.Balance != nil {
		a.printf("Balance: %s\n", u.Balance.StringFixed(2))
	}
	return nil
}
