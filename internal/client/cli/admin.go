package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/dmitrijs2005/paychain/internal/client/toolkit"
)

const adminUsage = `Usage:
  admin stats
  admin users [page] [key=value ...]
  admin block <id> | admin unblock <id>
  admin errors [page] [key=value ...]
  admin resolve <id>`

// Admin runs the review commands. The backend decides who may use them.
func (a *App) Admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println(adminUsage)
		return errUsage
	}

	switch args[0] {
	case "stats":
		return a.adminStats(ctx)
	case "users":
		return a.adminUsers(ctx, listQuery(args[1:]))
	case "errors":
		return a.adminErrors(ctx, listQuery(args[1:]))
	case "block", "unblock":
		if len(args) != 2 {
			a.println(adminUsage)
			return errUsage
		}
		return a.adminBlock(ctx, models.ID(args[1]), args[0] == "block")
	case "resolve":
		if len(args) != 2 {
			a.println(adminUsage)
			return errUsage
		}
		e, err := a.api.ResolveError(ctx, models.ID(args[1]))
		if err != nil {
			return a.report(ctx, "Resolve", err)
		}
		a.printf("Error %s is now %s.\n", e.ID, e.Status)
		return nil
	default:
		a.println(adminUsage)
		return errUsage
	}
}

// listQuery reads an optional leading page number followed by key=value
// filters.
func listQuery(args []string) models.ListQuery {
	lq := models.ListQuery{Page: 1, PageSize: toolkit.DefaultPageSize}
	for i, arg := range args {
		if i == 0 {
			if n, err := strconv.Atoi(arg); err == nil {
				lq.Page = n
				continue
			}
		}
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			continue
		}
		if lq.Filters == nil {
			lq.Filters = map[string]string{}
		}
		lq.Filters[k] = v
	}
	return lq
}

func (a *App) adminStats(ctx context.Context) error {
	s, err := a.api.GetSystemStats(ctx)
	if err != nil {
		return a.report(ctx, "System stats", err)
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "transactions\t%d\n", s.TotalTransactions)
	fmt.Fprintf(w, "volume\t%s\n", s.TotalVolume.StringFixed(2))
	fmt.Fprintf(w, "active users\t%d\n", s.ActiveUsers)
	fmt.Fprintf(w, "blocked users\t%d\n", s.BlockedUsers)
	fmt.Fprintf(w, "error rate\t%.2f%%\n", s.ErrorRate)
	fmt.Fprintf(w, "avg response\t%.0f ms\n", s.AverageResponseTime)
	fmt.Fprintf(w, "KYC pending/rejected\t%d/%d\n", s.PendingKYC, s.RejectedKYC)
	return w.Flush()
}

func (a *App) adminUsers(ctx context.Context, lq models.ListQuery) error {
	page, err := a.api.ListSecurityUsers(ctx, lq)
	if err != nil {
		return a.report(ctx, "Users", err)
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRINCIPAL\tKYC\tRISK\tBLOCKED\tLAST ACTIVITY")
	for _, u := range page.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%t\t%s\n", u.ID, u.Principal, u.KYCStatus, u.RiskScore, u.IsBlocked, u.LastActivity.Local().Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	a.println(serverPageFooter(page.Page, page.PageSize, page.Total))
	return nil
}

func (a *App) adminErrors(ctx context.Context, lq models.ListQuery) error {
	page, err := a.api.ListErrors(ctx, lq)
	if err != nil {
		return a.report(ctx, "Errors", err)
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tSEVERITY\tSTATUS\tCATEGORY\tMESSAGE")
	for _, e := range page.Data {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", e.ID, e.Code, e.Severity, e.Status, e.Category, e.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	a.println(serverPageFooter(page.Page, page.PageSize, page.Total))
	return nil
}

// serverPageFooter renders the page links of a server-side listing with a
// fixed-width window around the current page.
func serverPageFooter(page, size, total int) string {
	links := joinLinks(toolkit.SiblingRange(total, size, 1, page), page)
	return fmt.Sprintf("page %d of %d (%d total) %s", page, toolkit.TotalPages(total, size), total, links)
}

func (a *App) adminBlock(ctx context.Context, id models.ID, block bool) error {
	var (
		u   *models.UserSecurity
		err error
	)
	if block {
		u, err = a.api.BlockUser(ctx, id)
	} else {
		u, err = a.api.UnblockUser(ctx, id)
	}
	if err != nil {
		return a.report(ctx, "User update", err)
	}
	a.printf("User %s blocked: %t\n", u.ID, u.IsBlocked)
	return nil
}
