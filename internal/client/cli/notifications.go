package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/dmitrijs2005/paychain/internal/client/toolkit"
)

// Notifications reloads and prints the notification list, newest first.
func (a *App) Notifications(ctx context.Context) error {
	if err := a.notices.Refresh(ctx); err != nil {
		return a.report(ctx, "Notifications", err)
	}
	snap := a.notices.Snapshot()
	if len(snap.Notifications) == 0 {
		a.println("No notifications.")
		return nil
	}

	sorter := toolkit.NewSorter[models.Notification](&toolkit.SortState{Field: "timestamp", Direction: toolkit.Desc}, nil)
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tTYPE\tTITLE\tMESSAGE")
	for _, n := range sorter.Apply(snap.Notifications) {
		mark := "*"
		if n.Read {
			mark = " "
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, n.ID, n.Type, n.Title, n.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	a.printf("%d unread\n", snap.UnreadCount)
	return nil
}

// Read marks one notification read.
func (a *App) Read(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: read <id>")
		return errUsage
	}
	if err := a.notices.MarkAsRead(ctx, models.ID(args[0])); err != nil {
		return a.report(ctx, "Mark as read", err)
	}
	a.printf("%d unread\n", a.notices.Snapshot().UnreadCount)
	return nil
}

func (a *App) ReadAll(ctx context.Context) error {
	if err := a.notices.MarkAllAsRead(ctx); err != nil {
		return a.report(ctx, "Mark all as read", err)
	}
	a.println("All notifications marked as read.")
	return nil
}
