package cli

import (
	"context"
	"fmt"
)

// getStatus renders the prompt decoration: the signed-in principal, the
// unread counter and the connectivity mode.
func (a *App) getStatus() string {
	s := ""
	if u := a.session.Snapshot().User; u != nil {
		s = displayName(u) + " "
	}
	if a.isLoggedIn() {
		if n := a.notices.Snapshot().UnreadCount; n > 0 {
			s += fmt.Sprintf("✉%d ", n)
		}
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints the greeting and runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to PayChain CLI (type 'help' for commands)")
	if !a.isLoggedIn() {
		a.println("You are not logged in. Use 'login' or 'register'.")
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
