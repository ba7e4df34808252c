package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/apiclient"
	"github.com/dmitrijs2005/paychain/internal/client/models"
)

// Register prompts for an email, a password and a principal ID, creates the
// account and signs in with it.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	principal, err := getSimpleText(a.reader, "Enter principal ID", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.session.Register(ctx, email, string(password), principal); err != nil {
		return a.report(ctx, "Registration", err)
	}
	a.println("Success!")
	a.afterLogin(ctx)
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		return a.report(ctx, "Login", err)
	}
	a.println("Login successful")
	a.afterLogin(ctx)
	return nil
}

func (a *App) afterLogin(ctx context.Context) {
	if err := a.notices.Refresh(ctx); err != nil {
		a.log.Warn(ctx, "notification refresh failed", "error", err)
	}
}

// signOut ends the session and drops everything shown for it. The
// unauthorized handler runs it too, possibly off the REPL goroutine.
func (a *App) signOut(ctx context.Context) {
	a.session.Logout(ctx)
	a.notices.Reset()
	a.resetView()
}

// Logout drops the credential and all cached data.
func (a *App) Logout(ctx context.Context) error {
	a.signOut(ctx)
	a.println("Logged out.")
	return nil
}

// Whoami prints the signed-in profile, the credential expiry when the token
// carries one, and the last successful sync.
func (a *App) Whoami(ctx context.Context) error {
	u := a.session.Snapshot().User
	if u == nil {
		a.println("Not logged in.")
		return nil
	}

	a.printf("%s <%s>\n", displayName(u), u.Email)
	a.printf("principal: %s\n", u.PrincipalID)
	if u.IsVerified != nil && *u.IsVerified {
		a.println("verified: yes")
	}
	if u.Balance != nil {
		a.printf("balance: %s\n", u.Balance.StringFixed(2))
	}

	if tok, err := a.local.Token(ctx); err == nil && tok != "" {
		if exp, ok := apiclient.TokenExpiry(tok); ok {
			a.printf("session expires: %s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Second))
		}
	}
	if at, ok, err := a.local.LastSync(ctx); err == nil && ok {
		a.printf("last sync: %s\n", at.Local().Format(time.RFC1123))
	}
	return nil
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.PrincipalID
}

// Profile updates the display name.
func (a *App) Profile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "New display name", a.out)
	if err != nil {
		return err
	}
	if name == "" {
		a.println("Nothing to update.")
		return nil
	}

	u, err := a.session.UpdateUser(ctx, models.UserUpdate{Name: &name})
	if err != nil {
		return a.report(ctx, "Profile update", err)
	}
	a.printf("Profile updated: %s\n", displayName(u))
	return nil
}

// Balance refreshes and prints the balance.
func (a *App) Balance(ctx context.Context) error {
	if err := a.session.FetchBalance(ctx); err != nil {
		return a.report(ctx, "Balance", err)
	}
	if u := a.session.Snapshot().User; u != nil && u.Balance != nil {
		a.printf("Balance: %s\n", u.Balance.StringFixed(2))
	}
	return nil
}
