package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs. The real App
// satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	Balance(ctx context.Context) error
	Transactions(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Sort(ctx context.Context, args []string) error
	Page(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Send(ctx context.Context) error
	Notifications(ctx context.Context) error
	Read(ctx context.Context, args []string) error
	ReadAll(ctx context.Context) error
	Scheduled(ctx context.Context, args []string) error
	Receipts(ctx context.Context, args []string) error
	QR(ctx context.Context) error
	Link(ctx context.Context) error
	Stats(ctx context.Context, args []string) error
	Admin(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: whoami, profile, balance, (tx) transactions, search, filter, sort, page, refresh, send, " +
		"notifications, read, readall, scheduled, receipts, qr, link, stats, admin, logout, exit"
)

// runREPL reads commands line by line and dispatches them to a. The loop
// exits on EOF, on "exit" or "quit", or when ctx is done. Commands read
// their own prompts from the same reader.
//
// Commands that need a session are refused while logged out. Errors from
// handlers are ignored here; handlers print their own messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pc %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "register":
			_ = a.Register(ctx)
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			if isKnown(cmd) {
				printlnFn("Please log in first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.Whoami(ctx)
		case "profile":
			_ = a.Profile(ctx)
		case "balance":
			_ = a.Balance(ctx)
		case "tx", "transactions":
			_ = a.Transactions(ctx)
		case "search":
			_ = a.Search(ctx, args)
		case "filter":
			_ = a.Filter(ctx, args)
		case "sort":
			_ = a.Sort(ctx, args)
		case "page":
			_ = a.Page(ctx, args)
		case "refresh":
			_ = a.Refresh(ctx)
		case "send":
			_ = a.Send(ctx)
		case "notifications", "n":
			_ = a.Notifications(ctx)
		case "read":
			_ = a.Read(ctx, args)
		case "readall":
			_ = a.ReadAll(ctx)
		case "scheduled":
			_ = a.Scheduled(ctx, args)
		case "receipts":
			_ = a.Receipts(ctx, args)
		case "qr":
			_ = a.QR(ctx)
		case "link":
			_ = a.Link(ctx)
		case "stats":
			_ = a.Stats(ctx, args)
		case "admin":
			_ = a.Admin(ctx, args)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func isKnown(cmd string) bool {
	switch cmd {
	case "logout", "whoami", "profile", "balance", "tx", "transactions", "search", "filter", "sort", "page",
		"refresh", "send", "notifications", "n", "read", "readall", "scheduled", "receipts", "qr", "link", "stats", "admin":
		return true
	}
	return false
}
