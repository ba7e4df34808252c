package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/apiclient"
	"github.com/dmitrijs2005/paychain/internal/client/config"
	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/dmitrijs2005/paychain/internal/client/notify"
	"github.com/dmitrijs2005/paychain/internal/client/session"
	"github.com/dmitrijs2005/paychain/internal/client/storage"
	"github.com/dmitrijs2005/paychain/internal/logging"
	"github.com/shopspring/decimal"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// backend is the part of the API client the commands call directly. Session
// and notification traffic goes through their own components.
type backend interface {
	Health(ctx context.Context) error
	ListScheduledPayments(ctx context.Context) ([]models.ScheduledPayment, error)
	DeleteScheduledPayment(ctx context.Context, id models.ID) error
	ListReceipts(ctx context.Context) ([]models.NFTReceipt, error)
	GenerateReceipt(ctx context.Context, transactionID models.ID) (*models.NFTReceipt, error)
	GetReceiveQRCode(ctx context.Context) (*models.QRCode, error)
	GeneratePaymentLink(ctx context.Context, amount decimal.Decimal, description string) (*models.PaymentLink, error)
	GetTransactionSummary(ctx context.Context, p models.Period) (*models.TransactionSummary, error)
	GetSpendingByCategory(ctx context.Context, p models.Period) ([]models.SpendingCategory, error)
	GetSystemStats(ctx context.Context) (*models.SystemStats, error)
	ListSecurityUsers(ctx context.Context, lq models.ListQuery) (*models.Page[models.UserSecurity], error)
	BlockUser(ctx context.Context, id models.ID) (*models.UserSecurity, error)
	UnblockUser(ctx context.Context, id models.ID) (*models.UserSecurity, error)
	ListErrors(ctx context.Context, lq models.ListQuery) (*models.Page[models.PayChainError], error)
	ResolveError(ctx context.Context, id models.ID) (*models.PayChainError, error)
}

type sessionStore interface {
	Initialize(ctx context.Context)
	Snapshot() session.State
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, principalID string) error
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, p models.UserUpdate) (*models.User, error)
	FetchTransactions(ctx context.Context) error
	FetchBalance(ctx context.Context) error
	SendPayment(ctx context.Context, to string, amount decimal.Decimal, description string) (*models.Transaction, error)
	SetOnline(ctx context.Context, online bool)
}

type notifier interface {
	Start(ctx context.Context) error
	Stop()
	Refresh(ctx context.Context) error
	Snapshot() notify.Snapshot
	MarkAsRead(ctx context.Context, id models.ID) error
	MarkAllAsRead(ctx context.Context) error
	Reset()
}

// localStore is the durable state the commands read besides the session.
type localStore interface {
	Token(ctx context.Context) (string, error)
	LastSync(ctx context.Context) (time.Time, bool, error)
	SaveReceipts(ctx context.Context, receipts []models.NFTReceipt) error
	CachedReceipts(ctx context.Context) ([]models.NFTReceipt, error)
}

type App struct {
	config  *config.Config
	log     logging.Logger
	api     backend
	session sessionStore
	notices notifier
	local   localStore
	reader  *bufio.Reader
	out     io.Writer

	viewMu sync.Mutex
	tx     *txView

	modeMu sync.RWMutex
	mode   Mode

	closers []func() error
}

// NewApp opens local storage and wires the API client, session store and
// notification poller.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, c.LogFormat, os.Stderr)

	local, err := storage.Open(ctx, c.StoragePath)
	if err != nil {
		log.Error(ctx, "error initializing storage", "path", c.StoragePath, "error", err)
		return nil, err
	}

	var a *App
	opts := []apiclient.Option{
		apiclient.WithCredentials(local),
		apiclient.WithLogger(log),
		apiclient.WithUnauthorizedHandler(func(ctx context.Context) {
			if a != nil {
				a.log.Info(ctx, "session rejected by backend, signing out")
				a.signOut(ctx)
			}
		}),
	}
	if c.RequestTimeout > 0 {
		opts = append(opts, apiclient.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}))
	}
	api := apiclient.New(c.APIBaseURL, opts...)

	store := session.New(ctx, api, local, local,
		session.WithLogger(log),
		session.WithTransactionCache(local),
	)

	poller := notify.New(api,
		notify.WithInterval(c.NotificationPollInterval),
		notify.WithLogger(log),
		notify.WithGate(func() bool { return store.Snapshot().IsAuthenticated }),
	)

	a = newApp(c, log, api, store, poller, local, bufio.NewReader(os.Stdin), os.Stdout)
	a.closers = []func() error{
		func() error { poller.Stop(); return nil },
		func() error { store.Close(); return nil },
		api.Close,
		local.Close,
	}
	return a, nil
}

func newApp(c *config.Config, log logging.Logger, api backend, s sessionStore, n notifier, local localStore, r *bufio.Reader, w io.Writer) *App {
	delay := c.DebounceDelay
	return &App{
		config:  c,
		log:     log,
		api:     api,
		session: s,
		notices: n,
		local:   local,
		tx:      newTxView(delay),
		reader:  r,
		out:     w,
	}
}

// Close releases everything NewApp opened, in reverse dependency order.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// view returns the current transaction list state.
func (a *App) view() *txView {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	return a.tx
}

func (a *App) resetView() {
	v := newTxView(a.config.DebounceDelay)
	a.viewMu.Lock()
	a.tx = v
	a.viewMu.Unlock()
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
		a.session.SetOnline(ctx, mode == ModeOnline)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated
}

// Run restores the session, starts background work and blocks in the REPL
// until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error(ctx, "shutdown", "error", err)
		}
	}()

	a.session.Initialize(ctx)
	if err := a.notices.Start(ctx); err != nil {
		a.log.Warn(ctx, "notification poller not started", "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.Root(ctx)
}

// checkOnline probes backend health once and records the result.
func (a *App) checkOnline(ctx context.Context) {
	hctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.api.Health(hctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher probes the backend every interval until ctx is
// done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// report prints the user-facing message for err and returns err.
func (a *App) report(ctx context.Context, what string, err error) error {
	a.log.Debug(ctx, what+" failed", "error", err)
	a.printf("%s failed: %s\n", what, apiclient.Message(err))
	return err
}
