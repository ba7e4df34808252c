// Package apitest runs an in-process fake of the PayChain backend for tests.
//
// The fake keeps its state in memory, issues HS256 JWTs as bearer tokens,
// and lets a test inject one-shot failures or hold a request until released.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Route names accepted by Hits, FailNext and Hold.
const (
	RouteLogin          = "login"
	RouteRegister       = "register"
	RouteHealth         = "health"
	RouteMe             = "me"
	RouteUser           = "user"
	RouteUpdateUser     = "update-user"
	RouteTransactions   = "transactions"
	RouteCreateTx       = "create-transaction"
	RouteBalance        = "balance"
	RouteScheduled      = "scheduled"
	RouteReceipts       = "receipts"
	RouteNotifications  = "notifications"
	RouteUnreadCount    = "unread-count"
	RouteMarkRead       = "mark-read"
	RouteMarkAllRead    = "mark-all-read"
	RouteLogError       = "log-error"
	RouteAnalytics      = "analytics"
	RouteQRCode         = "qr-code"
	RoutePaymentLink    = "payment-link"
	RouteSystemStats    = "system-stats"
	RouteSecurityUsers  = "security-users"
	RouteSecurityAction = "security-action"
	RouteErrors         = "errors"
	RouteResolveError   = "resolve-error"
)

var signingKey = []byte("apitest-signing-key")

type account struct {
	user     models.User
	password string
}

// Backend is the fake server. All exported methods are safe for concurrent use.
type Backend struct {
	srv *httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account // by email
	nextID        int
	transactions  []models.Transaction
	notifications []models.Notification
	scheduled     []models.ScheduledPayment
	receipts      []models.NFTReceipt
	securityUsers []models.UserSecurity
	errorsLog     []models.PayChainError
	reports       []map[string]any
	requests      []*http.Request
	hits          map[string]int
	failures      map[string][]int
	holds         map[string]chan struct{}
}

// New starts a Backend that is shut down when t finishes.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		accounts: map[string]*account{},
		nextID:   1,
		hits:     map[string]int{},
		failures: map[string][]int{},
		holds:    map[string]chan struct{}{},
	}
	b.srv = httptest.NewServer(b.router())
	t.Cleanup(b.srv.Close)
	return b
}

func (b *Backend) URL() string { return b.srv.URL }

// Close stops the server; later requests fail at the transport.
func (b *Backend) Close() { b.srv.Close() }

func (b *Backend) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(b.track)

	r.HandleFunc("/api/login", b.login).Methods(http.MethodPost).Name(RouteLogin)
	r.HandleFunc("/api/register", b.register).Methods(http.MethodGet).Name(RouteRegister)
	r.HandleFunc("/api/log-error", b.logError).Methods(http.MethodPost).Name(RouteLogError)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet).Name(RouteHealth)

	authed := r.NewRoute().Subrouter()
	authed.Use(b.authenticate)

	authed.HandleFunc("/users/me", b.me).Methods(http.MethodGet).Name(RouteMe)
	authed.HandleFunc("/users/{id}", b.getUser).Methods(http.MethodGet).Name(RouteUser)
	authed.HandleFunc("/users/{id}", b.updateUser).Methods(http.MethodPut).Name(RouteUpdateUser)
	authed.HandleFunc("/transactions", b.listTransactions).Methods(http.MethodGet).Name(RouteTransactions)
	authed.HandleFunc("/transactions", b.createTransaction).Methods(http.MethodPost).Name(RouteCreateTx)
	authed.HandleFunc("/balance", b.balance).Methods(http.MethodGet).Name(RouteBalance)

	authed.HandleFunc("/scheduled-payments", b.listScheduled).Methods(http.MethodGet).Name(RouteScheduled)
	authed.HandleFunc("/scheduled-payments", b.createScheduled).Methods(http.MethodPost).Name(RouteScheduled)
	authed.HandleFunc("/scheduled-payments/{id}", b.getScheduled).Methods(http.MethodGet).Name(RouteScheduled)
	authed.HandleFunc("/scheduled-payments/{id}", b.updateScheduled).Methods(http.MethodPut).Name(RouteScheduled)
	authed.HandleFunc("/scheduled-payments/{id}", b.deleteScheduled).Methods(http.MethodDelete).Name(RouteScheduled)

	authed.HandleFunc("/nft-receipts", b.listReceipts).Methods(http.MethodGet).Name(RouteReceipts)
	authed.HandleFunc("/nft-receipts", b.generateReceipt).Methods(http.MethodPost).Name(RouteReceipts)
	authed.HandleFunc("/nft-receipts/{id}", b.getReceipt).Methods(http.MethodGet).Name(RouteReceipts)

	authed.HandleFunc("/analytics/{report}", b.analytics).Methods(http.MethodGet).Name(RouteAnalytics)
	authed.HandleFunc("/qr-codes/receive", b.qrCode).Methods(http.MethodGet).Name(RouteQRCode)
	authed.HandleFunc("/payment-links/generate", b.paymentLink).Methods(http.MethodGet).Name(RoutePaymentLink)

	authed.HandleFunc("/notifications", b.listNotifications).Methods(http.MethodGet).Name(RouteNotifications)
	authed.HandleFunc("/notifications/unread-count", b.unreadCount).Methods(http.MethodGet).Name(RouteUnreadCount)
	authed.HandleFunc("/notifications/mark-all-read", b.markAllRead).Methods(http.MethodPost).Name(RouteMarkAllRead)
	authed.HandleFunc("/notifications/{id}/read", b.markRead).Methods(http.MethodPost).Name(RouteMarkRead)

	authed.HandleFunc("/api/system-stats", b.systemStats).Methods(http.MethodGet).Name(RouteSystemStats)
	authed.HandleFunc("/api/security/users", b.listSecurityUsers).Methods(http.MethodGet).Name(RouteSecurityUsers)
	authed.HandleFunc("/api/security/users/{id}/{action:block|unblock}", b.securityAction).Methods(http.MethodPost).Name(RouteSecurityAction)
	authed.HandleFunc("/api/errors", b.listErrors).Methods(http.MethodGet).Name(RouteErrors)
	authed.HandleFunc("/api/errors/{id}/resolve", b.resolveError).Methods(http.MethodPost).Name(RouteResolveError)

	return r
}

// track counts hits, replays injected failures and honours holds.
func (b *Backend) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}

		b.mu.Lock()
		b.hits[name]++
		b.requests = append(b.requests, r.Clone(r.Context()))
		var status int
		if q := b.failures[name]; len(q) > 0 {
			status, b.failures[name] = q[0], q[1:]
		}
		hold := b.holds[name]
		b.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": fmt.Sprintf("injected %d", status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		email, err := parseToken(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		b.mu.Lock()
		acc := b.accounts[email]
		b.mu.Unlock()
		if acc == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Unknown user"})
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithEmail(r.Context(), email)))
	})
}

// IssueToken returns a bearer token for email valid for ttl.
func IssueToken(email string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return s
}

func parseToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("no subject")
	}
	return claims.Subject, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (b *Backend) newID() models.ID {
	id := models.ID(strconv.Itoa(b.nextID))
	b.nextID++
	return id
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
