package apitest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/shopspring/decimal"
)

type emailKey struct{}

func contextWithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey{}, email)
}

func emailFrom(r *http.Request) string {
	s, _ := r.Context().Value(emailKey{}).(string)
	return s
}

// AddUser registers an account directly and returns its user record.
func (b *Backend) AddUser(email, password, principalID string, balance decimal.Decimal) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addUserLocked(email, password, principalID, balance)
}

func (b *Backend) addUserLocked(email, password, principalID string, balance decimal.Decimal) models.User {
	verified := true
	bal := balance
	u := models.User{
		ID:          b.newID(),
		Email:       email,
		PrincipalID: principalID,
		Balance:     &bal,
		IsVerified:  &verified,
	}
	b.accounts[email] = &account{user: u, password: password}
	return u
}

// User returns the stored user for email.
func (b *Backend) User(email string) (models.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[email]
	if !ok {
		return models.User{}, false
	}
	return *acc.user.Clone(), true
}

func (b *Backend) SetTransactions(txs []models.Transaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transactions = models.CloneTransactions(txs)
}

func (b *Backend) SetNotifications(ns []models.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append([]models.Notification(nil), ns...)
}

func (b *Backend) SetSecurityUsers(us []models.UserSecurity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.securityUsers = append([]models.UserSecurity(nil), us...)
}

func (b *Backend) SetErrors(es []models.PayChainError) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errorsLog = append([]models.PayChainError(nil), es...)
}

// FailNext makes the next request to route answer with status instead.
// Calls queue up.
func (b *Backend) FailNext(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = append(b.failures[route], status)
}

// Hold blocks requests to route until the returned release func is called.
func (b *Backend) Hold(route string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.holds[route] = ch
	b.mu.Unlock()

	released := false
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if released {
			return
		}
		released = true
		delete(b.holds, route)
		close(ch)
	}
}

// Hits reports how many requests route has received.
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// Requests returns copies of every request received, in order.
func (b *Backend) Requests() []*http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*http.Request(nil), b.requests...)
}

// Reports returns the bodies posted to /api/log-error.
func (b *Backend) Reports() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.reports...)
}

func (b *Backend) Notifications() []models.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Notification(nil), b.notifications...)
}
