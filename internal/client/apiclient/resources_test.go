package apiclient

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestTransactions_CreateListBalance(t *testing.T) {
	c, _, creds, _ := setup(t)
	login(t, c, creds)
	ctx := context.Background()

	tx, err := c.CreateTransaction(ctx, models.TransactionCreate{
		RecipientPrincipal: "zzzzz-yyyyy",
		Amount:             decimal.RequireFromString("12.34"),
		Description:        "lunch",
	})
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("12.34").Equal(tx.Amount))
	require.Equal(t, "zzzzz-yyyyy", tx.ToAddress)

	txs, err := c.GetTransactions(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	txs, err = c.GetTransactions(ctx, 5, 10)
	require.NoError(t, err)
	require.NotNil(t, txs)
	require.Empty(t, txs)

	bal, err := c.GetBalance(ctx)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("87.66").Equal(bal), bal.String())
}

func TestScheduledPayments_CRUD(t *testing.T) {
	c, _, creds, _ := setup(t)
	login(t, c, creds)
	ctx := context.Background()

	created, err := c.CreateScheduledPayment(ctx, models.ScheduledPayment{
		RecipientPrincipal: "rent-principal",
		Amount:             decimal.NewFromInt(900),
		StartDate:          "2024-06-01",
		Frequency:          models.FrequencyMonthly,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.True(t, created.IsActive)

	got, err := c.GetScheduledPayment(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	got.Frequency = models.FrequencyWeekly
	updated, err := c.UpdateScheduledPayment(ctx, created.ID, *got)
	require.NoError(t, err)
	require.Equal(t, models.FrequencyWeekly, updated.Frequency)

	list, err := c.ListScheduledPayments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.DeleteScheduledPayment(ctx, created.ID))
	_, err = c.GetScheduledPayment(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReceipts(t *testing.T) {
	c, _, creds, _ := setup(t)
	login(t, c, creds)
	ctx := context.Background()

	r, err := c.GenerateReceipt(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, models.ID("42"), r.TransactionID)

	got, err := c.GetReceipt(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, r.ImageURL, got.ImageURL)

	list, err := c.ListReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestAnalytics(t *testing.T) {
	c, b, creds, _ := setup(t)
	login(t, c, creds)
	ctx := context.Background()

	sum, err := c.GetTransactionSummary(ctx, "")
	require.NoError(t, err)
	require.Equal(t, models.PeriodMonth, sum.Period)

	cats, err := c.GetSpendingByCategory(ctx, models.PeriodWeek)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	hits := len(b.Requests())
	_, err = c.GetTransactionSummary(ctx, "decade")
	require.ErrorIs(t, err, ErrInvalidPeriod)
	require.Len(t, b.Requests(), hits, "rejected locally")
}

func TestPaymentsLinks(t *testing.T) {
	c, _, creds, _ := setup(t)
	login(t, c, creds)
	ctx := context.Background()

	qr, err := c.GetReceiveQRCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "paychain://pay/aaaaa-bbbbb", qr.PaymentLink)

	link, err := c.GeneratePaymentLink(ctx, decimal.RequireFromString("5.5"), "")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/aaaaa-bbbbb?amount=5.5", link.Link)
	require.NotNil(t, link.ExpiresAt)
}

func TestNotifications(t *testing.T) {
	c, b, creds, _ := setup(t)
	login(t, c, creds)
	ctx := context.Background()
	b.SetNotifications([]models.Notification{
		{ID: "1", Title: "Paid", Type: models.NotificationPayment},
		{ID: "2", Title: "Login", Type: models.NotificationSecurity},
		{ID: "3", Title: "Old", Read: true},
	})

	list, err := c.GetNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 3)
	require.Equal(t, 2, list.UnreadCount)

	require.NoError(t, c.MarkNotificationRead(ctx, "1"))
	n, err := c.GetUnreadCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, c.MarkAllNotificationsRead(ctx))
	n, err = c.GetUnreadCount(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	require.ErrorIs(t, c.MarkNotificationRead(ctx, "404"), ErrNotFound)
}

func TestAdmin(t *testing.T) {
	c, b, creds, _ := setup(t)
	login(t, c, creds)
	ctx := context.Background()
	b.SetSecurityUsers([]models.UserSecurity{
		{ID: "u1", Principal: "p1", KYCStatus: "pending"},
		{ID: "u2", Principal: "p2", KYCStatus: "verified"},
		{ID: "u3", Principal: "p3", KYCStatus: "pending"},
	})
	b.SetErrors([]models.PayChainError{{ID: "e1", Code: 500, Status: "open"}})

	stats, err := c.GetSystemStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.ActiveUsers)

	page, err := c.ListSecurityUsers(ctx, models.ListQuery{Page: 1, PageSize: 1, Filters: map[string]string{"kycStatus": "pending"}})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Len(t, page.Data, 1)
	require.Equal(t, "p1", page.Data[0].Principal)

	blocked, err := c.BlockUser(ctx, "u2")
	require.NoError(t, err)
	require.True(t, blocked.IsBlocked)
	unblocked, err := c.UnblockUser(ctx, "u2")
	require.NoError(t, err)
	require.False(t, unblocked.IsBlocked)

	errs, err := c.ListErrors(ctx, models.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, errs.Total)
	require.Equal(t, 10, errs.PageSize)

	resolved, err := c.ResolveError(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "resolved", resolved.Status)
}
