package apitest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email, password := q.Get("email"), q.Get("password")

	b.mu.Lock()
	acc := b.accounts[email]
	b.mu.Unlock()
	if acc == nil || acc.password != password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: IssueToken(email, time.Hour),
		TokenType:   "bearer",
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email, password, principal := q.Get("email"), q.Get("password"), q.Get("principal_id")
	if email == "" || password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "field required"}},
		})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
		return
	}
	u := b.addUserLocked(email, password, principal, decimal.Zero)
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) logError(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := readJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	b.reports = append(b.reports, body)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged"})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	u := b.accounts[emailFrom(r)].user.Clone()
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) findUserLocked(id string) *account {
	for _, acc := range b.accounts {
		if acc.user.ID.String() == id {
			return acc
		}
	}
	return nil
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	acc := b.findUserLocked(mux.Vars(r)["id"])
	var u *models.User
	if acc != nil {
		u = acc.user.Clone()
	}
	b.mu.Unlock()
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request) {
	var p models.UserUpdate
	if err := readJSON(r, &p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.findUserLocked(mux.Vars(r)["id"])
	if acc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
		return
	}
	if acc.user.Email != emailFrom(r) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not allowed"})
		return
	}
	acc.user = *p.Apply(&acc.user)
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) listTransactions(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	b.mu.Lock()
	txs := models.CloneTransactions(b.transactions)
	b.mu.Unlock()

	start := min(max(skip, 0), len(txs))
	end := min(start+limit, len(txs))
	writeJSON(w, http.StatusOK, txs[start:end])
}

func (b *Backend) createTransaction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RecipientPrincipal string          `json:"recipient_principal"`
		Amount             decimal.Decimal `json:"amount"`
		Description        string          `json:"description"`
	}
	if err := readJSON(r, &in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	if !in.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Amount must be positive"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.accounts[emailFrom(r)]
	if acc.user.Balance != nil && acc.user.Balance.LessThan(in.Amount) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Insufficient balance"})
		return
	}
	if acc.user.Balance != nil {
		nb := acc.user.Balance.Sub(in.Amount)
		acc.user.Balance = &nb
	}
	tx := models.Transaction{
		ID:          b.newID(),
		Amount:      in.Amount,
		FromAddress: acc.user.PrincipalID,
		ToAddress:   in.RecipientPrincipal,
		Timestamp:   time.Now().UTC().Truncate(time.Second),
		Status:      models.TransactionCompleted,
		Type:        models.TransactionPayment,
		Description: in.Description,
	}
	b.transactions = append([]models.Transaction{tx}, b.transactions...)
	writeJSON(w, http.StatusOK, tx)
}

func (b *Backend) balance(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	acc := b.accounts[emailFrom(r)]
	bal := decimal.Zero
	if acc.user.Balance != nil {
		bal = *acc.user.Balance
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.Balance{Balance: bal})
}

func (b *Backend) listScheduled(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := append([]models.ScheduledPayment{}, b.scheduled...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) scheduledIndexLocked(id string) int {
	for i, p := range b.scheduled {
		if p.ID.String() == id {
			return i
		}
	}
	return -1
}

func (b *Backend) getScheduled(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.scheduledIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Scheduled payment not found"})
		return
	}
	writeJSON(w, http.StatusOK, b.scheduled[i])
}

func (b *Backend) createScheduled(w http.ResponseWriter, r *http.Request) {
	var p models.ScheduledPayment
	if err := readJSON(r, &p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p.ID = b.newID()
	p.IsActive = true
	p.NextPaymentDate = p.StartDate
	b.scheduled = append(b.scheduled, p)
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) updateScheduled(w http.ResponseWriter, r *http.Request) {
	var p models.ScheduledPayment
	if err := readJSON(r, &p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.scheduledIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Scheduled payment not found"})
		return
	}
	p.ID = b.scheduled[i].ID
	b.scheduled[i] = p
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) deleteScheduled(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.scheduledIndexLocked(mux.Vars(r)["id"])
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Scheduled payment not found"})
		return
	}
	b.scheduled = append(b.scheduled[:i], b.scheduled[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) listReceipts(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := append([]models.NFTReceipt{}, b.receipts...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getReceipt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rc := range b.receipts {
		if rc.ID.String() == id {
			writeJSON(w, http.StatusOK, rc)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Receipt not found"})
}

func (b *Backend) generateReceipt(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TransactionID models.ID `json:"transaction_id"`
	}
	if err := readJSON(r, &in); err != nil || in.TransactionID == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "transaction_id required"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acc := b.accounts[emailFrom(r)]
	rc := models.NFTReceipt{
		ID:            b.newID(),
		TransactionID: in.TransactionID,
		ImageURL:      "https://receipts.example/" + in.TransactionID.String() + ".png",
		Metadata:      map[string]any{"name": "PayChain Receipt #" + in.TransactionID.String()},
		OwnerID:       acc.user.ID,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	b.receipts = append(b.receipts, rc)
	writeJSON(w, http.StatusOK, rc)
}

func (b *Backend) analytics(w http.ResponseWriter, r *http.Request) {
	period := models.Period(r.URL.Query().Get("period"))
	switch mux.Vars(r)["report"] {
	case "transaction-summary":
		b.mu.Lock()
		sum := models.TransactionSummary{Period: period}
		for _, tx := range b.transactions {
			sum.TotalSent = sum.TotalSent.Add(tx.Amount)
			sum.TransactionCount++
		}
		if sum.TransactionCount > 0 {
			sum.AverageAmount = sum.TotalSent.Div(decimal.NewFromInt(int64(sum.TransactionCount)))
		}
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, sum)
	case "spending-categories":
		writeJSON(w, http.StatusOK, []models.SpendingCategory{
			{Category: "payments", Amount: mustDecimal("120.50"), Count: 3},
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Unknown report"})
	}
}

func (b *Backend) qrCode(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	principal := b.accounts[emailFrom(r)].user.PrincipalID
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.QRCode{
		QRCode:      "data:image/png;base64,AAAA",
		PaymentLink: "paychain://pay/" + principal,
	})
}

func (b *Backend) paymentLink(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	principal := b.accounts[emailFrom(r)].user.PrincipalID
	b.mu.Unlock()
	link := "https://pay.example/" + principal
	if amt := r.URL.Query().Get("amount"); amt != "" {
		link += "?amount=" + amt
	}
	exp := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	writeJSON(w, http.StatusOK, models.PaymentLink{Link: link, ExpiresAt: &exp})
}

func (b *Backend) listNotifications(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := models.NotificationList{Notifications: append([]models.Notification{}, b.notifications...)}
	for _, n := range b.notifications {
		if !n.Read {
			out.UnreadCount++
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) unreadCount(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	n := 0
	for _, it := range b.notifications {
		if !it.Read {
			n++
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.UnreadCount{Count: n})
}

func (b *Backend) markRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.notifications {
		if b.notifications[i].ID.String() == id {
			b.notifications[i].Read = true
			writeJSON(w, http.StatusOK, b.notifications[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Notification not found"})
}

func (b *Backend) markAllRead(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	for i := range b.notifications {
		b.notifications[i].Read = true
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (b *Backend) systemStats(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	stats := models.SystemStats{
		TotalTransactions: len(b.transactions),
		ActiveUsers:       len(b.accounts),
		TotalVolume:       decimal.Zero,
	}
	for _, tx := range b.transactions {
		stats.TotalVolume = stats.TotalVolume.Add(tx.Amount)
	}
	for _, u := range b.securityUsers {
		if u.IsBlocked {
			stats.BlockedUsers++
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.Envelope[models.SystemStats]{Data: stats, Status: http.StatusOK})
}

func pageOf[T any](r *http.Request, all []T) models.Page[T] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	page, size = max(page, 1), max(size, 1)
	start := min((page-1)*size, len(all))
	end := min(start+size, len(all))
	return models.Page[T]{Data: append([]T{}, all[start:end]...), Total: len(all), Page: page, PageSize: size}
}

func (b *Backend) listSecurityUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	all := append([]models.UserSecurity{}, b.securityUsers...)
	b.mu.Unlock()

	if status := r.URL.Query().Get("kycStatus"); status != "" {
		filtered := all[:0]
		for _, u := range all {
			if u.KYCStatus == status {
				filtered = append(filtered, u)
			}
		}
		all = filtered
	}
	writeJSON(w, http.StatusOK, pageOf(r, all))
}

func (b *Backend) securityAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.securityUsers {
		if b.securityUsers[i].ID.String() == vars["id"] {
			b.securityUsers[i].IsBlocked = vars["action"] == "block"
			writeJSON(w, http.StatusOK, models.Envelope[models.UserSecurity]{Data: b.securityUsers[i], Status: http.StatusOK})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
}

func (b *Backend) listErrors(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	all := append([]models.PayChainError{}, b.errorsLog...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, pageOf(r, all))
}

func (b *Backend) resolveError(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.errorsLog {
		if b.errorsLog[i].ID.String() == id {
			b.errorsLog[i].Status = "resolved"
			writeJSON(w, http.StatusOK, models.Envelope[models.PayChainError]{Data: b.errorsLog[i], Status: http.StatusOK})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Error not found"})
}
