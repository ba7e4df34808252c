package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/shopspring/decimal"
)

type fakeAPI struct {
	mu    sync.Mutex
	trace []string

	loginResp  *models.LoginResponse
	loginErr   error
	loginCalls []string

	registerErr   error
	registerCalls int

	user      *models.User
	userErr   error
	userCalls int
	userGate  chan struct{}

	updateErr   error
	updateCalls []models.UserUpdate

	txs     []models.Transaction
	txErr   error
	txCalls int
	// txHook, when set, answers GetTransactions for the n-th call (1-based).
	txHook func(n int) ([]models.Transaction, error)

	created     *models.Transaction
	createErr   error
	createCalls []models.TransactionCreate

	balance    decimal.Decimal
	balanceErr error
}

func (f *fakeAPI) record(op string) {
	f.trace = append(f.trace, op)
}

func (f *fakeAPI) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (*models.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("login")
	f.loginCalls = append(f.loginCalls, email)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	resp := *f.loginResp
	return &resp, nil
}

func (f *fakeAPI) Register(context.Context, string, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("register")
	f.registerCalls++
	return f.registerErr
}

func (f *fakeAPI) GetCurrentUser(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	f.record("me")
	f.userCalls++
	gate := f.userGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user.Clone(), nil
}

func (f *fakeAPI) UpdateUser(_ context.Context, _ models.ID, p models.UserUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")
	f.updateCalls = append(f.updateCalls, p)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return nil, nil
}

func (f *fakeAPI) GetTransactions(context.Context, int, int) ([]models.Transaction, error) {
	f.mu.Lock()
	f.record("transactions")
	f.txCalls++
	n := f.txCalls
	hook := f.txHook
	txs, err := models.CloneTransactions(f.txs), f.txErr
	f.mu.Unlock()

	if hook != nil {
		return hook(n)
	}
	return txs, err
}

func (f *fakeAPI) TxCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txCalls
}

func (f *fakeAPI) CreateTransaction(_ context.Context, in models.TransactionCreate) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	f.createCalls = append(f.createCalls, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	tx := *f.created
	return &tx, nil
}

func (f *fakeAPI) GetBalance(context.Context) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("balance")
	return f.balance, f.balanceErr
}

type memCreds struct {
	mu       sync.Mutex
	token    string
	setErr   error
	clearErr error
}

func (m *memCreds) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memCreds) SetToken(_ context.Context, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.token = tok
	return nil
}

func (m *memCreds) ClearToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return m.clearErr
}

func (m *memCreds) Get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

type memSlices struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func (m *memSlices) LoadSlice(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, nil
}

func (m *memSlices) SaveSlice(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memSlices) Slice() Slice {
	m.mu.Lock()
	defer m.mu.Unlock()
	sl, err := DecodeSlice(m.data)
	if err != nil {
		panic(err)
	}
	return sl
}

type memCache struct {
	mu       sync.Mutex
	txs      []models.Transaction
	syncedAt time.Time
	clears   int
}

func (m *memCache) SaveTransactions(_ context.Context, txs []models.Transaction, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = models.CloneTransactions(txs)
	m.syncedAt = at
	return nil
}

func (m *memCache) CachedTransactions(context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneTransactions(m.txs), nil
}

func (m *memCache) ClearCache(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = nil
	m.clears++
	return nil
}

var errBoom = errors.New("boom")
