package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/apiclient"
	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/dmitrijs2005/paychain/internal/logging"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrNoUser is returned by operations that need a signed-in user.
var ErrNoUser = errors.New("no user logged in")

// API is the subset of the backend client the store drives.
type API interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, email, password, principalID string) error
	GetCurrentUser(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, id models.ID, p models.UserUpdate) (*models.User, error)
	GetTransactions(ctx context.Context, skip, limit int) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, in models.TransactionCreate) (*models.Transaction, error)
	GetBalance(ctx context.Context) (decimal.Decimal, error)
}

// Credentials stores the bearer token.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// SliceStore holds the encoded persisted slice.
type SliceStore interface {
	LoadSlice(ctx context.Context) ([]byte, error)
	SaveSlice(ctx context.Context, data []byte) error
}

// TransactionCache is the optional offline copy of the transaction list.
type TransactionCache interface {
	SaveTransactions(ctx context.Context, txs []models.Transaction, syncedAt time.Time) error
	CachedTransactions(ctx context.Context) ([]models.Transaction, error)
	ClearCache(ctx context.Context) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger. The default discards.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithTransactionCache enables the offline copy of the transaction list.
func WithTransactionCache(c TransactionCache) Option {
	return func(s *Store) { s.cache = c }
}

// WithClock overrides time.Now for sync timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTransactionLimit caps how many transactions a refresh asks for.
func WithTransactionLimit(n int) Option {
	return func(s *Store) { s.limit = n }
}

// Store holds the session state and runs the account operations against
// the backend. It is safe for concurrent use.
type Store struct {
	api    API
	creds  Credentials
	slices SliceStore
	cache  TransactionCache
	log    logging.Logger
	now    func() time.Time
	limit  int

	mu    sync.RWMutex
	state State
	// epoch changes on logout so in-flight fetches from the old session
	// are discarded. It starts at 1; mutate treats 0 as "any epoch".
	epoch uint64
	seq   uint64

	persistMu sync.Mutex
	savedSeq  uint64

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int

	init     singleflight.Group
	bg       sync.WaitGroup
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

// New builds a Store and rehydrates it from slices. An unreadable slice is
// logged and ignored.
func New(ctx context.Context, api API, creds Credentials, slices SliceStore, opts ...Option) *Store {
	s := &Store{
		api:    api,
		creds:  creds,
		slices: slices,
		log:    logging.NewNop(),
		now:    time.Now,
		limit:  apiclient.DefaultTransactionLimit,
		subs:   map[int]func(State){},
		epoch:  1,
	}
	for _, o := range opts {
		o(s)
	}
	s.bgCtx, s.bgCancel = context.WithCancel(context.WithoutCancel(ctx))
	s.state = s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) State {
	if s.slices == nil {
		return State{}
	}
	data, err := s.slices.LoadSlice(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load session slice", "error", err)
		return State{}
	}
	if data == nil {
		return State{}
	}
	sl, err := DecodeSlice(data)
	if err != nil {
		s.log.Warn(ctx, "discarding unreadable session slice", "error", err)
		return State{}
	}
	return Restore(sl)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// Wait blocks until background refreshes have finished.
func (s *Store) Wait() { s.bg.Wait() }

// Close cancels background refreshes and waits for them.
func (s *Store) Close() {
	s.bgCancel()
	s.bg.Wait()
}

// mutate applies fn under the lock, then persists and notifies. It reports
// false, without applying fn, when epoch no longer matches (epoch 0 always
// applies).
func (s *Store) mutate(ctx context.Context, epoch uint64, fn func(st *State)) bool {
	s.mu.Lock()
	if epoch != 0 && epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	s.seq++
	seq := s.seq
	snap := s.state.clone()
	s.mu.Unlock()

	s.persist(ctx, seq, snap)
	s.notify(snap)
	return true
}

func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *Store) persist(ctx context.Context, seq uint64, snap State) {
	if s.slices == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if seq <= s.savedSeq {
		return
	}
	data, err := EncodeSlice(Persist(snap))
	if err != nil {
		s.log.Error(ctx, "failed to encode session slice", "error", err)
		return
	}
	if err := s.slices.SaveSlice(context.WithoutCancel(ctx), data); err != nil {
		s.log.Error(ctx, "failed to persist session slice", "error", err)
		return
	}
	s.savedSeq = seq
}

func (s *Store) notify(snap State) {
	s.subsMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}

func signedOut(st *State) {
	st.IsAuthenticated = false
	st.User = nil
	st.Transactions = nil
	st.Offline = false
}

// Initialize reconciles the stored credential with the session. Concurrent
// calls share one run and later calls are no-ops. It never fails: any error
// leaves the session Unauthenticated.
func (s *Store) Initialize(ctx context.Context) {
	if s.Snapshot().IsInitialized {
		return
	}
	_, _, _ = s.init.Do("initialize", func() (any, error) {
		if s.Snapshot().IsInitialized {
			return nil, nil
		}
		s.initialize(ctx)
		return nil, nil
	})
}

func (s *Store) initialize(ctx context.Context) {
	s.mutate(ctx, 0, func(st *State) { st.IsLoading = true })

	token, err := s.creds.Token(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to read credential", "error", err)
	}
	if token == "" {
		s.mutate(ctx, 0, func(st *State) {
			signedOut(st)
			st.IsLoading = false
			st.IsInitialized = true
		})
		return
	}

	user, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		s.log.Warn(ctx, "session restore failed", "error", err)
		s.mutate(ctx, 0, func(st *State) {
			signedOut(st)
			st.IsLoading = false
			st.IsInitialized = true
		})
		return
	}

	s.mutate(ctx, 0, func(st *State) {
		st.IsAuthenticated = true
		st.User = user
		st.Error = ""
		st.IsLoading = false
		st.IsInitialized = true
	})
	s.refreshInBackground()
}

// refreshInBackground refreshes transactions without blocking the caller.
// Failures are logged only.
func (s *Store) refreshInBackground() {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		if err := s.fetchTransactions(s.bgCtx, true); err != nil {
			s.log.Warn(s.bgCtx, "background transaction refresh failed", "error", err)
		}
	}()
}

func (s *Store) fail(ctx context.Context, err error) {
	s.mutate(ctx, 0, func(st *State) {
		signedOut(st)
		st.IsLoading = false
		st.Error = apiclient.Message(err)
	})
}

// Login exchanges credentials, stores the token and loads the user. On
// failure the session is Unauthenticated, Error is set and err is returned.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.mutate(ctx, 0, func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.fail(ctx, err)
		return err
	}
	if err := s.creds.SetToken(ctx, resp.AccessToken); err != nil {
		s.fail(ctx, err)
		return err
	}

	user := resp.User
	if user == nil {
		user, err = s.api.GetCurrentUser(ctx)
		if err != nil {
			if cerr := s.creds.ClearToken(ctx); cerr != nil {
				s.log.Error(ctx, "failed to clear credential", "error", cerr)
			}
			s.fail(ctx, err)
			return err
		}
	}

	s.mutate(ctx, 0, func(st *State) {
		st.IsAuthenticated = true
		st.User = user
		st.IsLoading = false
		st.Error = ""
	})
	s.log.Info(ctx, "logged in", "user_id", user.ID.String())
	s.refreshInBackground()
	return nil
}

// Register creates the account and then logs in with the same credentials.
func (s *Store) Register(ctx context.Context, email, password, principalID string) error {
	s.mutate(ctx, 0, func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
	if err := s.api.Register(ctx, email, password, principalID); err != nil {
		s.fail(ctx, err)
		return err
	}
	return s.Login(ctx, email, password)
}

// Logout drops the credential and resets the session. Storage errors are
// logged; Logout itself cannot fail.
func (s *Store) Logout(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := s.creds.ClearToken(ctx); err != nil {
		s.log.Error(ctx, "failed to clear credential", "error", err)
	}
	if s.cache != nil {
		if err := s.cache.ClearCache(ctx); err != nil {
			s.log.Error(ctx, "failed to clear offline cache", "error", err)
		}
	}

	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()

	s.mutate(ctx, 0, func(st *State) {
		signedOut(st)
		st.IsLoading = false
		st.Error = ""
	})
	s.log.Info(ctx, "logged out")
}

// UpdateUser saves a partial profile and merges it locally once the backend
// accepts it. It returns the merged user.
func (s *Store) UpdateUser(ctx context.Context, p models.UserUpdate) (*models.User, error) {
	snap := s.Snapshot()
	if snap.User == nil {
		return nil, ErrNoUser
	}
	epoch := s.currentEpoch()
	id := snap.User.ID

	s.mutate(ctx, 0, func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})
	if _, err := s.api.UpdateUser(ctx, id, p); err != nil {
		s.mutate(ctx, 0, func(st *State) {
			st.IsLoading = false
			st.Error = apiclient.Message(err)
		})
		return nil, err
	}

	var merged *models.User
	applied := s.mutate(ctx, epoch, func(st *State) {
		st.IsLoading = false
		if st.User != nil && st.User.ID == id {
			st.User = p.Apply(st.User)
			merged = st.User.Clone()
		}
	})
	if !applied || merged == nil {
		return nil, ErrNoUser
	}
	return merged, nil
}

// FetchTransactions replaces the transaction list with the backend's. With
// an offline cache configured, an unreachable backend falls back to it.
func (s *Store) FetchTransactions(ctx context.Context) error {
	return s.fetchTransactions(ctx, false)
}

func (s *Store) fetchTransactions(ctx context.Context, background bool) error {
	epoch := s.currentEpoch()
	if !background {
		s.mutate(ctx, 0, func(st *State) { st.IsLoading = true })
	}

	txs, err := s.api.GetTransactions(ctx, 0, s.limit)
	if err != nil {
		cached := s.cachedOnOutage(ctx, err)
		applied := s.mutate(ctx, epoch, func(st *State) {
			if !background {
				st.IsLoading = false
				st.Error = apiclient.Message(err)
			}
			if cached != nil {
				st.Transactions = cached
				st.Offline = true
			}
		})
		if !background && !applied {
			s.mutate(ctx, 0, func(st *State) { st.IsLoading = false })
		}
		return err
	}

	applied := s.mutate(ctx, epoch, func(st *State) {
		st.Transactions = txs
		st.Offline = false
		if !background {
			st.IsLoading = false
		}
	})
	if !background && !applied {
		s.mutate(ctx, 0, func(st *State) { st.IsLoading = false })
	}
	if applied && s.cache != nil {
		if err := s.cache.SaveTransactions(ctx, txs, s.now()); err != nil {
			s.log.Warn(ctx, "failed to cache transactions", "error", err)
		}
	}
	return nil
}

func (s *Store) cachedOnOutage(ctx context.Context, err error) []models.Transaction {
	if s.cache == nil || !errors.Is(err, apiclient.ErrUnavailable) {
		return nil
	}
	cached, cerr := s.cache.CachedTransactions(ctx)
	if cerr != nil {
		s.log.Warn(ctx, "failed to read cached transactions", "error", cerr)
		return nil
	}
	return cached
}

// SendPayment creates a transaction, then always refreshes the list before
// returning the creation result. A failed refresh is recorded in Error but
// does not fail the payment.
func (s *Store) SendPayment(ctx context.Context, to string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	s.mutate(ctx, 0, func(st *State) {
		st.IsLoading = true
		st.Error = ""
	})

	tx, err := s.api.CreateTransaction(ctx, models.TransactionCreate{
		RecipientPrincipal: to,
		Amount:             amount,
		Description:        description,
	})
	if err != nil {
		s.mutate(ctx, 0, func(st *State) {
			st.IsLoading = false
			st.Error = apiclient.Message(err)
		})
		return nil, err
	}

	if err := s.FetchTransactions(ctx); err != nil {
		s.log.Warn(ctx, "refresh after payment failed", "error", err)
	}
	if s.Snapshot().User != nil {
		if err := s.FetchBalance(ctx); err != nil {
			s.log.Warn(ctx, "balance refresh after payment failed", "error", err)
		}
	}
	return tx, nil
}

// FetchBalance refreshes the signed-in user's balance.
func (s *Store) FetchBalance(ctx context.Context) error {
	snap := s.Snapshot()
	if snap.User == nil {
		return ErrNoUser
	}
	epoch := s.currentEpoch()
	id := snap.User.ID

	bal, err := s.api.GetBalance(ctx)
	if err != nil {
		s.mutate(ctx, epoch, func(st *State) { st.Error = apiclient.Message(err) })
		return err
	}
	s.mutate(ctx, epoch, func(st *State) {
		if st.User != nil && st.User.ID == id {
			st.User.Balance = &bal
		}
	})
	return nil
}

// SetOnline records connectivity. Coming back online while signed in
// triggers a background refresh.
func (s *Store) SetOnline(ctx context.Context, online bool) {
	s.log.Debug(ctx, "connectivity changed", "online", online)
	snap := s.Snapshot()
	if online && snap.Offline && snap.IsAuthenticated {
		s.refreshInBackground()
	}
}
