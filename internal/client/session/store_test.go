package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/apiclient"
	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func testUser() *models.User {
	bal := decimal.NewFromInt(50)
	return &models.User{ID: "7", Email: "alice@example.com", PrincipalID: "aaaaa-bbbbb", Balance: &bal}
}

// requireSameUser compares users field by field; decoded decimals are not
// reflect-equal to constructed ones.
func requireSameUser(t *testing.T, want, got *models.User) {
	t.Helper()
	require.NotNil(t, got)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Email, got.Email)
	require.Equal(t, want.PrincipalID, got.PrincipalID)
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Balance == nil, got.Balance == nil)
	if want.Balance != nil {
		require.True(t, want.Balance.Equal(*got.Balance), "balance %s != %s", want.Balance, got.Balance)
	}
}

func txList(ids ...string) []models.Transaction {
	out := make([]models.Transaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Transaction{ID: models.ID(id), Amount: decimal.NewFromInt(1), Status: models.TransactionCompleted})
	}
	return out
}

func newStore(t *testing.T, api *fakeAPI, creds *memCreds, slices *memSlices, opts ...Option) *Store {
	t.Helper()
	s := New(context.Background(), api, creds, slices, opts...)
	t.Cleanup(s.Close)
	return s
}

func TestNew_RestoresPersistedSlice(t *testing.T) {
	data, err := EncodeSlice(Slice{IsAuthenticated: true, User: testUser()})
	require.NoError(t, err)

	s := newStore(t, &fakeAPI{}, &memCreds{}, &memSlices{data: data})
	st := s.Snapshot()

	require.True(t, st.IsAuthenticated)
	require.False(t, st.IsInitialized)
	requireSameUser(t, testUser(), st.User)
	require.Equal(t, PhaseAuthenticated, st.Phase())
}

func TestNew_IgnoresGarbageSlice(t *testing.T) {
	s := newStore(t, &fakeAPI{}, &memCreds{}, &memSlices{data: []byte("{nope")})
	require.Equal(t, PhaseUnstarted, s.Snapshot().Phase())
}

func TestInitialize_NoCredential(t *testing.T) {
	api := &fakeAPI{}
	s := newStore(t, api, &memCreds{}, &memSlices{})

	s.Initialize(context.Background())

	st := s.Snapshot()
	require.True(t, st.IsInitialized)
	require.False(t, st.IsAuthenticated)
	require.False(t, st.IsLoading)
	require.Equal(t, PhaseUnauthenticated, st.Phase())
	require.Zero(t, api.userCalls, "no network without a credential")
}

func TestInitialize_RestoresSessionAndRefreshes(t *testing.T) {
	api := &fakeAPI{user: testUser(), txs: txList("1", "2")}
	s := newStore(t, api, &memCreds{token: "tok"}, &memSlices{})

	s.Initialize(context.Background())
	st := s.Snapshot()
	require.True(t, st.IsAuthenticated)
	require.Equal(t, "alice@example.com", st.User.Email)

	s.Wait()
	require.Len(t, s.Snapshot().Transactions, 2)
}

func TestInitialize_FailureIsSwallowed(t *testing.T) {
	data, _ := EncodeSlice(Slice{IsAuthenticated: true, User: testUser()})
	api := &fakeAPI{userErr: fmt.Errorf("%w: dial", apiclient.ErrUnavailable)}
	creds := &memCreds{token: "tok"}
	slices := &memSlices{data: data}
	s := newStore(t, api, creds, slices)

	s.Initialize(context.Background())

	st := s.Snapshot()
	require.True(t, st.IsInitialized)
	require.False(t, st.IsAuthenticated)
	require.Nil(t, st.User)
	require.Equal(t, Slice{}, slices.Slice())
	require.Zero(t, api.TxCalls())
}

func TestInitialize_ConcurrentCallersShareOneFetch(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{user: testUser(), userGate: gate}
	s := newStore(t, api, &memCreds{token: "tok"}, &memSlices{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Initialize(context.Background())
		}()
	}
	require.Eventually(t, func() bool { return s.Snapshot().Phase() == PhaseInitializing }, timeout, tick)
	close(gate)
	wg.Wait()

	s.Initialize(context.Background())
	s.Wait()

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Equal(t, 1, api.userCalls)
	require.True(t, s.Snapshot().IsInitialized)
}

func TestLogin_Success(t *testing.T) {
	api := &fakeAPI{
		loginResp: &models.LoginResponse{AccessToken: "tok-1", TokenType: "bearer"},
		user:      testUser(),
		txs:       txList("1"),
	}
	creds := &memCreds{}
	slices := &memSlices{}
	s := newStore(t, api, creds, slices)

	require.NoError(t, s.Login(context.Background(), "alice@example.com", "pw"))

	st := s.Snapshot()
	require.True(t, st.IsAuthenticated)
	require.Empty(t, st.Error)
	require.Equal(t, "tok-1", creds.Get())
	persisted := slices.Slice()
	require.True(t, persisted.IsAuthenticated)
	requireSameUser(t, st.User, persisted.User)

	s.Wait()
	require.Len(t, s.Snapshot().Transactions, 1)
	require.Equal(t, []string{"login", "me", "transactions"}, api.Trace())
}

func TestLogin_UsesEmbeddedUser(t *testing.T) {
	api := &fakeAPI{loginResp: &models.LoginResponse{AccessToken: "tok", User: testUser()}}
	s := newStore(t, api, &memCreds{}, &memSlices{})

	require.NoError(t, s.Login(context.Background(), "alice@example.com", "pw"))
	s.Wait()
	require.Zero(t, api.userCalls)
	require.Equal(t, models.ID("7"), s.Snapshot().User.ID)
}

func TestLogin_FailureSetsErrorAndReraises(t *testing.T) {
	herr := &apiclient.HTTPError{StatusCode: 401, Method: "POST", URL: "/api/login", Message: "Incorrect email or password"}
	api := &fakeAPI{loginErr: herr}
	s := newStore(t, api, &memCreds{}, &memSlices{})

	err := s.Login(context.Background(), "alice@example.com", "bad")
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	st := s.Snapshot()
	require.False(t, st.IsAuthenticated)
	require.False(t, st.IsLoading)
	require.Equal(t, "Incorrect email or password", st.Error)
}

func TestLogin_UserFetchFailureDropsToken(t *testing.T) {
	api := &fakeAPI{loginResp: &models.LoginResponse{AccessToken: "tok"}, userErr: errBoom}
	creds := &memCreds{}
	s := newStore(t, api, creds, &memSlices{})

	require.ErrorIs(t, s.Login(context.Background(), "a", "b"), errBoom)
	require.Empty(t, creds.Get())
	require.False(t, s.Snapshot().IsAuthenticated)
	require.Equal(t, "boom", s.Snapshot().Error)
}

func TestRegister_ThenLogsIn(t *testing.T) {
	api := &fakeAPI{loginResp: &models.LoginResponse{AccessToken: "tok"}, user: testUser()}
	s := newStore(t, api, &memCreds{}, &memSlices{})

	require.NoError(t, s.Register(context.Background(), "alice@example.com", "pw", "aaaaa-bbbbb"))
	s.Wait()

	require.True(t, s.Snapshot().IsAuthenticated)
	require.Equal(t, []string{"register", "login", "me", "transactions"}, api.Trace())
}

func TestRegister_FailureSkipsLogin(t *testing.T) {
	api := &fakeAPI{registerErr: errBoom}
	s := newStore(t, api, &memCreds{}, &memSlices{})

	require.ErrorIs(t, s.Register(context.Background(), "a", "b", "c"), errBoom)
	require.Empty(t, api.loginCalls)
	require.Equal(t, "boom", s.Snapshot().Error)
}

func TestLogout_ResetsEverything(t *testing.T) {
	api := &fakeAPI{loginResp: &models.LoginResponse{AccessToken: "tok"}, user: testUser(), txs: txList("1")}
	creds := &memCreds{}
	slices := &memSlices{}
	cache := &memCache{}
	s := newStore(t, api, creds, slices, WithTransactionCache(cache))
	s.Initialize(context.Background())
	require.NoError(t, s.Login(context.Background(), "a", "b"))
	s.Wait()

	creds.clearErr = errBoom
	s.Logout(context.Background())

	st := s.Snapshot()
	require.False(t, st.IsAuthenticated)
	require.Nil(t, st.User)
	require.Nil(t, st.Transactions)
	require.True(t, st.IsInitialized)
	require.Empty(t, creds.Get())
	require.Equal(t, Slice{}, slices.Slice())
	require.Equal(t, 1, cache.clears)
}

func TestUpdateUser_NoUserMakesNoCall(t *testing.T) {
	api := &fakeAPI{}
	s := newStore(t, api, &memCreds{}, &memSlices{})

	name := "x"
	_, err := s.UpdateUser(context.Background(), models.UserUpdate{Name: &name})
	require.ErrorIs(t, err, ErrNoUser)
	require.Empty(t, api.Trace())
}

func TestUpdateUser_MergesWithoutRefetch(t *testing.T) {
	api := &fakeAPI{loginResp: &models.LoginResponse{AccessToken: "tok", User: testUser()}}
	slices := &memSlices{}
	s := newStore(t, api, &memCreds{}, slices)
	require.NoError(t, s.Login(context.Background(), "a", "b"))
	s.Wait()

	name := "Alice"
	merged, err := s.UpdateUser(context.Background(), models.UserUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Alice", merged.Name)
	require.Equal(t, "alice@example.com", merged.Email)

	require.Equal(t, "Alice", s.Snapshot().User.Name)
	require.Equal(t, "Alice", slices.Slice().User.Name)
	require.Zero(t, api.userCalls)
}

func TestUpdateUser_FailureKeepsUser(t *testing.T) {
	api := &fakeAPI{loginResp: &models.LoginResponse{AccessToken: "tok", User: testUser()}, updateErr: errBoom}
	s := newStore(t, api, &memCreds{}, &memSlices{})
	require.NoError(t, s.Login(context.Background(), "a", "b"))
	s.Wait()

	name := "Alice"
	_, err := s.UpdateUser(context.Background(), models.UserUpdate{Name: &name})
	require.ErrorIs(t, err, errBoom)
	require.Empty(t, s.Snapshot().User.Name)
	require.Equal(t, "boom", s.Snapshot().Error)
}

// Two overlapping refreshes: A is issued first but answers last. The store
// keeps A's data. This documents the last-to-resolve-wins behaviour; it is
// not a claim that A's data is the freshest.
func TestFetchTransactions_LastToResolveWins(t *testing.T) {
	releaseA, releaseB := make(chan struct{}), make(chan struct{})
	api := &fakeAPI{txHook: func(n int) ([]models.Transaction, error) {
		if n == 1 {
			<-releaseA
			return txList("a1", "a2"), nil
		}
		<-releaseB
		return txList("b1"), nil
	}}
	s := newStore(t, api, &memCreds{}, &memSlices{})
	ctx := context.Background()

	doneA, doneB := make(chan error, 1), make(chan error, 1)
	go func() { doneA <- s.FetchTransactions(ctx) }()
	require.Eventually(t, func() bool { return api.TxCalls() == 1 }, timeout, tick)
	go func() { doneB <- s.FetchTransactions(ctx) }()
	require.Eventually(t, func() bool { return api.TxCalls() == 2 }, timeout, tick)

	close(releaseB)
	require.NoError(t, <-doneB)
	require.Equal(t, txList("b1"), s.Snapshot().Transactions)

	close(releaseA)
	require.NoError(t, <-doneA)
	require.Equal(t, txList("a1", "a2"), s.Snapshot().Transactions)
	require.False(t, s.Snapshot().IsLoading)
}

func TestFetchTransactions_ErrorIsReraised(t *testing.T) {
	api := &fakeAPI{txs: txList("1")}
	s := newStore(t, api, &memCreds{}, &memSlices{})
	require.NoError(t, s.FetchTransactions(context.Background()))

	api.mu.Lock()
	api.txErr = errBoom
	api.mu.Unlock()

	require.ErrorIs(t, s.FetchTransactions(context.Background()), errBoom)
	st := s.Snapshot()
	require.Equal(t, "boom", st.Error)
	require.Equal(t, txList("1"), st.Transactions, "previous data stays")
}

func TestFetchTransactions_OfflineFallback(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := &memCache{}
	api := &fakeAPI{txs: txList("1", "2")}
	s := newStore(t, api, &memCreds{}, &memSlices{}, WithTransactionCache(cache), WithClock(func() time.Time { return now }))

	require.NoError(t, s.FetchTransactions(context.Background()))
	require.Len(t, cache.txs, 2)
	require.Equal(t, now, cache.syncedAt)

	// a fresh store with an unreachable backend serves the cache
	api2 := &fakeAPI{txErr: fmt.Errorf("%w: dial tcp", apiclient.ErrUnavailable)}
	s2 := newStore(t, api2, &memCreds{}, &memSlices{}, WithTransactionCache(cache))

	err := s2.FetchTransactions(context.Background())
	require.ErrorIs(t, err, apiclient.ErrUnavailable)
	st := s2.Snapshot()
	require.True(t, st.Offline)
	require.Len(t, st.Transactions, 2)

	// other failures do not fall back
	api2.mu.Lock()
	api2.txErr = errBoom
	api2.mu.Unlock()
	s3 := newStore(t, api2, &memCreds{}, &memSlices{}, WithTransactionCache(cache))
	require.Error(t, s3.FetchTransactions(context.Background()))
	require.Nil(t, s3.Snapshot().Transactions)
}

func TestFetchTransactions_DiscardedAfterLogout(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{txHook: func(int) ([]models.Transaction, error) {
		<-release
		return txList("stale"), nil
	}}
	s := newStore(t, api, &memCreds{}, &memSlices{})

	done := make(chan error, 1)
	go func() { done <- s.FetchTransactions(context.Background()) }()
	require.Eventually(t, func() bool { return api.TxCalls() == 1 }, timeout, tick)

	s.Logout(context.Background())
	close(release)
	require.NoError(t, <-done)

	st := s.Snapshot()
	require.Nil(t, st.Transactions)
	require.False(t, st.IsLoading)
}

func TestSendPayment_CreatesThenRefreshes(t *testing.T) {
	api := &fakeAPI{
		loginResp: &models.LoginResponse{AccessToken: "tok", User: testUser()},
		created:   &models.Transaction{ID: "99", Amount: decimal.RequireFromString("2.50")},
		txs:       txList("99"),
		balance:   decimal.RequireFromString("47.50"),
	}
	s := newStore(t, api, &memCreds{}, &memSlices{})
	require.NoError(t, s.Login(context.Background(), "a", "b"))
	s.Wait()

	tx, err := s.SendPayment(context.Background(), "zzzzz", decimal.RequireFromString("2.50"), "coffee")
	require.NoError(t, err)
	require.Equal(t, models.ID("99"), tx.ID)

	require.Equal(t, []string{"login", "transactions", "create", "transactions", "balance"}, api.Trace())
	require.Equal(t, models.TransactionCreate{
		RecipientPrincipal: "zzzzz",
		Amount:             decimal.RequireFromString("2.50"),
		Description:        "coffee",
	}, api.createCalls[0])
	st := s.Snapshot()
	require.Equal(t, txList("99"), st.Transactions)
	require.True(t, decimal.RequireFromString("47.50").Equal(*st.User.Balance))
}

func TestSendPayment_FailureIsReturned(t *testing.T) {
	api := &fakeAPI{createErr: errBoom}
	s := newStore(t, api, &memCreds{}, &memSlices{})

	_, err := s.SendPayment(context.Background(), "z", decimal.NewFromInt(1), "")
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, []string{"create"}, api.Trace())
	require.Equal(t, "boom", s.Snapshot().Error)
	require.False(t, s.Snapshot().IsLoading)
}

func TestFetchBalance_NoUser(t *testing.T) {
	s := newStore(t, &fakeAPI{}, &memCreds{}, &memSlices{})
	require.ErrorIs(t, s.FetchBalance(context.Background()), ErrNoUser)
}

func TestSubscribe(t *testing.T) {
	api := &fakeAPI{loginResp: &models.LoginResponse{AccessToken: "tok", User: testUser()}}
	s := newStore(t, api, &memCreds{}, &memSlices{})

	var mu sync.Mutex
	var phases []Phase
	unsubscribe := s.Subscribe(func(st State) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, st.Phase())
	})

	require.NoError(t, s.Login(context.Background(), "a", "b"))
	s.Wait()
	unsubscribe()
	unsubscribe()
	s.Logout(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, phases)
	assert.Contains(t, phases, PhaseAuthenticated)
	assert.NotEqual(t, PhaseUnauthenticated, phases[len(phases)-1], "no events after unsubscribe")
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	api := &fakeAPI{loginResp: &models.LoginResponse{AccessToken: "tok", User: testUser()}, txs: txList("1")}
	s := newStore(t, api, &memCreds{}, &memSlices{})
	require.NoError(t, s.Login(context.Background(), "a", "b"))
	s.Wait()

	snap := s.Snapshot()
	snap.User.Email = "mallory@example.com"
	*snap.User.Balance = decimal.NewFromInt(1_000_000)
	snap.Transactions[0].ID = "hacked"

	st := s.Snapshot()
	require.Equal(t, "alice@example.com", st.User.Email)
	require.True(t, decimal.NewFromInt(50).Equal(*st.User.Balance))
	require.Equal(t, models.ID("1"), st.Transactions[0].ID)
}

func TestSetOnline_RefreshesWhenRecovering(t *testing.T) {
	cache := &memCache{txs: txList("cached")}
	api := &fakeAPI{
		loginResp: &models.LoginResponse{AccessToken: "tok", User: testUser()},
		txErr:     apiclient.ErrUnavailable,
	}
	s := newStore(t, api, &memCreds{}, &memSlices{}, WithTransactionCache(cache))
	require.NoError(t, s.Login(context.Background(), "a", "b"))
	s.Wait()
	require.True(t, s.Snapshot().Offline)

	api.mu.Lock()
	api.txErr = nil
	api.txs = txList("fresh")
	api.mu.Unlock()

	s.SetOnline(context.Background(), true)
	s.Wait()
	st := s.Snapshot()
	require.False(t, st.Offline)
	require.Equal(t, txList("fresh"), st.Transactions)
}
