package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/config"
	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/dmitrijs2005/paychain/internal/client/notify"
	"github.com/dmitrijs2005/paychain/internal/client/session"
	"github.com/dmitrijs2005/paychain/internal/logging"
	"github.com/stretchr/testify/require"
)

// The fakes embed the interface they stand in for; calling a method a test
// did not expect panics on the nil embedded value.

type fakeSession struct {
	sessionStore

	mu     sync.Mutex
	state  session.State
	online []bool
}

func (f *fakeSession) Snapshot() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) SetOnline(_ context.Context, online bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = append(f.online, online)
}

func (f *fakeSession) Online() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.online...)
}

type fakeBackend struct {
	backend

	down   atomic.Bool
	checks atomic.Int32
}

func (f *fakeBackend) Health(context.Context) error {
	f.checks.Add(1)
	if f.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

type fakeNotices struct {
	notifier
	snap notify.Snapshot
}

func (f *fakeNotices) Snapshot() notify.Snapshot { return f.snap }

func newFakeApp(s *fakeSession, api *fakeBackend, n *fakeNotices) (*App, *bytes.Buffer) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	var out bytes.Buffer
	return newApp(cfg, logging.NewNop(), api, s, n, nil, input(), &out), &out
}

func TestSetMode_NotifiesSessionOnChangeOnly(t *testing.T) {
	s := &fakeSession{}
	a, _ := newFakeApp(s, &fakeBackend{}, &fakeNotices{})
	ctx := context.Background()

	a.setMode(ctx, ModeOnline)
	a.setMode(ctx, ModeOnline)
	a.setMode(ctx, ModeOffline)
	a.setMode(ctx, ModeOffline)
	a.setMode(ctx, ModeOnline)

	require.Equal(t, []bool{true, false, true}, s.Online())
	require.Equal(t, ModeOnline, a.Mode())
}

func TestCheckOnline(t *testing.T) {
	s := &fakeSession{}
	api := &fakeBackend{}
	a, _ := newFakeApp(s, api, &fakeNotices{})
	ctx := context.Background()

	a.checkOnline(ctx)
	require.Equal(t, ModeOnline, a.Mode())

	api.down.Store(true)
	a.checkOnline(ctx)
	require.Equal(t, ModeOffline, a.Mode())
	require.Equal(t, []bool{true, false}, s.Online())
}

func TestStartOnlineStatusWatcher(t *testing.T) {
	s := &fakeSession{}
	api := &fakeBackend{}
	a, _ := newFakeApp(s, api, &fakeNotices{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.Mode() == ModeOnline }, time.Second, time.Millisecond)
	api.down.Store(true)
	require.Eventually(t, func() bool { return a.Mode() == ModeOffline }, time.Second, time.Millisecond)
	api.down.Store(false)
	require.Eventually(t, func() bool { return a.Mode() == ModeOnline }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	require.Equal(t, []bool{true, false, true}, s.Online())
}

func TestGetStatus(t *testing.T) {
	s := &fakeSession{}
	n := &fakeNotices{}
	a, _ := newFakeApp(s, &fakeBackend{}, n)

	require.Equal(t, "", a.getStatus())

	a.setMode(context.Background(), ModeOffline)
	require.Equal(t, "(offline)", a.getStatus())

	s.state = session.State{
		IsAuthenticated: true,
		User:            &models.User{ID: "7", Email: "alice@example.com", Name: "Alice"},
	}
	n.snap = notify.Snapshot{UnreadCount: 3}
	require.Equal(t, "(Alice ✉3 offline)", a.getStatus())

	n.snap = notify.Snapshot{}
	require.Equal(t, "(Alice offline)", a.getStatus())
}

func TestRoot_GreetsAndExits(t *testing.T) {
	capturePrintln(t)
	s := &fakeSession{}
	a, out := newFakeApp(s, &fakeBackend{}, &fakeNotices{})
	a.reader = input("exit")

	a.Root(context.Background())

	require.Contains(t, out.String(), "Welcome to PayChain CLI")
	require.Contains(t, out.String(), "You are not logged in.")
}

func TestClose_RunsClosersOnceAndReturnsFirstError(t *testing.T) {
	a, _ := newFakeApp(&fakeSession{}, &fakeBackend{}, &fakeNotices{})
	errFirst := errors.New("first")
	var calls []int
	a.closers = []func() error{
		func() error { calls = append(calls, 1); return nil },
		func() error { calls = append(calls, 2); return errFirst },
		func() error { calls = append(calls, 3); return errors.New("second") },
	}

	require.ErrorIs(t, a.Close(), errFirst)
	require.NoError(t, a.Close())
	require.Equal(t, []int{1, 2, 3}, calls)
}
