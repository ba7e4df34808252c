// Package notify keeps the notification list and unread counter in sync
// with the backend.
//
// A Poller does one full fetch when started and afterwards polls only the
// unread counter. Marking notifications read updates local state once the
// backend accepts the change, without a confirming re-fetch.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/apiclient"
	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/dmitrijs2005/paychain/internal/logging"
)

const DefaultInterval = 30 * time.Second

var ErrRunning = errors.New("poller already running")

type API interface {
	GetNotifications(ctx context.Context) (*models.NotificationList, error)
	GetUnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id models.ID) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Snapshot is a copy of the poller state.
type Snapshot struct {
	Notifications []models.Notification
	UnreadCount   int
	Error         string
	// Synced is false until the first full fetch succeeds.
	Synced bool
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithGate sets the check consulted before every fetch. Work is skipped
// while it returns false.
func WithGate(gate func() bool) Option {
	return func(p *Poller) { p.gate = gate }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// WithOnChange registers fn to receive a snapshot after every state change.
func WithOnChange(fn func(Snapshot)) Option {
	return func(p *Poller) { p.onChange = fn }
}

type Poller struct {
	api      API
	interval time.Duration
	gate     func() bool
	log      logging.Logger
	onChange func(Snapshot)

	mu    sync.Mutex
	state Snapshot

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(api API, opts ...Option) *Poller {
	p := &Poller{
		api:      api,
		interval: DefaultInterval,
		gate:     func() bool { return true },
		log:      logging.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start launches the polling loop. It returns ErrRunning if the loop is
// already active. The loop ends on Stop or when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.done != nil {
		select {
		case <-p.done:
		default:
			return ErrRunning
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go func() {
		defer close(done)
		p.loop(ctx)
	}()
	return nil
}

func (p *Poller) loop(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil && ctx.Err() == nil {
		p.log.Warn(ctx, "notification fetch failed", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.refreshCount(ctx); err != nil && ctx.Err() == nil {
				p.log.Warn(ctx, "unread count poll failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the loop and waits for it to exit. It is safe to call when
// the poller is not running.
func (p *Poller) Stop() {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() Snapshot {
	s := p.state
	s.Notifications = append([]models.Notification(nil), p.state.Notifications...)
	return s
}

func (p *Poller) update(fn func(s *Snapshot)) {
	p.mu.Lock()
	fn(&p.state)
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if p.onChange != nil {
		p.onChange(snap)
	}
}

// Refresh fetches the full notification list and the unread count.
func (p *Poller) Refresh(ctx context.Context) error {
	if !p.gate() {
		return nil
	}
	list, err := p.api.GetNotifications(ctx)
	if err != nil {
		p.update(func(s *Snapshot) { s.Error = apiclient.Message(err) })
		return err
	}
	p.update(func(s *Snapshot) {
		s.Notifications = list.Notifications
		s.UnreadCount = list.UnreadCount
		s.Error = ""
		s.Synced = true
	})
	return p.refreshCount(ctx)
}

func (p *Poller) refreshCount(ctx context.Context) error {
	if !p.gate() {
		return nil
	}
	n, err := p.api.GetUnreadCount(ctx)
	if err != nil {
		return err
	}
	p.update(func(s *Snapshot) { s.UnreadCount = n })
	return nil
}

// MarkAsRead marks one notification read. The counter is decremented only
// when the notification was unread locally.
func (p *Poller) MarkAsRead(ctx context.Context, id models.ID) error {
	if err := p.api.MarkNotificationRead(ctx, id); err != nil {
		p.update(func(s *Snapshot) { s.Error = apiclient.Message(err) })
		return err
	}
	p.update(func(s *Snapshot) {
		for i := range s.Notifications {
			n := &s.Notifications[i]
			if n.ID != id || n.Read {
				continue
			}
			n.Read = true
			if s.UnreadCount > 0 {
				s.UnreadCount--
			}
		}
	})
	return nil
}

func (p *Poller) MarkAllAsRead(ctx context.Context) error {
	if err := p.api.MarkAllNotificationsRead(ctx); err != nil {
		p.update(func(s *Snapshot) { s.Error = apiclient.Message(err) })
		return err
	}
	p.update(func(s *Snapshot) {
		for i := range s.Notifications {
			s.Notifications[i].Read = true
		}
		s.UnreadCount = 0
	})
	return nil
}

// Reset drops all local state, e.g. after logout.
func (p *Poller) Reset() {
	p.update(func(s *Snapshot) { *s = Snapshot{} })
}
