package console

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

// DefaultPollInterval is how often the unread badge refreshes.
const DefaultPollInterval = 30 * time.Second

// UnreadPoller keeps an unread notification count fresh by polling the API
// on a fixed interval. Callbacks run on the poller goroutine and are never
// invoked after Stop returns.
type UnreadPoller struct {
	client   *Client
	interval time.Duration
	onCount  func(int)
	onError  func(error)
	logger   *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewUnreadPoller builds a poller. A zero interval uses the default.
func NewUnreadPoller(client *Client, interval time.Duration, onCount func(int), logger *zap.Logger) *UnreadPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnreadPoller{
		client:   client,
		interval: interval,
		onCount:  onCount,
		logger:   logger,
	}
}

// OnError registers a callback for failed polls so the UI can mark the badge
// stale instead of silently showing an old count. Set it before Start.
func (p *UnreadPoller) OnError(fn func(error)) {
	p.onError = fn
}

// Start polls immediately and then on every tick until Stop or the context
// ends. Starting a running poller is a no-op.
func (p *UnreadPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	go p.run(ctx)
}

func (p *UnreadPoller) run(ctx context.Context) {
	defer close(p.done)

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *UnreadPoller) poll(ctx context.Context) {
	count, err := p.client.UnreadCount(ctx)
	if err != nil {
		p.logger.Warn("unread poll failed", zap.Error(err))
		if ctx.Err() == nil && p.onError != nil {
			p.onError(err)
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	if p.onCount != nil {
		p.onCount(count)
	}
}

// Stop halts polling and waits for the poll goroutine to finish, so no
// callback fires after it returns.
func (p *UnreadPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	<-done
}

// NotificationPage is one fetched page plus the request generation that
// produced it.
type NotificationPage struct {
	Items      []models.Notification
	Pagination *models.Pagination
}

// PagedFetcher serialises list fetches so a stale response can never
// overwrite the result of a newer request. Every Fetch bumps a generation
// counter; responses for an older generation are dropped.
type PagedFetcher struct {
	client     *Client
	generation atomic.Uint64
}

// NewPagedFetcher wraps the client.
func NewPagedFetcher(client *Client) *PagedFetcher {
	return &PagedFetcher{client: client}
}

// Fetch loads a notification page. It returns (nil, false, nil) when a newer
// Fetch started while this one was in flight, signalling the caller to
// discard the result.
func (f *PagedFetcher) Fetch(ctx context.Context, page, size int, read *bool) (*NotificationPage, bool, error) {
	generation := f.generation.Add(1)

	items, pagination, err := f.client.Notifications(ctx, page, size, read)
	if err != nil {
		return nil, false, err
	}
	if f.generation.Load() != generation {
		return nil, false, nil
	}
	return &NotificationPage{Items: items, Pagination: pagination}, true, nil
}
