package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/services/dashboard/internal/events"
	"github.com/aquamarinepk/aqm"
	aqmevents "github.com/aquamarinepk/aqm/events"
)

const DefaultPollInterval = 30 * time.Second

const (
	emptySnapshotMessage = "No orders found for this kitchen. Check your configuration."
	loadErrorTitle       = "Error loading kitchen orders"
)

// Synchronizer keeps the dashboard state in line with the kitchen. A ticker
// and order notifications both trigger a full refresh. Refreshes are never
// coalesced; the last one to complete wins.
type Synchronizer struct {
	gateway  gateway.Gateway
	state    *State
	notifier Notifier
	listener *events.OrderListener
	interval time.Duration
	logger   aqm.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSynchronizer(gw gateway.Gateway, state *State, notifier Notifier, subscriber aqmevents.Subscriber, interval time.Duration, logger aqm.Logger) *Synchronizer {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	s := &Synchronizer{
		gateway:  gw,
		state:    state,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
	if subscriber != nil {
		s.listener = events.NewOrderListener(subscriber, s, logger)
	}
	return s
}

// Start runs a first refresh, subscribes to order notifications and starts
// the ticker. A failed subscription leaves polling as the only trigger.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	_ = s.Refresh(runCtx)

	if s.listener != nil {
		if err := s.listener.Start(runCtx); err != nil {
			s.logger.Error("order notifications unavailable, polling only", "error", err)
		}
	}

	s.wg.Add(1)
	go s.poll(runCtx)

	s.logger.Info("dashboard synchronizer started", "shop_id", s.state.ShopID(), "interval", s.interval.String())
	return nil
}

// Stop cancels the ticker and waits for it. Notifications arriving later are ignored.
func (s *Synchronizer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	if s.listener != nil {
		if err := s.listener.Stop(ctx); err != nil {
			s.logger.Error("cannot release order notifications", "error", err)
		}
	}
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("dashboard synchronizer stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Synchronizer) poll(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

// Refresh fetches the shop snapshot and replaces the dashboard state with it.
// Failures are reported to the cook and returned; the next tick retries.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	shopID := s.state.ShopID()

	snapshot, err := s.gateway.FetchSnapshot(ctx, shopID)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		s.logger.Error("kitchen refresh failed", "shop_id", shopID, "error", err)
		s.notify(ctx, LevelDanger, loadErrorTitle, fmt.Sprintf("%s: %v", loadErrorTitle, err))
		return err
	}

	s.state.Replace(snapshot)

	if snapshot.IsEmpty() {
		s.notify(ctx, LevelWarning, "No orders", emptySnapshotMessage)
		return nil
	}

	s.logger.Debug("kitchen refreshed", "shop_id", shopID, "orders", len(snapshot.Orders), "lines", len(snapshot.Lines))
	return nil
}

func (s *Synchronizer) notify(ctx context.Context, level Level, title, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, Notice{Level: level, Title: title, Message: message})
}
