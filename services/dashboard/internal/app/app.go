package app

import (
	"context"
	"time"

	"github.com/appetiteclub/kitchenscreen/pkg"
	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/session"
	"github.com/appetiteclub/kitchenscreen/services/dashboard/internal/dashboard"
	"github.com/aquamarinepk/aqm"
	aqmevents "github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	AppName    = "dashboard"
	AppVersion = "0.1.0"
)

// App encapsulates the kitchen dashboard application
type App struct {
	config *aqm.Config
	logger aqm.Logger
	micro  *aqm.Micro
}

// New creates a new dashboard application
func New(config *aqm.Config, logger aqm.Logger) (*App, error) {
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize resolves the shop and wires the board to the kitchen service
func (a *App) Initialize(ctx context.Context) error {
	kitchenURL := a.config.GetStringOrDef("services.kitchen.url", "http://localhost:8087")
	gw := gateway.NewHTTPClient(kitchenURL, a.logger)

	var closers []aqm.LifecycleHooks

	var store *session.ShopStore
	if addr, ok := a.config.GetString("redis.addr"); ok && addr != "" {
		var client *redis.Client
		store, client = session.NewRedisShopStore(addr)
		closers = append(closers, aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return client.Close() },
		})
	}

	configured, _ := a.config.GetString("dashboard.shop.id")
	terminalID, _ := a.config.GetString("dashboard.terminal.id")
	shopID, err := session.ResolveShopID(ctx, configured, terminalID, store)
	if err != nil && shopID == 0 {
		return err
	}
	if err != nil {
		a.logger.Errorf("Shop %d not recorded for terminal: %v", shopID, err)
	}
	if shopID == 0 {
		a.logger.Info("No shop configured, the board will stay empty", "terminal_id", terminalID)
	}

	var subscriber aqmevents.Subscriber
	natsURL := a.config.GetStringOrDef("nats.url", "nats://localhost:4222")
	natsSub, err := pkg.NewNATSSubscriber(natsURL, a.logger)
	if err != nil {
		a.logger.Errorf("NATS unavailable, dashboard will poll only: %v", err)
	} else {
		subscriber = natsSub
		closers = append(closers, aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return natsSub.Close() },
		})
	}

	interval := dashboard.DefaultPollInterval
	if raw, ok := a.config.GetString("dashboard.poll.interval"); ok && raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			interval = parsed
		} else {
			a.logger.Errorf("Invalid dashboard.poll.interval %q, using %s", raw, interval)
		}
	}

	state := dashboard.NewState(shopID)
	notices := dashboard.NewNoticeLog(dashboard.DefaultNoticeLimit, a.logger)
	vm := dashboard.NewViewModel(state, gw, notices, a.logger)
	synchronizer := dashboard.NewSynchronizer(gw, state, notices, subscriber, interval, a.logger)
	handler := dashboard.NewHandler(vm, synchronizer, notices, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: a.logger,
	})

	lifecycles := []interface{}{synchronizer}
	for _, hooks := range closers {
		lifecycles = append(lifecycles, hooks)
	}

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}
