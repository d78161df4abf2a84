package app

import (
	"context"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/session"
	"github.com/appetiteclub/kitchenscreen/services/counter/internal/checkout"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"
)

const (
	AppName    = "counter"
	AppVersion = "0.1.0"
)

// App encapsulates the counter checkout application
type App struct {
	config *aqm.Config
	logger aqm.Logger
	micro  *aqm.Micro
}

// New creates a new counter application
func New(config *aqm.Config, logger aqm.Logger) (*App, error) {
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// Initialize sets up the checkout flow against the kitchen service
func (a *App) Initialize(ctx context.Context) error {
	kitchenURL := a.config.GetStringOrDef("services.kitchen.url", "http://localhost:8087")
	gw := gateway.NewHTTPClient(kitchenURL, a.logger)

	lifecycles := []interface{}{}

	var binder checkout.ShopBinder
	if addr, ok := a.config.GetString("redis.addr"); ok && addr != "" {
		store, client := session.NewRedisShopStore(addr)
		binder = store
		redisLifecycle := aqm.LifecycleHooks{
			OnStop: func(context.Context) error { return client.Close() },
		}
		lifecycles = append(lifecycles, redisLifecycle)
	}

	submitter := checkout.NewSubmitter(checkout.NewAssembler(nil), gw, a.logger)
	gate := checkout.NewPaymentGate(gw, a.logger)
	handler := checkout.NewHandler(submitter, gate, binder, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: a.logger,
	})

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithHealthChecks(AppName),
	}
	if len(lifecycles) > 0 {
		options = append(options, aqm.WithLifecycle(lifecycles...))
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
