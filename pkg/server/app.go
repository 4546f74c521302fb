package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockSage/internal/handler/api"
	icache "StockSage/internal/service/cache"
	"StockSage/internal/usecase"
	pkgch "StockSage/pkg/clickhouse"
	"StockSage/pkg/config"
	xhttp "StockSage/pkg/http"
	pkgkafka "StockSage/pkg/kafka"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	advisor     *usecase.Advisor
	collector   *usecase.PriceCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	monitor     *usecase.Monitor
	learnQueue  *queue.RedisQueue
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	TickProc    *usecase.TickProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	advisor *usecase.Advisor,
	collector *usecase.PriceCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	monitor *usecase.Monitor,
	learnQueue *queue.RedisQueue,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		advisor:    advisor,
		collector:  collector,
		consumer:   consumer,
		kh:         kh,
		monitor:    monitor,
		learnQueue: learnQueue,
		chClient:   chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	// Setup Echo HTTP server using pkg/http and register routes via handler
	httpHandler := a.httpHandler
	if httpHandler == nil {
		h := api.NewAdvisorEchoHandler(l, a.advisor)
		h.SetCache(icache.NewTTLCache())
		httpHandler = h
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start price collector when a feed is configured
	if a.collector != nil && a.cfg.PriceFeed.WebSocketURL != "" {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("collector error", applogger.Error(err))
			}
		}()
		l.Info("collector started", applogger.Strings("symbols", a.cfg.PriceFeed.Symbols))
	}

	// Start consumer if the tick pipeline runs through Kafka
	if a.consumer != nil && a.kh != nil && a.cfg.Backend.Type == "kafka" {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start the learn queue workers
	if a.learnQueue != nil {
		if err := a.learnQueue.Start(); err != nil {
			l.Error("learn queue start error", applogger.Error(err))
		}
	}

	// Start the watchlist monitor
	if a.monitor != nil {
		a.monitor.Start(ctx)
		l.Info("watchlist monitor started")
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	// Stop the monitor before the stores go away
	if a.monitor != nil {
		a.monitor.Stop()
	}

	// Stop collector (pipeline + stream)
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Stop learn queue workers
	if a.learnQueue != nil {
		if err := a.learnQueue.Stop(shutdownCtx); err != nil {
			l.Warn("learn queue stop error", applogger.Error(err))
		}
	}

	// Close tick processor resources (publisher)
	if a.TickProc != nil {
		a.TickProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")

	// Flush any aggregated logs still buffered
	l.RemoveCollector()
	return nil
}
