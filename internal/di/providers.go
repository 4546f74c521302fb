package di

import (
	"context"
	"fmt"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	"StockSage/internal/engine"
	"StockSage/internal/handler/api"
	"StockSage/internal/learner"
	mid "StockSage/internal/middleware"
	internalrepo "StockSage/internal/repository"
	icache "StockSage/internal/service/cache"
	"StockSage/internal/service/pricefeed"
	"StockSage/internal/services/analyzers"
	"StockSage/internal/tracker"
	"StockSage/internal/usecase"
	pkgcache "StockSage/pkg/cache"
	pkgch "StockSage/pkg/clickhouse"
	"StockSage/pkg/config"
	pkgkafka "StockSage/pkg/kafka"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
	"StockSage/pkg/queue"
	"StockSage/pkg/server"
)

// logPublisher adapts the Kafka producer to the log collector's
// Publisher interface.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (p logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideLogger creates the application logger. With a Kafka backend,
// repeated log lines are aggregated and shipped to the log topic.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	lgr, err := applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
	if err != nil {
		return nil, err
	}
	if cfg.Backend.Type == "kafka" && producer != nil {
		lgr.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      logPublisher{producer: producer},
		})
	}
	return lgr, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.weight_adjustments
			(applied_at DateTime64(3), category LowCardinality(String), delta Float64, reason String, entry_id String)
			ENGINE=MergeTree ORDER BY applied_at`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.outcomes
			(labeled_at DateTime64(3), entry_id String, symbol LowCardinality(String), action LowCardinality(String),
			 outcome LowCardinality(String), reference_price Float64, last_price Float64, performance_pct Float64,
			 target_hit UInt8, stop_loss_hit UInt8, composite_score Float64, confidence Float64)
			ENGINE=MergeTree ORDER BY (symbol, labeled_at)`, db),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideRedisCache creates the Redis client backing weights, the
// watchlist and last prices.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideWeightStore creates the Redis weight store.
func ProvideWeightStore(cache *pkgcache.RedisCache) repository.WeightStore {
	return internalrepo.NewRedisWeightStore(cache)
}

// ProvideWatchStore creates the Redis watchlist store.
func ProvideWatchStore(cache *pkgcache.RedisCache) repository.WatchStore {
	return internalrepo.NewRedisWatchStore(cache)
}

// ProvidePriceCache creates the Redis last-price cache.
func ProvidePriceCache(cache *pkgcache.RedisCache) repository.PriceCache {
	return internalrepo.NewRedisPriceCache(cache)
}

// ProvideAdjustmentLog creates the ClickHouse weight audit log.
func ProvideAdjustmentLog(chClient *pkgch.Client, cfg *config.Config) repository.AdjustmentLog {
	return internalrepo.NewClickHouseAuditLog(chClient.DB(), cfg.ClickHouse.Database+".weight_adjustments")
}

// ProvideOutcomeHistory creates the ClickHouse outcome history.
func ProvideOutcomeHistory(chClient *pkgch.Client, cfg *config.Config) repository.OutcomeHistory {
	return internalrepo.NewClickHouseOutcomeHistory(chClient.DB(), cfg.ClickHouse.Database+".outcomes")
}

// ProvidePublisher creates the Kafka event publisher.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.TickTopic, cfg.Kafka.RecommendationTopic)
}

// ProvideEngineConfig maps advisor tunables from the config file.
func ProvideEngineConfig(cfg *config.Config) (engine.Config, error) {
	ec := engine.Config{
		BuyThreshold:       cfg.Advisor.BuyThreshold,
		SellThreshold:      cfg.Advisor.SellThreshold,
		KTarget:            cfg.Advisor.TargetScale,
		KStop:              cfg.Advisor.StopScale,
		LearningRate:       cfg.Advisor.LearningRate,
		WeightFloor:        cfg.Advisor.WeightFloor,
		WeightCeiling:      cfg.Advisor.WeightCeiling,
		EvaluationHorizon:  cfg.Advisor.EvaluationHorizon,
		HoldDriftTolerance: cfg.Advisor.HoldDriftTolerance,
	}
	if err := ec.Validate(); err != nil {
		return engine.Config{}, err
	}
	return ec, nil
}

// ProvideWeights loads the persisted weight vector, falling back to
// the defaults on first run.
func ProvideWeights(store repository.WeightStore) (*engine.Weights, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wv, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	if wv == nil {
		wv = models.DefaultWeights()
	}
	return engine.NewWeights(wv), nil
}

// ProvideEngine creates the recommendation engine.
func ProvideEngine(ec engine.Config, weights *engine.Weights) (*engine.Engine, error) {
	return engine.New(ec, weights)
}

// ProvideTracker creates the outcome tracker and restores its
// watchlist from Redis.
func ProvideTracker(ec engine.Config, store repository.WatchStore) (*tracker.Tracker, error) {
	trk := tracker.New(ec, store)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := trk.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore watchlist: %w", err)
	}
	return trk, nil
}

// ProvideLearner creates the weight learner.
func ProvideLearner(
	ec engine.Config,
	weights *engine.Weights,
	trk *tracker.Tracker,
	store repository.WeightStore,
	log repository.AdjustmentLog,
) (*learner.Learner, error) {
	return learner.New(ec, weights, trk, store, log)
}

// ProvideAdvisor assembles the advisor use case.
func ProvideAdvisor(
	eng *engine.Engine,
	trk *tracker.Tracker,
	lrn *learner.Learner,
	weights *engine.Weights,
	log repository.AdjustmentLog,
	history repository.OutcomeHistory,
	pub repository.Publisher,
	prices repository.PriceCache,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.Advisor {
	advisor := usecase.NewAdvisor(eng, trk, lrn, weights, log, history, pub, prices, m)
	if cfg.Analyzers.ServiceURL != "" {
		advisor.SetAnalyzers(
			analyzers.NewHTTPTechnicalAnalyzer(cfg),
			analyzers.NewHTTPFundamentalAnalyzer(cfg),
			analyzers.NewHTTPSentimentAnalyzer(cfg),
		)
	}
	return advisor
}

// ProvideLearnQueue creates the Redis job queue that runs learning
// passes when watchlist entries settle.
func ProvideLearnQueue(
	lgr *applogger.Logger,
	cache *pkgcache.RedisCache,
	advisor *usecase.Advisor,
) *queue.RedisQueue {
	q := queue.NewRedisQueue(lgr, &queue.QueueConfig{
		Workers:    1,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, cache.Client(), queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewLearnJob(advisor, 100))
	advisor.SetQueue(q)
	return q
}

// ProvideTickProcessor creates the tick processor use case.
func ProvideTickProcessor(
	pub repository.Publisher,
	advisor *usecase.Advisor,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(pub, advisor, m, cfg.Backend.Type)
}

// ProvidePriceCollector creates the price collector use case.
func ProvidePriceCollector(
	stream repository.MarketStream,
	processor *usecase.TickProcessor,
	m repository.Metrics,
) *usecase.PriceCollector {
	// Build middleware pipeline between WebSocket and the processor
	pipe := mid.NewTickPipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewPriceCollector(stream, processor, m, pipe)
}

// ProvidePriceFeedStream creates the price feed WebSocket stream.
func ProvidePriceFeedStream(cfg *config.Config) repository.MarketStream {
	return pricefeed.New(
		cfg.PriceFeed.APIKey,
		cfg.PriceFeed.WebSocketURL,
		cfg.PriceFeed.Symbols,
		cfg.PriceFeed.ReconnectDelay,
		cfg.PriceFeed.PingInterval,
	)
}

// ProvidePriceTicksHandler registers the handler for the ticks topic.
func ProvidePriceTicksHandler(advisor *usecase.Advisor, m repository.Metrics, cfg *config.Config) *usecase.PriceTicksHandler {
	return usecase.NewPriceTicksHandler(cfg.Kafka.TickTopic, advisor, m)
}

// ProvideMonitor creates the watchlist sweep loop.
func ProvideMonitor(advisor *usecase.Advisor, prices repository.PriceCache, m repository.Metrics, cfg *config.Config) *usecase.Monitor {
	return usecase.NewMonitor(advisor, prices, m, cfg.Monitor.Interval)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	advisor *usecase.Advisor,
	collector *usecase.PriceCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.PriceTicksHandler,
	monitor *usecase.Monitor,
	learnQueue *queue.RedisQueue,
	chClient *pkgch.Client,
	cache *pkgcache.RedisCache,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, lgr, advisor, collector, consumer, kh, monitor, learnQueue, chClient)
	if collector != nil {
		app.TickProc = collector.Processor()
	}

	// Redis-backed response cache, shared across replicas
	h := api.NewAdvisorEchoHandler(lgr, advisor)
	h.SetCache(icache.NewRedisBytesCache(cache.Client()))
	app.SetHTTPHandler(h)
	return app
}
