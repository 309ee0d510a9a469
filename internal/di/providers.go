package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"TradePulse/internal/domain/repository"
	"TradePulse/internal/handler/api"
	"TradePulse/internal/jobs"
	internalrepo "TradePulse/internal/repository"
	"TradePulse/internal/scheduler"
	icache "TradePulse/internal/service/cache"
	"TradePulse/internal/service/exchange"
	"TradePulse/internal/service/ratelimit"
	"TradePulse/internal/usecase"
	pkgcache "TradePulse/pkg/cache"
	pkgch "TradePulse/pkg/clickhouse"
	"TradePulse/pkg/config"
	xhttp "TradePulse/pkg/http"
	pkgkafka "TradePulse/pkg/kafka"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/metrics"
	pkgqueue "TradePulse/pkg/queue"
	"TradePulse/pkg/server"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and prepares the
// candle archive schema.
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}
	for _, tf := range []string{"15m", "1h", "4h", "1d"} {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s.candles_%s (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)",
			cfg.ClickHouse.Database, tf,
		))
	}
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideGormDB opens the Postgres signal store connection.
func ProvideGormDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := internalrepo.Migrate(db); err != nil {
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	return db, nil
}

// ProvideRedisClient creates the shared Redis connection for the job queue.
// Returns nil when Redis is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideBytesCache picks the response cache backend: Redis when enabled,
// in-process TTL cache otherwise.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideLockCache creates the distributed lock backend for the scheduler.
// Returns nil when Redis is disabled; a single instance needs no lock.
func ProvideLockCache(cfg *config.Config) pkgcache.Service {
	if !cfg.Redis.Enabled {
		return nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil
	}
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil
	}
	return c
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

// ProvideKafkaConsumer creates the candle ingestion consumer.
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

// ProvideMarketData creates the exchange REST client.
func ProvideMarketData(cfg *config.Config, l *applogger.Logger) repository.MarketData {
	return exchange.New(cfg.Exchange.BaseURL, ratelimit.New(), cfg.Exchange.RequestsPerSec, l)
}

// ProvideCandleStore creates the ClickHouse candle archive.
func ProvideCandleStore(chClient *pkgch.Client, l *applogger.Logger) repository.CandleStore {
	store := internalrepo.NewCHCandleStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideSignalStore creates the Postgres signal store.
func ProvideSignalStore(db *gorm.DB, l *applogger.Logger) repository.SignalStore {
	store := internalrepo.NewPGSignalStore(db)
	store.SetLogger(l)
	return store
}

// ProvideNotifier creates the Kafka signal notifier.
func ProvideNotifier(producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) repository.Notifier {
	n := internalrepo.NewKafkaNotifier(producer, cfg.Kafka.SignalTopic)
	n.SetLogger(l)
	return n
}

// ProvideSignalGenerator creates the generation pipeline use case.
func ProvideSignalGenerator(
	cfg *config.Config,
	market repository.MarketData,
	store repository.SignalStore,
	notifier repository.Notifier,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SignalGeneratorUseCase {
	return usecase.NewSignalGeneratorUseCase(
		usecase.GeneratorConfig{
			Symbols:   cfg.Exchange.Symbols,
			Timeframe: repository.NormalizeTimeframe(cfg.Engine.Timeframe),
			Lookback:  cfg.Engine.Lookback,
			SignalTTL: cfg.Engine.SignalTTL,
		},
		market, store, notifier, m, l,
	)
}

// ProvideSignalsUseCase creates the signal read use case.
func ProvideSignalsUseCase(store repository.SignalStore, c icache.BytesCache) *usecase.SignalsUseCase {
	return usecase.NewSignalsUseCase(store, c)
}

// ProvideBacktestUseCase creates the backtest use case.
func ProvideBacktestUseCase(market repository.MarketData, l *applogger.Logger) *usecase.BacktestUseCase {
	return usecase.NewBacktestUseCase(market, l)
}

// ProvideCandlesUseCase creates the candle read use case.
func ProvideCandlesUseCase(store repository.CandleStore) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store)
}

// ProvideExpiryUseCase creates the expiry sweep use case.
func ProvideExpiryUseCase(store repository.SignalStore, m repository.Metrics, l *applogger.Logger) *usecase.ExpiryUseCase {
	return usecase.NewExpiryUseCase(store, m, l)
}

// ProvideCandleIngestHandler registers the handler for the candle topic.
func ProvideCandleIngestHandler(store repository.CandleStore, m repository.Metrics, cfg *config.Config) pkgkafka.MessageHandler {
	return usecase.NewCandleIngestHandler(cfg.Kafka.CandleTopic, store, m)
}

// ProvideJobQueue creates the Redis job queue with its workers. Returns nil
// when Redis is disabled; async endpoints then fall back to sync handling.
func ProvideJobQueue(
	cfg *config.Config,
	client *redis.Client,
	gen *usecase.SignalGeneratorUseCase,
	bt *usecase.BacktestUseCase,
	c icache.BytesCache,
	l *applogger.Logger,
) *pkgqueue.RedisQueue {
	if client == nil {
		return nil
	}
	q := pkgqueue.NewRedisQueue(l, &pkgqueue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, pkgqueue.ModeProducerConsumer)
	q.RegisterJobs([]pkgqueue.Job{
		jobs.NewGenerateSignalJob(gen, l),
		jobs.NewBacktestJob(bt, c, l),
	})
	return q
}

// ProvideScheduler creates the periodic job scheduler.
func ProvideScheduler(
	cfg *config.Config,
	gen *usecase.SignalGeneratorUseCase,
	expiry *usecase.ExpiryUseCase,
	locks pkgcache.Service,
	l *applogger.Logger,
) *scheduler.Scheduler {
	opts := []scheduler.Option{
		scheduler.WithGenerationInterval(cfg.Engine.GenerationInterval),
		scheduler.WithSweepInterval(cfg.Engine.SweepInterval),
	}
	if locks != nil {
		opts = append(opts, scheduler.WithLocks(locks))
	}
	return scheduler.New(gen, expiry, l, opts...)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	signals *usecase.SignalsUseCase,
	gen *usecase.SignalGeneratorUseCase,
	bt *usecase.BacktestUseCase,
	candles *usecase.CandlesUseCase,
	q *pkgqueue.RedisQueue,
) xhttp.Handler {
	h := api.NewSignalsHandler(l, signals, gen, bt, candles)
	if q != nil {
		h.SetQueue(q)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	sched *scheduler.Scheduler,
	consumer *pkgkafka.Consumer,
	ingest pkgkafka.MessageHandler,
	q *pkgqueue.RedisQueue,
	notifier repository.Notifier,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, l, sched, consumer, ingest, q, notifier, chClient, handler)
}
