// crmd runs the Xeno CRM ingestion core: the HTTP receipt/vendor endpoints,
// the batch aggregator and the stream ingestion pipeline.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/AryanGupta9719/Xeno-CRM/api"
	"github.com/AryanGupta9719/Xeno-CRM/config"
	"github.com/AryanGupta9719/Xeno-CRM/ingest"
	zlog "github.com/AryanGupta9719/Xeno-CRM/logger/zerolog"
	tallyx "github.com/AryanGupta9719/Xeno-CRM/metrics/tally"
	rqueue "github.com/AryanGupta9719/Xeno-CRM/queue/redis"
	gstore "github.com/AryanGupta9719/Xeno-CRM/store/gorm"
	rstream "github.com/AryanGupta9719/Xeno-CRM/stream/redis"
	"github.com/AryanGupta9719/Xeno-CRM/vendorsim"
	"github.com/AryanGupta9719/Xeno-CRM/xeno"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tally "github.com/uber-go/tally/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownGrace = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zlog.New(os.Stdout, zerolog.InfoLevel)

	cfg, err := config.Load(configPath())
	if err != nil {
		logger.Error("loading the configuration", err)
		os.Exit(1)
	}

	rdb, err := connectRedis(cfg.RedisURL)
	if err != nil {
		logger.Error("connecting to redis", err)
		os.Exit(1)
	}
	defer rdb.Close()

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		logger.Error("connecting to postgres", err)
		os.Exit(1)
	}

	scope, scopeCloser := tally.NewRootScope(tally.ScopeOptions{Prefix: "xeno_crm"}, time.Second)
	defer scopeCloser.Close()

	queue := rqueue.New(rdb, "")
	store := gstore.New(db)
	customerHandler := ingest.NewCustomerHandler(store)
	orderHandler := ingest.NewOrderHandler(store, store)
	for _, l := range []xeno.Loggable{queue, store, customerHandler, orderHandler} {
		l.SetLogger(logger)
	}

	settings := xeno.Settings{
		FlushInterval: cfg.FlushInterval,
		ReadBlock:     cfg.ReadBlock,
		IdleWait:      cfg.IdleWait,
	}

	aggregator := xeno.NewAggregator(settings, queue, store, store,
		xeno.WithLogger(logger),
		xeno.WithCounters(
			tallyx.FromScope(scope, "receipts_folded"),
			tallyx.FromScope(scope, "receipts_lost"),
		),
	)

	pipeline := xeno.NewPipeline(settings, []xeno.StreamBinding{
		{Source: rstream.NewSource(rdb, xeno.CustomerStream, xeno.CustomerGroup, cfg.ConsumerName, cfg.ReadBlock), Handler: customerHandler},
		{Source: rstream.NewSource(rdb, xeno.OrderStream, xeno.OrderGroup, cfg.ConsumerName, cfg.ReadBlock), Handler: orderHandler},
	},
		xeno.WithLogger(logger),
		xeno.WithCounters(
			tallyx.FromScope(scope, "messages_processed"),
			tallyx.FromScope(scope, "messages_dead_lettered"),
		),
	)

	simulator := vendorsim.New(queue,
		vendorsim.WithDelayBounds(cfg.VendorMinDelay, cfg.VendorMaxDelay),
		vendorsim.WithSuccessRate(cfg.VendorSuccessRate),
		vendorsim.WithLogger(logger),
	)

	handler := api.NewHandler(queue, simulator, rstream.NewProducer(rdb), store, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: api.NewRouter(handler),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		aggregator.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := pipeline.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("the stream pipeline terminated", err)
			stop()
		}
	}()

	go func() {
		logger.Info(fmt.Sprintf("http server listening on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutting down the http server", err)
	}
	wg.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("bye")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/default.yaml"
}

// connectRedis accepts both redis:// URLs and plain host:port addresses.
func connectRedis(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing the redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}
