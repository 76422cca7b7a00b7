// Command ringload drives a circbuf.Queue with configurable producer and
// consumer goroutines, logging throughput once per second and exposing
// Prometheus metrics. It is meant for eyeballing queue behavior under load.
//
// Configuration is read from ringload.yaml in the working directory and from
// RINGLOAD_* environment variables.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	circbuf "github.com/dzhiblavi/circular-buffer"
	"github.com/dzhiblavi/circular-buffer/internal"
)

type loadConfig struct {
	Capacity    int
	Producers   int
	Consumers   int
	BatchSize   int
	MetricsAddr string
	Telemetry   bool
}

func loadConfigFromViper() (*loadConfig, error) {
	v := viper.New()

	v.SetDefault("capacity", 1024)
	v.SetDefault("producers", 4)
	v.SetDefault("consumers", 4)
	v.SetDefault("batch_size", 16)
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("telemetry", false)

	v.SetConfigName("ringload")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ringload")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &loadConfig{
		Capacity:    v.GetInt("capacity"),
		Producers:   v.GetInt("producers"),
		Consumers:   v.GetInt("consumers"),
		BatchSize:   v.GetInt("batch_size"),
		MetricsAddr: v.GetString("metrics_addr"),
		Telemetry:   v.GetBool("telemetry"),
	}, nil
}

func main() {
	ctx, cancelCtx := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancelCtx()

	l := internal.NewLogger("ringload", "main")

	cfg, err := loadConfigFromViper()
	if err != nil {
		l.Error("failed to load config", err)
		os.Exit(1)
	}

	opts := []circbuf.Option[int]{}
	if cfg.Telemetry {
		initTelemetry(ctx, "ringload")
		defer closeTelemetry()

		opts = append(opts, circbuf.WithTelemetry[int]("load"))
	}

	q := circbuf.NewQueue(cfg.Capacity, opts...)

	registry := prometheus.NewRegistry()
	registry.MustRegister(circbuf.NewQueueCollector(q, "load"))

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("metrics server failed", err)
		}
	}()
	defer metricsServer.Close()

	stats := internal.NewStats(internal.NewLogger("ringload", "stats"))
	go stats.RunStats(ctx)

	l.Info("starting load",
		"capacity", cfg.Capacity,
		"producers", cfg.Producers,
		"consumers", cfg.Consumers,
		"batch_size", cfg.BatchSize)

	prodWg := &sync.WaitGroup{}
	prodWg.Add(cfg.Producers)

	for idx := range cfg.Producers {
		go func(idx int) {
			defer prodWg.Done()

			val := idx
			for ctx.Err() == nil {
				overwrote, err := q.Push(val)
				if err != nil {
					return
				}

				stats.IncrementPushed()
				if overwrote {
					stats.IncrementOverwrites()
				}

				val += cfg.Producers
			}
		}(idx)
	}

	consWg := &sync.WaitGroup{}
	consWg.Add(cfg.Consumers)

	for range cfg.Consumers {
		go func() {
			defer consWg.Done()

			batch := make([]int, cfg.BatchSize)
			for {
				produced, err := q.WaitPopN(batch)
				if err != nil {
					return
				}
				stats.IncrementPoppedBy(produced)
			}
		}()
	}

	<-ctx.Done()

	prodWg.Wait()
	q.Close()
	consWg.Wait()

	l.Info("load finished",
		"pushed", q.PushedCount(),
		"popped", q.PoppedCount(),
		"overwrites", q.OverwriteCount())
}
