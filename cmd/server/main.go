package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/seaward/sailfinder/pkg/alerts"
	"github.com/seaward/sailfinder/pkg/cache"
	"github.com/seaward/sailfinder/pkg/common"
	"github.com/seaward/sailfinder/pkg/facets"
	"github.com/seaward/sailfinder/pkg/listing"
	"github.com/seaward/sailfinder/pkg/messaging"
	"github.com/seaward/sailfinder/pkg/tracking"
	"github.com/seaward/sailfinder/pkg/upstream"
)

type config struct {
	Port          string
	UpstreamUrl   string
	Market        string
	RedisAddr     string
	RedisPassword string
	RedisDb       int
	RabbitUrl     string
	SearchTimeout time.Duration
	UpstreamRps   float64
}

func loadConfig() config {
	return config{
		Port:          getEnv("PORT", "8080"),
		UpstreamUrl:   getEnv("UPSTREAM_URL", "http://localhost:9000"),
		Market:        getEnv("MARKET", "us"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDb:       getEnvInt("REDIS_DB", 0),
		RabbitUrl:     getEnv("RABBIT_HOST", ""),
		SearchTimeout: getEnvDuration("SEARCH_TIMEOUT", 30*time.Second),
		UpstreamRps:   float64(getEnvInt("UPSTREAM_RPS", 50)),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// connectInvalidation consumes broker events that make cached data stale:
// price drops flush cached search pages, option changes refetch the facet
// lists.
func connectInvalidation(ctx context.Context, conn *amqp.Connection, market string, store cache.Cache, options *facets.OptionCache) {
	ch, err := conn.Channel()
	if err != nil {
		log.Printf("Failed to open invalidation channel: %v", err)
		return
	}
	err = messaging.ListenToTopic(ctx, ch, market, messaging.TopicPriceLowered, func(d amqp.Delivery) error {
		var event messaging.PriceLowered
		if err := json.Unmarshal(d.Body, &event); err != nil {
			return err
		}
		log.Printf("Price lowered for cruise %d, flushing search cache", event.CruiseId)
		if err := store.DeletePrefix(context.Background(), "search"); err != nil {
			log.Printf("Failed to flush search cache: %v", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to listen for price events: %v", err)
	}

	optionsCh, err := conn.Channel()
	if err != nil {
		log.Printf("Failed to open options channel: %v", err)
		return
	}
	err = messaging.ListenToTopic(ctx, optionsCh, market, messaging.TopicOptionsChanged, func(d amqp.Delivery) error {
		log.Printf("Facet options changed upstream, invalidating cache")
		options.Invalidate()
		return nil
	})
	if err != nil {
		log.Printf("Failed to listen for option events: %v", err)
	}
}

func main() {
	cfg := loadConfig()

	searchClient := upstream.NewClient(upstream.Config{
		BaseUrl:           cfg.UpstreamUrl,
		RequestsPerSecond: cfg.UpstreamRps,
		Burst:             int(cfg.UpstreamRps),
		Timeout:           cfg.SearchTimeout,
	})

	var store cache.Cache = cache.NewNoOpCache()
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDb)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		store = redisCache
		log.Printf("Redis cache enabled (%s)", cfg.RedisAddr)
	} else {
		log.Println("Cache disabled")
	}

	var tracker tracking.Tracking
	if cfg.RabbitUrl != "" {
		rabbitTracker, err := tracking.NewRabbitTracking(cfg.RabbitUrl, cfg.Market)
		if err != nil {
			log.Printf("Failed to connect tracking: %v", err)
		} else {
			tracker = rabbitTracker
			defer rabbitTracker.Close()
		}
	}

	optionCache := facets.NewOptionCache(searchClient)

	consumeCtx, stopConsumers := context.WithCancel(context.Background())
	if cfg.RabbitUrl != "" {
		conn, err := amqp.DialConfig(cfg.RabbitUrl, amqp.Config{
			Properties: amqp.NewConnectionProperties(),
		})
		if err != nil {
			log.Printf("Failed to connect to RabbitMQ: %v", err)
		} else {
			connectInvalidation(consumeCtx, conn, cfg.Market, store, optionCache)
			defer conn.Close()
		}
	}

	sessions := NewSessionRegistry(searchClient, listing.Options{Timeout: cfg.SearchTimeout}, 30*time.Minute)
	stopJanitor := make(chan struct{})
	sessions.StartJanitor(5*time.Minute, stopJanitor)

	application := &app{
		sessions: sessions,
		options:  optionCache,
		cache:    store,
		alerts:   alerts.NewClient(cfg.UpstreamUrl, 15*time.Second),
		tracker:  tracker,
	}

	server := &http.Server{Addr: ":" + cfg.Port, Handler: application.routes()}

	common.RunServerWithShutdown(server, "sailfinder gateway", 15*time.Second,
		func(ctx context.Context) error {
			close(stopJanitor)
			stopConsumers()
			sessions.CloseAll()
			return nil
		},
		func(ctx context.Context) error {
			return store.Close()
		},
	)
}
