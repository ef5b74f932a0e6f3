package main

import (
	"context"
	"log"

	"github.com/agentbase/agentbase/internal/chat"
	"github.com/agentbase/agentbase/internal/config"
	"github.com/agentbase/agentbase/internal/connector"
	"github.com/agentbase/agentbase/internal/db"
	"github.com/agentbase/agentbase/internal/httpapi"
	"github.com/agentbase/agentbase/internal/secrets"
	"github.com/agentbase/agentbase/internal/store/rabbitmq"
	"github.com/agentbase/agentbase/internal/store/redisstore"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	if err := connector.SyncCatalog(context.Background(), gdb); err != nil {
		log.Fatalf("catalog sync: %v", err)
	}

	codec, err := secrets.NewCodecFromConfig(cfg.CredentialKey)
	if err != nil {
		log.Fatalf("credential codec: %v", err)
	}

	var limiter chat.Limiter
	if cfg.ChatRateLimit > 0 {
		rds := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		limiter = redisstore.NewRateLimiter(rds, cfg.ChatRateLimit, cfg.ChatRateWindow)
		log.Printf("chat rate limit: %d per %s", cfg.ChatRateLimit, cfg.ChatRateWindow)
	}

	var pub *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		pub, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Printf("rabbitmq unavailable, async chat disabled: %v", err)
			pub = nil
		} else {
			defer pub.Close()
		}
	}

	r := httpapi.NewRouter(gdb, cfg, codec, limiter, pub)

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
