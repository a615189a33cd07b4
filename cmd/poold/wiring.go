package main

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	wpool "github.com/compilepool/poold"
	"github.com/compilepool/poold/helper"
	"github.com/compilepool/poold/internal"
)

func buildResultCache(cfg helper.ResultCacheConfig) (wpool.ResultCache, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "redis":
		if cfg.Redis == nil {
			return nil, internal.Errorf("redis config is required when resultCache.type is redis")
		}
		options := &redis.UniversalOptions{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
		}
		return wpool.NewRedisResultCache(options, time.Duration(cfg.Redis.TTLSec)*time.Second), nil
	default:
		return nil, internal.Errorf("unknown resultCache.type: %s", cfg.Type)
	}
}

func buildAuditPublisher(cfg helper.AuditConfig) (wpool.EventAuditPublisher, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "kafka":
		if cfg.Kafka == nil {
			return nil, internal.Errorf("kafka config is required when audit.type is kafka")
		}
		writer := &kafka.Writer{
			Addr:  kafka.TCP(cfg.Kafka.Brokers...),
			Topic: cfg.Kafka.Topic,
		}
		return wpool.NewKafkaAuditPublisher(writer), nil
	default:
		return nil, internal.Errorf("unknown audit.type: %s", cfg.Type)
	}
}
