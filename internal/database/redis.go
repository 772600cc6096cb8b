package database

import (
	"github.com/captionrelay/captionrelay/internal/config"
	"github.com/go-redis/redis"
)

func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Pass,
		DB:       0,
	})
	return client, nil
}
