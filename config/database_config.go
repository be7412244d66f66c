package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Database : только настройки пользователя, остальные данные живут в API платформы
type Database struct {
	*sqlx.DB
}

func NewDatabaseConnection(driver string, cfg *DatabaseConfig) (*Database, error) {
	conn, err := sqlx.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("[Database] ошибка открытия соединения: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
		conn.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("[Database] БД недоступна: %w", err)
	}

	log.Println("[Database] подключение к БД установлено")
	return &Database{conn}, nil
}

func (db *Database) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("[Database] ошибка закрытия соединения: %w", err)
	}
	return nil
}

// RedisClient : кэш прав доступа и отчётов
type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[Redis] сервер недоступен: %w", err)
	}

	log.Printf("[Redis] подключение к %s установлено", cfg.Addr)
	return &RedisClient{Client: client}, nil
}

func (r *RedisClient) Close() error {
	if err := r.Client.Close(); err != nil {
		return fmt.Errorf("[Redis] ошибка закрытия соединения: %w", err)
	}
	return nil
}
