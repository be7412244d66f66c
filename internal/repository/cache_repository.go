package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docs-admin-console/config"
	"docs-admin-console/internal/util"

	"github.com/redis/go-redis/v9"
)

type CacheRepository struct {
	client *config.RedisClient
}

func NewCacheRepository(rdb *config.RedisClient) *CacheRepository {
	return &CacheRepository{rdb}
}

// GetJSON : false без ошибки, если ключа нет
func (r *CacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.client.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil // нет в кэше
	} else if err != nil {
		return false, util.LogError("[CacheRepo] ошибка получения из Redis", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, util.LogError("[CacheRepo] ошибка десериализации значения из кэша", err)
	}
	return true, nil
}

func (r *CacheRepository) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return util.LogError("[CacheRepo] ошибка сериализации значения", err)
	}

	cmd := r.client.Client.Set(ctx, key, data, ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("[CacheRepo] ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Client.Del(ctx, keys...).Err(); err != nil {
		return util.LogError("[CacheRepo] ошибка удаления из Redis", err)
	}
	return nil
}

func PermissionKey(userID, folderID string) string {
	return fmt.Sprintf("permission:%s:%s", userID, folderID)
}

func ReportKey(kind, organizationID string) string {
	if organizationID == "" {
		organizationID = "all"
	}
	return fmt.Sprintf("report:%s:%s", organizationID, kind)
}
