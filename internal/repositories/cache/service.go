package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campuspay/internal/models"

	"github.com/redis/go-redis/v9"
)

// CacheService is a thin JSON cache on Redis used as a read-through layer for
// wallet lookups. The database stays the source of truth; every ledger
// mutation invalidates the affected wallet's entry.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}

// Wallet caching

func walletKey(walletID uint) string {
	return fmt.Sprintf("wallet:id:%d", walletID)
}

func (s *CacheService) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	found, err := s.Get(ctx, walletKey(walletID), &wallet)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, redis.Nil
	}
	return &wallet, nil
}

func (s *CacheService) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	if wallet == nil {
		return fmt.Errorf("cannot cache nil wallet")
	}
	return s.SetWithTTL(ctx, walletKey(wallet.ID), wallet, 5*time.Minute)
}

func (s *CacheService) InvalidateWallet(ctx context.Context, walletID uint) error {
	return s.Delete(ctx, walletKey(walletID))
}
