package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"products/internal/expression"
	"products/internal/models"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisProductRepository stores each product as a JSON value under
// "<table>:<id>". Scans walk the key space with SCAN and apply the filter
// to every decoded item.
type RedisProductRepository struct {
	client *redis.Client
}

// NewRedisProductRepository creates a new instance of RedisProductRepository.
func NewRedisProductRepository(client *redis.Client) *RedisProductRepository {
	return &RedisProductRepository{
		client: client,
	}
}

func redisKey(table, id string) string {
	return table + ":" + id
}

// Put writes the product value.
func (r *RedisProductRepository) Put(ctx context.Context, table string, product *models.Product) error {
	if product == nil || product.ID == "" {
		return fmt.Errorf("failed to put product: missing id")
	}
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(table, product.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to put product: %w", err)
	}
	return nil
}

// Get retrieves a single product by its ID.
func (r *RedisProductRepository) Get(ctx context.Context, table string, id string) (*models.Product, error) {
	data, err := r.client.Get(ctx, redisKey(table, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return &product, nil
}

// Scan returns every product in the table matching the filter.
func (r *RedisProductRepository) Scan(ctx context.Context, table string, filter expression.Filter) ([]models.Product, error) {
	products := make([]models.Product, 0)
	pattern := redisKey(table, "*")

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}

		if len(keys) > 0 {
			values, err := r.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("failed to scan products: %w", err)
			}
			for i, v := range values {
				s, ok := v.(string)
				if !ok {
					// deleted between SCAN and MGET
					continue
				}
				var p models.Product
				if err := json.Unmarshal([]byte(s), &p); err != nil {
					return nil, fmt.Errorf("failed to decode %s: %w", keys[i], err)
				}
				if filter.Match(tagsOf(p)) {
					products = append(products, p)
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return products, nil
}
