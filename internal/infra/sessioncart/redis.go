package sessioncart

import (
	"context"
	"sort"
	"strconv"
	"time"

	repo "app/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ゲストカート。sessioncart:<token> のHashに product_id -> qty を持つ。
// セッションが切れれば消える（TTL）。
type RedisSessionCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionCartRepository(client *redis.Client, ttl time.Duration) *RedisSessionCartRepository {
	return &RedisSessionCartRepository{client: client, ttl: ttl}
}

func key(token string) string {
	return "sessioncart:" + token
}

// 同一商品はHIncrByで数量加算（行は増えない）
func (r *RedisSessionCartRepository) Add(ctx context.Context, token string, productID int64, qty int64) error {
	k := key(token)

	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, k, strconv.FormatInt(productID, 10), qty)
	pipe.Expire(ctx, k, r.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// 行が無ければfalse（エラーではない）
func (r *RedisSessionCartRepository) Remove(ctx context.Context, token string, productID int64) (bool, error) {
	removed, err := r.client.HDel(ctx, key(token), strconv.FormatInt(productID, 10)).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func (r *RedisSessionCartRepository) List(ctx context.Context, token string) ([]repo.SessionCartLine, error) {
	entries, err := r.client.HGetAll(ctx, key(token)).Result()
	if err != nil {
		return nil, err
	}

	lines := make([]repo.SessionCartLine, 0, len(entries))
	for field, value := range entries {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.ParseInt(value, 10, 64)
		if err != nil || qty <= 0 {
			continue
		}
		lines = append(lines, repo.SessionCartLine{ProductID: productID, Quantity: qty})
	}

	//Hashは順序を持たないので、返す順序を安定させる
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	return lines, nil
}

func (r *RedisSessionCartRepository) Clear(ctx context.Context, token string) error {
	return r.client.Del(ctx, key(token)).Err()
}
