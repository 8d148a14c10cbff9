package cache

import (
	"context"
	"encoding/json"
	"time"

	"docbadman_back_end/internal/database"
	"docbadman_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
)

const (
	PaintingCacheTTL = 10 * time.Minute
	RegionsCacheTTL  = 30 * time.Minute
)

// RedisCache — cache TTL injectable, adossé à Redis.
// Le client PesaPal en dépend via une interface pour que les tests
// puissent substituer un faux cache (ou miniredis).
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

// Remember retourne la valeur en cache pour key, ou exécute fn puis
// met le résultat en cache pour ttl (équivalent du Cache::remember)
func (rc *RedisCache) Remember(ctx context.Context, key string, ttl time.Duration, fn func() (string, error)) (string, error) {
	if val, err := rc.Client.Get(ctx, key).Result(); err == nil {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		return "", err
	}

	// Un échec d'écriture cache n'est pas bloquant : on resservira fn
	rc.Client.Set(ctx, key, val, ttl)
	return val, nil
}

// Forget invalide une clé
func (rc *RedisCache) Forget(ctx context.Context, key string) {
	rc.Client.Del(ctx, key)
}

// GetPaintingFromCache récupère une œuvre depuis Redis (ou nil si absente)
func GetPaintingFromCache(paintingID gocql.UUID) *models.Painting {
	ctx := context.Background()
	key := "painting:" + paintingID.String()

	data, err := database.Redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var painting models.Painting
	if json.Unmarshal([]byte(data), &painting) != nil {
		return nil
	}
	return &painting
}

// SetPaintingInCache met une œuvre en cache
func SetPaintingInCache(painting *models.Painting) {
	ctx := context.Background()
	jsonData, err := json.Marshal(painting)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, "painting:"+painting.ID.String(), jsonData, PaintingCacheTTL)
}

// InvalidatePaintingCache invalide le cache d'une œuvre
func InvalidatePaintingCache(paintingID gocql.UUID) {
	ctx := context.Background()
	database.Redis.Del(ctx, "painting:"+paintingID.String())
}

// InvalidateRegionsCache invalide la liste des régions de livraison
func InvalidateRegionsCache() {
	ctx := context.Background()
	database.Redis.Del(ctx, "regions:active")
}
