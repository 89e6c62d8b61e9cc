package cache

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"
)

// ValkeyClient wraps the Valkey connection used for the auth cache and
// the short-lived availability cache.
type ValkeyClient struct {
	client       rueidis.Client
	usersHashKey string
}

type Config struct {
	Address      string
	Password     string
	UsersHashKey string
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	if cfg.Address == "" {
		cfg.Address = "localhost:6379"
	}
	if cfg.UsersHashKey == "" {
		cfg.UsersHashKey = "users:auth"
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{cfg.Address},
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	return &ValkeyClient{
		client:       client,
		usersHashKey: cfg.UsersHashKey,
	}, nil
}

// GetUserIDByAuth looks up a user id by credentials in the auth hash.
// The field is base64(email:passwordHash), written by CacheUserAuth.
func (v *ValkeyClient) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	cacheKey := authField(email, passwordHash)

	userIDStr, err := v.client.Do(ctx, v.client.B().Hget().Key(v.usersHashKey).Field(cacheKey).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, nil
}

// CacheUserAuth stores a verified credential pair so the next request
// skips the database lookup.
func (v *ValkeyClient) CacheUserAuth(ctx context.Context, email, passwordHash string, userID int64) error {
	cacheKey := authField(email, passwordHash)

	cmd := v.client.B().Hset().Key(v.usersHashKey).
		FieldValue().FieldValue(cacheKey, strconv.FormatInt(userID, 10)).Build()
	return v.client.Do(ctx, cmd).Error()
}

func availabilityKey(trainID int64) string {
	return fmt.Sprintf("availability:train:%d", trainID)
}

// GetAvailability returns the cached availability payload of one
// train, or nil on a miss.
func (v *ValkeyClient) GetAvailability(ctx context.Context, trainID int64) ([]byte, error) {
	raw, err := v.client.Do(ctx, v.client.B().Get().Key(availabilityKey(trainID)).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

// SetAvailability caches an availability payload with a TTL.
func (v *ValkeyClient) SetAvailability(ctx context.Context, trainID int64, payload []byte, ttl time.Duration) error {
	cmd := v.client.B().Set().Key(availabilityKey(trainID)).Value(string(payload)).
		Ex(ttl).Build()
	return v.client.Do(ctx, cmd).Error()
}

// InvalidateAvailability drops the cached availability of one train.
// Called after every booking mutation that touches its seats.
func (v *ValkeyClient) InvalidateAvailability(ctx context.Context, trainID int64) error {
	return v.client.Do(ctx, v.client.B().Del().Key(availabilityKey(trainID)).Build()).Error()
}

func authField(email, passwordHash string) string {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	return base64.StdEncoding.EncodeToString([]byte(authString))
}

func (v *ValkeyClient) Close() error {
	v.client.Close()
	return nil
}
