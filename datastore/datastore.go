// Package datastore stores encoded values in Redis under keyfactory keys.
package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/go-redis/redis/v8"
	"github.com/holmberd/go-urine/encoder"
	"github.com/holmberd/go-urine/eventemitter"
	"github.com/holmberd/go-urine/keyfactory"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	ErrKeyNotFound = errors.New("datastore: key not found")
)

const (
	EventStored  = "stored"
	EventRemoved = "removed"

	maxScanCount = 1000
)

// KeysListener is called with the keys affected by a store operation.
type KeysListener = eventemitter.Listener[[]*keyfactory.Key]

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug and warning output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRegisterer registers the client metrics with reg.
// Without it the metrics are collected but not exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// Client represents a datastore client for interacting with a datastore.
// The client is safe for concurrent use.
type Client struct {
	rsClient   *redis.Client
	codec      encoder.Codec
	logger     *zap.Logger
	registerer prometheus.Registerer
	metrics    *metrics
	onStored   *eventemitter.EventTarget[[]*keyfactory.Key]
	onRemoved  *eventemitter.EventTarget[[]*keyfactory.Key]
}

// NewClient creates a new instance of a Client that encodes values with codec.
func NewClient(rsClient *redis.Client, codec encoder.Codec, opts ...Option) (*Client, error) {
	if rsClient == nil {
		return nil, errors.New("datastore: redis client must not be nil")
	}
	if codec == nil {
		return nil, errors.New("datastore: codec must not be nil")
	}
	c := &Client{
		rsClient:  rsClient,
		codec:     codec,
		logger:    zap.NewNop(),
		onStored:  eventemitter.NewEventTarget[[]*keyfactory.Key](EventStored),
		onRemoved: eventemitter.NewEventTarget[[]*keyfactory.Key](EventRemoved),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.metrics = newMetrics(c.registerer)
	return c, nil
}

// GetRSClient returns the underlying Redis client.
//
// NOTE: This is an escape mechanism and should not be abused.
func (c *Client) GetRSClient() *redis.Client {
	return c.rsClient
}

// OnStored returns the event target emitted after keys are written.
func (c *Client) OnStored() *eventemitter.EventTarget[[]*keyfactory.Key] {
	return c.onStored
}

// OnRemoved returns the event target emitted after keys are deleted.
func (c *Client) OnRemoved() *eventemitter.EventTarget[[]*keyfactory.Key] {
	return c.onRemoved
}

// Put encodes v and writes it with the key to the store.
// If the key doesn't exist it's added, otherwise it's updated.
func (c *Client) Put(ctx context.Context, key *keyfactory.Key, v any, expiration time.Duration) (err error) {
	defer c.metrics.observe(opPut, &err)
	if key == nil {
		return nil // No-op for empty key.
	}
	data, err := c.encode(key, v)
	if err != nil {
		return err
	}
	if err := c.rsClient.Set(ctx, key.RedisKey(), data, expiration).Err(); err != nil {
		return fmt.Errorf("datastore: failed to write key '%s': %w", key, err)
	}
	c.logger.Debug("stored key", zap.String("key", key.RedisKey()), zap.Int("bytes", len(data)))
	c.onStored.Emit(ctx, []*keyfactory.Key{key})
	return nil
}

// PutMulti is a batch version of Put. Nothing is written if any value fails to encode.
func (c *Client) PutMulti(
	ctx context.Context,
	keys []*keyfactory.Key,
	values []any,
	expiration time.Duration,
) (err error) {
	defer c.metrics.observe(opPutMulti, &err)
	if len(keys) != len(values) {
		return errors.New("datastore: key and value slices have different length")
	}
	if len(keys) == 0 {
		return nil // No-op for empty batch.
	}

	// Use a map to store key-value pairs as expected by redis MSet.
	kvPairs := make(map[string]any, len(keys))
	for i, key := range keys {
		data, err := c.encode(key, values[i])
		if err != nil {
			return err
		}
		kvPairs[key.RedisKey()] = data
	}

	pipe := c.rsClient.TxPipeline()
	pipe.MSet(ctx, kvPairs)
	if expiration != 0 {
		// Set TTL per key.
		for key := range kvPairs {
			pipe.Expire(ctx, key, expiration)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("datastore: failed to write keys: %w", err)
	}
	c.logger.Debug("stored keys", zap.Int("count", len(keys)))
	c.onStored.Emit(ctx, keys)
	return nil
}

func (c *Client) encode(key *keyfactory.Key, v any) ([]byte, error) {
	data, err := c.codec.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("datastore: failed to encode value for key '%s': %w", key, err)
	}
	c.metrics.encodedBytes.Observe(float64(len(data)))
	return data, nil
}

// Delete deletes the provided keys from the store.
func (c *Client) Delete(ctx context.Context, keys ...*keyfactory.Key) (err error) {
	defer c.metrics.observe(opDelete, &err)
	if len(keys) == 0 {
		return nil // No-op for empty keys.
	}
	rsKeys := make([]string, len(keys))
	for i, key := range keys {
		rsKeys[i] = key.RedisKey()
	}
	n, err := c.rsClient.Del(ctx, rsKeys...).Result()
	if err != nil {
		return fmt.Errorf("datastore: failed to delete keys from redis: %w", err)
	}
	c.logger.Debug("deleted keys", zap.Int("requested", len(keys)), zap.Int64("deleted", n))
	if n > 0 {
		c.onRemoved.Emit(ctx, keys)
	}
	return nil
}

// DeleteMatch deletes all keys matching the key pattern.
//
// NOTE: This is a blocking operation.
func (c *Client) DeleteMatch(ctx context.Context, keyMatch *keyfactory.Key) error {
	if keyMatch == nil {
		return nil // No-op for empty key.
	}
	keys, err := c.GetKeys(ctx, keyMatch)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil // No-op.
	}
	return c.Delete(ctx, keys...)
}

// GetRaw retrieves the encoded data associated with the key from the store.
// ErrKeyNotFound is returned if the key is not found in the store.
func (c *Client) GetRaw(ctx context.Context, key *keyfactory.Key) (data []byte, err error) {
	defer c.metrics.observe(opGet, &err)
	if key == nil {
		return nil, ErrKeyNotFound
	}
	data, err = c.rsClient.Get(ctx, key.RedisKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("datastore: %w", err)
	}
	return data, nil
}

// Get retrieves and decodes the value associated with the key.
// ErrKeyNotFound is returned if the key is not found in the store.
func (c *Client) Get(ctx context.Context, key *keyfactory.Key) (any, error) {
	var v any
	if err := c.GetInto(ctx, key, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetInto retrieves the value associated with the key and decodes it into out.
func (c *Client) GetInto(ctx context.Context, key *keyfactory.Key, out any) error {
	data, err := c.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	if err := c.codec.Unmarshal(data, out); err != nil {
		c.metrics.errors.WithLabelValues(opDecode).Inc()
		return fmt.Errorf("datastore: failed to decode key '%s': %w", key, err)
	}
	return nil
}

// GetMulti retrieves and decodes values by their associated keys from the store.
// Keys that are not found, or whose data cannot be decoded, are skipped.
func (c *Client) GetMulti(ctx context.Context, keys []*keyfactory.Key) (_ []any, err error) {
	defer c.metrics.observe(opGetMulti, &err)
	if len(keys) == 0 {
		return nil, nil // No-op for empty slice of keys.
	}
	rsKeys := make([]string, len(keys))
	for i, key := range keys {
		rsKeys[i] = key.RedisKey()
	}
	results, err := c.rsClient.MGet(ctx, rsKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("datastore: failed to retrieve keys: %w", err)
	}
	values := make([]any, 0, len(results))
	for i, res := range results {
		if res == nil {
			continue // Key not found; skip it.
		}
		data, ok := res.(string)
		if !ok {
			return nil, fmt.Errorf("datastore: unexpected type %T in redis MGET result", res)
		}
		// The decoder copies everything it keeps, so the string memory is
		// only read and never retained or modified.
		var v any
		raw := unsafe.Slice(unsafe.StringData(data), len(data))
		if err := c.codec.Unmarshal(raw, &v); err != nil {
			c.metrics.errors.WithLabelValues(opDecode).Inc()
			c.logger.Warn("skipping undecodable value", zap.String("key", rsKeys[i]), zap.Error(err))
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// GetKeysWithCursor retrieves all matching keys using cursor pagination.
//   - Does not guarantee an exact number of keys returned per page.
//   - A given key may be returned multiple times.
//   - Keys that were not constantly present in the collection during a full iteration, may be returned or not.
func (c *Client) GetKeysWithCursor(
	ctx context.Context,
	cursor uint64,
	limit int,
	keyMatch *keyfactory.Key,
) (keys []*keyfactory.Key, nextCursor uint64, err error) {
	defer c.metrics.observe(opScan, &err)
	if keyMatch == nil {
		return nil, 0, errors.New("datastore: key match must not be nil")
	}
	if limit <= 0 || limit > maxScanCount {
		limit = maxScanCount
	}

	// The Redis SCAN command only offers limited guarantees about the number of keys per call.
	rsKeys, nextCursor, err := c.rsClient.Scan(ctx, cursor, keyMatch.RedisKey(), int64(limit)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("datastore: failed scanning redis for keys: %w", err)
	}
	keys, err = parseRedisKeys(rsKeys)
	if err != nil {
		return nil, 0, err
	}
	return keys, nextCursor, nil
}

// ScanKeys retrieves all matching keys as a non-blocking operation.
// Safe for production use, but may miss keys added/removed during iteration.
func (c *Client) ScanKeys(ctx context.Context, keyMatch *keyfactory.Key) ([]*keyfactory.Key, error) {
	var (
		cursor  uint64
		allKeys []*keyfactory.Key
	)
	for {
		keys, nextCursor, err := c.GetKeysWithCursor(ctx, cursor, maxScanCount, keyMatch)
		if err != nil {
			return nil, err
		}
		allKeys = append(allKeys, keys...)
		if nextCursor == 0 {
			break
		}
		cursor = nextCursor
	}

	// Remove any potential duplicate keys returned during the scan.
	seen := make(map[string]struct{}, len(allKeys))
	keys := make([]*keyfactory.Key, 0, len(allKeys))
	for _, k := range allKeys {
		if _, exists := seen[k.RedisKey()]; !exists {
			seen[k.RedisKey()] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// GetKeys retrieves all matching keys.
//
// NOTE: This is a blocking operation.
func (c *Client) GetKeys(ctx context.Context, keyMatch *keyfactory.Key) (_ []*keyfactory.Key, err error) {
	defer c.metrics.observe(opKeys, &err)
	if keyMatch == nil {
		return nil, errors.New("datastore: key match must not be nil")
	}
	rsKeys, err := c.rsClient.Keys(ctx, keyMatch.RedisKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("datastore: failed to retrieve keys from redis: %w", err)
	}
	return parseRedisKeys(rsKeys)
}

func parseRedisKeys(rsKeys []string) ([]*keyfactory.Key, error) {
	keys := make([]*keyfactory.Key, len(rsKeys))
	for i, rsKey := range rsKeys {
		key, err := keyfactory.ParseRedisKey(rsKey)
		if err != nil {
			return nil, fmt.Errorf("datastore: failed to parse redis key: %w", err)
		}
		keys[i] = key
	}
	return keys, nil
}

// Exists checks whether the key exists in the store.
func (c *Client) Exists(ctx context.Context, key *keyfactory.Key) (_ bool, err error) {
	defer c.metrics.observe(opExists, &err)
	if key == nil {
		return false, nil // No-op for empty key.
	}
	n, err := c.rsClient.Exists(ctx, key.RedisKey()).Result()
	if err != nil {
		return false, fmt.Errorf("datastore: %w", err)
	}
	return n > 0, nil
}
