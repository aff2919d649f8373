package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trustregistry/internal/domain"
)

// keyPattern matches every record key (entity|authority|action|resource).
const keyPattern = "*|*|*|*"

// RedisStore is a full-capability passthrough on a redis instance. Records
// live as JSON values under their composite natural key with no prefix and
// no expiry; uniqueness falls out of key identity.
//
// List SCANs the whole keyspace and is O(n) in the number of records. The
// registry's record sets are administrative-scale, not user-scale, so this
// is acceptable; an instance shared with other keyspaces is not supported.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore verifies connectivity with a ping and returns the store.
// The client's lifecycle is managed by the caller.
func NewRedisStore(ctx context.Context, client *redis.Client) (*RedisStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: redis ping: %v", ErrConnectionFailed, err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Create(ctx context.Context, record domain.TrustRecord) error {
	key := record.Query().String()
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: exists %s: %v", ErrQueryFailed, key, err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrRecordAlreadyExists, key)
	}
	return s.set(ctx, key, record)
}

func (s *RedisStore) Update(ctx context.Context, record domain.TrustRecord) error {
	key := record.Query().String()
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: exists %s: %v", ErrQueryFailed, key, err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	return s.set(ctx, key, record)
}

func (s *RedisStore) Delete(ctx context.Context, query domain.TrustRecordQuery) error {
	deleted, err := s.client.Del(ctx, query.String()).Result()
	if err != nil {
		return fmt.Errorf("%w: del %s: %v", ErrQueryFailed, query, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, query)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context, query domain.TrustRecordQuery) (domain.TrustRecord, error) {
	raw, err := s.client.Get(ctx, query.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.TrustRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, query)
	}
	if err != nil {
		return domain.TrustRecord{}, fmt.Errorf("%w: get %s: %v", ErrQueryFailed, query, err)
	}
	return decodeRecord(raw)
}

func (s *RedisStore) List(ctx context.Context) ([]domain.TrustRecord, error) {
	var records []domain.TrustRecord
	iter := s.client.Scan(ctx, 0, keyPattern, 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // deleted between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("%w: get %s: %v", ErrQueryFailed, iter.Val(), err)
		}
		record, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan: %v", ErrQueryFailed, err)
	}
	return records, nil
}

func (s *RedisStore) FindByQuery(ctx context.Context, query domain.TrustRecordQuery) (*domain.TrustRecord, error) {
	raw, err := s.client.Get(ctx, query.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrQueryFailed, query, err)
	}
	record, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisStore) set(ctx context.Context, key string, record domain.TrustRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrSerializationFailed, key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrQueryFailed, key, err)
	}
	return nil
}

func decodeRecord(raw []byte) (domain.TrustRecord, error) {
	var record domain.TrustRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.TrustRecord{}, fmt.Errorf("%w: decode record: %v", ErrSerializationFailed, err)
	}
	return record, nil
}
