package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisLeadKeyPrefix = "lead:"
	redisLeadIndexKey  = "leads:index"
)

// RedisRepository stores each lead as a JSON document under lead:<id> and
// appends the id to an insertion-ordered index list.
type RedisRepository struct {
	client *redis.Client
	now    func() time.Time
}

var _ Repository = (*RedisRepository)(nil)

// NewRedisRepository builds a repository backed by the given client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	if client == nil {
		panic("leads: redis client required")
	}
	return &RedisRepository{client: client, now: time.Now}
}

// Create writes the document and index entry in one MULTI/EXEC.
func (r *RedisRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := newLead(uuid.New().String(), req, r.now().UTC())
	data, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("leads: failed to marshal lead: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisLeadKeyPrefix+lead.ID, data, 0)
		pipe.RPush(ctx, redisLeadIndexKey, lead.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("leads: failed to persist lead: %w", err)
	}
	return lead, nil
}

// GetByID fetches a lead by ID.
func (r *RedisRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	data, err := r.client.Get(ctx, redisLeadKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: failed to fetch lead: %w", err)
	}

	var lead Lead
	if err := json.Unmarshal(data, &lead); err != nil {
		return nil, fmt.Errorf("leads: failed to decode lead: %w", err)
	}
	return &lead, nil
}

// Ping checks the server is reachable.
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
