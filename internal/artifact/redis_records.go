package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// claimScript inserts the record unless an active one holds the key. A
// failed record is overwritten. Runs server-side so the claim stays atomic
// across multiple API instances.
var claimScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local rec = cjson.decode(cur)
	if rec.status == 'pending' or rec.status == 'succeeded' then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// setStatusScript resolves a pending record to the given status and returns
// the stored payload, leaving an already-terminal record untouched.
var setStatusScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
	return false
end
local rec = cjson.decode(cur)
if rec.status == 'pending' then
	rec.status = ARGV[1]
	cur = cjson.encode(rec)
	redis.call('SET', KEYS[1], cur)
end
return cur
`)

// RedisRecords stores artifact records as JSON values in Redis, one key per
// artifact name under a configurable prefix.
type RedisRecords struct {
	client *redis.Client
	prefix string
}

// NewRedisRecords builds a record store over the given client.
func NewRedisRecords(client *redis.Client, prefix string) *RedisRecords {
	return &RedisRecords{client: client, prefix: prefix}
}

func (r *RedisRecords) key(name string) string {
	return r.prefix + name
}

func (r *RedisRecords) Claim(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode artifact record: %w", err)
	}
	claimed, err := claimScript.Run(ctx, r.client, []string{r.key(rec.Name)}, string(payload)).Int()
	if err != nil {
		return fmt.Errorf("claim artifact record: %w", err)
	}
	if claimed == 0 {
		return ErrNameTaken
	}
	return nil
}

func (r *RedisRecords) SetStatus(ctx context.Context, name string, status Status) (Record, error) {
	payload, err := setStatusScript.Run(ctx, r.client, []string{r.key(name)}, string(status)).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("set artifact status: %w", err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return Record{}, fmt.Errorf("decode artifact record: %w", err)
	}
	return rec, nil
}

func (r *RedisRecords) Get(ctx context.Context, name string) (Record, error) {
	payload, err := r.client.Get(ctx, r.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("get artifact record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return Record{}, fmt.Errorf("decode artifact record: %w", err)
	}
	return rec, nil
}

func (r *RedisRecords) List(ctx context.Context) ([]Record, error) {
	var records []Record
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		payload, err := r.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("get artifact record: %w", err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decode artifact record: %w", err)
		}
		records = append(records, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan artifact records: %w", err)
	}
	return records, nil
}

func (r *RedisRecords) Delete(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, r.key(name)).Err(); err != nil {
		return fmt.Errorf("delete artifact record: %w", err)
	}
	return nil
}

func (r *RedisRecords) ExistsActive(ctx context.Context, name string) (bool, error) {
	rec, err := r.Get(ctx, name)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.Status.Active(), nil
}
