package templatedb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/cellforge/pkg/errors"
)

// DefaultRedisKey is the hash that holds records when the location names none.
const DefaultRedisKey = "cellforge:templates"

// RedisStore keeps records as JSON values in a single Redis hash, one field
// per cell.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *log.Logger
}

// OpenRedis connects to the Redis server at location. The optional key query
// parameter names the hash.
func OpenRedis(ctx context.Context, location string, opts ...Option) (*RedisStore, error) {
	key := DefaultRedisKey
	if u, err := parseLocation(location); err == nil {
		q := u.Query()
		if k := q.Get("key"); k != "" {
			key = k
		}
		q.Del("key")
		u.RawQuery = q.Encode()
		location = u.String()
	}
	ro, err := redis.ParseURL(location)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse redis location")
	}
	client := redis.NewClient(ro)
	if err := ping(ctx, func(ctx context.Context) error { return client.Ping(ctx).Err() }); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "connect to redis")
	}
	return NewRedisStore(client, key, opts...), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, key string, opts ...Option) *RedisStore {
	return &RedisStore{client: client, key: key, logger: buildOptions(opts).logger}
}

func (s *RedisStore) Put(ctx context.Context, rec Record, mode Mode) error {
	rec = rec.Seal()
	if err := rec.Verify(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "encode %s", rec.Cell)
	}

	switch mode {
	case ModeWrite:
		_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, s.key)
			p.HSet(ctx, s.key, rec.Cell, data)
			return nil
		})
	case ModeAppend:
		var added bool
		added, err = s.client.HSetNX(ctx, s.key, rec.Cell, data).Result()
		if err == nil && !added {
			return errors.New(errors.ErrCodeSerialization, "template %s already exists (use overwrite mode to replace it)", rec.Cell)
		}
	case ModeOverwrite:
		err = s.client.HSet(ctx, s.key, rec.Cell, data).Err()
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown export mode %v", mode)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "store %s in redis", rec.Cell)
	}
	s.logger.Debug("stored template", "cell", rec.Cell, "key", s.key, "mode", mode)
	return nil
}

func (s *RedisStore) Get(ctx context.Context, cell string) (Record, error) {
	data, err := s.client.HGet(ctx, s.key, cell).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return Record{}, errors.New(errors.ErrCodeNotFound, "%s has no template %q", s.key, cell)
	}
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeSerialization, err, "load %s from redis", cell)
	}
	return decodeJSON(cell, data)
}

func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "list %s", s.key)
	}
	out := make([]Record, 0, len(all))
	for _, cell := range slices.Sorted(maps.Keys(all)) {
		rec, err := decodeJSON(cell, []byte(all[cell]))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

func decodeJSON(cell string, data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeSerialization, err, "decode %s", cell)
	}
	rec.Cell = cell
	if err := rec.Verify(); err != nil {
		return Record{}, err
	}
	return rec, nil
}
