package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Remember returns the JSON value cached under key, computing and storing it with fn on a miss.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var out T

	data, err := c.GetOrSet(ctx, key, ttl, func() ([]byte, error) {
		v, err := fn()
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
