// Package storage provides the durable key-value store backing session
// persistence on the device: user record, bearer token, cached credentials,
// and app flags such as theme mode. Values are opaque bytes; callers decide
// the encoding.
package storage

import "context"

// Repository is the key-value contract used by the session layer.
//
// Get returns (nil, nil) when the key is absent; callers treat a missing
// key the same as an empty value.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteKeys(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
