// Package storage provides the key/value backends that persisted store
// slices are written to.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("storage: closed")

// KV is a string key/value medium. Get reports ok=false for a missing key;
// Delete of a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
