package storage

import "context"

// Prefixed namespaces every key of an underlying KV.
type Prefixed struct {
	kv     KV
	prefix string
}

var _ KV = Prefixed{}

func WithPrefix(kv KV, prefix string) Prefixed {
	return Prefixed{kv: kv, prefix: prefix}
}

func (p Prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.kv.Get(ctx, p.prefix+key)
}

func (p Prefixed) Set(ctx context.Context, key, value string) error {
	return p.kv.Set(ctx, p.prefix+key, value)
}

func (p Prefixed) Delete(ctx context.Context, key string) error {
	return p.kv.Delete(ctx, p.prefix+key)
}
