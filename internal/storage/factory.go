package storage

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bookstore/internal/repos"
)

var ErrUnknownKind = errors.New("storage: unknown kind")

var _ KV = (*repos.KVRepo)(nil)

// Options carries what each backend needs; only the fields for the chosen
// kind are read.
type Options struct {
	DB         *sqlx.DB
	File       string
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string
}

// New constructs a KV by kind: "memory", "file", "sqlite" or "s3".
func New(kind string, o Options) (KV, error) {
	switch kind {
	case "memory", "mem":
		return NewMemory(), nil
	case "file":
		if o.File == "" {
			return nil, fmt.Errorf("storage: file path required for file storage")
		}
		return NewFile(o.File)
	case "sqlite", "db":
		if o.DB == nil {
			return nil, fmt.Errorf("storage: database required for sqlite storage")
		}
		return repos.NewKVRepo(o.DB), nil
	case "s3":
		if o.S3Bucket == "" {
			return nil, fmt.Errorf("storage: bucket required for s3 storage")
		}
		return NewS3(NewS3Client(o.S3Region, o.S3Endpoint), o.S3Bucket, o.S3Prefix), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}
