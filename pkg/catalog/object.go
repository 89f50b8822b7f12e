package catalog

import (
	"context"
	"io"
)

// ObjectGetter fetches a catalog file from object storage.
type ObjectGetter interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	Bucket() string
}

// LoadObject reads a CSV catalog stored under key.
func LoadObject(ctx context.Context, store ObjectGetter, key string) (ICatalog, error) {
	source := "s3://" + store.Bucket() + "/" + key

	body, err := store.GetObject(ctx, key)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	defer body.Close()

	cat, err := readCSV(body)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	return cat, nil
}
