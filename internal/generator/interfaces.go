package generator

import "context"

// Writer persists a generated dataset.
type Writer interface {
	Write(ctx context.Context, ds *Dataset) error
}
