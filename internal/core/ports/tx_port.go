package ports

import "context"

// Transactor scopes a unit of work. Repository calls made with the context
// passed to fn join the same database transaction; fn returning an error
// rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
