package retry

import "context"

// Operation is a function that can be retried.
type Operation func(ctx context.Context) error

// Strategy runs an operation under a retry policy.
type Strategy interface {
	Execute(ctx context.Context, op Operation) error
}

// None executes the operation exactly once.
type None struct{}

func (None) Execute(ctx context.Context, op Operation) error {
	return op(ctx)
}
