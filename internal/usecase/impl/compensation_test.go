package impl

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCompensator_RunsInReverseOrder(t *testing.T) {
	comp := &compensator{}

	var order []string
	comp.Push("first", func(_ context.Context) error {
		order = append(order, "first")

		return nil
	})
	comp.Push("second", func(_ context.Context) error {
		order = append(order, "second")

		return nil
	})
	comp.Push("third", func(_ context.Context) error {
		order = append(order, "third")

		return nil
	})

	comp.Run(context.Background(), newDiscardLogger())

	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Zero(t, comp.Len())
}

func TestCompensator_ContinuesPastFailures(t *testing.T) {
	comp := &compensator{}

	var order []string
	comp.Push("first", func(_ context.Context) error {
		order = append(order, "first")

		return nil
	})
	comp.Push("second", func(_ context.Context) error {
		return errors.New("delete failed")
	})
	comp.Push("third", func(_ context.Context) error {
		order = append(order, "third")

		return nil
	})

	comp.Run(context.Background(), newDiscardLogger())

	// The failing middle step does not stop the remaining undos.
	assert.Equal(t, []string{"third", "first"}, order)
}

func TestCompensator_RunClearsStack(t *testing.T) {
	comp := &compensator{}

	calls := 0
	comp.Push("only", func(_ context.Context) error {
		calls++

		return nil
	})

	ctx := context.Background()
	logger := newDiscardLogger()
	comp.Run(ctx, logger)
	comp.Run(ctx, logger)

	assert.Equal(t, 1, calls)
}

func TestCompensator_RunsAfterContextCancellation(t *testing.T) {
	comp := &compensator{}

	var undoErr error = errors.New("not run")
	comp.Push("delete uploaded asset", func(ctx context.Context) error {
		undoErr = ctx.Err()

		return nil
	})

	// The failure being compensated may be the request's own cancellation;
	// undos still have to reach the store.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	comp.Run(ctx, newDiscardLogger())

	assert.NoError(t, undoErr)
}

func TestCompensator_EmptyRunIsNoop(t *testing.T) {
	comp := &compensator{}

	assert.NotPanics(t, func() {
		comp.Run(context.Background(), newDiscardLogger())
	})
}
