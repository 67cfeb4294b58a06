package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCommand struct {
	err error
}

func (c stubCommand) Validate() error { return c.err }

func TestCommandBus_Dispatch(t *testing.T) {
	b := NewCommandBus()
	handled := false
	require.NoError(t, b.Register(stubCommand{}, CommandHandlerFunc(
		func(ctx context.Context, cmd Command) error {
			handled = true
			return nil
		})))

	require.NoError(t, b.Send(context.Background(), stubCommand{}))
	assert.True(t, handled)
}

func TestCommandBus_ValidationFailureShortCircuits(t *testing.T) {
	b := NewCommandBus()
	called := false
	require.NoError(t, b.Register(stubCommand{}, CommandHandlerFunc(
		func(ctx context.Context, cmd Command) error {
			called = true
			return nil
		})))

	err := b.Send(context.Background(), stubCommand{err: errors.New("missing field")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command validation failed")
	assert.False(t, called)
}

func TestCommandBus_UnregisteredCommand(t *testing.T) {
	b := NewCommandBus()

	err := b.Send(context.Background(), stubCommand{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestCommandBus_DuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	handler := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, b.Register(stubCommand{}, handler))
	assert.Error(t, b.Register(stubCommand{}, handler))
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	b := NewCommandBus(mw("outer"), mw("inner"))
	require.NoError(t, b.Register(stubCommand{}, CommandHandlerFunc(
		func(ctx context.Context, cmd Command) error {
			order = append(order, "handler")
			return nil
		})))

	require.NoError(t, b.Send(context.Background(), stubCommand{}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestLoggingMiddleware_PassesThroughErrors(t *testing.T) {
	b := NewCommandBus(LoggingMiddleware(zap.NewNop()))
	sentinel := errors.New("apply failed")
	require.NoError(t, b.Register(stubCommand{}, CommandHandlerFunc(
		func(ctx context.Context, cmd Command) error {
			return sentinel
		})))

	err := b.Send(context.Background(), stubCommand{})
	assert.ErrorIs(t, err, sentinel)
}
