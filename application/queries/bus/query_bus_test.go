package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQuery struct {
	ID  string
	err error
}

func (q stubQuery) Validate() error { return q.err }

// stubCache implements ports.Cache over a plain map
type stubCache struct {
	items map[string]interface{}
}

func newStubCache() *stubCache {
	return &stubCache{items: make(map[string]interface{})}
}

func (c *stubCache) Get(ctx context.Context, key string) (interface{}, bool) {
	v, ok := c.items[key]
	return v, ok
}

func (c *stubCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.items[key] = value
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	delete(c.items, key)
	return nil
}

func (c *stubCache) Clear(ctx context.Context) error {
	c.items = make(map[string]interface{})
	return nil
}

func TestQueryBus_Dispatch(t *testing.T) {
	b := NewQueryBus()
	require.NoError(t, b.Register(stubQuery{}, QueryHandlerFunc(
		func(ctx context.Context, q Query) (interface{}, error) {
			return "result:" + q.(stubQuery).ID, nil
		})))

	result, err := b.Ask(context.Background(), stubQuery{ID: "42"})
	require.NoError(t, err)
	assert.Equal(t, "result:42", result)
}

func TestQueryBus_ValidationFailureShortCircuits(t *testing.T) {
	b := NewQueryBus()
	called := false
	require.NoError(t, b.Register(stubQuery{}, QueryHandlerFunc(
		func(ctx context.Context, q Query) (interface{}, error) {
			called = true
			return nil, nil
		})))

	_, err := b.Ask(context.Background(), stubQuery{err: errors.New("bad id")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query validation failed")
	assert.False(t, called)
}

func TestQueryBus_UnregisteredQuery(t *testing.T) {
	b := NewQueryBus()

	_, err := b.Ask(context.Background(), stubQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestQueryBus_DuplicateRegistration(t *testing.T) {
	b := NewQueryBus()
	handler := QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		return nil, nil
	})

	require.NoError(t, b.Register(stubQuery{}, handler))
	assert.Error(t, b.Register(stubQuery{}, handler))
}

func TestCachingMiddleware_ServesSecondAskFromCache(t *testing.T) {
	b := NewQueryBus()
	cache := newStubCache()
	calls := 0

	handler := NewCachingMiddleware(cache, 60).Wrap(QueryHandlerFunc(
		func(ctx context.Context, q Query) (interface{}, error) {
			calls++
			return "result:" + q.(stubQuery).ID, nil
		}))
	require.NoError(t, b.Register(stubQuery{}, handler))

	ctx := context.Background()
	first, err := b.Ask(ctx, stubQuery{ID: "a"})
	require.NoError(t, err)
	second, err := b.Ask(ctx, stubQuery{ID: "a"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCachingMiddleware_KeysByQueryValue(t *testing.T) {
	cache := newStubCache()
	calls := 0

	handler := NewCachingMiddleware(cache, 60).Wrap(QueryHandlerFunc(
		func(ctx context.Context, q Query) (interface{}, error) {
			calls++
			return q.(stubQuery).ID, nil
		}))

	ctx := context.Background()
	first, err := handler.Handle(ctx, stubQuery{ID: "a"})
	require.NoError(t, err)
	second, err := handler.Handle(ctx, stubQuery{ID: "b"})
	require.NoError(t, err)

	assert.Equal(t, "a", first)
	assert.Equal(t, "b", second)
	assert.Equal(t, 2, calls)
}

func TestCachingMiddleware_DoesNotCacheErrors(t *testing.T) {
	cache := newStubCache()
	calls := 0

	handler := NewCachingMiddleware(cache, 60).Wrap(QueryHandlerFunc(
		func(ctx context.Context, q Query) (interface{}, error) {
			calls++
			return nil, errors.New("transient")
		}))

	ctx := context.Background()
	_, err := handler.Handle(ctx, stubQuery{ID: "a"})
	require.Error(t, err)
	_, err = handler.Handle(ctx, stubQuery{ID: "a"})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}
