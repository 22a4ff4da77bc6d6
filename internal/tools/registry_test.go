package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minerva/pkg/errors"
)

func newTestTool(name string, category Category) Tool {
	return New(Metadata{
		Name:        name,
		Description: "Test tool",
		Category:    category,
		Version:     "1.0",
	}, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"ok": true}, nil
	})
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	tool := newTestTool("get_stock_price", CategoryMarketData)
	require.NoError(t, registry.Register(tool))

	retrieved, err := registry.Get("get_stock_price")
	require.NoError(t, err)
	assert.Equal(t, "get_stock_price", retrieved.Name())

	_, err = registry.Get("unknown_tool")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestRegistry_DuplicateName(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(newTestTool("rsi", CategoryTechnical)))

	err := registry.Register(newTestTool("rsi", CategoryTechnical))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyExists))

	// First registration stays intact
	retrieved, err := registry.Get("rsi")
	require.NoError(t, err)
	assert.Equal(t, CategoryTechnical, retrieved.Metadata().Category)
}

func TestRegistry_EmptyName(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(newTestTool("", CategoryUtility))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestRegistry_ListByCategory(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(newTestTool("get_stock_price", CategoryMarketData)))
	require.NoError(t, registry.Register(newTestTool("get_kline", CategoryMarketData)))
	require.NoError(t, registry.Register(newTestTool("rsi", CategoryTechnical)))

	marketTools := registry.ListByCategory(CategoryMarketData)
	assert.Len(t, marketTools, 2)

	technicalTools := registry.ListByCategory(CategoryTechnical)
	require.Len(t, technicalTools, 1)
	assert.Equal(t, "rsi", technicalTools[0].Name())

	assert.Empty(t, registry.ListByCategory(CategoryNews))
}

func TestRegistry_Select(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(newTestTool("rsi", CategoryTechnical)))
	require.NoError(t, registry.Register(newTestTool("macd", CategoryTechnical)))

	selected, err := registry.Select([]string{"rsi", "macd"})
	require.NoError(t, err)
	assert.Len(t, selected, 2)

	_, err = registry.Select([]string{"rsi", "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestRegistry_ConcurrentLookups(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(newTestTool("get_stock_price", CategoryMarketData)))

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				_, err := registry.Get("get_stock_price")
				assert.NoError(t, err)
				_ = registry.List()
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestFunctionTool_Execute(t *testing.T) {
	tool := newTestTool("echo", CategoryUtility)

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, true, result["ok"])

	// Missing handler is an internal error
	broken := New(Metadata{Name: "broken"}, nil)
	_, err = broken.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternal))
}
