package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BebaneMarina/taxe-municipale/internal/config"
)

func TestNew_EmptyAddrDisablesCaching(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})

	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNilCache_IsSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var dest map[string]string
	hit, err := c.GetJSON(ctx, "any", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, c.SetJSON(ctx, "any", map[string]string{"k": "v"}))
	assert.NoError(t, c.Close())
}
