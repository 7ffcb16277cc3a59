package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClient_LocalTierWithoutRedis(t *testing.T) {
	c := &Client{local: newLocal(10)}
	ctx := context.Background()

	got, err := c.Get(ctx, "room:1")
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, c.Set(ctx, "room:1", []byte(`{"id":"1"}`), time.Minute))
	got, err = c.Get(ctx, "room:1")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"id":"1"}`), got)

	assert.NoError(t, c.Delete(ctx, "room:1"))
	got, err = c.Get(ctx, "room:1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_NilIsSafe(t *testing.T) {
	var c *Client
	ctx := context.Background()

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	assert.NoError(t, c.Delete(ctx, "k"))

	n, err := c.Incr(ctx, "k", time.Second)
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, c.Close())
}
