// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/photo-swap/models"
)

func TestRegistry_StartGetEnd(t *testing.T) {
	src := newFakeSource("u1")
	src.set(sub("1", "u2"))
	opts := testOptions()
	opts.Rand = nil
	reg := NewRegistry(src, opts)
	defer reg.CloseAll()

	c, err := reg.Start(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get(c.ID())
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.Equal(t, models.ScreenCreateSubmission, got.Screen().Kind)

	require.NoError(t, reg.End(c.ID()))
	assert.Equal(t, 0, reg.Len())

	_, err = reg.Get(c.ID())
	assert.ErrorIs(t, err, ErrFlowNotFound)
	assert.ErrorIs(t, reg.End(c.ID()), ErrFlowNotFound)
}

func TestRegistry_IdentityFailureNotKept(t *testing.T) {
	opts := testOptions()
	opts.Rand = nil
	reg := NewRegistry(newFakeSource(), opts)

	c, err := reg.Start(context.Background(), "nobody")

	require.ErrorIs(t, err, ErrIdentity)
	require.NotNil(t, c)
	assert.Equal(t, models.ScreenExit, c.Screen().Kind)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_SnapshotFailureKept(t *testing.T) {
	src := newFakeSource("u1")
	src.failNext(errUnavailable, errUnavailable, errUnavailable)
	opts := testOptions()
	opts.Rand = nil
	reg := NewRegistry(src, opts)
	defer reg.CloseAll()

	c, err := reg.Start(context.Background(), "u1")

	require.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, models.ScreenError, c.Screen().Kind)
}

func TestRegistry_DistinctIDs(t *testing.T) {
	src := newFakeSource("u1", "u2")
	opts := testOptions()
	opts.Rand = nil
	reg := NewRegistry(src, opts)
	defer reg.CloseAll()

	a, err := reg.Start(context.Background(), "u1")
	require.NoError(t, err)
	b, err := reg.Start(context.Background(), "u2")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, reg.Len())

	reg.CloseAll()
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_IdleFlowsSwept(t *testing.T) {
	src := newFakeSource("u1", "u2")
	opts := testOptions()
	opts.Rand = nil
	opts.IdleTTL = 10 * time.Minute
	reg := NewRegistry(src, opts)
	defer reg.CloseAll()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	idle, err := reg.Start(context.Background(), "u1")
	require.NoError(t, err)
	active, err := reg.Start(context.Background(), "u2")
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	_, err = reg.Get(active.ID())
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())

	_, err = reg.Get(idle.ID())
	assert.ErrorIs(t, err, ErrFlowNotFound)
	got, err := reg.Get(active.ID())
	require.NoError(t, err)
	assert.Same(t, active, got)
}

func TestRegistry_GetDropsExpiredFlow(t *testing.T) {
	opts := testOptions()
	opts.Rand = nil
	opts.IdleTTL = time.Minute
	reg := NewRegistry(newFakeSource("u1"), opts)
	defer reg.CloseAll()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	c, err := reg.Start(context.Background(), "u1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = reg.Get(c.ID())
	assert.ErrorIs(t, err, ErrFlowNotFound)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_NoIdleTTLKeepsFlows(t *testing.T) {
	opts := testOptions()
	opts.Rand = nil
	reg := NewRegistry(newFakeSource("u1"), opts)
	defer reg.CloseAll()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	c, err := reg.Start(context.Background(), "u1")
	require.NoError(t, err)

	now = now.Add(24 * time.Hour)
	assert.Equal(t, 0, reg.Sweep())
	_, err = reg.Get(c.ID())
	assert.NoError(t, err)
}

func TestRegistry_JanitorStopsWithContext(t *testing.T) {
	opts := testOptions()
	opts.Rand = nil
	opts.IdleTTL = time.Hour
	reg := NewRegistry(newFakeSource(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Janitor(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}
