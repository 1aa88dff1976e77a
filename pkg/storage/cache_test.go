package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedStoreHitAndMiss(t *testing.T) {
	inner := NewMemoryStore()
	cached, err := NewCachedStore(inner, 16)
	require.NoError(t, err)

	var hits, misses int
	cached.OnHit = func(Table) { hits++ }
	cached.OnMiss = func(Table) { misses++ }

	ctx := context.Background()
	_, err = inner.Insert(ctx, TableCompanies, Row{"id": "c1", "name": "Tech Innovations Inc."})
	require.NoError(t, err)

	rows, err := cached.Select(ctx, TableCompanies, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, hits)
	assert.Equal(t, 1, misses)

	rows, err = cached.Select(ctx, TableCompanies, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, hits)
}

func TestCachedStoreInvalidatesOnWrite(t *testing.T) {
	inner := NewMemoryStore()
	cached, err := NewCachedStore(inner, 16)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = cached.Insert(ctx, TableCompanies, Row{"id": "c1", "name": "Tech Innovations Inc."})
	require.NoError(t, err)

	rows, err := cached.Select(ctx, TableCompanies, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = cached.Insert(ctx, TableCompanies, Row{"id": "c2", "name": "Global Finance Group"})
	require.NoError(t, err)

	rows, err = cached.Select(ctx, TableCompanies, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "insert must drop the cached query")
}

func TestCachedStoreReturnsCopies(t *testing.T) {
	inner := NewMemoryStore()
	cached, err := NewCachedStore(inner, 16)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = inner.Insert(ctx, TableProfiles, Row{"id": "1", "role": "admin"})
	require.NoError(t, err)

	rows, err := cached.Select(ctx, TableProfiles, nil)
	require.NoError(t, err)
	rows[0]["role"] = "student"

	rows, err = cached.Select(ctx, TableProfiles, nil)
	require.NoError(t, err)
	assert.Equal(t, "admin", rows[0]["role"])
}

func TestCachedStoreCloseReleasesSubscriptions(t *testing.T) {
	inner := NewMemoryStore()
	cached, err := NewCachedStore(inner, 16)
	require.NoError(t, err)

	assert.Equal(t, len(tableColumns), inner.Bus().Open())
	require.NoError(t, cached.Close())
	assert.Equal(t, 0, inner.Bus().Open())
}
