package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"overlay/db"

	"github.com/stretchr/testify/require"
)

func TestSQLiteSnapshotRoundTrip(t *testing.T) {
	assert := require.New(t)

	ctx := context.Background()

	store, err := db.NewSQLite(ctx, filepath.Join(t.TempDir(), "overlay.db"))
	assert.NoError(err)
	defer func() { _ = store.Close() }()

	// Nothing persisted yet.
	data, err := store.LoadSnapshot(ctx, "widget")
	assert.NoError(err)
	assert.Nil(data)

	assert.NoError(store.SaveSnapshot(ctx, "widget", []byte(`{"total":{"bits":8}}`)))

	data, err = store.LoadSnapshot(ctx, "widget")
	assert.NoError(err)
	assert.JSONEq(`{"total":{"bits":8}}`, string(data))

	// Upsert overwrites in place.
	assert.NoError(store.SaveSnapshot(ctx, "widget", []byte(`{"total":{"bits":10}}`)))

	data, err = store.LoadSnapshot(ctx, "widget")
	assert.NoError(err)
	assert.JSONEq(`{"total":{"bits":10}}`, string(data))

	// Keys are independent.
	data, err = store.LoadSnapshot(ctx, "other")
	assert.NoError(err)
	assert.Nil(data)
}
