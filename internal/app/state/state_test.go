package state_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"overlay/internal/app/state"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	lock   sync.Mutex
	data   map[string][]byte
	writes int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) LoadSnapshot(_ context.Context, key string) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.data[key], nil
}

func (m *memStore) SaveSnapshot(_ context.Context, key string, data []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.writes++
	m.data[key] = append([]byte(nil), data...)

	return nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestNewSeedsEmptyStore(t *testing.T) {
	assert := require.New(t)

	ctx := context.Background()
	store := newMemStore()

	s, err := state.New(ctx, testLogger(), store, "widget")
	assert.NoError(err)

	// A snapshot must exist after initialization completes.
	assert.NotEmpty(store.data["widget"])

	snap := s.Snapshot()
	assert.Equal(0, snap.Total.Followers)
	assert.Equal(state.RefreshNormal, snap.RefreshFrequency)
	assert.Equal("USD", snap.Currency)
}

func TestNewLoadsPersistedSnapshot(t *testing.T) {
	assert := require.New(t)

	ctx := context.Background()
	store := newMemStore()
	store.data["widget"] = []byte(`{"total":{"followers":7,"bits":100},"latest":{"cheer":{"name":"viewer","amount":100}},"currency":"EUR"}`)

	s, err := state.New(ctx, testLogger(), store, "widget")
	assert.NoError(err)

	assert.Equal(7, s.Followers())
	assert.Equal(100, s.Bits())
	assert.Equal(state.Record{Name: "viewer", Amount: 100}, s.LatestCheer())
	assert.Equal("EUR", s.Currency())
}

func TestNewDiscardsMalformedSnapshot(t *testing.T) {
	assert := require.New(t)

	ctx := context.Background()
	store := newMemStore()
	store.data["widget"] = []byte(`{not json`)

	s, err := state.New(ctx, testLogger(), store, "widget")
	assert.NoError(err)

	assert.Equal(0, s.Bits())

	// The malformed blob was replaced by a fresh default snapshot.
	assert.JSONEq(
		`{"total":{"followers":0,"subscribers":0,"bits":0,"tips":0},"latest":{"follower":{"name":""},"subscriber":{"name":""},"cheer":{"name":""},"tip":{"name":""},"raid":{"name":""}},"refresh_frequency":"normal","currency":"USD"}`,
		string(store.data["widget"]))
}

func TestCountersAddAndSet(t *testing.T) {
	assert := require.New(t)

	ctx := context.Background()
	s, err := state.New(ctx, testLogger(), newMemStore(), "widget")
	assert.NoError(err)

	s.AddBits(ctx, 5)
	s.AddBits(ctx, 3)
	assert.Equal(8, s.Bits())

	s.SetBits(ctx, 10)
	assert.Equal(10, s.Bits())

	s.AddFollowers(ctx, 1)
	s.AddSubscribers(ctx, 2)
	s.AddTips(ctx, 500)
	assert.Equal(1, s.Followers())
	assert.Equal(2, s.Subscribers())
	assert.Equal(500, s.Tips())
}

func TestEveryMutationWritesThrough(t *testing.T) {
	assert := require.New(t)

	ctx := context.Background()
	store := newMemStore()

	s, err := state.New(ctx, testLogger(), store, "widget")
	assert.NoError(err)

	seedWrites := store.writes

	s.AddBits(ctx, 5)
	s.SetLatestCheer(ctx, "viewer", 5)
	s.SetCurrency(ctx, "EUR")

	assert.Equal(seedWrites+3, store.writes)
}

func TestSnapshotRoundTripsThroughStore(t *testing.T) {
	assert := require.New(t)

	ctx := context.Background()
	store := newMemStore()

	s, err := state.New(ctx, testLogger(), store, "widget")
	assert.NoError(err)

	s.SetLatestSubscriber(ctx, "gifter", 5)
	s.SetLatestRaid(ctx, "raider", 42)
	s.SetTips(ctx, 1200)
	want := s.Snapshot()

	// A second instance booted from the same store sees identical state.
	reloaded, err := state.New(ctx, testLogger(), store, "widget")
	assert.NoError(err)

	got := reloaded.Snapshot()
	if diff := pretty.Compare(want, got); diff != "" {
		t.Fatalf("reloaded snapshot differs:\n%s", diff)
	}
}
