// Package state owns the running aggregate totals and "latest of each kind"
// records for a widget instance. Every mutation writes the full snapshot
// through to the configured store.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"overlay/internal/app/metrics"
)

// Store is the key-value collaborator snapshots are persisted to.
type Store interface {
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
	SaveSnapshot(ctx context.Context, key string, data []byte) error
}

type RefreshFrequency string

const (
	RefreshOff    RefreshFrequency = "off"
	RefreshSlow   RefreshFrequency = "slow"
	RefreshNormal RefreshFrequency = "normal"
	RefreshFast   RefreshFrequency = "fast"
)

type Totals struct {
	Followers   int `json:"followers"`
	Subscribers int `json:"subscribers"`
	Bits        int `json:"bits"`
	Tips        int `json:"tips"`
}

// Record is a per-category snapshot of the most recent classified event.
type Record struct {
	Name   string `json:"name"`
	Amount int    `json:"amount,omitempty"`
}

type Latest struct {
	Follower   Record `json:"follower"`
	Subscriber Record `json:"subscriber"`
	Cheer      Record `json:"cheer"`
	Tip        Record `json:"tip"`
	Raid       Record `json:"raid"`
}

type Snapshot struct {
	Total            Totals           `json:"total"`
	Latest           Latest           `json:"latest"`
	RefreshFrequency RefreshFrequency `json:"refresh_frequency"`
	Currency         string           `json:"currency"`
}

func defaultSnapshot() Snapshot {
	return Snapshot{
		RefreshFrequency: RefreshNormal,
		Currency:         "USD",
	}
}

type State struct {
	logger *slog.Logger
	store  Store
	key    string

	lock sync.Mutex
	snap Snapshot
}

// New loads the persisted snapshot for key, falling back to the default
// state when none exists, it is empty, or it fails to decode. The fallback
// is written back immediately, so a snapshot is guaranteed to exist once New
// returns. Construction is synchronous: the caller must not deliver events
// before it completes.
func New(ctx context.Context, logger *slog.Logger, store Store, key string) (*State, error) {
	s := &State{
		logger: logger,
		store:  store,
		key:    key,
		snap:   defaultSnapshot(),
	}

	data, err := store.LoadSnapshot(ctx, key)
	if err != nil {
		logger.Error("failed to load state snapshot, using defaults", "err", err)
	}

	if len(data) > 0 {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			// Malformed snapshots are treated as absent.
			logger.Error("discarding malformed state snapshot", "err", err)
		} else {
			s.snap = snap

			return s, nil
		}
	}

	if err := s.save(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed state snapshot: %w", err)
	}

	return s, nil
}

func (s *State) save(ctx context.Context) error {
	data, err := json.Marshal(s.snap)
	if err != nil {
		return fmt.Errorf("failed to marshal state snapshot: %w", err)
	}

	if err := s.store.SaveSnapshot(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to persist state snapshot: %w", err)
	}

	return nil
}

// persist is the write-through hook used by every mutator. Failures are
// logged, not propagated: losing the latest write beats failing the event
// that caused it.
func (s *State) persist(ctx context.Context) {
	metrics.Overlay.StateWrites.Inc()

	if err := s.save(ctx); err != nil {
		metrics.Overlay.StateWriteFails.Inc()
		s.logger.Error("state write-through failed", "err", err)
	}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap
}

func (s *State) mutate(ctx context.Context, fn func(*Snapshot)) {
	s.lock.Lock()
	defer s.lock.Unlock()

	fn(&s.snap)
	s.persist(ctx)
}

func (s *State) Followers() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Total.Followers
}

func (s *State) SetFollowers(ctx context.Context, n int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Total.Followers = n })
}

func (s *State) AddFollowers(ctx context.Context, n int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Total.Followers += n })
}

func (s *State) Subscribers() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Total.Subscribers
}

func (s *State) SetSubscribers(ctx context.Context, n int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Total.Subscribers = n })
}

func (s *State) AddSubscribers(ctx context.Context, n int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Total.Subscribers += n })
}

func (s *State) Bits() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Total.Bits
}

func (s *State) SetBits(ctx context.Context, n int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Total.Bits = n })
}

func (s *State) AddBits(ctx context.Context, n int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Total.Bits += n })
}

func (s *State) Tips() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Total.Tips
}

func (s *State) SetTips(ctx context.Context, n int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Total.Tips = n })
}

func (s *State) AddTips(ctx context.Context, n int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Total.Tips += n })
}

func (s *State) LatestFollower() Record {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Latest.Follower
}

func (s *State) SetLatestFollower(ctx context.Context, name string) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Latest.Follower = Record{Name: name} })
}

func (s *State) LatestSubscriber() Record {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Latest.Subscriber
}

func (s *State) SetLatestSubscriber(ctx context.Context, name string, amount int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Latest.Subscriber = Record{Name: name, Amount: amount} })
}

func (s *State) LatestCheer() Record {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Latest.Cheer
}

func (s *State) SetLatestCheer(ctx context.Context, name string, amount int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Latest.Cheer = Record{Name: name, Amount: amount} })
}

func (s *State) LatestTip() Record {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Latest.Tip
}

func (s *State) SetLatestTip(ctx context.Context, name string, amount int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Latest.Tip = Record{Name: name, Amount: amount} })
}

func (s *State) LatestRaid() Record {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Latest.Raid
}

func (s *State) SetLatestRaid(ctx context.Context, name string, amount int) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Latest.Raid = Record{Name: name, Amount: amount} })
}

func (s *State) Currency() string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.snap.Currency
}

func (s *State) SetCurrency(ctx context.Context, currency string) {
	s.mutate(ctx, func(snap *Snapshot) { snap.Currency = currency })
}

func (s *State) SetRefreshFrequency(ctx context.Context, freq RefreshFrequency) {
	s.mutate(ctx, func(snap *Snapshot) { snap.RefreshFrequency = freq })
}
