// AngelaMos | 2026
// sweeper_test.go

package subscription

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/angelamos/questledger/internal/config"
	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/user"
)

var frozen = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	subs  map[string]*Subscription
	tiers map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subs:  map[string]*Subscription{},
		tiers: map[string]string{},
	}
}

func (f *fakeStore) add(sessionID, wallet, tier, status string, renewal time.Time) {
	f.subs[sessionID] = &Subscription{
		SessionID:   sessionID,
		Wallet:      wallet,
		Tier:        tier,
		Status:      status,
		RenewalDate: &renewal,
	}
	f.tiers[wallet] = tier
}

func (f *fakeStore) InTx(_ context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeStore) Create(_ context.Context, sub *Subscription) error {
	if _, ok := f.subs[sub.SessionID]; ok {
		return core.ErrDuplicateKey
	}
	copied := *sub
	f.subs[sub.SessionID] = &copied
	return nil
}

func (f *fakeStore) GetBySession(_ context.Context, sessionID string) (*Subscription, error) {
	sub, ok := f.subs[sessionID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return sub, nil
}

func (f *fakeStore) Activate(_ context.Context, sessionID string, renewal time.Time) (bool, error) {
	sub, ok := f.subs[sessionID]
	if !ok || sub.Status != StatusPending {
		return false, nil
	}
	sub.Status = StatusActive
	sub.RenewalDate = &renewal
	return true, nil
}

func (f *fakeStore) ListExpirable(_ context.Context, now time.Time, limit int) ([]Subscription, error) {
	var due []Subscription
	for _, sub := range f.subs {
		if sub.Status == StatusActive && sub.RenewalDate != nil && sub.RenewalDate.Before(now) {
			due = append(due, *sub)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].RenewalDate.Before(*due[j].RenewalDate)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakeStore) Expire(_ context.Context, sessionID string) (bool, error) {
	sub, ok := f.subs[sessionID]
	if !ok || sub.Status != StatusActive {
		return false, nil
	}
	sub.Status = StatusExpired
	return true, nil
}

func (f *fakeStore) EnsureUser(_ context.Context, wallet string) (*user.User, error) {
	if _, ok := f.tiers[wallet]; !ok {
		f.tiers[wallet] = user.TierFree
	}
	return &user.User{Wallet: wallet, Tier: f.tiers[wallet]}, nil
}

func (f *fakeStore) UpdateUserTier(_ context.Context, wallet, tier string) error {
	f.tiers[wallet] = tier
	return nil
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusActive, true},
		{StatusActive, StatusExpired, true},
		{StatusPending, StatusExpired, false},
		{StatusActive, StatusActive, false},
		{StatusExpired, StatusActive, false},
		{StatusExpired, StatusPending, false},
		{StatusActive, StatusPending, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSweepOnce(t *testing.T) {
	store := newFakeStore()
	store.add("sess_lapsed", "0xlapsed", user.TierGold, StatusActive, frozen.Add(-time.Hour))
	store.add("sess_current", "0xcurrent", user.TierSilver, StatusActive, frozen.Add(time.Hour))
	store.add("sess_pending", "0xpending", user.TierBronze, StatusPending, frozen.Add(-time.Hour))

	sweeper := NewSweeper(
		store,
		core.FixedClock{T: frozen},
		config.SubscriptionConfig{SweepBatch: 100},
		nil,
	)

	if err := sweeper.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() error = %v", err)
	}

	if got := store.subs["sess_lapsed"].Status; got != StatusExpired {
		t.Errorf("lapsed subscription status = %q, want expired", got)
	}
	if got := store.tiers["0xlapsed"]; got != user.TierFree {
		t.Errorf("lapsed user tier = %q, want free", got)
	}

	if got := store.subs["sess_current"].Status; got != StatusActive {
		t.Errorf("current subscription status = %q, want active", got)
	}
	if got := store.tiers["0xcurrent"]; got != user.TierSilver {
		t.Errorf("current user tier = %q, want silver", got)
	}

	if got := store.subs["sess_pending"].Status; got != StatusPending {
		t.Errorf("pending subscription status = %q, want pending", got)
	}
}

func TestSweepOnceRespectsBatchLimit(t *testing.T) {
	store := newFakeStore()
	for i, session := range []string{"sess_a", "sess_b", "sess_c"} {
		store.add(session, "0xwallet"+session, user.TierGold, StatusActive,
			frozen.Add(-time.Duration(i+1)*time.Hour))
	}

	sweeper := NewSweeper(
		store,
		core.FixedClock{T: frozen},
		config.SubscriptionConfig{SweepBatch: 2},
		nil,
	)

	if err := sweeper.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() error = %v", err)
	}

	expired := 0
	for _, sub := range store.subs {
		if sub.Status == StatusExpired {
			expired++
		}
	}
	if expired != 2 {
		t.Errorf("expired = %d, want batch limit of 2", expired)
	}
}

func TestLastSweepReportsRun(t *testing.T) {
	store := newFakeStore()
	store.add("sess_lapsed", "0xlapsed", user.TierGold, StatusActive, frozen.Add(-time.Hour))

	sweeper := NewSweeper(
		store,
		core.FixedClock{T: frozen},
		config.SubscriptionConfig{SweepBatch: 100},
		nil,
	)

	at, swept, err := sweeper.LastSweep()
	if !at.IsZero() || swept != 0 || err != nil {
		t.Fatalf("LastSweep() before any run = (%v, %d, %v), want zero values", at, swept, err)
	}

	if err := sweeper.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() error = %v", err)
	}

	at, swept, err = sweeper.LastSweep()
	if !at.Equal(frozen) {
		t.Errorf("LastSweep() at = %v, want %v", at, frozen)
	}
	if swept != 1 {
		t.Errorf("LastSweep() swept = %d, want 1", swept)
	}
	if err != nil {
		t.Errorf("LastSweep() err = %v, want nil", err)
	}
}

func TestSweepOnceIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.add("sess_lapsed", "0xlapsed", user.TierGold, StatusActive, frozen.Add(-time.Hour))

	sweeper := NewSweeper(
		store,
		core.FixedClock{T: frozen},
		config.SubscriptionConfig{SweepBatch: 100},
		nil,
	)

	ctx := context.Background()
	if err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("first SweepOnce() error = %v", err)
	}

	// Simulate the user resubscribing between sweeps.
	store.tiers["0xlapsed"] = user.TierSilver

	if err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatalf("second SweepOnce() error = %v", err)
	}

	if got := store.tiers["0xlapsed"]; got != user.TierSilver {
		t.Errorf("tier = %q, want silver untouched by repeat sweep", got)
	}
}
