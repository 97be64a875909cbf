// AngelaMos | 2026
// service_test.go

package quest

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/user"
)

type fakeStore struct {
	quests      []Quest
	users       map[string]*user.User
	completions map[string]map[int64]bool
}

func newFakeStore(quests ...Quest) *fakeStore {
	return &fakeStore{
		quests:      quests,
		users:       map[string]*user.User{},
		completions: map[string]map[int64]bool{},
	}
}

func (f *fakeStore) InTx(_ context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeStore) ResolveActive(_ context.Context, identifier string) (*Quest, error) {
	for i := range f.quests {
		q := &f.quests[i]
		if !q.Active {
			continue
		}
		if q.Code == identifier || strconv.FormatInt(q.ID, 10) == identifier {
			return q, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeStore) ListActive(context.Context) ([]Quest, error) {
	var active []Quest
	for _, q := range f.quests {
		if q.Active {
			active = append(active, q)
		}
	}
	return active, nil
}

func (f *fakeStore) InsertCompletion(_ context.Context, wallet string, questID int64) (bool, error) {
	claimed, ok := f.completions[wallet]
	if !ok {
		claimed = map[int64]bool{}
		f.completions[wallet] = claimed
	}
	if claimed[questID] {
		return false, nil
	}
	claimed[questID] = true
	return true, nil
}

func (f *fakeStore) CountCompletions(_ context.Context, wallet string) (int, error) {
	return len(f.completions[wallet]), nil
}

func (f *fakeStore) EnsureUser(_ context.Context, wallet string) (*user.User, error) {
	if u, ok := f.users[wallet]; ok {
		return u, nil
	}
	u := &user.User{Wallet: wallet, Tier: user.TierFree}
	f.users[wallet] = u
	return u, nil
}

func (f *fakeStore) AddUserXP(_ context.Context, wallet string, delta int) (int, error) {
	u, ok := f.users[wallet]
	if !ok {
		return 0, core.ErrNotFound
	}
	u.TotalXP += delta
	return u.TotalXP, nil
}

var errTxAborted = errors.New("current transaction is aborted, commands ignored until end of transaction block")

// abortingStore mimics how a failed statement poisons the rest of a
// database transaction: every later statement errors and the commit
// is refused.
type abortingStore struct {
	*fakeStore
	aborted bool
}

func (a *abortingStore) InTx(_ context.Context, fn func(Repository) error) error {
	a.aborted = false
	if err := fn(a); err != nil {
		return err
	}
	if a.aborted {
		return errors.New("commit failed: transaction was aborted")
	}
	return nil
}

func (a *abortingStore) fail(err error) error {
	if err != nil {
		a.aborted = true
	}
	return err
}

func (a *abortingStore) ResolveActive(ctx context.Context, identifier string) (*Quest, error) {
	if a.aborted {
		return nil, errTxAborted
	}
	q, err := a.fakeStore.ResolveActive(ctx, identifier)
	return q, a.fail(err)
}

func (a *abortingStore) EnsureUser(ctx context.Context, wallet string) (*user.User, error) {
	if a.aborted {
		return nil, errTxAborted
	}
	u, err := a.fakeStore.EnsureUser(ctx, wallet)
	return u, a.fail(err)
}

func (a *abortingStore) InsertCompletion(ctx context.Context, wallet string, questID int64) (bool, error) {
	if a.aborted {
		return false, errTxAborted
	}
	inserted, err := a.fakeStore.InsertCompletion(ctx, wallet, questID)
	return inserted, a.fail(err)
}

func (a *abortingStore) AddUserXP(ctx context.Context, wallet string, delta int) (int, error) {
	if a.aborted {
		return 0, errTxAborted
	}
	total, err := a.fakeStore.AddUserXP(ctx, wallet, delta)
	return total, a.fail(err)
}

// lockedStore serializes transactions the way row locks do, so
// concurrent awards are safe against the map-backed fake.
type lockedStore struct {
	mu sync.Mutex
	*fakeStore
}

func (l *lockedStore) InTx(ctx context.Context, fn func(Repository) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fakeStore.InTx(ctx, fn)
}

type countingCrediter struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCrediter) MaybeCredit(context.Context, string) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return nil
}

type fakeCrediter struct {
	calls []string
	err   error
}

func (f *fakeCrediter) MaybeCredit(_ context.Context, wallet string) error {
	f.calls = append(f.calls, wallet)
	return f.err
}

type fakeGuard struct {
	err   error
	calls []string
}

func (f *fakeGuard) Check(_ context.Context, key string) error {
	f.calls = append(f.calls, key)
	return f.err
}

func testKey(wallet, action string) string {
	return wallet + ":" + action
}

func dailyQuest() Quest {
	return Quest{ID: 7, Code: "daily-login", Title: "Daily Login", XPReward: 100, Active: true}
}

func TestAwardFreeTier(t *testing.T) {
	store := newFakeStore(dailyQuest())
	svc := NewService(store, nil, nil, nil, nil)

	result, err := svc.Award(context.Background(), "0xAbC", "daily-login")
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	if !result.Awarded {
		t.Error("expected Awarded = true")
	}
	if result.XPGranted != 100 {
		t.Errorf("XPGranted = %d, want 100", result.XPGranted)
	}
	if result.TotalXP != 100 {
		t.Errorf("TotalXP = %d, want 100", result.TotalXP)
	}
	if result.Level.Name != "Initiate" {
		t.Errorf("Level.Name = %q, want Initiate", result.Level.Name)
	}

	if _, ok := store.users["0xabc"]; !ok {
		t.Error("wallet was not normalized to lowercase before persisting")
	}
}

func TestAwardGoldTierMultiplier(t *testing.T) {
	store := newFakeStore(dailyQuest())
	store.users["0xgold"] = &user.User{Wallet: "0xgold", Tier: user.TierGold}

	svc := NewService(store, nil, nil, nil, nil)

	result, err := svc.Award(context.Background(), "0xgold", "daily-login")
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	if result.XPGranted != 125 {
		t.Errorf("XPGranted = %d, want 125", result.XPGranted)
	}
}

func TestAwardByNumericID(t *testing.T) {
	store := newFakeStore(dailyQuest())
	svc := NewService(store, nil, nil, nil, nil)

	result, err := svc.Award(context.Background(), "0xabc", "7")
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if !result.Awarded {
		t.Error("expected Awarded = true for numeric identifier")
	}
}

func TestAwardDuplicateClaim(t *testing.T) {
	store := newFakeStore(dailyQuest())
	svc := NewService(store, nil, nil, nil, nil)

	ctx := context.Background()
	if _, err := svc.Award(ctx, "0xabc", "daily-login"); err != nil {
		t.Fatalf("first Award() error = %v", err)
	}

	result, err := svc.Award(ctx, "0xabc", "daily-login")
	if err != nil {
		t.Fatalf("second Award() error = %v", err)
	}

	if result.Awarded {
		t.Error("second claim must not award")
	}
	if !result.AlreadyClaimed {
		t.Error("expected AlreadyClaimed = true")
	}
	if result.TotalXP != 100 {
		t.Errorf("TotalXP = %d, want unchanged 100", result.TotalXP)
	}
	if store.users["0xabc"].TotalXP != 100 {
		t.Errorf("stored TotalXP = %d, want 100", store.users["0xabc"].TotalXP)
	}
}

func TestAwardDuplicateClaimCommitsCleanly(t *testing.T) {
	store := &abortingStore{fakeStore: newFakeStore(dailyQuest())}
	svc := NewService(store, nil, nil, nil, nil)

	ctx := context.Background()
	if _, err := svc.Award(ctx, "0xabc", "daily-login"); err != nil {
		t.Fatalf("first Award() error = %v", err)
	}

	// The repeat claim must run to commit without any statement
	// erroring; a constraint violation here would abort the
	// transaction and turn the replay answer into a failure.
	result, err := svc.Award(ctx, "0xabc", "daily-login")
	if err != nil {
		t.Fatalf("repeat Award() error = %v, want clean commit", err)
	}
	if !result.AlreadyClaimed {
		t.Error("expected AlreadyClaimed = true")
	}
	if result.TotalXP != 100 {
		t.Errorf("TotalXP = %d, want unchanged 100", result.TotalXP)
	}
}

func TestAwardInterleavedClaimsCreditOnce(t *testing.T) {
	store := &lockedStore{fakeStore: newFakeStore(dailyQuest())}
	crediter := &countingCrediter{}
	svc := NewService(store, crediter, nil, nil, nil)

	var wg sync.WaitGroup
	results := make([]*AwardResult, 2)
	errs := make([]error, 2)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Award(context.Background(), "0xabc", "daily-login")
		}(i)
	}
	wg.Wait()

	awarded := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("Award() #%d error = %v", i, errs[i])
		}
		if results[i].Awarded {
			awarded++
		}
	}

	if awarded != 1 {
		t.Errorf("awarded = %d, want exactly 1", awarded)
	}
	if got := store.users["0xabc"].TotalXP; got != 100 {
		t.Errorf("TotalXP = %d, want a single 100 credit", got)
	}
	if crediter.calls != 1 {
		t.Errorf("cascade calls = %d, want 1", crediter.calls)
	}
}

func TestAwardQuestNotFound(t *testing.T) {
	store := newFakeStore(dailyQuest())
	svc := NewService(store, nil, nil, nil, nil)

	_, err := svc.Award(context.Background(), "0xabc", "no-such-quest")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Award() error = %v, want ErrNotFound", err)
	}
}

func TestAwardInactiveQuestNotFound(t *testing.T) {
	q := dailyQuest()
	q.Active = false
	store := newFakeStore(q)
	svc := NewService(store, nil, nil, nil, nil)

	_, err := svc.Award(context.Background(), "0xabc", "daily-login")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Award() error = %v, want ErrNotFound", err)
	}
}

func TestAwardInvalidWallet(t *testing.T) {
	svc := NewService(newFakeStore(dailyQuest()), nil, nil, nil, nil)

	for _, wallet := range []string{"", "   "} {
		_, err := svc.Award(context.Background(), wallet, "daily-login")
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("Award(%q) error = %v, want ErrInvalidInput", wallet, err)
		}
	}
}

func TestAwardInvokesReferralCascade(t *testing.T) {
	store := newFakeStore(dailyQuest())
	crediter := &fakeCrediter{}
	svc := NewService(store, crediter, nil, nil, nil)

	if _, err := svc.Award(context.Background(), "0xabc", "daily-login"); err != nil {
		t.Fatalf("Award() error = %v", err)
	}

	if len(crediter.calls) != 1 || crediter.calls[0] != "0xabc" {
		t.Errorf("cascade calls = %v, want one call for 0xabc", crediter.calls)
	}
}

func TestAwardCascadeFailureDoesNotFailAward(t *testing.T) {
	store := newFakeStore(dailyQuest())
	crediter := &fakeCrediter{err: errors.New("cascade down")}
	svc := NewService(store, crediter, nil, nil, nil)

	result, err := svc.Award(context.Background(), "0xabc", "daily-login")
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if !result.Awarded {
		t.Error("award must stand even when the cascade fails")
	}
}

type ctxRecordingCrediter struct {
	called bool
	ctxErr error
}

func (c *ctxRecordingCrediter) MaybeCredit(ctx context.Context, _ string) error {
	c.called = true
	c.ctxErr = ctx.Err()
	return nil
}

type ctxRecordingInvalidator struct {
	called bool
	ctxErr error
}

func (c *ctxRecordingInvalidator) Invalidate(ctx context.Context, _ ...string) {
	c.called = true
	c.ctxErr = ctx.Err()
}

func TestAwardPostCommitSurvivesCanceledRequest(t *testing.T) {
	store := newFakeStore(dailyQuest())
	crediter := &ctxRecordingCrediter{}
	invalidator := &ctxRecordingInvalidator{}
	svc := NewService(store, crediter, invalidator, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Award(ctx, "0xabc", "daily-login")
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if !result.Awarded {
		t.Fatal("expected Awarded = true")
	}

	if !crediter.called {
		t.Fatal("cascade was not invoked")
	}
	if crediter.ctxErr != nil {
		t.Errorf("cascade saw canceled context: %v", crediter.ctxErr)
	}
	if !invalidator.called {
		t.Fatal("invalidation was not invoked")
	}
	if invalidator.ctxErr != nil {
		t.Errorf("invalidation saw canceled context: %v", invalidator.ctxErr)
	}
}

func TestAwardNoCascadeOnDuplicate(t *testing.T) {
	store := newFakeStore(dailyQuest())
	crediter := &fakeCrediter{}
	svc := NewService(store, crediter, nil, nil, nil)

	ctx := context.Background()
	if _, err := svc.Award(ctx, "0xabc", "daily-login"); err != nil {
		t.Fatalf("first Award() error = %v", err)
	}
	if _, err := svc.Award(ctx, "0xabc", "daily-login"); err != nil {
		t.Fatalf("second Award() error = %v", err)
	}

	if len(crediter.calls) != 1 {
		t.Errorf("cascade calls = %d, want 1", len(crediter.calls))
	}
}

func TestAwardRateLimited(t *testing.T) {
	store := newFakeStore(dailyQuest())
	guard := &fakeGuard{err: core.RateLimitedError(30)}
	svc := NewService(store, nil, nil, guard, testKey)

	_, err := svc.Award(context.Background(), "0xabc", "daily-login")
	if !errors.Is(err, core.ErrRateLimited) {
		t.Fatalf("Award() error = %v, want ErrRateLimited", err)
	}

	if len(guard.calls) != 1 || guard.calls[0] != "0xabc:quest_claim" {
		t.Errorf("guard calls = %v, want [0xabc:quest_claim]", guard.calls)
	}
	if len(store.completions) != 0 {
		t.Error("rate-limited claim must not touch the ledger")
	}
}

func TestGrantedXP(t *testing.T) {
	tests := []struct {
		name   string
		reward int
		tier   string
		want   int
	}{
		{"free tier", 100, user.TierFree, 100},
		{"bronze tier", 100, user.TierBronze, 105},
		{"silver tier", 100, user.TierSilver, 110},
		{"gold tier", 100, user.TierGold, 125},
		{"unknown tier falls back to free", 100, "platinum", 100},
		{"rounds to nearest", 10, user.TierBronze, 11},
		{"zero reward", 0, user.TierGold, 0},
		{"negative reward clamps", -50, user.TierGold, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GrantedXP(tt.reward, tt.tier); got != tt.want {
				t.Errorf("GrantedXP(%d, %q) = %d, want %d", tt.reward, tt.tier, got, tt.want)
			}
		})
	}
}
