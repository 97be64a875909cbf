// AngelaMos | 2026
// service_test.go

package referral

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelamos/questledger/internal/config"
	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/user"
)

type fakeStore struct {
	users       map[string]*user.User
	links       map[string]*Link
	completions map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]*user.User{},
		links:       map[string]*Link{},
		completions: map[string]int{},
	}
}

func (f *fakeStore) addUser(wallet, code string) *user.User {
	u := &user.User{Wallet: wallet, Tier: user.TierFree, ReferralCode: code}
	f.users[wallet] = u
	return u
}

func (f *fakeStore) InTx(_ context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeStore) GetLinkByReferred(_ context.Context, referred string) (*Link, error) {
	link, ok := f.links[referred]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (f *fakeStore) ListByReferrer(_ context.Context, referrer string) ([]Link, error) {
	var links []Link
	for _, link := range f.links {
		if link.ReferrerWallet == referrer {
			links = append(links, *link)
		}
	}
	return links, nil
}

func (f *fakeStore) CreateLink(_ context.Context, referrer, referred string) (bool, error) {
	if _, ok := f.links[referred]; ok {
		return false, nil
	}
	f.links[referred] = &Link{
		ReferrerWallet: referrer,
		ReferredWallet: referred,
		CreatedAt:      time.Now(),
	}
	return true, nil
}

func (f *fakeStore) MarkCompleted(_ context.Context, referred string) (bool, error) {
	link, ok := f.links[referred]
	if !ok || link.Completed {
		return false, nil
	}
	link.Completed = true
	now := time.Now()
	link.CompletedAt = &now
	return true, nil
}

func (f *fakeStore) CountCompletions(_ context.Context, wallet string) (int, error) {
	return f.completions[wallet], nil
}

func (f *fakeStore) EnsureUser(_ context.Context, wallet string) (*user.User, error) {
	if u, ok := f.users[wallet]; ok {
		return u, nil
	}
	return f.addUser(wallet, "code-"+wallet), nil
}

func (f *fakeStore) GetUserByReferralCode(_ context.Context, code string) (*user.User, error) {
	for _, u := range f.users {
		if u.ReferralCode == code {
			return u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeStore) SetReferredBy(_ context.Context, wallet, code string) (bool, error) {
	u, ok := f.users[wallet]
	if !ok {
		return false, core.ErrNotFound
	}
	if u.ReferredBy != nil {
		return false, nil
	}
	u.ReferredBy = &code
	return true, nil
}

func (f *fakeStore) AddUserXP(_ context.Context, wallet string, delta int) (int, error) {
	u, ok := f.users[wallet]
	if !ok {
		return 0, core.ErrNotFound
	}
	u.TotalXP += delta
	return u.TotalXP, nil
}

var testCfg = config.ReferralConfig{ReferrerBonusXP: 250, ReferredBonusXP: 100}

func TestBind(t *testing.T) {
	store := newFakeStore()
	store.addUser("0xref", "FRIEND")
	svc := NewService(store, testCfg, nil)

	result, err := svc.Bind(context.Background(), "0xNew", "FRIEND")
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	if !result.Bound {
		t.Error("expected Bound = true")
	}
	if result.ReferrerWallet != "0xref" {
		t.Errorf("ReferrerWallet = %q, want 0xref", result.ReferrerWallet)
	}

	link, ok := store.links["0xnew"]
	if !ok {
		t.Fatal("link was not created")
	}
	if link.Completed {
		t.Error("fresh link must start uncompleted")
	}
}

func TestBindUnknownCode(t *testing.T) {
	svc := NewService(newFakeStore(), testCfg, nil)

	_, err := svc.Bind(context.Background(), "0xnew", "NOPE")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Bind() error = %v, want ErrNotFound", err)
	}
}

func TestBindSelfReferral(t *testing.T) {
	store := newFakeStore()
	store.addUser("0xself", "MYCODE")
	svc := NewService(store, testCfg, nil)

	_, err := svc.Bind(context.Background(), "0xself", "MYCODE")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Bind() error = %v, want ErrInvalidInput", err)
	}
}

func TestBindAlreadyBound(t *testing.T) {
	store := newFakeStore()
	store.addUser("0xref", "FRIEND")
	store.addUser("0xother", "OTHER")
	svc := NewService(store, testCfg, nil)

	ctx := context.Background()
	if _, err := svc.Bind(ctx, "0xnew", "FRIEND"); err != nil {
		t.Fatalf("first Bind() error = %v", err)
	}

	result, err := svc.Bind(ctx, "0xnew", "OTHER")
	if err != nil {
		t.Fatalf("second Bind() error = %v", err)
	}

	if !result.AlreadyBound {
		t.Error("expected AlreadyBound = true")
	}
	if got := store.links["0xnew"].ReferrerWallet; got != "0xref" {
		t.Errorf("referrer = %q, want original 0xref", got)
	}
}

func creditFixture() *fakeStore {
	store := newFakeStore()
	store.addUser("0xref", "FRIEND")
	store.addUser("0xnew", "NEWCODE")
	store.links["0xnew"] = &Link{
		ReferrerWallet: "0xref",
		ReferredWallet: "0xnew",
		CreatedAt:      time.Now(),
	}
	return store
}

func TestMaybeCredit(t *testing.T) {
	store := creditFixture()
	store.completions["0xnew"] = 1
	svc := NewService(store, testCfg, nil)

	if err := svc.MaybeCredit(context.Background(), "0xnew"); err != nil {
		t.Fatalf("MaybeCredit() error = %v", err)
	}

	if got := store.users["0xref"].TotalXP; got != 250 {
		t.Errorf("referrer XP = %d, want 250", got)
	}
	if got := store.users["0xnew"].TotalXP; got != 100 {
		t.Errorf("referred XP = %d, want 100", got)
	}
	if !store.links["0xnew"].Completed {
		t.Error("link must be marked completed")
	}
}

func TestMaybeCreditOnlyOnce(t *testing.T) {
	store := creditFixture()
	store.completions["0xnew"] = 3
	svc := NewService(store, testCfg, nil)

	ctx := context.Background()
	if err := svc.MaybeCredit(ctx, "0xnew"); err != nil {
		t.Fatalf("first MaybeCredit() error = %v", err)
	}
	if err := svc.MaybeCredit(ctx, "0xnew"); err != nil {
		t.Fatalf("second MaybeCredit() error = %v", err)
	}

	if got := store.users["0xref"].TotalXP; got != 250 {
		t.Errorf("referrer XP = %d, want 250 after repeat cascade", got)
	}
	if got := store.users["0xnew"].TotalXP; got != 100 {
		t.Errorf("referred XP = %d, want 100 after repeat cascade", got)
	}
}

func TestMaybeCreditNoLink(t *testing.T) {
	store := newFakeStore()
	store.addUser("0xlone", "LONE")
	svc := NewService(store, testCfg, nil)

	if err := svc.MaybeCredit(context.Background(), "0xlone"); err != nil {
		t.Fatalf("MaybeCredit() error = %v, want nil for unlinked wallet", err)
	}

	if got := store.users["0xlone"].TotalXP; got != 0 {
		t.Errorf("XP = %d, want 0", got)
	}
}

func TestMaybeCreditNoCompletionsYet(t *testing.T) {
	store := creditFixture()
	svc := NewService(store, testCfg, nil)

	if err := svc.MaybeCredit(context.Background(), "0xnew"); err != nil {
		t.Fatalf("MaybeCredit() error = %v", err)
	}

	if store.links["0xnew"].Completed {
		t.Error("cascade must wait for the first quest completion")
	}
	if got := store.users["0xref"].TotalXP; got != 0 {
		t.Errorf("referrer XP = %d, want 0", got)
	}
}

func TestStats(t *testing.T) {
	store := creditFixture()
	store.links["0xother"] = &Link{
		ReferrerWallet: "0xref",
		ReferredWallet: "0xother",
		Completed:      true,
	}
	svc := NewService(store, testCfg, nil)

	stats, err := svc.Stats(context.Background(), "0xRef")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.TotalReferred != 2 {
		t.Errorf("TotalReferred = %d, want 2", stats.TotalReferred)
	}
	if stats.Completed != 1 {
		t.Errorf("Completed = %d, want 1", stats.Completed)
	}
	if stats.XPEarned != 250 {
		t.Errorf("XPEarned = %d, want 250", stats.XPEarned)
	}
}
