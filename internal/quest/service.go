// AngelaMos | 2026
// service.go

package quest

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/angelamos/questledger/internal/cache"
	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/progression"
	"github.com/angelamos/questledger/internal/user"
)

const claimAction = "quest_claim"

// RateGuard bounds how many claims a wallet may attempt per window.
type RateGuard interface {
	Check(ctx context.Context, key string) error
}

// ReferralCrediter is the post-award cascade hook. Its own idempotency
// makes invoking it after every award safe.
type ReferralCrediter interface {
	MaybeCredit(ctx context.Context, referredWallet string) error
}

// ClaimKeyFunc builds the rate-guard key for a wallet claim.
type ClaimKeyFunc func(wallet, action string) string

type Service struct {
	store     Store
	referrals ReferralCrediter
	cache     cache.Invalidator
	guard     RateGuard
	claimKey  ClaimKeyFunc
}

func NewService(
	store Store,
	referrals ReferralCrediter,
	invalidator cache.Invalidator,
	guard RateGuard,
	claimKey ClaimKeyFunc,
) *Service {
	if invalidator == nil {
		invalidator = cache.Noop{}
	}
	return &Service{
		store:     store,
		referrals: referrals,
		cache:     invalidator,
		guard:     guard,
		claimKey:  claimKey,
	}
}

// Award credits a quest completion exactly once per (wallet, quest).
// The completion insert and the XP increment commit atomically; the
// referral cascade and cache invalidation run best-effort after commit.
func (s *Service) Award(
	ctx context.Context,
	wallet, identifier string,
) (*AwardResult, error) {
	wallet = user.NormalizeWallet(wallet)
	if !user.ValidWallet(wallet) || identifier == "" {
		return nil, fmt.Errorf("award quest: %w", core.ErrInvalidInput)
	}

	if s.guard != nil && s.claimKey != nil {
		if err := s.guard.Check(ctx, s.claimKey(wallet, claimAction)); err != nil {
			return nil, err
		}
	}

	var result AwardResult

	err := s.store.InTx(ctx, func(r Repository) error {
		q, err := r.ResolveActive(ctx, identifier)
		if err != nil {
			return err
		}

		u, err := r.EnsureUser(ctx, wallet)
		if err != nil {
			return err
		}

		inserted, err := r.InsertCompletion(ctx, wallet, q.ID)
		if err != nil {
			return err
		}

		if !inserted {
			result = AwardResult{
				AlreadyClaimed: true,
				TotalXP:        u.TotalXP,
				Level:          progression.Derive(u.TotalXP),
			}
			return nil
		}

		granted := GrantedXP(q.XPReward, u.Tier)

		total, err := r.AddUserXP(ctx, wallet, granted)
		if err != nil {
			return err
		}

		result = AwardResult{
			Awarded:   true,
			XPGranted: granted,
			TotalXP:   total,
			Level:     progression.Derive(total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Awarded {
		// The award has committed; a client disconnect must not cancel
		// the cascade or the eviction.
		ctx = context.WithoutCancel(ctx)

		if s.referrals != nil {
			if err := s.referrals.MaybeCredit(ctx, wallet); err != nil {
				slog.Warn("referral cascade failed",
					"wallet", wallet,
					"error", err,
				)
			}
		}
		s.cache.Invalidate(ctx, cache.UserKey(wallet))
	}

	return &result, nil
}

func (s *Service) ListActive(ctx context.Context) ([]Quest, error) {
	return s.store.ListActive(ctx)
}

// GrantedXP applies the tier multiplier and rounds to the nearest
// integer; fractional XP is never persisted.
func GrantedXP(reward int, tier string) int {
	if reward < 0 {
		return 0
	}
	return int(math.Round(float64(reward) * user.TierMultiplier(tier)))
}
