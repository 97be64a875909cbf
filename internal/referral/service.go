// AngelaMos | 2026
// service.go

package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelamos/questledger/internal/cache"
	"github.com/angelamos/questledger/internal/config"
	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/user"
)

type Service struct {
	store Store
	cfg   config.ReferralConfig
	cache cache.Invalidator
}

func NewService(
	store Store,
	cfg config.ReferralConfig,
	invalidator cache.Invalidator,
) *Service {
	if invalidator == nil {
		invalidator = cache.Noop{}
	}
	return &Service{store: store, cfg: cfg, cache: invalidator}
}

// Bind attributes wallet to the owner of code, first write wins.
// Binding twice is a successful no-op so client retries stay cheap.
func (s *Service) Bind(
	ctx context.Context,
	wallet, code string,
) (*BindResult, error) {
	wallet = user.NormalizeWallet(wallet)
	if !user.ValidWallet(wallet) || code == "" {
		return nil, fmt.Errorf("bind referral: %w", core.ErrInvalidInput)
	}

	var result BindResult

	err := s.store.InTx(ctx, func(r Repository) error {
		referrer, err := r.GetUserByReferralCode(ctx, code)
		if err != nil {
			return err
		}

		if referrer.Wallet == wallet {
			return fmt.Errorf("bind referral: self referral: %w", core.ErrInvalidInput)
		}

		if _, err := r.EnsureUser(ctx, wallet); err != nil {
			return err
		}

		bound, err := r.SetReferredBy(ctx, wallet, code)
		if err != nil {
			return err
		}
		if !bound {
			result = BindResult{AlreadyBound: true}
			return nil
		}

		if _, err := r.CreateLink(ctx, referrer.Wallet, wallet); err != nil {
			return err
		}

		result = BindResult{Bound: true, ReferrerWallet: referrer.Wallet}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// MaybeCredit fires the cascade for referredWallet if its link exists,
// is uncompleted, and the wallet has at least one quest completion.
// "Nothing to do" is not an error; only storage failures propagate.
func (s *Service) MaybeCredit(
	ctx context.Context,
	referredWallet string,
) error {
	referredWallet = user.NormalizeWallet(referredWallet)
	if !user.ValidWallet(referredWallet) {
		return fmt.Errorf("credit referral: %w", core.ErrInvalidInput)
	}

	var credited *Link

	err := s.store.InTx(ctx, func(r Repository) error {
		link, err := r.GetLinkByReferred(ctx, referredWallet)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if link.Completed || link.ReferrerWallet == link.ReferredWallet {
			return nil
		}

		completions, err := r.CountCompletions(ctx, referredWallet)
		if err != nil {
			return err
		}
		if completions < 1 {
			return nil
		}

		// The flip is the idempotency guard: zero rows means a
		// concurrent cascade already credited this wallet.
		flipped, err := r.MarkCompleted(ctx, referredWallet)
		if err != nil {
			return err
		}
		if !flipped {
			return nil
		}

		if s.cfg.ReferrerBonusXP > 0 {
			if _, err := r.AddUserXP(ctx, link.ReferrerWallet, s.cfg.ReferrerBonusXP); err != nil {
				return err
			}
		}

		if s.cfg.ReferredBonusXP > 0 {
			if _, err := r.AddUserXP(ctx, link.ReferredWallet, s.cfg.ReferredBonusXP); err != nil {
				return err
			}
		}

		credited = link
		return nil
	})
	if err != nil {
		return err
	}

	if credited != nil {
		s.cache.Invalidate(ctx,
			cache.UserKey(credited.ReferrerWallet),
			cache.UserKey(credited.ReferredWallet),
		)
	}

	return nil
}

func (s *Service) Stats(
	ctx context.Context,
	wallet string,
) (*StatsResponse, error) {
	wallet = user.NormalizeWallet(wallet)
	if !user.ValidWallet(wallet) {
		return nil, fmt.Errorf("referral stats: %w", core.ErrInvalidInput)
	}

	links, err := s.store.ListByReferrer(ctx, wallet)
	if err != nil {
		return nil, err
	}

	stats := &StatsResponse{Wallet: wallet}
	for _, link := range links {
		stats.TotalReferred++
		if link.Completed {
			stats.Completed++
			stats.XPEarned += s.cfg.ReferrerBonusXP
		}
	}

	return stats, nil
}
