// AngelaMos | 2026
// service.go

package subscription

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/user"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// InitiateCheckout creates the pending row whose session id the
// confirming webhook will reference.
func (s *Service) InitiateCheckout(
	ctx context.Context,
	wallet, tier string,
) (*CheckoutResponse, error) {
	wallet = user.NormalizeWallet(wallet)
	if !user.ValidWallet(wallet) {
		return nil, fmt.Errorf("initiate checkout: %w", core.ErrInvalidInput)
	}

	if !user.ValidTier(tier) || tier == user.TierFree {
		return nil, fmt.Errorf(
			"initiate checkout: invalid tier %q: %w",
			tier,
			core.ErrInvalidInput,
		)
	}

	nonce, err := core.GenerateNonce()
	if err != nil {
		return nil, fmt.Errorf("initiate checkout: %w", err)
	}

	sub := &Subscription{
		SessionID: uuid.New().String(),
		Wallet:    wallet,
		Tier:      tier,
		Status:    StatusPending,
		Nonce:     nonce,
	}

	err = s.store.InTx(ctx, func(r Repository) error {
		if _, err := r.EnsureUser(ctx, wallet); err != nil {
			return err
		}
		return r.Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResponse{
		SessionID: sub.SessionID,
		Wallet:    sub.Wallet,
		Tier:      sub.Tier,
		Status:    sub.Status,
		Nonce:     sub.Nonce,
	}, nil
}

func (s *Service) GetBySession(
	ctx context.Context,
	sessionID string,
) (*Subscription, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("get subscription: %w", core.ErrInvalidInput)
	}

	return s.store.GetBySession(ctx, sessionID)
}
