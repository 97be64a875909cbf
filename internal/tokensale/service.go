// AngelaMos | 2026
// service.go

package tokensale

import (
	"context"
	"fmt"
	"strings"

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

// InitiatePurchase opens a contribution under a fresh checkout session
// id. The confirming webhook upserts the same session id, so whichever
// side lands second converges instead of duplicating.
func (s *Service) InitiatePurchase(
	ctx context.Context,
	req PurchaseRequest,
) (*Contribution, error) {
	wallet := user.NormalizeWallet(req.Wallet)
	if !user.ValidWallet(wallet) || req.Amount <= 0 {
		return nil, fmt.Errorf("initiate purchase: %w", core.ErrInvalidInput)
	}

	contribution := &Contribution{
		SessionID:    uuid.New().String(),
		Wallet:       wallet,
		Amount:       req.Amount,
		Currency:     strings.ToUpper(req.Currency),
		Status:       StatusInitiated,
		ReferralCode: req.ReferralCode,
	}

	err := s.store.InTx(ctx, func(r Repository) error {
		if _, err := r.EnsureUser(ctx, wallet); err != nil {
			return err
		}
		if _, err := r.Upsert(ctx, contribution); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.store.GetBySession(ctx, contribution.SessionID)
}

func (s *Service) ListByWallet(
	ctx context.Context,
	wallet string,
) ([]Contribution, error) {
	wallet = user.NormalizeWallet(wallet)
	if !user.ValidWallet(wallet) {
		return nil, fmt.Errorf("list contributions: %w", core.ErrInvalidInput)
	}

	return s.store.ListByWallet(ctx, wallet)
}
