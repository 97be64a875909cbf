// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"

	"github.com/angelamos/questledger/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProfile(
	ctx context.Context,
	wallet string,
) (*User, error) {
	wallet = NormalizeWallet(wallet)
	if !ValidWallet(wallet) {
		return nil, fmt.Errorf("get profile: %w", core.ErrInvalidInput)
	}

	return s.repo.GetByWallet(ctx, wallet)
}

// Ensure returns the user row for wallet, creating it on first contact.
func (s *Service) Ensure(ctx context.Context, wallet string) (*User, error) {
	wallet = NormalizeWallet(wallet)
	if !ValidWallet(wallet) {
		return nil, fmt.Errorf("ensure user: %w", core.ErrInvalidInput)
	}

	return s.repo.Ensure(ctx, wallet)
}
