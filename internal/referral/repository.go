// AngelaMos | 2026
// repository.go

package referral

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/user"
)

type Repository interface {
	GetLinkByReferred(ctx context.Context, referredWallet string) (*Link, error)
	ListByReferrer(ctx context.Context, referrerWallet string) ([]Link, error)
	CreateLink(ctx context.Context, referrerWallet, referredWallet string) (bool, error)
	MarkCompleted(ctx context.Context, referredWallet string) (bool, error)
	CountCompletions(ctx context.Context, wallet string) (int, error)
	EnsureUser(ctx context.Context, wallet string) (*user.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*user.User, error)
	SetReferredBy(ctx context.Context, wallet, code string) (bool, error)
	AddUserXP(ctx context.Context, wallet string, delta int) (int, error)
}

type Store interface {
	Repository
	InTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db    core.DBTX
	users user.Repository
}

func newRepository(db core.DBTX) *repository {
	return &repository{db: db, users: user.NewRepository(db)}
}

type store struct {
	*repository
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &store{repository: newRepository(db), db: db}
}

func (s *store) InTx(ctx context.Context, fn func(Repository) error) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(newRepository(tx))
	})
}

func (r *repository) GetLinkByReferred(
	ctx context.Context,
	referredWallet string,
) (*Link, error) {
	query := `
		SELECT referrer_wallet, referred_wallet, completed, created_at, completed_at
		FROM referral_links
		WHERE referred_wallet = $1`

	var link Link
	err := r.db.GetContext(ctx, &link, query, referredWallet)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get referral link: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get referral link: %w", err)
	}

	return &link, nil
}

func (r *repository) ListByReferrer(
	ctx context.Context,
	referrerWallet string,
) ([]Link, error) {
	query := `
		SELECT referrer_wallet, referred_wallet, completed, created_at, completed_at
		FROM referral_links
		WHERE referrer_wallet = $1
		ORDER BY created_at DESC`

	var links []Link
	if err := r.db.SelectContext(ctx, &links, query, referrerWallet); err != nil {
		return nil, fmt.Errorf("list referral links: %w", err)
	}

	return links, nil
}

// CreateLink inserts the pair, first write wins. ON CONFLICT reports
// an already-attributed wallet as zero rows instead of a constraint
// error that would abort the bind transaction.
func (r *repository) CreateLink(
	ctx context.Context,
	referrerWallet, referredWallet string,
) (bool, error) {
	query := `
		INSERT INTO referral_links (referrer_wallet, referred_wallet, completed)
		VALUES ($1, $2, FALSE)
		ON CONFLICT (referred_wallet) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, referrerWallet, referredWallet)
	if err != nil {
		return false, fmt.Errorf("create referral link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create referral link: %w", err)
	}

	return rows > 0, nil
}

// MarkCompleted flips completed exactly once. Zero rows affected means
// another transaction already completed the cascade.
func (r *repository) MarkCompleted(
	ctx context.Context,
	referredWallet string,
) (bool, error) {
	query := `
		UPDATE referral_links
		SET completed = TRUE, completed_at = NOW()
		WHERE referred_wallet = $1 AND NOT completed`

	result, err := r.db.ExecContext(ctx, query, referredWallet)
	if err != nil {
		return false, fmt.Errorf("mark referral completed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark referral completed: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) CountCompletions(
	ctx context.Context,
	wallet string,
) (int, error) {
	query := `SELECT COUNT(*) FROM quest_completions WHERE wallet = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, wallet); err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}

	return count, nil
}

func (r *repository) EnsureUser(
	ctx context.Context,
	wallet string,
) (*user.User, error) {
	return r.users.Ensure(ctx, wallet)
}

func (r *repository) GetUserByReferralCode(
	ctx context.Context,
	code string,
) (*user.User, error) {
	return r.users.GetByReferralCode(ctx, code)
}

func (r *repository) SetReferredBy(
	ctx context.Context,
	wallet, code string,
) (bool, error) {
	return r.users.SetReferredBy(ctx, wallet, code)
}

func (r *repository) AddUserXP(
	ctx context.Context,
	wallet string,
	delta int,
) (int, error) {
	return r.users.AddXP(ctx, wallet, delta)
}
