// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/questledger/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByWallet(ctx context.Context, wallet string) (*User, error)
	GetByReferralCode(ctx context.Context, code string) (*User, error)
	Ensure(ctx context.Context, wallet string) (*User, error)
	AddXP(ctx context.Context, wallet string, delta int) (int, error)
	UpdateTier(ctx context.Context, wallet, tier string) error
	SetReferredBy(ctx context.Context, wallet, code string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create inserts the user row. ON CONFLICT reports a lost insert race
// as ErrDuplicateKey without erroring the statement, so callers inside
// a transaction can recover with a fetch instead of rolling back.
func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (wallet, total_xp, tier, referral_code, referred_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.Wallet,
		user.TotalXP,
		user.Tier,
		user.ReferralCode,
		user.ReferredBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByWallet(
	ctx context.Context,
	wallet string,
) (*User, error) {
	query := `
		SELECT wallet, total_xp, tier, referral_code, referred_by,
		       created_at, updated_at
		FROM users
		WHERE wallet = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, wallet)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByReferralCode(
	ctx context.Context,
	code string,
) (*User, error) {
	query := `
		SELECT wallet, total_xp, tier, referral_code, referred_by,
		       created_at, updated_at
		FROM users
		WHERE referral_code = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by referral code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by referral code: %w", err)
	}

	return &user, nil
}

// Ensure creates the user row on first touch. A concurrent creator
// winning the insert race is fine; the existing row is returned.
func (r *repository) Ensure(
	ctx context.Context,
	wallet string,
) (*User, error) {
	existing, err := r.GetByWallet(ctx, wallet)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	code, err := core.GenerateReferralCode()
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	created := &User{
		Wallet:       wallet,
		TotalXP:      0,
		Tier:         TierFree,
		ReferralCode: code,
	}

	err = r.Create(ctx, created)
	if errors.Is(err, core.ErrDuplicateKey) {
		return r.GetByWallet(ctx, wallet)
	}
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *repository) AddXP(
	ctx context.Context,
	wallet string,
	delta int,
) (int, error) {
	if delta < 0 {
		return 0, fmt.Errorf("add xp: negative delta: %w", core.ErrInvalidInput)
	}

	query := `
		UPDATE users
		SET total_xp = total_xp + $2, updated_at = NOW()
		WHERE wallet = $1
		RETURNING total_xp`

	var total int
	err := r.db.GetContext(ctx, &total, query, wallet, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("add xp: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("add xp: %w", err)
	}

	return total, nil
}

func (r *repository) UpdateTier(
	ctx context.Context,
	wallet, tier string,
) error {
	if !ValidTier(tier) {
		return fmt.Errorf("update tier: invalid tier %q: %w", tier, core.ErrInvalidInput)
	}

	query := `
		UPDATE users
		SET tier = $2, updated_at = NOW()
		WHERE wallet = $1`

	result, err := r.db.ExecContext(ctx, query, wallet, tier)
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update tier: %w", core.ErrNotFound)
	}

	return nil
}

// SetReferredBy records which code referred this wallet, first write
// wins. Returns false when a code was already bound.
func (r *repository) SetReferredBy(
	ctx context.Context,
	wallet, code string,
) (bool, error) {
	query := `
		UPDATE users
		SET referred_by = $2, updated_at = NOW()
		WHERE wallet = $1 AND referred_by IS NULL`

	result, err := r.db.ExecContext(ctx, query, wallet, code)
	if err != nil {
		return false, fmt.Errorf("set referred by: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set referred by: %w", err)
	}

	return rows > 0, nil
}

func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
