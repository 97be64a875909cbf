// AngelaMos | 2026
// repository.go

package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/user"
)

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetBySession(ctx context.Context, sessionID string) (*Subscription, error)
	Activate(ctx context.Context, sessionID string, renewal time.Time) (bool, error)
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]Subscription, error)
	Expire(ctx context.Context, sessionID string) (bool, error)
	EnsureUser(ctx context.Context, wallet string) (*user.User, error)
	UpdateUserTier(ctx context.Context, wallet, tier string) error
}

type Store interface {
	Repository
	InTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db    core.DBTX
	users user.Repository
}

// NewRepository binds the subscription statements to a db or tx handle.
// The webhook processor uses this to activate inside its own
// transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db, users: user.NewRepository(db)}
}

type store struct {
	*repository
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &store{
		repository: &repository{db: db, users: user.NewRepository(db)},
		db:         db,
	}
}

func (s *store) InTx(ctx context.Context, fn func(Repository) error) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(NewRepository(tx))
	})
}

func (r *repository) Create(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (session_id, wallet, tier, status, nonce)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, sub, query,
		sub.SessionID,
		sub.Wallet,
		sub.Tier,
		sub.Status,
		sub.Nonce,
	)
	if err != nil {
		if user.IsDuplicateKeyError(err) {
			return fmt.Errorf("create subscription: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create subscription: %w", err)
	}

	return nil
}

func (r *repository) GetBySession(
	ctx context.Context,
	sessionID string,
) (*Subscription, error) {
	query := `
		SELECT session_id, wallet, tier, status, nonce, renewal_date,
		       created_at, updated_at
		FROM subscriptions
		WHERE session_id = $1`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get subscription: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	return &sub, nil
}

// Activate performs the pending to active transition. The status guard
// in the WHERE clause keeps the transition one-way under concurrency.
func (r *repository) Activate(
	ctx context.Context,
	sessionID string,
	renewal time.Time,
) (bool, error) {
	query := `
		UPDATE subscriptions
		SET status = $2, renewal_date = $3, updated_at = NOW()
		WHERE session_id = $1 AND status = $4`

	result, err := r.db.ExecContext(
		ctx,
		query,
		sessionID,
		StatusActive,
		renewal,
		StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("activate subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("activate subscription: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) ListExpirable(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]Subscription, error) {
	query := `
		SELECT session_id, wallet, tier, status, nonce, renewal_date,
		       created_at, updated_at
		FROM subscriptions
		WHERE status = $1 AND renewal_date < $2
		ORDER BY renewal_date
		LIMIT $3`

	var subs []Subscription
	err := r.db.SelectContext(ctx, &subs, query, StatusActive, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expirable subscriptions: %w", err)
	}

	return subs, nil
}

func (r *repository) Expire(
	ctx context.Context,
	sessionID string,
) (bool, error) {
	query := `
		UPDATE subscriptions
		SET status = $2, updated_at = NOW()
		WHERE session_id = $1 AND status = $3`

	result, err := r.db.ExecContext(
		ctx,
		query,
		sessionID,
		StatusExpired,
		StatusActive,
	)
	if err != nil {
		return false, fmt.Errorf("expire subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("expire subscription: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) EnsureUser(
	ctx context.Context,
	wallet string,
) (*user.User, error) {
	return r.users.Ensure(ctx, wallet)
}

func (r *repository) UpdateUserTier(
	ctx context.Context,
	wallet, tier string,
) error {
	return r.users.UpdateTier(ctx, wallet, tier)
}
