// AngelaMos | 2026
// repository.go

package tokensale

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
	Upsert(ctx context.Context, c *Contribution) (bool, error)
	GetBySession(ctx context.Context, sessionID string) (*Contribution, error)
	ListByWallet(ctx context.Context, wallet string) ([]Contribution, error)
	EnsureUser(ctx context.Context, wallet string) (*user.User, error)
}

type Store interface {
	Repository
	InTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db    core.DBTX
	users user.Repository
}

// NewRepository binds contribution statements to a db or tx handle; the
// webhook processor reuses it inside its own transaction.
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

// Upsert inserts the contribution, and on a session_id collision
// updates the existing row instead. ON CONFLICT DO NOTHING keeps the
// collision from aborting the surrounding transaction; zero rows
// affected routes to the explicit update so the idempotency key stays
// visible in the statements.
func (r *repository) Upsert(
	ctx context.Context,
	c *Contribution,
) (bool, error) {
	insert := `
		INSERT INTO token_sale_contributions
			(session_id, wallet, amount, currency, status, referral_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, insert,
		c.SessionID,
		c.Wallet,
		c.Amount,
		c.Currency,
		c.Status,
		c.ReferralCode,
	)
	if err != nil {
		return false, fmt.Errorf("insert contribution: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert contribution: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	update := `
		UPDATE token_sale_contributions
		SET amount = $2, currency = $3, status = $4,
		    referral_code = COALESCE($5, referral_code),
		    updated_at = NOW()
		WHERE session_id = $1`

	if _, err := r.db.ExecContext(ctx, update,
		c.SessionID,
		c.Amount,
		c.Currency,
		c.Status,
		c.ReferralCode,
	); err != nil {
		return false, fmt.Errorf("update contribution: %w", err)
	}

	return false, nil
}

func (r *repository) GetBySession(
	ctx context.Context,
	sessionID string,
) (*Contribution, error) {
	query := `
		SELECT session_id, wallet, amount, currency, status, referral_code,
		       created_at, updated_at
		FROM token_sale_contributions
		WHERE session_id = $1`

	var c Contribution
	err := r.db.GetContext(ctx, &c, query, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get contribution: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contribution: %w", err)
	}

	return &c, nil
}

func (r *repository) ListByWallet(
	ctx context.Context,
	wallet string,
) ([]Contribution, error) {
	query := `
		SELECT session_id, wallet, amount, currency, status, referral_code,
		       created_at, updated_at
		FROM token_sale_contributions
		WHERE wallet = $1
		ORDER BY created_at DESC`

	var contributions []Contribution
	if err := r.db.SelectContext(ctx, &contributions, query, wallet); err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}

	return contributions, nil
}

func (r *repository) EnsureUser(
	ctx context.Context,
	wallet string,
) (*user.User, error) {
	return r.users.Ensure(ctx, wallet)
}
