// AngelaMos | 2026
// repository.go

package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/subscription"
	"github.com/angelamos/questledger/internal/tokensale"
	"github.com/angelamos/questledger/internal/user"
)

// Repository spans the event log plus every table a webhook transition
// touches, so log entry and transition commit as one unit.
type Repository interface {
	InsertEvent(ctx context.Context, eventID string, payload []byte, receivedAt time.Time) (bool, error)
	GetSubscriptionBySession(ctx context.Context, sessionID string) (*subscription.Subscription, error)
	ActivateSubscription(ctx context.Context, sessionID string, renewal time.Time) (bool, error)
	UpsertContribution(ctx context.Context, c *tokensale.Contribution) (bool, error)
	EnsureUser(ctx context.Context, wallet string) (*user.User, error)
	UpdateUserTier(ctx context.Context, wallet, tier string) error
}

type Store interface {
	Repository
	InTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db    core.DBTX
	subs  subscription.Repository
	sales tokensale.Repository
	users user.Repository
}

func newRepository(db core.DBTX) *repository {
	return &repository{
		db:    db,
		subs:  subscription.NewRepository(db),
		sales: tokensale.NewRepository(db),
		users: user.NewRepository(db),
	}
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

// InsertEvent appends to the write-once delivery log. ON CONFLICT
// makes a redelivered event_id a clean zero-row statement instead of a
// constraint error that would abort the shared transaction; the replay
// is then answered as inserted=false and committed.
func (r *repository) InsertEvent(
	ctx context.Context,
	eventID string,
	payload []byte,
	receivedAt time.Time,
) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, payload, received_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, eventID, payload, receivedAt)
	if err != nil {
		return false, fmt.Errorf("insert webhook event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert webhook event: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) GetSubscriptionBySession(
	ctx context.Context,
	sessionID string,
) (*subscription.Subscription, error) {
	return r.subs.GetBySession(ctx, sessionID)
}

func (r *repository) ActivateSubscription(
	ctx context.Context,
	sessionID string,
	renewal time.Time,
) (bool, error) {
	return r.subs.Activate(ctx, sessionID, renewal)
}

func (r *repository) UpsertContribution(
	ctx context.Context,
	c *tokensale.Contribution,
) (bool, error) {
	return r.sales.Upsert(ctx, c)
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
