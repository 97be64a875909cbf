// AngelaMos | 2026
// repository.go

package quest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/questledger/internal/core"
	"github.com/angelamos/questledger/internal/user"
)

// Repository bundles every statement an award transaction needs,
// including the user-side XP writes, so the whole unit can run against
// a single tx handle.
type Repository interface {
	ResolveActive(ctx context.Context, identifier string) (*Quest, error)
	ListActive(ctx context.Context) ([]Quest, error)
	InsertCompletion(ctx context.Context, wallet string, questID int64) (bool, error)
	CountCompletions(ctx context.Context, wallet string) (int, error)
	EnsureUser(ctx context.Context, wallet string) (*user.User, error)
	AddUserXP(ctx context.Context, wallet string, delta int) (int, error)
}

// Store is a Repository that can also run a function inside one
// database transaction, with the callback seeing a tx-bound Repository.
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

// ResolveActive looks a quest up by numeric id or symbolic code.
// Inactive quests resolve as not found.
func (r *repository) ResolveActive(
	ctx context.Context,
	identifier string,
) (*Quest, error) {
	var (
		query string
		arg   any
	)

	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		query = `
			SELECT id, code, title, xp_reward, active, verification_tag, created_at
			FROM quests
			WHERE id = $1 AND active`
		arg = id
	} else {
		query = `
			SELECT id, code, title, xp_reward, active, verification_tag, created_at
			FROM quests
			WHERE code = $1 AND active`
		arg = identifier
	}

	var q Quest
	err := r.db.GetContext(ctx, &q, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resolve quest %q: %w", identifier, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve quest %q: %w", identifier, err)
	}

	return &q, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Quest, error) {
	query := `
		SELECT id, code, title, xp_reward, active, verification_tag, created_at
		FROM quests
		WHERE active
		ORDER BY id`

	var quests []Quest
	if err := r.db.SelectContext(ctx, &quests, query); err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}

	return quests, nil
}

// InsertCompletion records the claim. ON CONFLICT keeps a duplicate
// claim from erroring mid-transaction (an aborted tx would poison the
// surrounding award); zero rows affected means another claim already
// won, reported as inserted=false.
func (r *repository) InsertCompletion(
	ctx context.Context,
	wallet string,
	questID int64,
) (bool, error) {
	query := `
		INSERT INTO quest_completions (wallet, quest_id, completed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (wallet, quest_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, wallet, questID)
	if err != nil {
		return false, fmt.Errorf("insert completion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert completion: %w", err)
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

func (r *repository) AddUserXP(
	ctx context.Context,
	wallet string,
	delta int,
) (int, error) {
	return r.users.AddXP(ctx, wallet, delta)
}
