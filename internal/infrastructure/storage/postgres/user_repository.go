package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/exp/slog"

	"steno/internal/domain/team"
	"steno/internal/domain/user"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewUserRepository(db *Storage, log *slog.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log,
	}
}

// Create inserts the user together with their personal team: every account
// starts as the owner of a one-member team, which becomes its current team.
func (r *UserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 RETURNING id`,
		u.Email, u.Name, u.PasswordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, user.ErrEmailTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	teamName := u.Name
	if teamName == "" {
		teamName = u.Email
	}

	var teamID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO teams (owner_id, name, slug, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 RETURNING id`,
		id, teamName, fmt.Sprintf("team-%d", id)).Scan(&teamID)
	if err != nil {
		return 0, fmt.Errorf("insert personal team: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id, role, created_at)
		 VALUES ($1, $2, $3, now())`,
		teamID, id, team.RoleOwner)
	if err != nil {
		return 0, fmt.Errorf("insert owner membership: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET current_team_id = $1 WHERE id = $2`, teamID, id)
	if err != nil {
		return 0, fmt.Errorf("set current team: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) get(ctx context.Context, where string, arg any) (*user.User, error) {
	var u user.User
	err := r.db.Pool().QueryRow(ctx,
		`SELECT id, email, name, password_hash, current_team_id, created_at, updated_at
		 FROM users `+where, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CurrentTeamID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
