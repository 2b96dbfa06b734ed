package repo

import (
	"context"
	"fmt"

	dom "github.com/Jairo-Bargas/Api-project/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	Create(ctx context.Context, username, email, passwordHash string) (dom.User, error)
	// Delete removes the user and all their tareas in one transaction.
	Delete(ctx context.Context, id int64) error
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByUsername returns the user by username.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, fecha_creacion FROM usuarios WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// GetByEmail returns the user by email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, fecha_creacion FROM usuarios WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, username, email, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO usuarios (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, fecha_creacion`
	var u dom.User
	err := r.db.QueryRow(ctx, query, username, email, passwordHash).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt,
	)
	return u, err
}

// Delete removes the user and their tareas atomically. The schema also has
// ON DELETE CASCADE, but the rule lives here so it holds even if the
// constraint is ever relaxed.
func (r *PGUserRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tareas WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("delete tareas: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete usuario: %w", err)
	}
	return tx.Commit(ctx)
}
