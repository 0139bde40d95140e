package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quillhq/quill/internal/data/pgxutil"
	domainauth "github.com/quillhq/quill/internal/domain/auth"
	"github.com/quillhq/quill/internal/domain/model"
	apperrors "github.com/quillhq/quill/internal/errors"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a create collides with an existing
	// email or name. The unique constraints are the source of truth;
	// callers that pre-check existence must still handle this.
	ErrUserExists = errors.New("user already exists")
)

// UserRepo provides database operations for users.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, errors.New("create user request is required")
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domainauth.RoleUser
	}

	createdAt := r.timeProvider.Now().UTC()
	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (
				email, name, first_name, last_name, password_hash, role, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7
			) RETURNING id, email, name, first_name, last_name, password_hash, role, created_at, updated_at
		`,
			strings.TrimSpace(req.Email),
			strings.TrimSpace(req.Name),
			req.FirstName,
			req.LastName,
			req.PasswordHash,
			role,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByIDQuery, "failed to get user by ID", id)
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByEmailQuery, "failed to get user by email", strings.TrimSpace(email))
}

// GetByName retrieves a user by name.
func (r *UserRepo) GetByName(ctx context.Context, name string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByNameQuery, "failed to get user by name", strings.TrimSpace(name))
}

// ExistsByEmailOrName reports whether any user already holds the email or
// the name. It is an optimization for early conflict reporting only; the
// unique constraints still decide races.
func (r *UserRepo) ExistsByEmailOrName(ctx context.Context, email, name string) (bool, error) {
	var exists bool
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR name = $2)`,
			strings.TrimSpace(email), strings.TrimSpace(name),
		).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// --- helpers ---

// SQL query constants for static queries.
const (
	userGetByIDQuery = `
		SELECT id, email, name, first_name, last_name, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1`

	userGetByEmailQuery = `
		SELECT id, email, name, first_name, last_name, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = $1`

	userGetByNameQuery = `
		SELECT id, email, name, first_name, last_name, password_hash, role, created_at, updated_at
		FROM users
		WHERE name = $1`
)

// getByQuery is a helper function to execute a query and return a single user.
// Uses variadic args to avoid slice allocation at call sites.
func (r *UserRepo) getByQuery(
	ctx context.Context,
	q string,
	errMsg string,
	args ...any,
) (*model.User, error) {
	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, apperrors.MapDBError(err))
	}
	return &user, nil
}

// mapWriteErr keeps the ErrUserExists sentinel contract for unique
// violations and routes everything else through the shared DB error
// taxonomy (timeouts, cancellation, constraint violations).
func (r *UserRepo) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrUserExists
	}
	return apperrors.MapDBError(err)
}
