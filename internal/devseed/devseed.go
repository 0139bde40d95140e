// Package devseed provisions well-known user accounts for local
// development. Never run it against a production database.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quillhq/quill/internal/adapters/bcrypthash"
	"github.com/quillhq/quill/internal/data"
	domainauth "github.com/quillhq/quill/internal/domain/auth"
	"github.com/quillhq/quill/internal/domain/model"
	"github.com/quillhq/quill/internal/ports"
)

// DefaultPassword is the password shared by all seeded dev accounts.
const DefaultPassword = "quill-dev"

// seedAccount describes one development account.
type seedAccount struct {
	Email     string
	Name      string
	FirstName string
	LastName  string
	Role      domainauth.Role
}

func seedAccounts() []seedAccount {
	return []seedAccount{
		{Email: "admin@quill.localhost", Name: "admin", FirstName: "Ada", LastName: "Admin", Role: domainauth.RoleAdmin},
		{Email: "user@quill.localhost", Name: "user", FirstName: "Uma", LastName: "User", Role: domainauth.RoleUser},
		{Email: "guest@quill.localhost", Name: "guest", FirstName: "Gus", LastName: "Guest", Role: domainauth.RoleGuest},
	}
}

// Run creates the dev accounts, skipping any that already exist.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	hasher := bcrypthash.New()
	hash, err := hasher.Hash(DefaultPassword)
	if err != nil {
		return fmt.Errorf("hash dev password: %w", err)
	}

	repo := data.NewUserRepo(db)
	for _, acct := range seedAccounts() {
		if err := seedOne(ctx, repo, acct, hash); err != nil {
			return err
		}
		logger.InfoContext(ctx, "dev account ready", "email", acct.Email, "role", acct.Role)
	}
	return nil
}

func seedOne(ctx context.Context, repo ports.UserRepository, acct seedAccount, hash string) error {
	_, err := repo.Create(ctx, &model.CreateUserRequest{
		Email:        acct.Email,
		Name:         acct.Name,
		FirstName:    acct.FirstName,
		LastName:     acct.LastName,
		PasswordHash: hash,
		Role:         acct.Role,
	})
	if err != nil && !errors.Is(err, data.ErrUserExists) {
		return fmt.Errorf("seed %s: %w", acct.Email, err)
	}
	return nil
}
