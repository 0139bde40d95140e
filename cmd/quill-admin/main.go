package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/internal/adapters/bcrypthash"
	"github.com/quillhq/quill/internal/bootstrap"
	"github.com/quillhq/quill/internal/data"
	"github.com/quillhq/quill/internal/devseed"
	domainauth "github.com/quillhq/quill/internal/domain/auth"
	"github.com/quillhq/quill/internal/domain/model"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must exit non-zero on command failure
	}
}

func commands() map[string]command {
	cmds := []command{
		{
			name:        "migrate",
			description: "apply pending database migrations",
			run:         runMigrate,
		},
		{
			name:        "create-user",
			description: "create a user account (use -role ADMIN for the first admin)",
			run:         runCreateUser,
		},
		{
			name:        "get-user",
			description: "look up a user by email",
			run:         runGetUser,
		},
		{
			name:        "seed",
			description: "create development accounts (local only)",
			run:         runSeed,
		},
	}

	out := make(map[string]command, len(cmds))
	for _, c := range cmds {
		out[c.name] = c
	}
	return out
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: quill-admin <command> [flags]")
	fmt.Fprintln(os.Stderr)

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, cmds[name].description)
	}
	_ = w.Flush()
}

func connectDB(ctx *commandContext) (*sql.DB, error) {
	return bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: ctx.Config.Postgres,
		Logger:   ctx.Logger,
	})
}

func runMigrate(ctx *commandContext, _ []string) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	migrateCtx, cancel := context.WithTimeout(ctx.Ctx, defaultMigrationTimeout)
	defer cancel()

	return bootstrap.RunMigrations(migrateCtx, db, ctx.Logger)
}

func runCreateUser(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	email := fs.String("email", "", "user email (required)")
	name := fs.String("name", "", "user name (required)")
	password := fs.String("password", "", "plaintext password (required)")
	role := fs.String("role", string(domainauth.RoleUser), "role: ADMIN, USER, or GUEST")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *name == "" || *password == "" {
		return errors.New("-email, -name, and -password are required")
	}

	hash, err := bcrypthash.New().Hash(*password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	user, err := data.NewUserRepo(db).Create(ctx.Ctx, &model.CreateUserRequest{
		Email:        *email,
		Name:         *name,
		PasswordHash: hash,
		Role:         domainauth.Role(*role),
		FirstName:    *firstName,
		LastName:     *lastName,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	ctx.Logger.InfoContext(ctx.Ctx, "user created",
		"id", user.ID,
		"email", user.Email,
		"role", user.Role,
	)
	return nil
}

func runGetUser(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("get-user", flag.ContinueOnError)
	email := fs.String("email", "", "user email (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	user, err := data.NewUserRepo(db).GetByEmail(ctx.Ctx, *email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", user.ID)
	fmt.Fprintf(w, "Email\t%s\n", user.Email)
	fmt.Fprintf(w, "Name\t%s\n", user.Name)
	fmt.Fprintf(w, "Role\t%s\n", user.Role)
	fmt.Fprintf(w, "Created\t%s\n", user.CreatedAt.Format(time.RFC3339))
	return w.Flush()
}

func runSeed(ctx *commandContext, _ []string) error {
	if !ctx.Config.IsDev {
		return errors.New("seed requires DEV=true")
	}

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	return devseed.Run(ctx.Ctx, db, ctx.Logger)
}

func closeDB(ctx *commandContext, db *sql.DB) {
	if err := db.Close(); err != nil {
		ctx.Logger.ErrorContext(ctx.Ctx, "close database failed", "error", err)
	}
}
