package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"interiors-admin-be/config"
	"interiors-admin-be/internal/database"
	"interiors-admin-be/internal/logging"
	"interiors-admin-be/internal/repository"
	"interiors-admin-be/internal/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

const commandTimeout = 30 * time.Second

type allowEmailCmd struct {
	Email string `arg:"" help:"Address to allow."`
}

type revokeEmailCmd struct {
	Email string `arg:"" help:"Address to remove."`
}

type listEmailsCmd struct{}

type setPasswordCmd struct {
	Email    string `required:"" help:"Admin e-mail address."`
	Password string `required:"" help:"New password (at least 8 characters)."`
}

// withDatabase connects using the server configuration and runs fn.
func withDatabase(ctx context.Context, fn func(ctx context.Context, db *mongo.Database) error) error {
	cfg := config.Load()
	logger, err := logging.New("warn", cfg.AppEnv)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	mdb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase, logger)
	if err != nil {
		return fmt.Errorf("adminctl: %w", err)
	}
	defer func() { _ = mdb.Disconnect() }()

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	return fn(ctx, mdb.Database)
}

func (cmd *allowEmailCmd) Run(ctx context.Context, out io.Writer) error {
	email := utils.NormalizeEmail(cmd.Email)
	return withDatabase(ctx, func(ctx context.Context, db *mongo.Database) error {
		if err := repository.NewAllowedEmailRepository(db).Add(ctx, email); err != nil {
			return fmt.Errorf("adminctl: allow %s: %w", email, err)
		}
		fmt.Fprintf(out, "✓ %s may now sign in\n", email)
		return nil
	})
}

func (cmd *revokeEmailCmd) Run(ctx context.Context, out io.Writer) error {
	email := utils.NormalizeEmail(cmd.Email)
	return withDatabase(ctx, func(ctx context.Context, db *mongo.Database) error {
		if err := repository.NewAllowedEmailRepository(db).Remove(ctx, email); err != nil {
			return fmt.Errorf("adminctl: revoke %s: %w", email, err)
		}
		fmt.Fprintf(out, "✓ %s removed from the allow-list\n", email)
		return nil
	})
}

func (cmd *listEmailsCmd) Run(ctx context.Context, out io.Writer) error {
	return withDatabase(ctx, func(ctx context.Context, db *mongo.Database) error {
		entries, err := repository.NewAllowedEmailRepository(db).List(ctx)
		if err != nil {
			return fmt.Errorf("adminctl: list allow-list: %w", err)
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s\t%s\n", e.Email, e.CreatedAt.UTC().Format(time.RFC3339))
		}
		return nil
	})
}

func (cmd *setPasswordCmd) Validate() error {
	if len(cmd.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func (cmd *setPasswordCmd) Run(ctx context.Context, out io.Writer) error {
	email := utils.NormalizeEmail(cmd.Email)
	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return fmt.Errorf("adminctl: hash password: %w", err)
	}
	return withDatabase(ctx, func(ctx context.Context, db *mongo.Database) error {
		if err := repository.NewAdminRepository(db).SetPassword(ctx, email, hash); err != nil {
			return fmt.Errorf("adminctl: set password for %s: %w", email, err)
		}
		fmt.Fprintf(out, "✓ password set for %s\n", email)
		return nil
	})
}
