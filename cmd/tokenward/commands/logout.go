package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "delete the stored token",
		Flags:  storageFlags(),
		Action: logoutAction,
	}
}

func logoutAction(ctx context.Context, cmd *cli.Command) error {
	cfg, shutdown, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	store, err := cfg.Token.NewStore()
	if err != nil {
		return fmt.Errorf("failed to create token store: %w", err)
	}

	if err := store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete stored token: %w", err)
	}

	slog.InfoContext(ctx, "stored token deleted")
	return nil
}
