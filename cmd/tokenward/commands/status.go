package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/tokenward/internal/tokenmanager"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "show the stored token's state without modifying it",
		Flags:  storageFlags(),
		Action: statusAction,
	}
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	cfg, shutdown, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	store, err := cfg.Token.NewStore()
	if err != nil {
		return fmt.Errorf("failed to create token store: %w", err)
	}

	manager, err := tokenmanager.New(store, cfg.Token.Policy())
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	out, err := json.MarshalIndent(manager.Info(ctx), "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
