package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/florianilch/tokenward/internal/app"
	"github.com/florianilch/tokenward/internal/authflow"
	"github.com/florianilch/tokenward/internal/observability"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "obtain and persist a valid token, interactively if needed",
		Flags:  authFlags(),
		Action: loginAction,
	}
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	cfg, shutdown, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	auth, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	tok, err := auth.Authenticate(ctx, true, chooseOpener())
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	info := auth.Manager().Info(ctx)
	slog.InfoContext(ctx, "authenticated",
		"token_type", tok.TokenType,
		"expires_at", info.ExpiresAt,
		"has_refresh_token", info.HasRefreshToken,
	)
	return nil
}

// setup loads configuration and installs the default logger. Shared by all
// subcommand actions.
func setup(cmd *cli.Command) (*app.Config, func(context.Context) error, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	shutdown, err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat), string(cfg.LogExport))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}

	return cfg, shutdown, nil
}

// chooseOpener auto-opens the browser only for interactive terminal
// sessions; otherwise the authorization URL is logged for manual use.
func chooseOpener() authflow.URLOpener {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return authflow.BrowserOpener{}
	}
	return authflow.LogOpener{}
}
