package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/tokenward/internal/app"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "print a valid access token to stdout",
		Flags: append(authFlags(),
			&cli.BoolFlag{
				Name:  "no-login",
				Usage: "fail instead of starting an interactive authorization",
			},
		),
		Action: tokenAction,
	}
}

func tokenAction(ctx context.Context, cmd *cli.Command) error {
	cfg, shutdown, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	auth, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	interactive := !cmd.Bool("no-login")
	tok, err := auth.Authenticate(ctx, interactive, chooseOpener())
	if err != nil {
		return fmt.Errorf("no token available: %w", err)
	}

	// Only the token goes to stdout; diagnostics stay on stderr.
	fmt.Println(tok.AccessToken)
	return nil
}
