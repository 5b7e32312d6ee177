package commands

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/tokenward/internal/app"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "tokenward",
		Usage: "OAuth 2.0 token lifecycle keeper",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			tokenCommand(),
			statusCommand(),
			logoutCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// storageFlags configure where the stored token lives. Shared by every
// subcommand.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "token--storage",
			Usage: "token storage backend (file|env|keyring)",
			Value: string(app.DefaultConfigTokenStorage),
		},
		&cli.StringFlag{
			Name:  "token--directory",
			Usage: "token directory (file storage)",
		},
		&cli.StringFlag{
			Name:  "token--file-name",
			Usage: "token file name within the token directory",
		},
		&cli.DurationFlag{
			Name:  "token--expiration-buffer",
			Usage: "treat tokens expiring within this window as expired",
			Value: app.DefaultConfigExpirationBuffer,
		},
		&cli.DurationFlag{
			Name:  "token--max-lifetime",
			Usage: "cap token lifetime regardless of server expiry (0 = no cap)",
		},
	}
}

// authFlags configure credentials and the interactive flow, on top of the
// storage flags.
func authFlags() []cli.Flag {
	return append(storageFlags(),
		&cli.StringFlag{
			Name:  "credentials--file",
			Usage: "path to provider credentials JSON",
		},
		&cli.StringFlag{
			Name:  "credentials--key",
			Usage: "nesting key within the credentials JSON (auto-detected when empty)",
		},
		&cli.StringSliceFlag{
			Name:  "flow--scopes",
			Usage: "scopes to request",
		},
		&cli.StringFlag{
			Name:  "flow--login-hint",
			Usage: "account hint for the provider login screen",
		},
		&cli.StringFlag{
			Name:  "flow--prompt",
			Usage: "authorization prompt override (e.g. consent)",
		},
		&cli.DurationFlag{
			Name:  "flow--timeout",
			Usage: "how long to wait for the authorization redirect",
			Value: app.DefaultConfigFlowTimeout,
		},
		&cli.BoolFlag{
			Name:  "flow--disable-offline-access",
			Usage: "do not request a refresh token",
		},
	)
}
