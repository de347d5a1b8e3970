package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/foodnet/analytics/cmd/app/commands"
	"github.com/foodnet/analytics/internal/app"
	"github.com/foodnet/analytics/internal/config"
)

func getUserCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Create a new user account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Unique account username",
				},
				&cli.StringFlag{
					Name:    "email",
					Aliases: []string{"e"},
					Usage:   "Account email address",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Account password (omit to be prompted)",
				},
				&cli.StringFlag{
					Name:    "role",
					Aliases: []string{"r"},
					Value:   "user",
					Usage:   "Account role: 'admin' or 'user'",
				},
				&cli.DurationFlag{
					Name:    "token-ttl",
					Aliases: []string{"t"},
					Usage:   "Issue a bootstrap access token with this lifetime (e.g., 30m)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userRepo, err := container.UserRepository()
				if err != nil {
					return err
				}

				tokenService, err := container.TokenService()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userRepo,
					container.PasswordService(),
					tokenService,
					container.Logger(),
					cmd.String("username"),
					cmd.String("email"),
					cmd.String("password"),
					cmd.String("role"),
					cmd.Duration("token-ttl"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
