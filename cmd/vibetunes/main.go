// Command vibetunes serves the mood-to-playlist API and offers a one-shot
// generate command for the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "vibetunes",
		Usage: "Turn a mood into a Spotify playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Path to a .env file",
				Value:   ".env",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			generateCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to HOST:PORT)",
			},
		},
		Action: runServe,
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a playlist for a mood and print it as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "access-token",
				Sources: cli.EnvVars("SPOTIFY_USER_TOKEN"),
				Usage:   "User access token; when set the playlist is also created in the account",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "mood"},
		},
		Action: runGenerate,
	}
}
