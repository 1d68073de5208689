package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

const (
	defaultAPI = "http://localhost:8080"

	FlagAPI     = "api"
	EnvAPI      = "GITOBS_API"
	FlagJSON    = "json"
	FlagNoColor = "no-color"
	FlagAuthor  = "author"
	EnvAuthor   = "GITOBS_AUTHOR"
)

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "gitobs-admin",
		Writer: out,
		Usage:  "Inspect and drive a gitobs repository over its REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    FlagAPI,
				Sources: cli.EnvVars(EnvAPI),
				Value:   defaultAPI,
				Usage:   "Base `URL` of the gitobs REST API",
			},
			&cli.BoolFlag{
				Name:  FlagJSON,
				Usage: "Output JSON instead of tables",
			},
			&cli.BoolFlag{
				Name:  FlagNoColor,
				Usage: "Disable coloration",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			color.NoColor = color.NoColor || cmd.Bool(FlagNoColor)
			return ctx, nil
		},
		Commands: []*cli.Command{
			branchesCommand(),
			commitCommand(),
			mergeCommand(),
			compareCommand(),
			hooksCommand(),
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}
