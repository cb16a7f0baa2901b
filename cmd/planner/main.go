package main

import (
	"os"

	"github.com/andresuchdata/replenish-planner/internal/config"
	"github.com/andresuchdata/replenish-planner/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("planner failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "planner",
		Usage: "Replenishment and risk planning from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.ConfigureOutput(c.App.ErrWriter, config.Load().Server.Mode, c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			evaluateCommand(),
			compareCommand(),
			cashflowCommand(),
			planCommand(),
			importCommand(),
		},
	}
}
