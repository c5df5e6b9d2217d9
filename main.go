package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"marketplace-feed/config"
	"marketplace-feed/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("exit")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "marketplace-feed",
		Usage: "Personalized catalog feed for the marketplace",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"FEED_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before the environment is read",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the database schema",
				Action: migrateCommand,
			},
			{
				Name:   "seed",
				Usage:  "Insert fixture users and items",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "YAML fixture with users and items",
						Required: true,
					},
				},
			},
		},
		DefaultCommand: "serve",
	}
}

// loadConfig reads configuration and installs the global logger.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, nil
}
