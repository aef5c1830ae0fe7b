package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/emailgenx/emailgenx/internal/config"
	"github.com/emailgenx/emailgenx/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "emailgenx",
		Usage:   "Temporary email addresses for Telegram users",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Environment file loaded before reading the environment",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path (overrides config)",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "HTTP listen address host:port (overrides config)",
			},
		},
		Action: runAction(true, true),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Start the Telegram bot and the HTTP API",
				Action: runAction(true, true),
			},
			{
				Name:   "bot",
				Usage:  "Start only the Telegram bot",
				Action: runAction(true, false),
			},
			{
				Name:   "api",
				Usage:  "Start only the HTTP API",
				Action: runAction(false, true),
			},
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(context.Context, *cli.Command) error {
					fmt.Println("emailgenx " + version.String())
					return nil
				},
			},
		},
	}
}

func runAction(withBot, withAPI bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runServices(ctx, cfg, withBot, withAPI)
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	if path := cmd.String("db"); path != "" {
		cfg.Database.Path = path
	}
	if addr := cmd.String("addr"); addr != "" {
		if err := cfg.SetAddr(addr); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
