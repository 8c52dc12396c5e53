package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/bellfeed/pkg/config"
	"github.com/dmitrymomot/bellfeed/pkg/httpserver"
	"github.com/dmitrymomot/bellfeed/pkg/logger"
	"github.com/dmitrymomot/bellfeed/pkg/mockserver"
	"github.com/dmitrymomot/bellfeed/pkg/notifications"
	"github.com/dmitrymomot/bellfeed/pkg/realtime"
)

type ServeCmd struct {
	flags *Flags

	// flags
	addr     string
	fixtures string
	publish  bool
}

// NewServeCmd creates the serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the mock notification API",
		UsageText: "bellfeed serve [--addr :8080] [--fixtures feed.yaml] [--publish]",
		Description: `Serves the notification API from an in-memory feed seeded with YAML fixtures.

With --publish every write is also announced on the Redis realtime channel,
so "bellfeed watch" sessions pick it up.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides BELLFEED_HTTP_ADDR)",
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "fixtures",
				Usage:       "YAML file with seed notifications",
				Sources:     cli.EnvVars("BELLFEED_MOCK_FIXTURES"),
				Destination: &cmd.fixtures,
			},
			&cli.BoolFlag{
				Name:        "publish",
				Usage:       "publish realtime events to Redis",
				Sources:     cli.EnvVars("BELLFEED_MOCK_PUBLISH"),
				Destination: &cmd.publish,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	log := cmd.flags.Logger()

	var cfg mockserver.Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.addr != "" {
		cfg.HTTP.Addr = cmd.addr
	}
	if cmd.fixtures != "" {
		cfg.Fixtures = cmd.fixtures
	}
	cfg.Publish = cfg.Publish || cmd.publish

	api := notifications.NewMemoryAPI(notifications.WithDefaultPerPage(cfg.PerPage))
	if cfg.Fixtures != "" {
		seed, err := mockserver.LoadFixturesFile(cfg.Fixtures, time.Now())
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		api.Add(seed...)
		log.LogAttrs(ctx, slog.LevelInfo, "fixtures loaded", logger.Count(len(seed)), slog.String("file", cfg.Fixtures))
	}

	opts := []mockserver.Option{
		mockserver.WithAPIKey(cfg.APIKey),
		mockserver.WithLogger(log),
	}
	if cfg.Publish {
		rdb, err := realtime.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()

		channel := realtime.UserChannel(cfg.Redis.Channel, cfg.UserID)
		opts = append(opts,
			mockserver.WithPublisher(realtime.NewRedisPublisher(rdb, channel)),
			mockserver.WithHealthChecks(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		)
		log.LogAttrs(ctx, slog.LevelInfo, "publishing realtime events", slog.String("channel", channel))
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, mockserver.New(api, opts...).Handler())
}
