package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/bellfeed/pkg/apiclient"
	"github.com/dmitrymomot/bellfeed/pkg/async"
	"github.com/dmitrymomot/bellfeed/pkg/broadcast"
	"github.com/dmitrymomot/bellfeed/pkg/config"
	"github.com/dmitrymomot/bellfeed/pkg/logger"
	"github.com/dmitrymomot/bellfeed/pkg/notifications"
	"github.com/dmitrymomot/bellfeed/pkg/realtime"
	"github.com/dmitrymomot/bellfeed/pkg/requestid"
)

type WatchCmd struct {
	flags *Flags

	// flags
	serverURL string
	stores    []string
	realtime  bool
}

// NewWatchCmd creates the watch command
func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Keep notification stores in sync and log every change",
		UsageText: "bellfeed watch --store inbox --store billing=category:billing [--realtime]",
		Description: `Registers the given stores, fetches their first page and logs each change
together with the store counters.

With --realtime the command also follows events from the Redis channel and
applies them to the stores.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server-url",
				Usage:       "API base URL (overrides BELLFEED_SERVER_URL)",
				Destination: &cmd.serverURL,
			},
			&cli.StringSliceFlag{
				Name:        "store",
				Aliases:     []string{"s"},
				Usage:       "store to register, as id or id=key:value,key:value",
				Value:       []string{"inbox"},
				Destination: &cmd.stores,
			},
			&cli.BoolFlag{
				Name:        "realtime",
				Usage:       "follow realtime events from Redis",
				Sources:     cli.EnvVars("BELLFEED_REALTIME"),
				Destination: &cmd.realtime,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	log := cmd.flags.Logger()

	specs, err := ParseStoreSpecs(cmd.stores)
	if err != nil {
		return err
	}

	var cfg apiclient.Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.serverURL != "" {
		cfg.ServerURL = cmd.serverURL
	}

	client, err := apiclient.New(cfg, apiclient.WithLogger(log))
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	sessions := notifications.NewSessions(func(string) *notifications.Collection {
		return notifications.NewCollection(client, notifications.WithLogger(log))
	}, 1, notifications.WithSessionsLogger(log))
	defer sessions.Shutdown()

	// Any worker ending early stops the others.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	coll := sessions.Open(userKey(cfg))
	for _, spec := range specs {
		coll.SetStore(spec.ID, spec.Params)
	}

	changes := coll.Subscribe(ctx)
	printer := async.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, logChanges(ctx, log, coll, changes)
	})

	fetchCtx := requestid.WithContext(ctx, requestid.New())
	if err := coll.FetchAllStores(fetchCtx, notifications.Params{notifications.ParamPage: 1}); err != nil {
		// Stores that failed stay empty until the next refresh.
		log.LogAttrs(ctx, slog.LevelError, "initial fetch failed", logger.Error(err))
	}

	workers := []*async.Future[struct{}]{printer}
	if cmd.realtime {
		var rcfg realtime.RedisConfig
		if err := config.Load(&rcfg); err != nil {
			return fmt.Errorf("load realtime config: %w", err)
		}
		rdb, err := realtime.ConnectRedis(ctx, rcfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()

		hub := broadcast.NewMemory[realtime.Event](64)
		defer hub.Close()
		events := hub.Subscribe(ctx)

		channel := realtime.UserChannel(rcfg.Channel, cfg.UserExternalID)
		source := realtime.NewRedisSource(rdb, channel, hub, realtime.WithSourceLogger(log))
		bridge := realtime.NewBridge(coll, realtime.WithBridgeLogger(log))

		workers = append(workers,
			async.Go(ctx, func(ctx context.Context) (struct{}, error) { return struct{}{}, source.Run(ctx) }),
			async.Go(ctx, func(ctx context.Context) (struct{}, error) { return struct{}{}, bridge.Listen(ctx, events) }),
		)
	}

	_, _, _ = async.First(ctx, workers...)
	cancel()

	results, _ := async.Settle(workers...)
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
			return r.Err
		}
	}
	return nil
}

func logChanges(ctx context.Context, log *slog.Logger, coll *notifications.Collection, sub broadcast.Subscriber[notifications.Change]) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Receive():
			if !ok {
				return nil
			}
			for _, id := range msg.Data.StoreIDs {
				store, ok := coll.Store(id)
				if !ok {
					continue
				}
				log.LogAttrs(ctx, slog.LevelInfo, "store changed",
					slog.String("kind", string(msg.Data.Kind)),
					logger.StoreID(id),
					logger.NotificationID(msg.Data.NotificationID),
					slog.Int("loaded", len(store.Notifications)),
					slog.Int("total", store.Total),
					slog.Int("unread", store.UnreadCount),
					slog.Int("unseen", store.UnseenCount),
				)
			}
		}
	}
}

// userKey names the session of the configured user.
func userKey(cfg apiclient.Config) string {
	switch {
	case cfg.UserExternalID != "":
		return cfg.UserExternalID
	case cfg.UserEmail != "":
		return cfg.UserEmail
	default:
		return cfg.APIKey
	}
}
