package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/bellfeed/pkg/broadcast"
	"github.com/dmitrymomot/bellfeed/pkg/logger"
)

// RedisConfig locates the pub/sub channel carrying realtime events.
type RedisConfig struct {
	ConnectionURL  string        `env:"BELLFEED_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	Channel        string        `env:"BELLFEED_REDIS_CHANNEL" envDefault:"bellfeed:events"`
	RetryAttempts  int           `env:"BELLFEED_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"BELLFEED_REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"BELLFEED_REDIS_CONNECT_TIMEOUT" envDefault:"15s"`
}

// UserChannel scopes channel to one user.
func UserChannel(channel, userID string) string {
	if userID == "" {
		return channel
	}
	return channel + ":" + userID
}

// ConnectRedis opens a client and pings it until it answers, trying
// RetryAttempts times RetryInterval apart within ConnectTimeout.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	var lastErr error
	for attempt := range max(cfg.RetryAttempts, 1) {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrRedisNotReady, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}

		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()
	}
	return nil, errors.Join(ErrRedisNotReady, lastErr)
}

// RedisSource forwards events from a Redis channel into a broadcaster.
type RedisSource struct {
	client  redis.UniversalClient
	channel string
	out     broadcast.Broadcaster[Event]
	logger  *slog.Logger
}

// RedisSourceOption configures a RedisSource.
type RedisSourceOption func(*RedisSource)

func WithSourceLogger(l *slog.Logger) RedisSourceOption {
	return func(s *RedisSource) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewRedisSource(client redis.UniversalClient, channel string, out broadcast.Broadcaster[Event], opts ...RedisSourceOption) *RedisSource {
	s := &RedisSource{
		client:  client,
		channel: channel,
		out:     out,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("realtime"), slog.String("channel", channel))
	return s
}

// Run subscribes and forwards events until ctx is done.
func (s *RedisSource) Run(ctx context.Context) error {
	ps := s.client.Subscribe(ctx, s.channel)
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return errors.Join(ErrSubscribe, err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "listening for realtime events")
	return s.forward(ctx, ps.Channel())
}

func (s *RedisSource) forward(ctx context.Context, messages <-chan *redis.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			ev, err := Decode([]byte(msg.Payload))
			if err != nil {
				s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping malformed event", logger.Error(err))
				continue
			}
			if err := s.out.Broadcast(ctx, ev); err != nil {
				return fmt.Errorf("forward %s: %w", ev.Name(), err)
			}
		}
	}
}

// RedisPublisher publishes events to a Redis channel.
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

func NewRedisPublisher(client redis.Cmdable, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	raw, err := Encode(ev)
	if err != nil {
		return errors.Join(ErrPublish, err)
	}
	if err := p.client.Publish(ctx, p.channel, raw).Err(); err != nil {
		return errors.Join(ErrPublish, err)
	}
	return nil
}
