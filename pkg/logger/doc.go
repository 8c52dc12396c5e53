// Package logger builds the *slog.Logger used across bellfeed and provides
// attribute helpers so every component names its log fields the same way.
//
// New assembles a JSON or text handler from functional options and wraps it
// with a decorator that copies selected context values into each record:
//
//	log := logger.New(
//		logger.WithEnvironment("development", "bellfeed"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.LogAttrs(ctx, slog.LevelInfo, "store fetched",
//		logger.StoreID("inbox"),
//		logger.Count(len(page.Notifications)),
//	)
//
// Attribute helpers return an empty slog.Attr for nil or empty input, which
// slog drops, so callers can pass optional values without branching.
package logger
