// Package httpserver runs an http.Handler until a context is cancelled, then
// drains in-flight requests within a shutdown timeout.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	err := srv.Run(ctx, handler)
package httpserver
