// Package apiclient talks to the notification HTTP API and implements
// notifications.API on top of it.
//
// Every request carries the account headers built from Config: the client id
// and API key always, and the API secret, user email, user external id and
// user HMAC when set. When no HMAC is configured but an API secret is, the
// HMAC is derived from the user's external id (or email). Each request also
// gets a fresh X-Request-ID.
//
// Non-2xx responses become *Error values whose message is
// "request failed with status code N"; match them with errors.As, or with
// errors.Is against ErrUnauthorized, ErrForbidden, ErrNotFound and
// ErrServer. Network failures wrap ErrRequestFailed.
//
// Payloads use snake_case JSON with timestamps in Unix seconds. WirePage and
// WireNotification expose that format for servers that need to produce it.
//
//	var cfg apiclient.Config
//	config.MustLoad(&cfg)
//	client, err := apiclient.New(cfg, apiclient.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	feed := notifications.NewCollection(client)
package apiclient
