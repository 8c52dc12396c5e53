// Package requestid carries request correlation IDs through contexts and
// HTTP hops.
//
// The mock server accepts the X-Request-ID header sent by the API client,
// falls back to a fresh UUID when it is missing or malformed, and echoes the
// chosen value back. The API client reuses an ID already stored in the
// context, so one user action keeps the same ID across every request it
// triggers. LoggerExtractor adds the ID to log records:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
package requestid
