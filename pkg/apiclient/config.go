package apiclient

import "time"

// Config describes the account and user the client acts for.
type Config struct {
	ServerURL      string        `env:"BELLFEED_SERVER_URL" envDefault:"https://api.magicbell.com"`
	APIKey         string        `env:"BELLFEED_API_KEY,required"`
	APISecret      string        `env:"BELLFEED_API_SECRET"`
	ClientID       string        `env:"BELLFEED_CLIENT_ID"`
	UserEmail      string        `env:"BELLFEED_USER_EMAIL"`
	UserExternalID string        `env:"BELLFEED_USER_EXTERNAL_ID"`
	UserHMAC       string        `env:"BELLFEED_USER_HMAC"`
	Timeout        time.Duration `env:"BELLFEED_HTTP_TIMEOUT" envDefault:"10s"`
	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64 `env:"BELLFEED_RATE_LIMIT" envDefault:"0"`
	RateBurst int     `env:"BELLFEED_RATE_BURST" envDefault:"5"`
}
