package mockserver

import (
	"github.com/dmitrymomot/bellfeed/pkg/httpserver"
	"github.com/dmitrymomot/bellfeed/pkg/realtime"
)

// Config describes a mock server process.
type Config struct {
	APIKey   string `env:"BELLFEED_MOCK_API_KEY" envDefault:"pk_test"`
	Fixtures string `env:"BELLFEED_MOCK_FIXTURES"`
	PerPage  int    `env:"BELLFEED_MOCK_PER_PAGE" envDefault:"15"`

	// Publish sends realtime events to Redis after each write.
	Publish bool   `env:"BELLFEED_MOCK_PUBLISH" envDefault:"false"`
	UserID  string `env:"BELLFEED_MOCK_USER_ID"`

	HTTP  httpserver.Config
	Redis realtime.RedisConfig
}
