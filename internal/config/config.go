package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"
)

type Config struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	BaseURL        string        `envconfig:"BASE_URL" default:""`
	Locale         string        `envconfig:"LOCALE" default:"en"`
	ScrapeTimeout  time.Duration `envconfig:"SCRAPE_TIMEOUT" default:"10s"`
	SyncTimeout    time.Duration `envconfig:"SYNC_TIMEOUT" default:"1m"`
	SyncRetention  time.Duration `envconfig:"SYNC_RETENTION" default:"1h"`
	RateLimitRPS   float64       `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int           `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// NewConfigFromEnv reads the configuration from the environment.
func NewConfigFromEnv() (cfg Config, err error) {
	err = envconfig.Process("", &cfg)
	return
}

// LocaleTag returns the collation locale, falling back to the root locale
// when LOCALE does not parse.
func (c Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}
