// Package config reads runtime configuration from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
)

// Config contains everything the service needs at boot. DB_URL is the only
// required value; boot fails fast without it.
type Config struct {
	DBURL         string   `env:"DB_URL,required"`
	ListenAddr    string   `env:"LISTEN_ADDR" envDefault:":8080"`
	CampaignsFile string   `env:"CAMPAIGNS_FILE"`
	APIKeys       []string `env:"API_KEYS"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment. API_KEYS is a comma-separated list; when it
// is empty the API runs open (auth terminated at the gateway).
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
