package env

import (
	"casebox_backend/internal/config"
	"net"

	"github.com/kelseyhightower/envconfig"
)

type httpConfig struct {
	Host string `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port string `envconfig:"HTTP_PORT" default:"8080"`
}

func NewHTTPConfig() (config.HTTPConfig, error) {
	var cfg httpConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *httpConfig) Address() string {
	return net.JoinHostPort(cfg.Host, cfg.Port)
}

type logConfig struct {
	LevelValue string `envconfig:"LOG_LEVEL" default:"info"`
}

func NewLogConfig() (config.LogConfig, error) {
	var cfg logConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *logConfig) Level() string {
	return cfg.LevelValue
}
