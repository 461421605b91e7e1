package env

import (
	"casebox_backend/internal/config"
	"errors"

	"github.com/kelseyhightower/envconfig"
)

type pgConfig struct {
	DSNValue      string `envconfig:"PG_DSN"`
	MaxConnsValue int32  `envconfig:"PG_MAX_CONNS" default:"25"`
}

func NewPGConfig() (config.PGConfig, error) {
	var cfg pgConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.DSNValue) == 0 {
		return nil, errors.New("pg dsn not found")
	}
	if cfg.MaxConnsValue <= 0 {
		return nil, errors.New("PG_MAX_CONNS must be > 0")
	}

	return &cfg, nil
}

func (cfg *pgConfig) DSN() string {
	return cfg.DSNValue
}

func (cfg *pgConfig) MaxConns() int32 {
	return cfg.MaxConnsValue
}
