package env

import (
	"casebox_backend/internal/config"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type jwtConfig struct {
	AccessTokenSecret string `envconfig:"ACCESS_TOKEN"`
}

func NewJWTConfig() (config.JWTConfig, error) {
	var cfg jwtConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.AccessTokenSecret) == 0 {
		return nil, fmt.Errorf("access token secret key not found")
	}
	return &cfg, nil
}

func (j *jwtConfig) AccessTokenSecretKey() []byte {
	return []byte(j.AccessTokenSecret)
}
