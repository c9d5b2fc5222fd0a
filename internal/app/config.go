package app

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/planloop/planloop-backend/internal/platform/envutil"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type Config struct {
	Environment     string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// fileConfig is the optional YAML file shape. Environment variables win
// over the file so container deployments can override single values.
type fileConfig struct {
	Environment     string `yaml:"environment"`
	JWTSecretKey    string `yaml:"jwt_secret_key"`
	AccessTokenTTL  int    `yaml:"access_token_ttl"`
	RefreshTokenTTL int    `yaml:"refresh_token_ttl"`
}

func LoadConfig(log *logger.Logger) Config {
	var fc fileConfig
	if path := envutil.String("PLANLOOP_CONFIG", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("config file unreadable, using env only", "path", path, "error", err)
		} else if err := yaml.Unmarshal(raw, &fc); err != nil {
			log.Warn("config file invalid, using env only", "path", path, "error", err)
		}
	}

	if fc.Environment == "" {
		fc.Environment = "development"
	}
	if fc.JWTSecretKey == "" {
		fc.JWTSecretKey = "defaultsecret"
	}
	if fc.AccessTokenTTL <= 0 {
		fc.AccessTokenTTL = 3600
	}
	if fc.RefreshTokenTTL <= 0 {
		fc.RefreshTokenTTL = 86400
	}

	return Config{
		Environment:     envutil.String("APP_ENV", fc.Environment),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", fc.JWTSecretKey),
		AccessTokenTTL:  time.Duration(envutil.Int("ACCESS_TOKEN_TTL", fc.AccessTokenTTL)) * time.Second,
		RefreshTokenTTL: time.Duration(envutil.Int("REFRESH_TOKEN_TTL", fc.RefreshTokenTTL)) * time.Second,
	}
}
