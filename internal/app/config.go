package app

import (
	"time"

	"github.com/pinlore/pinlore-backend/internal/platform/envutil"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type Config struct {
	HTTPAddr       string
	JWTSecretKey   string
	AccessTokenTTL time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	httpAddr := envutil.GetEnv("HTTP_ADDR", ":8080", log)
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	if jwtSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	return Config{
		HTTPAddr:       httpAddr,
		JWTSecretKey:   jwtSecretKey,
		AccessTokenTTL: time.Duration(accessTokenTTLSeconds) * time.Second,
	}
}
