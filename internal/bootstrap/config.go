package bootstrap

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"

	"github.com/HA5ANT/CHESS-MASTER/engine"
)

type Config struct {
	ServerPort            string        `mapstructure:"SERVER_PORT"`
	EngineDepth           int           `mapstructure:"ENGINE_DEPTH"`
	EngineMaxTime         time.Duration `mapstructure:"ENGINE_MAX_TIME"`
	EngineSafetyThreshold int           `mapstructure:"ENGINE_SAFETY_THRESHOLD"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
	RedisUrl              string        `mapstructure:"REDIS_URL"`
	SessionTTL            time.Duration `mapstructure:"SESSION_TTL"`
	IsLocalCors           bool          `mapstructure:"LOCAL_CORS"`
}

var defaults = map[string]any{
	"SERVER_PORT":             ":5000",
	"ENGINE_DEPTH":            engine.DefaultDepth,
	"ENGINE_MAX_TIME":         engine.DefaultMaxTime.String(),
	"ENGINE_SAFETY_THRESHOLD": int(engine.DefaultSafetyThreshold),
	"LOG_LEVEL":               "info",
	"REDIS_URL":               "",
	"SESSION_TTL":             "11h",
	"LOCAL_CORS":              false,
}

// Setup reads the optional config file at cfgPath and lets CHESS_* environment
// variables override it. A missing file is not an error.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("CHESS")
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EngineConfig converts the engine settings, clamping the depth into range.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		MaxDepth:        engine.Clamp(c.EngineDepth, engine.MinDepth, engine.MaxDepth),
		MaxTime:         c.EngineMaxTime,
		SafetyThreshold: engine.Score(c.EngineSafetyThreshold),
	}
}
