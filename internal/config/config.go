package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	Host   string `env:"HOST" envDefault:"0.0.0.0"`
	Port   string `env:"PORT" envDefault:"8000"`
	APIKey string `env:"CLAUDE_API_KEY,required,notEmpty"`

	BinaryPath     string   `env:"CLAUDE_BINARY_PATH" envDefault:"claude"`
	TimeoutSeconds int      `env:"CLAUDE_TIMEOUT_SECONDS" envDefault:"300"`
	MaxTurns       int      `env:"CLAUDE_MAX_TURNS" envDefault:"50"`
	AllowedTools   []string `env:"CLAUDE_ALLOWED_TOOLS" envSeparator:","`
	WorkspaceRoot  string   `env:"CLAUDE_WORKSPACE_ROOT" envDefault:"/tmp/claude-gateway"`

	SessionTimeoutHours int `env:"SESSION_TIMEOUT_HOURS" envDefault:"24"`
	MaxSessions         int `env:"MAX_SESSIONS" envDefault:"1024"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Timeout devuelve el límite por invocación del CLI.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionTTL devuelve el tiempo de vida de una sesión inactiva.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTimeoutHours) * time.Hour
}
