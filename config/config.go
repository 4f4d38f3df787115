package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	AllowedOrigins []string
	LogLevel       string
	LogPretty      bool

	MaxMessageSize int64
	SendBufferSize int
	MessageRate    float64
	MessageBurst   int
	UpgradeRate    float64
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		LogLevel:       "info",
		MaxMessageSize: 512,
		SendBufferSize: 16,
		MessageRate:    30,
		MessageBurst:   60,
		UpgradeRate:    5,
	}
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	c := Default()
	var err error

	if v := os.Getenv("ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if c.LogPretty, err = envBool("LOG_PRETTY", c.LogPretty); err != nil {
		return Config{}, err
	}
	if c.MaxMessageSize, err = envInt64("MAX_MESSAGE_SIZE", c.MaxMessageSize); err != nil {
		return Config{}, err
	}
	size, err := envInt64("SEND_BUFFER_SIZE", int64(c.SendBufferSize))
	if err != nil {
		return Config{}, err
	}
	c.SendBufferSize = int(size)
	if c.MessageRate, err = envFloat("MESSAGE_RATE", c.MessageRate); err != nil {
		return Config{}, err
	}
	burst, err := envInt64("MESSAGE_BURST", int64(c.MessageBurst))
	if err != nil {
		return Config{}, err
	}
	c.MessageBurst = int(burst)
	if c.UpgradeRate, err = envFloat("UPGRADE_RATE", c.UpgradeRate); err != nil {
		return Config{}, err
	}

	return c, c.validate()
}

func (c Config) validate() error {
	switch {
	case c.MaxMessageSize <= 0:
		return fmt.Errorf("MAX_MESSAGE_SIZE must be positive, got %d", c.MaxMessageSize)
	case c.SendBufferSize <= 0:
		return fmt.Errorf("SEND_BUFFER_SIZE must be positive, got %d", c.SendBufferSize)
	case c.MessageRate <= 0:
		return fmt.Errorf("MESSAGE_RATE must be positive, got %v", c.MessageRate)
	case c.MessageBurst <= 0:
		return fmt.Errorf("MESSAGE_BURST must be positive, got %d", c.MessageBurst)
	case c.UpgradeRate <= 0:
		return fmt.Errorf("UPGRADE_RATE must be positive, got %v", c.UpgradeRate)
	}
	return nil
}

func envInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
