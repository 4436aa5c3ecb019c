package emailsend

import (
	"fmt"
	"time"

	"ipo-readiness/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	Provider string
}

func NewConfig(wc config.WorkerConfig, mc config.MailConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{Timeout: timeout, Provider: mc.Transport}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	return nil
}
