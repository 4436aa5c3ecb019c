// internal/workers/data-access/list-assessment-responses/config.go
package listassessmentresponses

import (
	"time"

	"ipo-readiness/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
}

func NewConfig(wc config.WorkerConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{Timeout: timeout, DefaultLimit: 50}
}
