// internal/workers/assessment/render-assessment-report/config.go
package renderassessmentreport

import (
	"time"

	"ipo-readiness/internal/common/config"
	"ipo-readiness/internal/models"
)

type Config struct {
	Timeout time.Duration
	Contact models.Contact
}

func NewConfig(wc config.WorkerConfig, rc config.ReportConfig) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Timeout: timeout,
		Contact: models.Contact{
			Firm:       rc.Firm,
			BookingURL: rc.BookingURL,
			Email:      rc.ContactEmail,
			Phone:      rc.ContactPhone,
			Website:    rc.Website,
		},
	}
}
