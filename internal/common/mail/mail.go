// Package mail delivers rendered reports over SES or SMTP.
package mail

import (
	"context"
	"fmt"
	"strings"

	"ipo-readiness/internal/common/validation"
	"ipo-readiness/internal/models"
)

// Mailer sends one email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, email models.Email) error
}

func checkEnvelope(from string, email models.Email) error {
	if !validation.ValidateEmail(from) {
		return fmt.Errorf("invalid 'from' email address: %s", from)
	}
	if !validation.ValidateEmail(email.To) {
		return fmt.Errorf("invalid 'to' email address: %s", email.To)
	}
	for _, addr := range email.CC {
		if !validation.ValidateEmail(addr) {
			return fmt.Errorf("invalid 'cc' email address: %s", addr)
		}
	}
	if strings.TrimSpace(email.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if email.HTML == "" && email.Text == "" {
		return fmt.Errorf("email has no body")
	}
	return nil
}
