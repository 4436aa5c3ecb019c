package mail

import (
	"context"
	"fmt"

	awsclient "ipo-readiness/internal/common/aws"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESMailer sends multipart reports through Amazon SES.
type SESMailer struct {
	client awsclient.SESAPI
	from   string
	logger logger.Logger
}

func NewSESMailer(client awsclient.SESAPI, from string, log logger.Logger) *SESMailer {
	return &SESMailer{
		client: client,
		from:   from,
		logger: log.WithFields(map[string]interface{}{"transport": "ses"}),
	}
}

func (m *SESMailer) Send(ctx context.Context, email models.Email) error {
	if err := checkEnvelope(m.from, email); err != nil {
		return err
	}

	body := &types.Body{}
	if email.HTML != "" {
		body.Html = &types.Content{Data: aws.String(email.HTML), Charset: aws.String("UTF-8")}
	}
	if email.Text != "" {
		body.Text = &types.Content{Data: aws.String(email.Text), Charset: aws.String("UTF-8")}
	}

	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
			CcAddresses: email.CC,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}

	m.logger.Info("email sent", map[string]interface{}{
		"to":        email.To,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}
