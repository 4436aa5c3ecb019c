// Package notify alerts the advisory desk about completed assessments.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awsclient "ipo-readiness/internal/common/aws"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Alert is the lead summary sent to advisors.
type Alert struct {
	ResponseID     string       `json:"responseId,omitempty"`
	Track          models.Track `json:"track"`
	UserName       string       `json:"userName"`
	UserEmail      string       `json:"userEmail"`
	UserPhone      string       `json:"userPhone,omitempty"`
	TotalScore     int          `json:"totalScore"`
	ReadinessScore float64      `json:"readinessScore"`
	ReadinessLabel string       `json:"readinessLabel"`
	ReportSent     bool         `json:"reportSent"`
	CompletedAt    time.Time    `json:"completedAt"`
}

// Notifier delivers an Alert.
type Notifier interface {
	NotifyAdvisor(ctx context.Context, alert Alert) (string, error)
}

// SNSNotifier publishes alerts to an SNS topic.
type SNSNotifier struct {
	client   awsclient.SNSAPI
	topicARN string
	logger   logger.Logger
}

func NewSNSNotifier(client awsclient.SNSAPI, topicARN string, log logger.Logger) (*SNSNotifier, error) {
	if topicARN == "" {
		return nil, fmt.Errorf("sns topic arn is required")
	}
	return &SNSNotifier{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "advisor-notifier"}),
	}, nil
}

// NotifyAdvisor publishes alert and returns the SNS message id.
func (n *SNSNotifier) NotifyAdvisor(ctx context.Context, alert Alert) (string, error) {
	body, err := json.Marshal(alert)
	if err != nil {
		return "", fmt.Errorf("marshal alert: %w", err)
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(Subject(alert)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"track": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(alert.Track)),
			},
			"readinessLabel": {
				DataType:    aws.String("String"),
				StringValue: aws.String(alert.ReadinessLabel),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}

	messageID := aws.ToString(out.MessageId)
	n.logger.Info("advisor notified", map[string]interface{}{
		"messageId": messageID,
		"track":     alert.Track,
	})
	return messageID, nil
}

// Subject is the SNS subject line. SNS caps subjects at 100 characters.
func Subject(alert Alert) string {
	s := fmt.Sprintf("New %s IPO lead: %s (%s/5)", alert.Track.DisplayName(), alert.UserName,
		models.ScoreResult{ReadinessScore: alert.ReadinessScore}.FormattedScore())
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
