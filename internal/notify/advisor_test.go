package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	publishFunc func(ctx context.Context, params *sns.PublishInput) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, params)
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
}

func createTestAlert() Alert {
	return Alert{
		ResponseID:     "resp-1",
		Track:          models.TrackSME,
		UserName:       "Asha Rao",
		UserEmail:      "asha@example.com",
		TotalScore:     21,
		ReadinessScore: 4.0,
		ReadinessLabel: "Good IPO Readiness",
		ReportSent:     true,
	}
}

func TestSNSNotifier_NotifyAdvisor(t *testing.T) {
	client := &mockSNS{}
	n, err := NewSNSNotifier(client, "arn:aws:sns:ap-south-1:123456789012:ipo-leads", logger.NewNoOpLogger())
	require.NoError(t, err)

	id, err := n.NotifyAdvisor(context.Background(), createTestAlert())
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)

	require.Len(t, client.calls, 1)
	in := client.calls[0]
	assert.Equal(t, "arn:aws:sns:ap-south-1:123456789012:ipo-leads", aws.ToString(in.TopicArn))
	assert.Equal(t, "New SME IPO lead: Asha Rao (4.0/5)", aws.ToString(in.Subject))
	assert.Equal(t, "sme", aws.ToString(in.MessageAttributes["track"].StringValue))

	var body Alert
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &body))
	assert.Equal(t, "resp-1", body.ResponseID)
	assert.Equal(t, 21, body.TotalScore)
}

func TestSNSNotifier_Errors(t *testing.T) {
	_, err := NewSNSNotifier(&mockSNS{}, "", logger.NewNoOpLogger())
	assert.EqualError(t, err, "sns topic arn is required")

	client := &mockSNS{publishFunc: func(context.Context, *sns.PublishInput) (*sns.PublishOutput, error) {
		return nil, errors.New("AuthorizationError")
	}}
	n, err := NewSNSNotifier(client, "arn:topic", logger.NewNoOpLogger())
	require.NoError(t, err)

	_, err = n.NotifyAdvisor(context.Background(), createTestAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sns publish")
}

func TestSubject_Truncated(t *testing.T) {
	alert := createTestAlert()
	alert.UserName = strings.Repeat("A", 200)
	assert.Len(t, Subject(alert), 100)
}
