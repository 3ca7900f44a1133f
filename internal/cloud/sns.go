package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSClient wraps AWS SNS for delivering compliance notifications to the
// oversight committee channel.
type SNSClient struct {
	svc      *sns.Client
	topicArn string
	ctx      context.Context
}

func NewSNSClient(region, topicArn string) (*SNSClient, error) {
	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
		ctx:      ctx,
	}, nil
}

func (c *SNSClient) Publish(subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	if _, err := c.svc.Publish(c.ctx, input); err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	return nil
}

// PublishPenaltyResponse notifies the committee that a company answered
// a penalty.
func (c *SNSClient) PublishPenaltyResponse(penaltyNumber, companyName, comment string) error {
	subject := fmt.Sprintf("Penalty %s: response received", penaltyNumber)
	message := fmt.Sprintf(
		"Penalty Response\n\n"+
			"Penalty: %s\n"+
			"Company: %s\n"+
			"Comment: %s\n"+
			"Time: %s\n",
		penaltyNumber,
		companyName,
		comment,
		time.Now().Format(time.RFC3339),
	)
	return c.Publish(subject, message)
}

// PublishThresholdExceeded notifies the committee that a reading pushed a
// company over its allowed threshold.
func (c *SNSClient) PublishThresholdExceeded(companyName string, current, allowed float64) error {
	subject := fmt.Sprintf("Emission alert: %s over threshold", companyName)
	message := fmt.Sprintf(
		"Threshold Exceeded\n\n"+
			"Company: %s\n"+
			"Current: %.3f kg/hour\n"+
			"Allowed: %.3f kg/hour\n"+
			"Time: %s\n",
		companyName,
		current,
		allowed,
		time.Now().Format(time.RFC3339),
	)
	return c.Publish(subject, message)
}
