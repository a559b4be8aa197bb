package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsAPI is the slice of the SNS client the provider uses; tests stub it.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSProvider publishes transactional SMS through AWS SNS.
type SNSProvider struct {
	client   snsAPI
	senderID string
}

// NewSNSProvider builds the provider from the ambient AWS credential chain.
func NewSNSProvider(ctx context.Context, region, senderID string) (*SNSProvider, error) {
	if region == "" {
		return nil, errors.New("sms: sns region is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("sms: load aws config: %w", err)
	}
	return &SNSProvider{client: sns.NewFromConfig(cfg), senderID: senderID}, nil
}

func (p *SNSProvider) Name() string { return "sns" }

func (p *SNSProvider) Send(ctx context.Context, phone, body string) (string, error) {
	input := &sns.PublishInput{
		// SNS wants E.164; local numbers are stored as bare 10 digits.
		PhoneNumber: aws.String("+91" + phone),
		Message:     aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}
	if p.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(p.senderID),
		}
	}
	out, err := p.client.Publish(ctx, input)
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
