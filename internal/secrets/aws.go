package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type getSecretValueAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSClient reads secrets from AWS Secrets Manager.
type AWSClient struct {
	api getSecretValueAPI
}

// NewAWSClient loads the default AWS credential chain for region. It is the
// default ClientFactory.
func NewAWSClient(ctx context.Context, region string) (Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &AWSClient{api: secretsmanager.NewFromConfig(cfg)}, nil
}

// SecretString returns the SecretString payload of secretID.
func (c *AWSClient) SecretString(ctx context.Context, secretID string) (string, error) {
	out, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", err
	}
	if out.SecretString == nil {
		return "", ErrNoSecretString
	}
	return aws.ToString(out.SecretString), nil
}
