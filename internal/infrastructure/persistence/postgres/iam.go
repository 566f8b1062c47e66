package postgres

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	rdsauth "github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/jackc/pgx/v5"
)

// iamTokenSource signs RDS IAM authentication tokens.
type iamTokenSource struct {
	region      string
	credentials aws.CredentialsProvider
}

func newIAMTokenSource(ctx context.Context, region, profile string) (*iamTokenSource, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for RDS IAM auth: %w", err)
	}
	if awsCfg.Region == "" {
		return nil, fmt.Errorf("RDS IAM auth requires an AWS region")
	}

	return &iamTokenSource{region: awsCfg.Region, credentials: awsCfg.Credentials}, nil
}

// beforeConnect sets a fresh token as the password. Token generation is local signing, not an API call.
func (s *iamTokenSource) beforeConnect(ctx context.Context, cc *pgx.ConnConfig) error {
	endpoint := fmt.Sprintf("%s:%d", cc.Host, cc.Port)

	token, err := rdsauth.BuildAuthToken(ctx, endpoint, s.region, cc.User, s.credentials)
	if err != nil {
		return fmt.Errorf("failed to create RDS auth token: %w", err)
	}

	cc.Password = token
	return nil
}
