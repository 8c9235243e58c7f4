package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"

	"github.com/vvka-141/questload/pkg/questload"
)

// RDS IAM tokens are valid for 15 minutes after signing.
const rdsTokenLifetime = 15 * time.Minute

// RDSTokenProvider signs RDS IAM auth tokens with the default AWS credential
// chain (environment, shared config, instance role).
type RDSTokenProvider struct {
	endpoint string
	region   string
	username string

	once  sync.Once
	creds aws.CredentialsProvider
	err   error
}

// NewRDSTokenProvider validates the endpoint, region and user taken from cfg.
func NewRDSTokenProvider(cfg *questload.ConnectionConfig) (*RDSTokenProvider, error) {
	var errs []error
	if cfg.Host == "" || cfg.Port == 0 {
		errs = append(errs, fmt.Errorf("AWS IAM auth requires host and port: %w", questload.ErrInvalidConfig))
	}
	if cfg.AWSRegion == "" {
		errs = append(errs, fmt.Errorf("AWS IAM auth requires a region (--aws-region or $AWS_REGION): %w", questload.ErrInvalidConfig))
	}
	if cfg.Username == "" {
		errs = append(errs, fmt.Errorf("AWS IAM auth requires the database user (-U): %w", questload.ErrInvalidConfig))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &RDSTokenProvider{
		endpoint: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		region:   cfg.AWSRegion,
		username: cfg.Username,
	}, nil
}

// GetToken signs a fresh token. Credentials are resolved on the first call
// and reused for retries.
func (p *RDSTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	p.once.Do(func() {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
		if err != nil {
			p.err = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		p.creds = awsCfg.Credentials
	})
	if p.err != nil {
		return "", time.Time{}, p.err
	}

	signedAt := time.Now()
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, p.creds)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign RDS auth token for %s: %w", p.endpoint, err)
	}
	return token, signedAt.Add(rdsTokenLifetime), nil
}

func (p *RDSTokenProvider) String() string {
	return fmt.Sprintf("RDS IAM (%s@%s, %s)", p.username, p.endpoint, p.region)
}
