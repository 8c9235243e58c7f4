package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/vvka-141/questload/pkg/questload"
)

// EntraTokenProvider requests Azure Database for PostgreSQL access tokens.
type EntraTokenProvider struct {
	credential azcore.TokenCredential
	label      string
}

// NewEntraTokenProvider uses a client secret credential when tenant, client
// and secret are all set, and the DefaultAzureCredential chain otherwise
// (environment, workload identity, managed identity, Azure CLI).
func NewEntraTokenProvider(cfg *questload.ConnectionConfig) (*EntraTokenProvider, error) {
	if cfg.AzureTenantID != "" && cfg.AzureClientID != "" && cfg.AzureClientSecret != "" {
		cred, err := azidentity.NewClientSecretCredential(cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid Azure service principal: %v: %w", err, questload.ErrInvalidConfig)
		}
		return &EntraTokenProvider{
			credential: cred,
			label:      fmt.Sprintf("Entra ID service principal %s (tenant %s)", cfg.AzureClientID, cfg.AzureTenantID),
		}, nil
	}

	opts := &azidentity.DefaultAzureCredentialOptions{TenantID: cfg.AzureTenantID}
	cred, err := azidentity.NewDefaultAzureCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("no usable Azure credential: %w", err)
	}
	return &EntraTokenProvider{credential: cred, label: "Entra ID default credential chain"}, nil
}

func (p *EntraTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	tok, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{AzurePostgreSQLScope}})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", p.label, err)
	}
	return tok.Token, tok.ExpiresOn, nil
}

func (p *EntraTokenProvider) String() string {
	return p.label
}
