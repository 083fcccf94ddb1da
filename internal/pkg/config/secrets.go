// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManager is a source of credentials overlaid onto the config.
// Keys that the source does not hold are left out of the result.
type SecretsManager interface {
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
}

var (
	_ SecretsManager = (*AWSSecretsManager)(nil)
	_ SecretsManager = EnvSecretsManager{}
)

// secretValueAPI is the part of the Secrets Manager client in use.
type secretValueAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager reads a JSON object of credentials from one secret
// and keeps it for ttl.
type AWSSecretsManager struct {
	api        secretValueAPI
	secretName string
	ttl        time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	values  map[string]string
	fetched time.Time
}

// NewAWSSecretsManager creates a Secrets Manager backed source for secretName
func NewAWSSecretsManager(ctx context.Context, region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newAWSSecretsManager(secretsmanager.NewFromConfig(cfg), secretName, logger), nil
}

func newAWSSecretsManager(api secretValueAPI, secretName string, logger *slog.Logger) *AWSSecretsManager {
	return &AWSSecretsManager{
		api:        api,
		secretName: secretName,
		ttl:        5 * time.Minute,
		logger:     logger.With(slog.String("component", "secrets")),
	}
}

// GetSecrets returns the requested keys, fetching the secret again once
// the cached copy is older than the ttl.
func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.values == nil || time.Since(sm.fetched) >= sm.ttl {
		values, err := sm.fetch(ctx)
		if err != nil {
			return nil, err
		}
		sm.values, sm.fetched = values, time.Now()
	}

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := sm.values[key]; ok && v != "" {
			out[key] = v
		}
	}
	return out, nil
}

func (sm *AWSSecretsManager) fetch(ctx context.Context) (map[string]string, error) {
	sm.logger.Info("fetching secrets", slog.String("secret_name", sm.secretName))

	result, err := sm.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", sm.secretName, err)
	}
	if result.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", sm.secretName)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(*result.SecretString), &values); err != nil {
		return nil, fmt.Errorf("failed to parse secret %s: %w", sm.secretName, err)
	}
	return values, nil
}

// EnvSecretsManager reads secrets from the process environment.
type EnvSecretsManager struct{}

// NewEnvSecretsManager creates an environment backed source
func NewEnvSecretsManager() EnvSecretsManager { return EnvSecretsManager{} }

// GetSecrets returns the keys that are set in the environment
func (EnvSecretsManager) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			out[key] = v
		}
	}
	return out, nil
}
