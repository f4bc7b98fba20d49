// Package secrets resolves clone credentials stored in AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ErrEmptySecret is returned when a secret holds no usable token.
var ErrEmptySecret = errors.New("secret does not contain a token")

// SecretsManagerAPI is the part of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// loadAWSConfig loads the shared AWS configuration. Replaced in tests.
var loadAWSConfig = config.LoadDefaultConfig

// NewClient builds the Secrets Manager client. Replaced in tests.
var NewClient = func(ctx context.Context) (SecretsManagerAPI, error) {
	cfg, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// tokenDocument is the JSON form of a token secret.
type tokenDocument struct {
	Token       string `json:"token"`
	GitHubToken string `json:"github_token"`
}

// ResolveToken fetches the secret called name and extracts a clone token from it.
// The secret may be a JSON object with a "token" (or "github_token") field, or the bare token.
// Errors never include the secret value.
func ResolveToken(ctx context.Context, name string) (string, error) {
	client, err := NewClient(ctx)
	if err != nil {
		return "", err
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret %q: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q: %w", name, ErrEmptySecret)
	}
	return parseToken(name, *out.SecretString)
}

func parseToken(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "{") {
		var doc tokenDocument
		if err := json.Unmarshal([]byte(value), &doc); err != nil {
			return "", fmt.Errorf("secret %q is not valid JSON", name)
		}
		value = doc.Token
		if value == "" {
			value = doc.GitHubToken
		}
	}
	if value == "" {
		return "", fmt.Errorf("secret %q: %w", name, ErrEmptySecret)
	}
	return value, nil
}
