package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const defaultPostgresPort = 5432

type (
	// DBCredentials is the JSON document RDS keeps in Secrets Manager.
	DBCredentials struct {
		Host     string
		Port     int
		Username string
		Password string
	}

	// SecretSource resolves database credentials. Implementations must not
	// cache: every call reflects the current secret.
	SecretSource interface {
		Resolve(ctx context.Context) (DBCredentials, error)
	}

	ParameterAPI interface {
		GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	}

	SecretAPI interface {
		GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	}

	// AWSSecretSource reads the secret ARN from an SSM parameter, then the
	// secret itself from Secrets Manager.
	AWSSecretSource struct {
		parameter string
		ssm       ParameterAPI
		secrets   SecretAPI
	}

	secretDocument struct {
		Host     string      `json:"host"`
		Port     json.Number `json:"port"`
		Username string      `json:"username"`
		Password string      `json:"password"`
	}
)

var (
	_ SecretSource = (*AWSSecretSource)(nil)

	_ ParameterAPI = (*ssm.Client)(nil)
	_ SecretAPI    = (*secretsmanager.Client)(nil)
)

// NewAWSSecretSource builds the SDK clients from the default credential chain.
func NewAWSSecretSource(ctx context.Context, parameter string) (*AWSSecretSource, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("can not load aws config: %w", err)
	}
	return NewAWSSecretSourceWith(parameter, ssm.NewFromConfig(awsCfg), secretsmanager.NewFromConfig(awsCfg)), nil
}

func NewAWSSecretSourceWith(parameter string, ssmClient ParameterAPI, secretsClient SecretAPI) *AWSSecretSource {
	return &AWSSecretSource{parameter: parameter, ssm: ssmClient, secrets: secretsClient}
}

func (s *AWSSecretSource) Resolve(ctx context.Context) (DBCredentials, error) {
	param, err := s.ssm.GetParameter(ctx, &ssm.GetParameterInput{Name: aws.String(s.parameter)})
	if err != nil {
		return DBCredentials{}, fmt.Errorf("can not read SSM parameter %s: %w", s.parameter, err)
	}
	if param.Parameter == nil || aws.ToString(param.Parameter.Value) == "" {
		return DBCredentials{}, fmt.Errorf("SSM parameter %s not found or has no value", s.parameter)
	}
	secretArn := aws.ToString(param.Parameter.Value)

	secret, err := s.secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(secretArn)})
	if err != nil {
		return DBCredentials{}, fmt.Errorf("can not read secret %s: %w", secretArn, err)
	}
	if aws.ToString(secret.SecretString) == "" {
		return DBCredentials{}, fmt.Errorf("secret %s has no string value", secretArn)
	}
	return parseSecret(aws.ToString(secret.SecretString))
}

func parseSecret(raw string) (DBCredentials, error) {
	var doc secretDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return DBCredentials{}, fmt.Errorf("malformed database secret: %w", err)
	}
	creds := DBCredentials{
		Host:     doc.Host,
		Port:     defaultPostgresPort,
		Username: doc.Username,
		Password: doc.Password,
	}
	if doc.Port != "" {
		port, err := strconv.Atoi(doc.Port.String())
		if err != nil {
			return DBCredentials{}, fmt.Errorf("malformed database secret port %q: %w", doc.Port, err)
		}
		if port != 0 {
			creds.Port = port
		}
	}
	return creds, nil
}
