package repository

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSSM struct{ mock.Mock }

func (m *mockSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	args := m.Called(aws.ToString(params.Name))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ssm.GetParameterOutput), args.Error(1)
}

type mockSecrets struct{ mock.Mock }

func (m *mockSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(aws.ToString(params.SecretId))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsmanager.GetSecretValueOutput), args.Error(1)
}

const secretArn = "arn:aws:secretsmanager:eu-west-2:123456789012:secret:rds-abc"

func parameterOutput(value string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String(value)}}
}

func secretOutput(value string) *secretsmanager.GetSecretValueOutput {
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(value)}
}

func TestAWSSecretSourceResolve(t *testing.T) {
	ssmClient := new(mockSSM)
	secrets := new(mockSecrets)
	source := NewAWSSecretSourceWith("/rds/secret-arn", ssmClient, secrets)

	ssmClient.On("GetParameter", "/rds/secret-arn").Return(parameterOutput(secretArn), nil).Twice()
	secrets.On("GetSecretValue", secretArn).
		Return(secretOutput(`{"host":"db.internal","port":6543,"username":"app","password":"p@ss word"}`), nil).Once()
	secrets.On("GetSecretValue", secretArn).
		Return(secretOutput(`{"host":"db.internal","username":"app","password":"rotated"}`), nil).Once()

	creds, err := source.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DBCredentials{Host: "db.internal", Port: 6543, Username: "app", Password: "p@ss word"}, creds)

	creds, err = source.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5432, creds.Port, "port defaults when absent")
	assert.Equal(t, "rotated", creds.Password, "every call reads the secret again")

	ssmClient.AssertExpectations(t)
	secrets.AssertExpectations(t)
}

func TestAWSSecretSourceErrors(t *testing.T) {
	tests := []struct {
		name      string
		parameter *ssm.GetParameterOutput
		paramErr  error
		secret    *secretsmanager.GetSecretValueOutput
		secretErr error
		wantErr   string
	}{
		{name: "parameter call fails", paramErr: errors.New("denied"), wantErr: "denied"},
		{name: "parameter without value", parameter: &ssm.GetParameterOutput{}, wantErr: "not found or has no value"},
		{name: "empty parameter value", parameter: parameterOutput(""), wantErr: "not found or has no value"},
		{name: "secret call fails", parameter: parameterOutput(secretArn), secretErr: errors.New("throttled"), wantErr: "throttled"},
		{name: "secret without string", parameter: parameterOutput(secretArn), secret: &secretsmanager.GetSecretValueOutput{}, wantErr: "no string value"},
		{name: "malformed json", parameter: parameterOutput(secretArn), secret: secretOutput("{not json"), wantErr: "malformed database secret"},
		{name: "malformed port", parameter: parameterOutput(secretArn), secret: secretOutput(`{"port":"abc"}`), wantErr: "malformed database secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ssmClient := new(mockSSM)
			secrets := new(mockSecrets)
			if tt.parameter != nil || tt.paramErr != nil {
				ssmClient.On("GetParameter", "/rds/secret-arn").Return(tt.parameter, tt.paramErr)
			}
			if tt.secret != nil || tt.secretErr != nil {
				secrets.On("GetSecretValue", secretArn).Return(tt.secret, tt.secretErr)
			}

			_, err := NewAWSSecretSourceWith("/rds/secret-arn", ssmClient, secrets).Resolve(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSecretAcceptsStringPort(t *testing.T) {
	creds, err := parseSecret(`{"host":"h","port":"5433","username":"u","password":"p"}`)
	require.NoError(t, err)
	assert.Equal(t, 5433, creds.Port)
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(DBCredentials{Host: "db.internal", Port: 5432, Username: "app", Password: "p@ss/word"}, "gallery", "require")

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:5432", u.Host)
	assert.Equal(t, "/gallery", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss/word", password)
}

func TestPostgresDialerRequiresDatabaseName(t *testing.T) {
	secrets := new(mockSecretSource)
	dialer := NewPostgresDialer(dbProps(""), secrets, nullEntry())

	_, _, err := dialer.Dial(context.Background())
	assert.ErrorIs(t, err, ErrMissingDatabaseName)
	secrets.AssertNotCalled(t, "Resolve", mock.Anything)
}

func TestPostgresDialerSurfacesSecretErrors(t *testing.T) {
	secrets := new(mockSecretSource)
	secrets.On("Resolve", mock.Anything).Return(DBCredentials{}, errors.New("no parameter"))
	dialer := NewPostgresDialer(dbProps("gallery"), secrets, nullEntry())

	_, _, err := dialer.Dial(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parameter")
}
