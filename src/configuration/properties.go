package configuration

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
)

type (
	Properties struct {
		LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
		LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

		Server     HttpServerProperties `envPrefix:"HTTP_"`
		Database   DatabaseProperties   `envPrefix:"RDS_"`
		S3         S3Properties         `envPrefix:"S3_"`
		CloudFront CloudFrontProperties `envPrefix:"CLOUDFRONT_"`
		Auth       AuthProperties       `envPrefix:"AUTH_"`
	}

	HttpServerProperties struct {
		Port         string        `env:"PORT" envDefault:"8088"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
		Pprof        bool          `env:"PPROF" envDefault:"false"`
		CorsOrigins  []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	DatabaseProperties struct {
		Name               string `env:"DB_NAME"`
		SecretArnParameter string `env:"SECRET_ARN_PARAMETER" envDefault:"/rds/secret-arn"`
		// DSN bypasses secret resolution, for local runs against a plain Postgres.
		DSN     string `env:"DSN"`
		SSLMode string `env:"SSL_MODE" envDefault:"require"`
	}

	S3Properties struct {
		Bucket    string `env:"BUCKET_NAME"`
		Region    string `env:"BUCKET_REGION" envDefault:"us-east-1"`
		Endpoint  string `env:"ENDPOINT" envDefault:"s3.amazonaws.com"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
	}

	CloudFrontProperties struct {
		Domain string `env:"DOMAIN"`
	}

	AuthProperties struct {
		// Mode is "gateway" (claims injected by the API Gateway authorizer)
		// or "oidc" (bearer ID token verified in-process).
		Mode         string `env:"MODE" envDefault:"gateway"`
		Issuer       string `env:"ISSUER"`
		ClientID     string `env:"CLIENT_ID"`
		SubjectClaim string `env:"SUBJECT_CLAIM" envDefault:"sub"`
		EmailClaim   string `env:"EMAIL_CLAIM" envDefault:"email"`
		GroupsClaim  string `env:"GROUPS_CLAIM" envDefault:"cognito:groups"`
		AdminGroup   string `env:"ADMIN_GROUP" envDefault:"administrators"`
	}
)

const (
	AuthModeGateway = "gateway"
	AuthModeOIDC    = "oidc"
)

func ReadProperties() (*Properties, error) {
	config := &Properties{}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}
	if config.Auth.Mode != AuthModeGateway && config.Auth.Mode != AuthModeOIDC {
		return nil, fmt.Errorf("read config error: unknown AUTH_MODE %q", config.Auth.Mode)
	}
	if config.Auth.Mode == AuthModeOIDC && (config.Auth.Issuer == "" || config.Auth.ClientID == "") {
		return nil, fmt.Errorf("read config error: AUTH_ISSUER and AUTH_CLIENT_ID are required in oidc mode")
	}
	return config, nil
}

// InLambda reports whether the process runs inside the Lambda runtime.
func InLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}
