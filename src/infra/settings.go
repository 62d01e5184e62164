package infra

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/jsii-runtime-go"
	"github.com/caarlos0/env/v6"
)

// Settings drive stack synthesis. Account and region fall back to what the
// CDK CLI resolved for the current profile.
type Settings struct {
	SystemName     string   `env:"GALLERY_SYSTEM_NAME" envDefault:"gallery"`
	DatabaseName   string   `env:"GALLERY_DB_NAME" envDefault:"gallery"`
	DatabaseUser   string   `env:"GALLERY_DB_USER" envDefault:"gallery_admin"`
	BucketName     string   `env:"GALLERY_IMAGES_BUCKET"`
	CallbackURLs   []string `env:"GALLERY_CALLBACK_URLS" envSeparator:"," envDefault:"http://localhost:3000/callback"`
	LogoutURLs     []string `env:"GALLERY_LOGOUT_URLS" envSeparator:"," envDefault:"http://localhost:3000"`
	UploadOrigins  []string `env:"GALLERY_UPLOAD_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	AdminGroup     string   `env:"GALLERY_ADMIN_GROUP" envDefault:"administrators"`
	Account        string   `env:"CDK_DEFAULT_ACCOUNT"`
	Region         string   `env:"CDK_DEFAULT_REGION"`
	FunctionMemory float64  `env:"GALLERY_FUNCTION_MEMORY" envDefault:"256"`
}

func ReadSettings() (*Settings, error) {
	settings := &Settings{}
	if err := env.Parse(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Env is nil when neither account nor region is known, which keeps the
// synthesized templates environment-agnostic.
func (s *Settings) Env() *awscdk.Environment {
	if s.Account == "" && s.Region == "" {
		return nil
	}
	env := &awscdk.Environment{}
	if s.Account != "" {
		env.Account = jsii.String(s.Account)
	}
	if s.Region != "" {
		env.Region = jsii.String(s.Region)
	}
	return env
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return jsii.String(value)
}
