package server

import (
	"context"

	cfg "gallery/src/configuration"
	"gallery/src/logging"
	"gallery/src/repository"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Bootstrap reads configuration and builds the service logger. Outside
// Lambda a .env file in the working directory is loaded first.
func Bootstrap(service string) (*cfg.Properties, *logrus.Entry, error) {
	if !cfg.InLambda() {
		_ = godotenv.Load()
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	config, err := cfg.ReadProperties()
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(config.LogLevel, config.LogFormat).WithField("service", service)
	return config, log, nil
}

// NewStore wires the per-operation Postgres store from configuration.
func NewStore(ctx context.Context, config *cfg.Properties, log *logrus.Entry) (*repository.GormStore, error) {
	secrets, err := repository.NewAWSSecretSource(ctx, config.Database.SecretArnParameter)
	if err != nil {
		return nil, err
	}
	dialer := repository.NewPostgresDialer(config.Database, secrets, log)
	return repository.NewGormStore(dialer, log), nil
}
