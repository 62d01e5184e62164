package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	cfg "gallery/src/configuration"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrMissingDatabaseName = errors.New("RDS_DB_NAME environment variable is required")

type (
	// Dialer opens a fresh connection for one operation. The returned close
	// func must be called when the operation is done.
	Dialer interface {
		Dial(ctx context.Context) (*gorm.DB, func() error, error)
	}

	// PostgresDialer resolves credentials on every Dial and opens a single
	// connection. Nothing is pooled between operations.
	PostgresDialer struct {
		props   cfg.DatabaseProperties
		secrets SecretSource
		log     *logrus.Entry
	}
)

func NewPostgresDialer(props cfg.DatabaseProperties, secrets SecretSource, log *logrus.Entry) *PostgresDialer {
	return &PostgresDialer{props: props, secrets: secrets, log: log}
}

func (d *PostgresDialer) Dial(ctx context.Context) (*gorm.DB, func() error, error) {
	dsn, err := d.dsn(ctx)
	if err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: GormLogger(d.log)})
	if err != nil {
		return nil, nil, fmt.Errorf("can not connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("can not get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(0)

	return db.WithContext(ctx), sqlDB.Close, nil
}

func (d *PostgresDialer) dsn(ctx context.Context) (string, error) {
	if d.props.DSN != "" {
		return d.props.DSN, nil
	}
	if d.props.Name == "" {
		return "", ErrMissingDatabaseName
	}
	creds, err := d.secrets.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("can not resolve database credentials: %w", err)
	}
	return PostgresDSN(creds, d.props.Name, d.props.SSLMode), nil
}

// PostgresDSN renders credentials as a postgres:// URL so passwords need no
// manual escaping.
func PostgresDSN(creds DBCredentials, dbName, sslMode string) string {
	query := url.Values{}
	if sslMode != "" {
		query.Set("sslmode", sslMode)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(creds.Username, creds.Password),
		Host:     net.JoinHostPort(creds.Host, strconv.Itoa(creds.Port)),
		Path:     "/" + dbName,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// GormLogger routes gorm's statement logging into logrus.
func GormLogger(log *logrus.Entry) gormlogger.Interface {
	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// HandleDialer hands out one long-lived handle and never closes it. It is
// for callers that already own a connection, such as in-memory SQLite.
type HandleDialer struct {
	DB *gorm.DB
}

func (d HandleDialer) Dial(ctx context.Context) (*gorm.DB, func() error, error) {
	return d.DB.WithContext(ctx), func() error { return nil }, nil
}
