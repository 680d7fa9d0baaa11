// Package credentials resolves environment-specific secrets: the basic auth
// user for the page gate and the greeting database connection parameters.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// ErrMissingSecret is returned when a secret has no string payload or lacks a required field.
var ErrMissingSecret = errors.New("secret is missing or incomplete")

// Auth holds the basic auth user allowed through the page gate.
type Auth struct {
	Username string
	Password string
}

// Database holds connection parameters for the greeting store.
type Database struct {
	Name     string
	User     string
	Password string
	Host     string
	Port     int
}

// Credentials bundles everything the service needs from the credential store.
type Credentials struct {
	Auth     Auth
	Database Database
}

// Source resolves credentials once at startup.
type Source interface {
	Resolve(ctx context.Context) (Credentials, error)
}

// LocalDefaults returns the fixed credentials used outside production.
func LocalDefaults() Credentials {
	return Credentials{
		Auth: Auth{Username: "localuser", Password: "localpass"},
		Database: Database{
			Name:     "localdb",
			User:     "localuser",
			Password: "localpassword",
			Host:     "db",
			Port:     5432,
		},
	}
}

// StaticSource returns a fixed set of credentials.
type StaticSource struct {
	Credentials Credentials
}

// Resolve implements Source.
func (s StaticSource) Resolve(ctx context.Context) (Credentials, error) {
	return s.Credentials, nil
}

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerSource reads credentials from two JSON secrets: one with
// username/password for the auth gate, one in the RDS secret layout for the database.
type SecretsManagerSource struct {
	client      SecretsManagerAPI
	authSecret  string
	dbSecret    string
	defaultPort int
}

// NewSecretsManagerSource creates a source reading authSecret and dbSecret.
// defaultPort is used when the database secret carries no port.
func NewSecretsManagerSource(client SecretsManagerAPI, authSecret, dbSecret string, defaultPort int) *SecretsManagerSource {
	return &SecretsManagerSource{
		client:      client,
		authSecret:  authSecret,
		dbSecret:    dbSecret,
		defaultPort: defaultPort,
	}
}

type authSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type dbSecret struct {
	DBName   string      `json:"dbname"`
	Username string      `json:"username"`
	Password string      `json:"password"`
	Host     string      `json:"host"`
	Port     json.Number `json:"port"`
}

// Resolve implements Source.
func (s *SecretsManagerSource) Resolve(ctx context.Context) (Credentials, error) {
	var a authSecret
	if err := s.getSecret(ctx, s.authSecret, &a); err != nil {
		return Credentials{}, err
	}
	if a.Username == "" || a.Password == "" {
		return Credentials{}, fmt.Errorf("secret %s: username and password are required: %w", s.authSecret, ErrMissingSecret)
	}

	var d dbSecret
	if err := s.getSecret(ctx, s.dbSecret, &d); err != nil {
		return Credentials{}, err
	}
	if d.DBName == "" || d.Username == "" || d.Host == "" {
		return Credentials{}, fmt.Errorf("secret %s: dbname, username and host are required: %w", s.dbSecret, ErrMissingSecret)
	}

	port := s.defaultPort
	if d.Port != "" {
		p, err := strconv.Atoi(d.Port.String())
		if err != nil {
			return Credentials{}, fmt.Errorf("secret %s: invalid port %q: %w", s.dbSecret, d.Port, err)
		}
		port = p
	}

	return Credentials{
		Auth: Auth{Username: a.Username, Password: a.Password},
		Database: Database{
			Name:     d.DBName,
			User:     d.Username,
			Password: d.Password,
			Host:     d.Host,
			Port:     port,
		},
	}, nil
}

func (s *SecretsManagerSource) getSecret(ctx context.Context, name string, dst any) error {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if out.SecretString == nil {
		return fmt.Errorf("secret %s has no string value: %w", name, ErrMissingSecret)
	}
	if err := json.Unmarshal([]byte(*out.SecretString), dst); err != nil {
		return fmt.Errorf("failed to decode secret %s: %w", name, err)
	}
	return nil
}
