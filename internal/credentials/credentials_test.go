package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type fakeSecrets struct {
	values map[string]*string
	err    error
	calls  []string
}

func (f *fakeSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls = append(f.calls, aws.ToString(params.SecretId))
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[aws.ToString(params.SecretId)]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: v}, nil
}

func TestStaticSource_Resolve(t *testing.T) {
	creds, err := StaticSource{Credentials: LocalDefaults()}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if creds.Auth.Username != "localuser" || creds.Auth.Password != "localpass" {
		t.Errorf("Resolve() auth = %+v, want localuser/localpass", creds.Auth)
	}
	if creds.Database.Name != "localdb" || creds.Database.Host != "db" {
		t.Errorf("Resolve() database = %+v, want localdb@db", creds.Database)
	}
}

func TestSecretsManagerSource_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]*string
		err      error
		wantErr  bool
		wantPort int
	}{
		{
			name: "numeric port",
			values: map[string]*string{
				"auth":    aws.String(`{"username":"geek","password":"s3cret"}`),
				"prod_db": aws.String(`{"dbname":"app","username":"app","password":"pw","host":"rds.local","port":6543}`),
			},
			wantPort: 6543,
		},
		{
			name: "missing port uses default",
			values: map[string]*string{
				"auth":    aws.String(`{"username":"geek","password":"s3cret"}`),
				"prod_db": aws.String(`{"dbname":"app","username":"app","password":"pw","host":"rds.local"}`),
			},
			wantPort: 5432,
		},
		{
			name: "string port",
			values: map[string]*string{
				"auth":    aws.String(`{"username":"geek","password":"s3cret"}`),
				"prod_db": aws.String(`{"dbname":"app","username":"app","password":"pw","host":"rds.local","port":"6000"}`),
			},
			wantPort: 6000,
		},
		{
			name: "auth secret without password",
			values: map[string]*string{
				"auth":    aws.String(`{"username":"geek"}`),
				"prod_db": aws.String(`{"dbname":"app","username":"app","password":"pw","host":"rds.local"}`),
			},
			wantErr: true,
		},
		{
			name: "binary secret",
			values: map[string]*string{
				"auth": nil,
			},
			wantErr: true,
		},
		{
			name:    "service error",
			err:     errors.New("AccessDeniedException"),
			wantErr: true,
		},
		{
			name: "malformed json",
			values: map[string]*string{
				"auth": aws.String(`{not json`),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSecrets{values: tt.values, err: tt.err}
			src := NewSecretsManagerSource(fake, "auth", "prod_db", 5432)

			creds, err := src.Resolve(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Errorf("Resolve() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if creds.Auth.Username != "geek" || creds.Auth.Password != "s3cret" {
				t.Errorf("Resolve() auth = %+v", creds.Auth)
			}
			if creds.Database.Host != "rds.local" || creds.Database.Name != "app" {
				t.Errorf("Resolve() database = %+v", creds.Database)
			}
			if creds.Database.Port != tt.wantPort {
				t.Errorf("Resolve() port = %d, want %d", creds.Database.Port, tt.wantPort)
			}
			if len(fake.calls) != 2 || fake.calls[0] != "auth" || fake.calls[1] != "prod_db" {
				t.Errorf("Resolve() secret calls = %v, want [auth prod_db]", fake.calls)
			}
		})
	}
}

func TestSecretsManagerSource_MissingSecretIsTyped(t *testing.T) {
	fake := &fakeSecrets{values: map[string]*string{"auth": nil}}
	_, err := NewSecretsManagerSource(fake, "auth", "prod_db", 5432).Resolve(context.Background())
	if !errors.Is(err, ErrMissingSecret) {
		t.Errorf("Resolve() error = %v, want ErrMissingSecret", err)
	}
}
