package environment

import (
	"context"
	"errors"
	"fmt"
	"os"

	"giftlist-tools/core/store"

	"gopkg.in/yaml.v3"
)

// Strategy tells the resolver how to obtain credentials for an environment.
type Strategy string

const (
	// Direct uses the caller's own credentials.
	Direct Strategy = "direct"
	// AssumeRole obtains temporary credentials for the environment's account.
	AssumeRole Strategy = "assume_role"
)

// Valid reports whether s is a known strategy. The empty strategy is valid and means
// "derive from the caller's environment".
func (s Strategy) Valid() bool {
	switch s {
	case "", Direct, AssumeRole:
		return true
	default:
		return false
	}
}

const (
	// BackendDynamo stores the environment's tables in Amazon DynamoDB.
	BackendDynamo = "dynamodb"
	// BackendLocal stores the environment's tables in local pebble databases.
	BackendLocal = "local"
)

// Environment describes one deployment environment and its product table.
type Environment struct {
	// Name is the environment name (test, staging, prod).
	Name string `yaml:"name"`
	// Table is the products table of this environment.
	Table string `yaml:"table"`
	// AccountID is the AWS account the table lives in.
	AccountID string `yaml:"account_id"`
	// Region overrides the default AWS region.
	Region string `yaml:"region"`
	// Endpoint overrides the DynamoDB endpoint (e.g. DynamoDB Local).
	Endpoint string `yaml:"endpoint"`
	// Backend selects dynamodb or local. Empty means dynamodb.
	Backend string `yaml:"backend"`
	// Strategy forces a credential strategy. Empty means derived.
	Strategy Strategy `yaml:"strategy"`
	// RoleARN overrides the derived cross-account role.
	RoleARN string `yaml:"role_arn"`
}

// File is the on-disk layout of an environment map.
type File struct {
	Environments []Environment `yaml:"environments"`
}

// LoadFile reads an environment map from a YAML file.
func LoadFile(path string) ([]Environment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open environment file: %w", err)
	}
	defer f.Close()

	var file File
	if err := yaml.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse environment file %s: %w", path, err)
	}
	return file.Environments, nil
}

// ErrUnknownEnvironment is returned when an environment name is not configured.
var ErrUnknownEnvironment = errors.New("unknown environment")

// CredentialError reports that credentials for an environment could not be obtained.
type CredentialError struct {
	Environment string
	RoleARN     string
	Err         error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("could not assume role %s for environment %s: %v", e.RoleARN, e.Environment, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// Request is what the resolver asks an Opener to open.
type Request struct {
	// Environment is the target environment.
	Environment Environment
	// Strategy is the resolved credential strategy.
	Strategy Strategy
	// RoleARN is set when Strategy is AssumeRole.
	RoleARN string
	// Table is the table to bind the handle to.
	Table string
	// Schema is the key schema of Table.
	Schema store.KeySchema
}

// Opener turns a resolved request into a store handle.
type Opener interface {
	Open(ctx context.Context, req Request) (store.Store, error)
}

// Backends dispatches requests to an Opener by the environment's backend name.
// An empty backend selects BackendDynamo.
type Backends map[string]Opener

// Open implements Opener.
func (b Backends) Open(ctx context.Context, req Request) (store.Store, error) {
	name := req.Environment.Backend
	if name == "" {
		name = BackendDynamo
	}
	o, ok := b[name]
	if !ok {
		return nil, fmt.Errorf("environment %s: no opener for backend %q", req.Environment.Name, name)
	}
	return o.Open(ctx, req)
}
