package config

import (
	"fmt"
	"reflect"
	"strings"

	"giftlist-tools/core/database"
	"giftlist-tools/core/environment"
	"giftlist-tools/core/logger"
	"giftlist-tools/core/server"
	"giftlist-tools/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// AWS holds the DynamoDB client settings shared by every environment.
	AWS AWSConfig `mapstructure:"aws"`
	// Tables names the tables read from the caller's environment.
	Tables TablesConfig `mapstructure:"tables"`
	// Sync selects the primary and update environments of checks and repairs.
	Sync SyncConfig `mapstructure:"sync"`
	// Environments describes the deployment environments.
	Environments EnvironmentsConfig `mapstructure:"environments"`
	// Local holds configuration for the pebble backend.
	Local LocalConfig `mapstructure:"local"`
	// Audit turns the SQL audit trail on.
	Audit AuditConfig `mapstructure:"audit"`
	// Database holds configuration for the audit database connection.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the report bucket.
	Storage storage.Config `mapstructure:"storage"`
	// Metrics holds configuration for the Prometheus endpoint.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// AWSConfig holds the DynamoDB client settings.
type AWSConfig struct {
	// Region is the default AWS region.
	Region string `mapstructure:"region" default:"eu-west-1"`
	// Endpoint overrides the DynamoDB endpoint (e.g. DynamoDB Local).
	Endpoint string `mapstructure:"endpoint" default:""`
	// RolePrefix is the role name assumed in the other environments' accounts.
	RolePrefix string `mapstructure:"role_prefix" default:"giftlist-cross-account"`
	// RequestsPerSecond caps store calls per process. 0 disables the limit.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"0"`
	// TimeoutSeconds bounds every DynamoDB HTTP call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}

// TablesConfig names the notfound and lists tables.
type TablesConfig struct {
	Notfound string `mapstructure:"notfound" default:"notfound"`
	Lists    string `mapstructure:"lists" default:"lists"`
	// ListsIndex is the index of the lists table keyed on SK.
	ListsIndex string `mapstructure:"lists_index" default:"SK-index"`
}

// SyncConfig selects the environments compared and repaired.
type SyncConfig struct {
	// Primary is the environment holding the reference copy.
	Primary string `mapstructure:"primary" default:"test"`
	// Update is a comma separated list of environments to compare and repair.
	Update string `mapstructure:"update" default:"staging,prod"`
}

// Targets returns the update environments in order.
func (s SyncConfig) Targets() []string {
	var out []string
	for _, name := range strings.Split(s.Update, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// EnvironmentConfig is one environment's products table and account.
type EnvironmentConfig struct {
	// Table defaults to products-<environment>.
	Table     string `mapstructure:"table" default:""`
	AccountID string `mapstructure:"account_id" default:""`
}

// EnvironmentsConfig describes the deployment environments, either inline or in a
// YAML file.
type EnvironmentsConfig struct {
	// File points at a YAML environment map. When set, the inline entries are ignored.
	File string `mapstructure:"file" default:""`
	// Backend is the default backend of the inline environments (dynamodb, local).
	Backend string            `mapstructure:"backend" default:"dynamodb"`
	Test    EnvironmentConfig `mapstructure:"test"`
	Staging EnvironmentConfig `mapstructure:"staging"`
	Prod    EnvironmentConfig `mapstructure:"prod"`
}

// LocalConfig holds configuration for the pebble backend.
type LocalConfig struct {
	// Dir is the directory holding one database per environment.
	Dir string `mapstructure:"dir" default:".data"`
}

// AuditConfig holds configuration for the audit trail.
type AuditConfig struct {
	Enabled bool `mapstructure:"enabled" default:"false"`
}

// MetricsConfig holds configuration for the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" default:"true"`
}

// EnvironmentList returns the configured environments in test, staging, prod order,
// or the contents of the environment file when one is set.
func (c *Config) EnvironmentList() ([]environment.Environment, error) {
	if c.Environments.File != "" {
		envs, err := environment.LoadFile(c.Environments.File)
		if err != nil {
			return nil, err
		}
		if len(envs) == 0 {
			return nil, fmt.Errorf("environment file %s defines no environments", c.Environments.File)
		}
		return envs, nil
	}

	inline := []struct {
		name string
		cfg  EnvironmentConfig
	}{
		{server.EnvironmentTest, c.Environments.Test},
		{server.EnvironmentStaging, c.Environments.Staging},
		{server.EnvironmentProd, c.Environments.Prod},
	}

	envs := make([]environment.Environment, 0, len(inline))
	for _, e := range inline {
		table := e.cfg.Table
		if table == "" {
			table = "products-" + e.name
		}
		envs = append(envs, environment.Environment{
			Name:      e.name,
			Table:     table,
			AccountID: e.cfg.AccountID,
			Region:    c.AWS.Region,
			Endpoint:  c.AWS.Endpoint,
			Backend:   c.Environments.Backend,
		})
	}
	return envs, nil
}

// LoadConfig loads configuration from environment variables and the .env file in path.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_PRIMARY -> sync.primary)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
