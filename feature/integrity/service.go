package integrity

import (
	"context"
	"errors"
	"sort"

	"giftlist-tools/core/storage"
	"giftlist-tools/core/store"
	"giftlist-tools/feature/product/models"

	"go.uber.org/zap"
)

// sentinelID is looked up in every table. It never exists, so a not-found answer
// proves the table is reachable.
const sentinelID = "integrity-check"

// Statuses reported by a check.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusDisabled = "disabled"
)

// Resolver opens tables in a named environment.
type Resolver interface {
	Environments() []string
	Resolve(ctx context.Context, environment string) (store.Store, error)
	ResolveTable(ctx context.Context, environment, table string, schema store.KeySchema) (store.Store, error)
}

// Table is a table of the caller's environment to check.
type Table struct {
	Name   string
	Schema store.KeySchema
}

// Status is the outcome of one check.
type Status struct {
	Status string `json:"status"`
	Target string `json:"target,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report combines every check.
type Report struct {
	Healthy      bool              `json:"healthy"`
	Environments map[string]Status `json:"environments"`
	Tables       map[string]Status `json:"tables"`
	Reports      Status            `json:"reports"`
}

// Service handles integrity checks.
type Service struct {
	resolver Resolver
	caller   string
	tables   []Table
	logger   *zap.Logger

	client storage.Client
	bucket string
}

// NewService creates a new integrity service probing the products table of every
// environment and the given tables of the caller's environment.
func NewService(resolver Resolver, caller string, tables []Table, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{resolver: resolver, caller: caller, tables: tables, logger: logger}
}

// WithReports adds the report bucket to the checks.
func (s *Service) WithReports(client storage.Client, bucket string) *Service {
	s.client = client
	s.bucket = bucket
	return s
}

// CheckEnvironments checks the products table of every environment.
func (s *Service) CheckEnvironments(ctx context.Context) map[string]Status {
	out := make(map[string]Status)
	for _, env := range s.resolver.Environments() {
		table, err := s.resolver.Resolve(ctx, env)
		out[env] = s.lookup(ctx, env, table, models.ProductSchema, err)
	}
	return out
}

// CheckTables checks the caller's notfound and lists tables.
func (s *Service) CheckTables(ctx context.Context) map[string]Status {
	out := make(map[string]Status, len(s.tables))
	for _, t := range s.tables {
		table, err := s.resolver.ResolveTable(ctx, s.caller, t.Name, t.Schema)
		out[t.Name] = s.lookup(ctx, s.caller, table, t.Schema, err)
	}
	return out
}

// CheckReports verifies the report bucket exists.
func (s *Service) CheckReports(ctx context.Context) Status {
	if s.client == nil {
		return Status{Status: StatusDisabled}
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return Status{Status: StatusError, Target: s.bucket, Error: err.Error()}
	}
	if !exists {
		return Status{Status: StatusError, Target: s.bucket, Error: "bucket does not exist"}
	}
	return Status{Status: StatusOK, Target: s.bucket}
}

// Check runs every check.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{
		Environments: s.CheckEnvironments(ctx),
		Tables:       s.CheckTables(ctx),
		Reports:      s.CheckReports(ctx),
	}

	r.Healthy = r.Reports.Status != StatusError
	for _, group := range []map[string]Status{r.Environments, r.Tables} {
		for _, st := range group {
			if st.Status != StatusOK {
				r.Healthy = false
			}
		}
	}
	return r
}

// Failing lists the names of the failing checks, sorted.
func (r Report) Failing() []string {
	var out []string
	for name, st := range r.Environments {
		if st.Status != StatusOK {
			out = append(out, name)
		}
	}
	for name, st := range r.Tables {
		if st.Status != StatusOK {
			out = append(out, name)
		}
	}
	if r.Reports.Status == StatusError {
		out = append(out, "reports")
	}
	sort.Strings(out)
	return out
}

func (s *Service) lookup(ctx context.Context, env string, table store.Store, schema store.KeySchema, err error) Status {
	if err != nil {
		s.logger.Warn("Environment unreachable", zap.String("environment", env), zap.Error(err))
		return Status{Status: StatusError, Error: err.Error()}
	}

	_, err = table.Get(ctx, sentinelKey(schema))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("Table lookup failed", zap.String("environment", env), zap.String("table", table.Name()), zap.Error(err))
		return Status{Status: StatusError, Target: table.Name(), Error: err.Error()}
	}
	return Status{Status: StatusOK, Target: table.Name()}
}

func sentinelKey(schema store.KeySchema) store.Key {
	key := store.Key{schema.PartitionKey: store.S(sentinelID)}
	if schema.SortKey != "" {
		key[schema.SortKey] = store.S(sentinelID)
	}
	return key
}
