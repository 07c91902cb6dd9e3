package environment

import (
	"context"
	"fmt"

	"giftlist-tools/core/store"

	"go.uber.org/zap"
)

// Options configures a Resolver.
type Options struct {
	// RolePrefix is the role name assumed in other accounts.
	RolePrefix string
	// ProductSchema is the key schema of every environment's products table.
	ProductSchema store.KeySchema
}

// Resolver hands out store handles for named environments.
// The strategy table is computed once from configuration and never changes.
type Resolver struct {
	envs       map[string]Environment
	order      []string
	caller     string
	strategies map[string]Strategy
	opts       Options
	opener     Opener
	logger     *zap.Logger
}

// NewResolver builds a resolver over envs for a process running in the caller environment.
func NewResolver(envs []Environment, caller string, opener Opener, opts Options, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Resolver{
		envs:       make(map[string]Environment, len(envs)),
		caller:     caller,
		strategies: make(map[string]Strategy, len(envs)),
		opts:       opts,
		opener:     opener,
		logger:     logger,
	}

	for _, env := range envs {
		if env.Name == "" {
			return nil, fmt.Errorf("environment with table %q has no name", env.Table)
		}
		if _, dup := r.envs[env.Name]; dup {
			return nil, fmt.Errorf("environment %s configured twice", env.Name)
		}
		if !env.Strategy.Valid() {
			return nil, fmt.Errorf("environment %s has invalid strategy %q", env.Name, env.Strategy)
		}
		r.envs[env.Name] = env
		r.order = append(r.order, env.Name)
		r.strategies[env.Name] = deriveStrategy(env, caller)
	}

	if _, ok := r.envs[caller]; !ok {
		return nil, fmt.Errorf("caller environment %s: %w", caller, ErrUnknownEnvironment)
	}

	return r, nil
}

// deriveStrategy applies the explicit strategy when set, otherwise the caller's own
// environment is direct and every other environment needs a role.
func deriveStrategy(env Environment, caller string) Strategy {
	if env.Strategy != "" {
		return env.Strategy
	}
	if env.Name == caller {
		return Direct
	}
	return AssumeRole
}

// Caller returns the environment the process runs in.
func (r *Resolver) Caller() string {
	return r.caller
}

// Environments returns the configured environment names in configuration order.
func (r *Resolver) Environments() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns the configuration of a named environment.
func (r *Resolver) Lookup(name string) (Environment, error) {
	env, ok := r.envs[name]
	if !ok {
		return Environment{}, fmt.Errorf("%s: %w", name, ErrUnknownEnvironment)
	}
	return env, nil
}

// Strategy returns the credential strategy for a named environment.
func (r *Resolver) Strategy(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// RoleARN returns the role assumed to reach env.
func (r *Resolver) RoleARN(env Environment) string {
	if env.RoleARN != "" {
		return env.RoleARN
	}
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", env.AccountID, r.opts.RolePrefix)
}

// Resolve returns a handle on the products table of the named environment.
func (r *Resolver) Resolve(ctx context.Context, name string) (store.Store, error) {
	env, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return r.open(ctx, env, env.Table, r.opts.ProductSchema)
}

// ResolveTable returns a handle on an arbitrary table of the named environment.
func (r *Resolver) ResolveTable(ctx context.Context, name, table string, schema store.KeySchema) (store.Store, error) {
	env, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return r.open(ctx, env, table, schema)
}

func (r *Resolver) open(ctx context.Context, env Environment, table string, schema store.KeySchema) (store.Store, error) {
	req := Request{
		Environment: env,
		Strategy:    r.strategies[env.Name],
		Table:       table,
		Schema:      schema,
	}
	if req.Strategy == AssumeRole {
		req.RoleARN = r.RoleARN(env)
	}

	r.logger.Debug("Resolving store handle",
		zap.String("environment", env.Name),
		zap.String("table", table),
		zap.String("strategy", string(req.Strategy)),
	)

	s, err := r.opener.Open(ctx, req)
	if err != nil {
		if req.Strategy == AssumeRole {
			return nil, &CredentialError{Environment: env.Name, RoleARN: req.RoleARN, Err: err}
		}
		return nil, fmt.Errorf("failed to open table %s in %s: %w", table, env.Name, err)
	}
	return s, nil
}

// Split partitions the configured environments into the primary (ground truth) and
// the ordered update targets. It has no side effects.
func (r *Resolver) Split(primary string, update []string) (Environment, []Environment, error) {
	p, err := r.Lookup(primary)
	if err != nil {
		return Environment{}, nil, fmt.Errorf("primary environment: %w", err)
	}

	secondaries := make([]Environment, 0, len(update))
	for _, name := range update {
		env, err := r.Lookup(name)
		if err != nil {
			return Environment{}, nil, fmt.Errorf("update environment: %w", err)
		}
		secondaries = append(secondaries, env)
	}
	return p, secondaries, nil
}

// Names returns the environment names of envs in order.
func Names(envs []Environment) []string {
	out := make([]string, len(envs))
	for i, env := range envs {
		out[i] = env.Name
	}
	return out
}
