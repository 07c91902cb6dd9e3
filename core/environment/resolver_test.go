package environment_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"giftlist-tools/core/environment"
	"giftlist-tools/core/store"
	"giftlist-tools/core/store/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOpener struct {
	requests []environment.Request
	err      error
}

func (o *recordingOpener) Open(ctx context.Context, req environment.Request) (store.Store, error) {
	o.requests = append(o.requests, req)
	if o.err != nil {
		return nil, o.err
	}
	m := new(mocks.Store)
	m.On("Name").Return(req.Table)
	return m, nil
}

func threeEnvs() []environment.Environment {
	return []environment.Environment{
		{Name: "test", Table: "products-test", AccountID: "111111111111"},
		{Name: "staging", Table: "products-staging", AccountID: "222222222222"},
		{Name: "prod", Table: "products-prod", AccountID: "333333333333"},
	}
}

func newResolver(t *testing.T, envs []environment.Environment, caller string, opener environment.Opener) *environment.Resolver {
	t.Helper()
	r, err := environment.NewResolver(envs, caller, opener, environment.Options{
		RolePrefix:    "cross-account-role",
		ProductSchema: store.KeySchema{PartitionKey: "productId"},
	}, nil)
	require.NoError(t, err)
	return r
}

func TestResolver_DerivedStrategies(t *testing.T) {
	r := newResolver(t, threeEnvs(), "test", &recordingOpener{})

	tests := []struct {
		env  string
		want environment.Strategy
	}{
		{"test", environment.Direct},
		{"staging", environment.AssumeRole},
		{"prod", environment.AssumeRole},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			got, ok := r.Strategy(tt.env)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := r.Strategy("dev")
	assert.False(t, ok)
}

func TestResolver_ExplicitStrategyWins(t *testing.T) {
	envs := threeEnvs()
	envs[1].Strategy = environment.Direct
	r := newResolver(t, envs, "test", &recordingOpener{})

	got, _ := r.Strategy("staging")
	assert.Equal(t, environment.Direct, got)
}

func TestResolver_Resolve(t *testing.T) {
	opener := &recordingOpener{}
	r := newResolver(t, threeEnvs(), "test", opener)

	s, err := r.Resolve(context.Background(), "prod")
	require.NoError(t, err)
	assert.Equal(t, "products-prod", s.Name())

	require.Len(t, opener.requests, 1)
	req := opener.requests[0]
	assert.Equal(t, environment.AssumeRole, req.Strategy)
	assert.Equal(t, "arn:aws:iam::333333333333:role/cross-account-role", req.RoleARN)
	assert.Equal(t, "productId", req.Schema.PartitionKey)

	_, err = r.Resolve(context.Background(), "test")
	require.NoError(t, err)
	assert.Empty(t, opener.requests[1].RoleARN)
}

func TestResolver_ResolveTable(t *testing.T) {
	opener := &recordingOpener{}
	r := newResolver(t, threeEnvs(), "test", opener)

	s, err := r.ResolveTable(context.Background(), "test", "lists-test", store.KeySchema{PartitionKey: "PK", SortKey: "SK"})
	require.NoError(t, err)
	assert.Equal(t, "lists-test", s.Name())
	assert.Equal(t, "SK", opener.requests[0].Schema.SortKey)
}

func TestResolver_RoleARNOverride(t *testing.T) {
	envs := threeEnvs()
	envs[2].RoleARN = "arn:aws:iam::999:role/custom"
	r := newResolver(t, envs, "test", &recordingOpener{})

	assert.Equal(t, "arn:aws:iam::999:role/custom", r.RoleARN(envs[2]))
	assert.Equal(t, "arn:aws:iam::222222222222:role/cross-account-role", r.RoleARN(envs[1]))
}

func TestResolver_Errors(t *testing.T) {
	t.Run("unknown environment", func(t *testing.T) {
		r := newResolver(t, threeEnvs(), "test", &recordingOpener{})
		_, err := r.Resolve(context.Background(), "dev")
		assert.ErrorIs(t, err, environment.ErrUnknownEnvironment)
	})

	t.Run("assume role failure is a credential error", func(t *testing.T) {
		denied := errors.New("AccessDenied")
		r := newResolver(t, threeEnvs(), "test", &recordingOpener{err: denied})

		_, err := r.Resolve(context.Background(), "staging")
		var ce *environment.CredentialError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "staging", ce.Environment)
		assert.Equal(t, "arn:aws:iam::222222222222:role/cross-account-role", ce.RoleARN)
		assert.ErrorIs(t, err, denied)
	})

	t.Run("direct failure is not a credential error", func(t *testing.T) {
		r := newResolver(t, threeEnvs(), "test", &recordingOpener{err: errors.New("boom")})

		_, err := r.Resolve(context.Background(), "test")
		require.Error(t, err)
		var ce *environment.CredentialError
		assert.False(t, errors.As(err, &ce))
	})
}

func TestNewResolver_Validation(t *testing.T) {
	tests := []struct {
		name   string
		envs   []environment.Environment
		caller string
	}{
		{"unknown caller", threeEnvs(), "dev"},
		{"duplicate", append(threeEnvs(), environment.Environment{Name: "prod"}), "test"},
		{"missing name", []environment.Environment{{Table: "t"}}, "test"},
		{"bad strategy", []environment.Environment{{Name: "test", Strategy: "sudo"}}, "test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := environment.NewResolver(tt.envs, tt.caller, &recordingOpener{}, environment.Options{}, nil)
			assert.Error(t, err)
		})
	}
}

func TestResolver_Split(t *testing.T) {
	r := newResolver(t, threeEnvs(), "prod", &recordingOpener{})

	primary, secondaries, err := r.Split("prod", []string{"staging", "test"})
	require.NoError(t, err)
	assert.Equal(t, "prod", primary.Name)
	assert.Equal(t, []string{"staging", "test"}, environment.Names(secondaries))

	_, _, err = r.Split("prod", []string{"staging", "dev"})
	assert.ErrorIs(t, err, environment.ErrUnknownEnvironment)

	_, _, err = r.Split("dev", nil)
	assert.ErrorIs(t, err, environment.ErrUnknownEnvironment)
}

func TestResolver_EnvironmentsKeepOrder(t *testing.T) {
	r := newResolver(t, threeEnvs(), "test", &recordingOpener{})
	assert.Equal(t, []string{"test", "staging", "prod"}, r.Environments())
	assert.Equal(t, "test", r.Caller())
}

func TestBackends(t *testing.T) {
	dynamo := &recordingOpener{}
	local := &recordingOpener{}
	b := environment.Backends{environment.BackendDynamo: dynamo, environment.BackendLocal: local}

	_, err := b.Open(context.Background(), environment.Request{Environment: environment.Environment{Name: "test"}})
	require.NoError(t, err)
	_, err = b.Open(context.Background(), environment.Request{Environment: environment.Environment{Name: "test", Backend: environment.BackendLocal}})
	require.NoError(t, err)
	assert.Len(t, dynamo.requests, 1)
	assert.Len(t, local.requests, 1)

	_, err = b.Open(context.Background(), environment.Request{Environment: environment.Environment{Backend: "redis"}})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "environments.yaml")
	content := `environments:
  - name: test
    table: products-test
    account_id: "111111111111"
    backend: local
  - name: prod
    table: products-prod
    account_id: "333333333333"
    strategy: assume_role
    region: eu-west-2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	envs, err := environment.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, environment.BackendLocal, envs[0].Backend)
	assert.Equal(t, "111111111111", envs[0].AccountID)
	assert.Equal(t, environment.AssumeRole, envs[1].Strategy)
	assert.Equal(t, "eu-west-2", envs[1].Region)

	_, err = environment.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
