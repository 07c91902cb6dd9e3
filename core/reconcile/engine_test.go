package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"giftlist-tools/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAdapter compares plain string maps held per environment.
type mockAdapter struct {
	records map[string]map[string]string
	errs    map[string]error
	fetched []string
}

func (m *mockAdapter) Name() string {
	return "mock"
}

func (m *mockAdapter) Fetch(ctx context.Context, env, id string) (Record, error) {
	m.fetched = append(m.fetched, env)
	if err, ok := m.errs[env]; ok {
		return nil, err
	}
	rec, ok := m.records[env]
	if !ok {
		return nil, fmt.Errorf("no %s in %s: %w", id, env, store.ErrNotFound)
	}
	return rec, nil
}

func (m *mockAdapter) CompareFields(reference, candidate Record) []string {
	a := reference.(map[string]string)
	b := candidate.(map[string]string)
	var out []string
	for k, v := range a {
		if b[k] != v {
			out = append(out, fmt.Sprintf("%s: primary=%s env=%s", k, v, b[k]))
		}
	}
	return out
}

func TestClassify(t *testing.T) {
	reference := map[string]string{"price": "10"}
	adapter := &mockAdapter{records: map[string]map[string]string{
		"test":    {"price": "12"},
		"staging": {"price": "10"},
	}}

	report, err := Classify(context.Background(), adapter, reference, "p1", []string{"test", "staging", "prod"})
	require.NoError(t, err)

	assert.Equal(t, map[string]SyncState{
		"test":    NotInSync,
		"staging": InSync,
		"prod":    DoesNotExist,
	}, report.States)
	assert.Equal(t, []string{"price: primary=10 env=12"}, report.Mismatches["test"])
	assert.NotContains(t, report.Mismatches, "staging")
	assert.Equal(t, []string{"test", "staging", "prod"}, adapter.fetched)

	assert.Equal(t, Summary{InSync: 1, NotInSync: 1, DoesNotExist: 1}, report.Summary())
}

func TestClassify_HardError(t *testing.T) {
	adapter := &mockAdapter{
		records: map[string]map[string]string{"test": {}},
		errs:    map[string]error{"staging": errors.New("AccessDenied")},
	}

	_, err := Classify(context.Background(), adapter, map[string]string{}, "p1", []string{"test", "staging", "prod"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staging")
	assert.Equal(t, []string{"test", "staging"}, adapter.fetched)
}

func TestFanOut_NoShortCircuit(t *testing.T) {
	var visited []string
	step := func(ctx context.Context, env string) (string, error) {
		visited = append(visited, env)
		if env == "staging" {
			return "Failed:unreachable", errors.New("unreachable")
		}
		return "Success:" + env, nil
	}

	results, failed := FanOut(context.Background(), []string{"test", "staging", "prod"}, step)
	assert.True(t, failed)
	assert.Equal(t, []string{"test", "staging", "prod"}, visited)
	assert.Equal(t, Results{
		"test":    "Success:test",
		"staging": "Failed:unreachable",
		"prod":    "Success:prod",
	}, results)
}

func TestFanOut_Empty(t *testing.T) {
	results, failed := FanOut(context.Background(), nil, func(ctx context.Context, env string) (string, error) {
		t.Fatal("step must not run")
		return "", nil
	})
	assert.False(t, failed)
	assert.Empty(t, results)
}

func TestBuildPlan(t *testing.T) {
	report := Report{
		States: map[string]SyncState{
			"test":    DoesNotExist,
			"staging": NotInSync,
			"prod":    InSync,
		},
		Mismatches: map[string][]string{"staging": {"price: primary=10 env=12"}},
		Order:      []string{"test", "staging", "prod"},
	}

	tests := []struct {
		name    string
		opts    Options
		targets []string
	}{
		{"all actions", Options{}, []string{"test", "staging"}},
		{"skip create", Options{SkipCreate: true}, []string{"staging"}},
		{"skip update", Options{SkipUpdate: true}, []string{"test"}},
		{"skip both", Options{SkipCreate: true, SkipUpdate: true}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BuildPlan(report, tt.opts)
			assert.Equal(t, tt.targets, plan.Targets())
		})
	}

	plan := BuildPlan(report, Options{})
	require.Len(t, plan.Actions, 2)
	assert.Equal(t, ActionCreate, plan.Actions[0].Type)
	assert.Equal(t, ActionUpdate, plan.Actions[1].Type)
	assert.Equal(t, "1 field(s) differ", plan.Actions[1].Reason)
}

func TestBuildPlan_WithoutOrder(t *testing.T) {
	report := Report{States: map[string]SyncState{"test": NotInSync, "prod": DoesNotExist}}
	assert.Equal(t, []string{"prod", "test"}, BuildPlan(report, Options{}).Targets())
}
