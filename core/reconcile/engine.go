package reconcile

import (
	"context"
	"errors"
	"fmt"

	"giftlist-tools/core/store"
)

// Step performs one environment's part of a fan-out. The returned message is
// recorded for the environment whether or not err is nil.
type Step func(ctx context.Context, environment string) (string, error)

// FanOut runs step for every environment in order. A failing environment never
// prevents the remaining ones from running; failed reports whether any step
// returned an error.
func FanOut(ctx context.Context, environments []string, step Step) (results Results, failed bool) {
	results = make(Results, len(environments))
	for _, env := range environments {
		msg, err := step(ctx, env)
		results[env] = msg
		if err != nil {
			failed = true
		}
	}
	return results, failed
}

// Classify compares reference against its copy in each environment. A not-found
// fetch classifies the environment as DoesNotExist; any other fetch error aborts
// the check, since the environment's state could not be determined.
func Classify(ctx context.Context, adapter Adapter, reference Record, id string, environments []string) (Report, error) {
	report := Report{
		States:     make(map[string]SyncState, len(environments)),
		Mismatches: make(map[string][]string),
		Order:      append([]string(nil), environments...),
	}

	for _, env := range environments {
		candidate, err := adapter.Fetch(ctx, env, id)
		if errors.Is(err, store.ErrNotFound) {
			report.States[env] = DoesNotExist
			continue
		}
		if err != nil {
			return Report{}, fmt.Errorf("failed to check %s %s in %s: %w", adapter.Name(), id, env, err)
		}

		mismatches := adapter.CompareFields(reference, candidate)
		if len(mismatches) == 0 {
			report.States[env] = InSync
			continue
		}
		report.States[env] = NotInSync
		report.Mismatches[env] = mismatches
	}

	return report, nil
}

// BuildPlan lists the actions that would bring every environment of report in sync.
// Actions follow the report's check order.
func BuildPlan(report Report, opts Options) Plan {
	plan := Plan{Report: report, Actions: []Action{}}

	for _, env := range orderOf(report) {
		switch report.States[env] {
		case DoesNotExist:
			if !opts.SkipCreate {
				plan.Actions = append(plan.Actions, Action{Type: ActionCreate, Environment: env, Reason: "missing"})
			}
		case NotInSync:
			if !opts.SkipUpdate {
				plan.Actions = append(plan.Actions, Action{
					Type:        ActionUpdate,
					Environment: env,
					Reason:      fmt.Sprintf("%d field(s) differ", len(report.Mismatches[env])),
				})
			}
		}
	}

	return plan
}

func orderOf(report Report) []string {
	if len(report.Order) == len(report.States) {
		return report.Order
	}
	// Reports built by hand may omit the order; fall back to a stable one.
	return sortedKeys(report.States)
}
