package reconcile

import "sort"

// SyncState classifies one environment's copy against the reference.
type SyncState string

const (
	// InSync means every compared field is equal.
	InSync SyncState = "IN SYNC"
	// NotInSync means the record exists but at least one field differs.
	NotInSync SyncState = "NOT IN SYNC"
	// DoesNotExist means the environment has no record with the reference's id.
	DoesNotExist SyncState = "DOES NOT EXIST"
)

// Results maps an environment name to the outcome message of a fan-out step.
type Results map[string]string

// Report is the outcome of a sync check.
type Report struct {
	// States holds the classification per environment.
	States map[string]SyncState `json:"states"`

	// Mismatches holds the differing fields of each NOT IN SYNC environment.
	Mismatches map[string][]string `json:"mismatches,omitempty"`

	// Order is the order environments were checked in.
	Order []string `json:"-"`
}

// Summary counts environments per state.
type Summary struct {
	InSync       int `json:"in_sync"`
	NotInSync    int `json:"not_in_sync"`
	DoesNotExist int `json:"does_not_exist"`
}

// Summary returns the state counts of the report.
func (r Report) Summary() Summary {
	var s Summary
	for _, state := range r.States {
		switch state {
		case InSync:
			s.InSync++
		case NotInSync:
			s.NotInSync++
		case DoesNotExist:
			s.DoesNotExist++
		}
	}
	return s
}

// ActionType represents the type of repair action.
type ActionType string

const (
	// ActionCreate writes the record into an environment that lacks it.
	ActionCreate ActionType = "create"
	// ActionUpdate overwrites the mutable fields of a stale copy.
	ActionUpdate ActionType = "update"
)

// Action represents a planned repair of one environment.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Environment is the environment to repair.
	Environment string `json:"environment"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// Plan contains the check report and the actions that would repair it.
type Plan struct {
	Report  Report   `json:"report"`
	Actions []Action `json:"actions"`
}

// Targets returns the environments the plan would touch, in check order.
func (p Plan) Targets() []string {
	out := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		out = append(out, a.Environment)
	}
	return out
}

// Options controls which actions BuildPlan emits.
type Options struct {
	// SkipCreate leaves environments without the record untouched.
	SkipCreate bool

	// SkipUpdate leaves stale copies untouched.
	SkipUpdate bool
}

func sortedKeys(m map[string]SyncState) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
