package flow

import (
	"strings"

	"github.com/flowlens/flowlens/pkg/json"
)

// RunState is the canonical lifecycle status of a processing unit.
type RunState string

const (
	// StateRunning means the unit is scheduled and executing.
	StateRunning RunState = "RUNNING"
	// StateStopped means the unit is configured but not scheduled.
	StateStopped RunState = "STOPPED"
	// StateDisabled means the unit cannot be scheduled at all.
	StateDisabled RunState = "DISABLED"
	// StateUnknown means no schema variant exposed any status signal.
	StateUnknown RunState = "UNKNOWN"
)

// canonicalStates folds the synonyms used across schema revisions into the
// canonical vocabulary. Values outside the table pass through uppercased so
// a legitimate but unmapped platform state stays visible instead of
// collapsing into UNKNOWN.
var canonicalStates = map[string]RunState{
	"RUNNING":    StateRunning,
	"RUN":        StateRunning,
	"STARTED":    StateRunning,
	"START":      StateRunning,
	"STOPPED":    StateStopped,
	"STOP":       StateStopped,
	"DISABLED":   StateDisabled,
	"INVALID":    StateDisabled,
	"VALIDATING": StateStopped,
	"VALID":      StateStopped,
}

// statusRule extracts a raw status string from one schema variant's signal,
// returning "" when that signal is absent.
type statusRule func(obj *json.Object) string

// statusRules is consulted in order; the first rule yielding a non-empty
// value wins and later rules are not evaluated. A record exposing both a
// direct state field and a nested status object is therefore classified by
// the direct field.
var statusRules = []statusRule{
	// direct state field on the record
	func(obj *json.Object) string {
		return stringAt(obj, Path{"state"})
	},
	// component envelope: its state field, or a DISABLED scheduling
	// strategy anywhere in the strategy precedence chain
	func(obj *json.Object) string {
		if s := stringAt(obj, Path{"component", "state"}); s != "" {
			return s
		}
		if s := ResolveString(obj, schedulingStrategyPaths, ""); strings.EqualFold(s, "DISABLED") {
			return "DISABLED"
		}
		return ""
	},
	// status object; the run indicator sits one or two levels deep
	// depending on the export mechanism
	func(obj *json.Object) string {
		if s := stringAt(obj, Path{"status", "runStatus"}); s != "" {
			return s
		}
		return stringAt(obj, Path{"status", "aggregateSnapshot", "runStatus"})
	},
	// top-level run indicator
	func(obj *json.Object) string {
		return stringAt(obj, Path{"runStatus"})
	},
	// deeper nests seen in cluster and snippet exports
	func(obj *json.Object) string {
		deeper := []Path{
			{"component", "state", "runStatus"},
			{"component", "status", "runStatus"},
			{"component", "status", "aggregateSnapshot", "runStatus"},
			{"processorStatus", "runStatus"},
			{"revision", "component", "state"},
		}
		for _, p := range deeper {
			if s := stringAt(obj, p); s != "" {
				return s
			}
		}
		return ""
	},
}

// Classify derives one canonical RunState from whichever status signal the
// record's schema variant exposes.
func Classify(obj *json.Object) RunState {
	for _, rule := range statusRules {
		raw := rule(obj)
		if raw == "" {
			continue
		}
		state := strings.ToUpper(Clean(raw))
		if canonical, ok := canonicalStates[state]; ok {
			return canonical
		}
		return RunState(state)
	}
	return StateUnknown
}

// stringAt reads a string-typed value at path, returning "" for anything
// absent or non-string.
func stringAt(obj *json.Object, path Path) string {
	v, ok := Lookup(obj, path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
