package flow

import (
	"strconv"
	"strings"

	"github.com/flowlens/flowlens/pkg/json"
)

// Path addresses one candidate location of a logical field inside a decoded
// record, one object key per hop.
type Path []string

// Export mechanisms have moved the same logical fields between schema
// revisions. Each table lists every known location of a field in priority
// order; the wrapping "component" envelope carries the newest revision, so
// its paths come first.
var (
	idPaths = []Path{
		{"component", "id"},
		{"identifier"},
		{"id"},
	}
	namePaths = []Path{
		{"component", "name"},
		{"name"},
	}
	typePaths = []Path{
		{"component", "type"},
		{"type"},
	}
	schedulingStrategyPaths = []Path{
		{"component", "config", "schedulingStrategy"},
		{"config", "schedulingStrategy"},
		{"schedulingStrategy"},
	}
	schedulingPeriodPaths = []Path{
		{"component", "config", "schedulingPeriod"},
		{"config", "schedulingPeriod"},
		{"schedulingPeriod"},
	}
	penaltyDurationPaths = []Path{
		{"component", "config", "penaltyDuration"},
		{"config", "penaltyDuration"},
		{"penaltyDuration"},
	}
	yieldDurationPaths = []Path{
		{"component", "config", "yieldDuration"},
		{"config", "yieldDuration"},
		{"yieldDuration"},
	}
	bulletinLevelPaths = []Path{
		{"component", "config", "bulletinLevel"},
		{"config", "bulletinLevel"},
		{"bulletinLevel"},
	}
	concurrentTasksPaths = []Path{
		{"component", "config", "concurrentlySchedulableTaskCount"},
		{"config", "concurrentlySchedulableTaskCount"},
		{"concurrentlySchedulableTaskCount"},
	}
	autoTerminatedPaths = []Path{
		{"component", "config", "autoTerminatedRelationships"},
		{"config", "autoTerminatedRelationships"},
		{"autoTerminatedRelationships"},
	}
	propertiesPaths = []Path{
		{"component", "config", "properties"},
		{"config", "properties"},
		{"properties"},
	}
	relationshipsPaths = []Path{
		{"component", "relationships"},
		{"relationships"},
	}
)

// Lookup walks path from obj, hop by hop. Any missing key or non-object
// intermediate means "not found", never an error.
func Lookup(obj *json.Object, path Path) (interface{}, bool) {
	current := interface{}(obj)
	for _, key := range path {
		o, ok := current.(*json.Object)
		if !ok {
			return nil, false
		}
		v, ok := o.Get(key)
		if !ok {
			return nil, false
		}
		current = v
	}
	return current, true
}

// Resolve returns the value at the first path that is present and non-nil,
// or def when every candidate misses. Precedence rules are the path tables
// above, not code.
func Resolve(obj *json.Object, paths []Path, def interface{}) interface{} {
	for _, path := range paths {
		if v, ok := Lookup(obj, path); ok && v != nil {
			return v
		}
	}
	return def
}

// ResolveString resolves a field and cleans it into a string, falling back
// to def when the cleaned value is empty.
func ResolveString(obj *json.Object, paths []Path, def string) string {
	v := Resolve(obj, paths, nil)
	if v == nil {
		return def
	}
	if s := Clean(v); s != "" {
		return s
	}
	return def
}

// ResolveInt resolves a numeric field, tolerating the string and Number
// encodings seen across schema revisions. Negative values clamp to zero.
func ResolveInt(obj *json.Object, paths []Path, def int) int {
	v := Resolve(obj, paths, nil)
	if v == nil {
		return def
	}

	n := def
	switch value := v.(type) {
	case json.Number:
		if i, err := value.Int64(); err == nil {
			n = int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			n = i
		}
	case int:
		n = value
	case int64:
		n = int(value)
	case float64:
		n = int(value)
	}

	if n < 0 {
		return 0
	}
	return n
}
