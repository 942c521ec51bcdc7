package flow

import (
	"strconv"

	"github.com/flowlens/flowlens/pkg/json"
)

// Keys linking a group to its units and child groups in the structured
// schema variants.
const (
	processorsKey    = "processors"
	processGroupsKey = "processGroups"
)

// ExtractGroup walks a group subtree depth-first, collecting every
// processing-unit record tagged with its location path. Sibling order in
// the result matches sibling order in the document, and records are not
// deduplicated: an ID repeated by an inconsistent export appears repeatedly.
//
// Each call returns its own slice; callers concatenate. Nothing is shared
// across calls, so a subtree can be extracted in isolation.
func ExtractGroup(group *json.Object, path string) []*Processor {
	var units []*Processor

	if v, ok := group.Get(processorsKey); ok {
		if list, ok := v.([]interface{}); ok {
			for _, elem := range list {
				if obj, ok := elem.(*json.Object); ok {
					units = append(units, ParseUnit(obj, path))
				}
			}
		}
	}

	if v, ok := group.Get(processGroupsKey); ok {
		if list, ok := v.([]interface{}); ok {
			for _, elem := range list {
				child, ok := elem.(*json.Object)
				if !ok {
					continue
				}
				units = append(units, ExtractGroup(child, childGroupPath(path, groupName(child)))...)
			}
		}
	}

	return units
}

// groupName returns a group's display name, falling back to the fixed
// unnamed-group label.
func groupName(group *json.Object) string {
	if v, ok := group.Get("name"); ok {
		if name := Clean(v); name != "" {
			return name
		}
	}
	return UnnamedGroupName
}

// childGroupPath extends a location path by one group. The root sentinel is
// dropped rather than prefixed, so top-level groups start their own path.
func childGroupPath(parent, child string) string {
	if parent == RootGroup {
		return child
	}
	return parent + "/" + child
}

// ExtractAnywhere is the unguided fallback: it scans every key of every
// object and every element of every array, at any depth, for lists of
// candidate unit records, building location paths from the literal keys and
// indices traversed. It is deliberately promiscuous and will find records
// the structured walk cannot reach; on a structured document it finds at
// least everything ExtractGroup finds, because any list the structured walk
// accepts is also a candidate list here.
//
// A list consumed as records under a key is not descended into again; the
// bookkeeping is per immediate key only, siblings are still traversed.
func ExtractAnywhere(node interface{}, path string) []*Processor {
	switch n := node.(type) {
	case *json.Object:
		var units []*Processor
		consumed := make(map[string]bool)

		for _, key := range n.Keys() {
			v, _ := n.Get(key)
			list, ok := v.([]interface{})
			if !ok || !looksLikeUnitList(key, list) {
				continue
			}
			for _, elem := range list {
				if obj, ok := elem.(*json.Object); ok {
					units = append(units, ParseUnit(obj, path))
				}
			}
			consumed[key] = true
		}

		for _, key := range n.Keys() {
			if consumed[key] {
				continue
			}
			v, _ := n.Get(key)
			units = append(units, ExtractAnywhere(v, childGroupPath(path, key))...)
		}
		return units

	case []interface{}:
		var units []*Processor
		for i, elem := range n {
			units = append(units, ExtractAnywhere(elem, childGroupPath(path, strconv.Itoa(i)))...)
		}
		return units

	default:
		// scalar, nothing below
		return nil
	}
}

// looksLikeUnitList decides whether a list is a list of processing-unit
// records. Anything under the known unit key qualifies outright so the
// fallback never finds fewer records than the structured walk; other lists
// must carry both an identity-ish and a kind-ish key on their first
// element.
func looksLikeUnitList(key string, list []interface{}) bool {
	// The known key qualifies before any shape test: the structured walk
	// tolerates stray non-object elements in a processors list, so the
	// fallback must consume such a list too rather than descend past it.
	if key == processorsKey {
		return true
	}
	// Group lists carry identity and name too; they hold units, they are
	// not units, so they must be descended into rather than consumed.
	if key == processGroupsKey {
		return false
	}
	if len(list) == 0 {
		return false
	}
	first, ok := list[0].(*json.Object)
	if !ok {
		return false
	}
	hasIdentity := first.Has("identifier") || first.Has("id") || first.Has("component")
	hasKind := first.Has("type") || first.Has("name")
	return hasIdentity && hasKind
}
