// Package flow extracts normalized processing-unit records from the
// flow-definition JSON exports of flow-based data-integration platforms.
//
// Exports of the same logical flow arrive in several incompatible schema
// variants: wrapped in different top-level envelopes, with fields moved
// between the record and a nested "component"/"config" block, and with the
// run status signalled through whichever of several mutually-exclusive
// indicators that variant carries. The package reconciles all of them into
// one flat record shape suitable for tabular analysis.
package flow

import (
	"strings"

	"github.com/flowlens/flowlens/pkg/json"
)

// Placeholders substituted when a source omits an identity field. Every
// extracted record has a non-empty ID, Name, and Type.
const (
	UnknownValue     = "Unknown"
	UnknownName      = "Unnamed Processor"
	UnknownType      = "Unknown Type"
	NoDescription    = "No description"
	RootGroup        = "Root"
	UnnamedGroupName = "Unnamed Group"
)

// Relationship is one downstream routing of a processing unit's output.
type Relationship struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	AutoTerminate bool   `json:"autoTerminate"`
}

// Properties holds a processing unit's configuration properties with keys
// in source order. The first value seen for a name wins; later inserts of
// the same name are ignored, which implements the cross-source precedence
// of the field normalizer at the property level.
type Properties struct {
	names  []string
	values map[string]string
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Set records value under name unless name is already present.
func (p *Properties) Set(name, value string) {
	if _, ok := p.values[name]; ok {
		return
	}
	p.names = append(p.names, name)
	p.values[name] = value
}

// Get returns the value for name and whether it is present.
func (p *Properties) Get(name string) (string, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Names returns property names in insertion order. The slice is shared;
// callers must not modify it.
func (p *Properties) Names() []string {
	return p.names
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	return len(p.names)
}

// MarshalJSON writes the properties as a JSON object in insertion order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	obj := json.NewObject()
	for _, name := range p.names {
		obj.Set(name, p.values[name])
	}
	return obj.MarshalJSON()
}

// Processor is one normalized processing unit.
type Processor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Type is the full dotted type name; ShortType derives the last segment.
	Type string `json:"type"`
	// Group is the slash-joined path of ancestor group names from the
	// document root, or RootGroup for top-level units. It is assigned once
	// during traversal and never rewritten.
	Group string `json:"group"`

	RunState RunState `json:"runState"`

	SchedulingStrategy string `json:"schedulingStrategy"`
	SchedulingPeriod   string `json:"schedulingPeriod"`
	PenaltyDuration    string `json:"penaltyDuration"`
	YieldDuration      string `json:"yieldDuration"`
	BulletinLevel      string `json:"bulletinLevel"`
	ConcurrentTasks    int    `json:"concurrentTasks"`

	AutoTerminated []string       `json:"autoTerminatedRelationships"`
	Relationships  []Relationship `json:"relationships"`
	Properties     *Properties    `json:"properties"`
}

// ShortType returns the final segment of the dotted type name.
func (p *Processor) ShortType() string {
	if idx := strings.LastIndexByte(p.Type, '.'); idx >= 0 {
		return p.Type[idx+1:]
	}
	return p.Type
}

// ParseUnit normalizes one processing-unit record found at group. Every
// field degrades to its documented default when absent from all known
// locations; parsing a syntactically valid record never fails.
func ParseUnit(obj *json.Object, group string) *Processor {
	p := &Processor{
		ID:                 ResolveString(obj, idPaths, UnknownValue),
		Name:               ResolveString(obj, namePaths, UnknownName),
		Type:               ResolveString(obj, typePaths, UnknownType),
		Group:              group,
		RunState:           Classify(obj),
		SchedulingStrategy: ResolveString(obj, schedulingStrategyPaths, UnknownValue),
		SchedulingPeriod:   ResolveString(obj, schedulingPeriodPaths, UnknownValue),
		PenaltyDuration:    ResolveString(obj, penaltyDurationPaths, UnknownValue),
		YieldDuration:      ResolveString(obj, yieldDurationPaths, UnknownValue),
		BulletinLevel:      ResolveString(obj, bulletinLevelPaths, UnknownValue),
		ConcurrentTasks:    ResolveInt(obj, concurrentTasksPaths, 1),
		Properties:         NewProperties(),
	}

	p.AutoTerminated = parseAutoTerminated(obj)
	p.Relationships = parseRelationships(obj)
	parseProperties(obj, p.Properties)

	return p
}

// parseProperties merges the property blocks from every candidate location
// in precedence order. Properties keeps first-found-wins per key, so a key
// present in the component envelope shadows the same key in the unwrapped
// record.
func parseProperties(obj *json.Object, props *Properties) {
	for _, path := range propertiesPaths {
		v, ok := Lookup(obj, path)
		if !ok {
			continue
		}
		block, ok := v.(*json.Object)
		if !ok {
			continue
		}
		for _, name := range block.Keys() {
			raw, _ := block.Get(name)
			props.Set(Clean(name), CleanSensitive(name, raw))
		}
	}
}

func parseAutoTerminated(obj *json.Object) []string {
	v := Resolve(obj, autoTerminatedPaths, nil)
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(list))
	for _, elem := range list {
		if name := Clean(elem); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parseRelationships(obj *json.Object) []Relationship {
	v := Resolve(obj, relationshipsPaths, nil)
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	rels := make([]Relationship, 0, len(list))
	for _, elem := range list {
		relObj, ok := elem.(*json.Object)
		if !ok {
			continue
		}
		rel := Relationship{
			Name:        ResolveString(relObj, []Path{{"name"}}, UnknownValue),
			Description: ResolveString(relObj, []Path{{"description"}}, NoDescription),
		}
		if auto, ok := relObj.Get("autoTerminate"); ok {
			if b, ok := auto.(bool); ok {
				rel.AutoTerminate = b
			}
		}
		rels = append(rels, rel)
	}
	return rels
}
