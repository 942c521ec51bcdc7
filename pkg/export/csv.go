// Package export projects extracted processing-unit records into tabular
// CSV shapes. The records arrive already sanitized and redacted; this
// package only decides column layout.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/flowlens/flowlens/pkg/flow"
)

// summaryHeaders is the fixed column set of the per-unit summary export.
var summaryHeaders = []string{
	"name",
	"id",
	"type",
	"group",
	"run_state",
	"concurrent_tasks",
	"scheduling_period",
	"penalty_duration",
	"yield_duration",
	"bulletin_level",
	"auto_terminated_relationships",
	"properties_count",
}

// identityHeaders prefix the property-matrix exports.
var identityHeaders = []string{"name", "id", "type", "group", "run_state"}

// keyPropertyParts selects which property names count as "key
// configuration". Sensitive names always qualify (their values are already
// redacted); the rest are the connection-shaped settings an operator scans
// for first.
var keyPropertyParts = []string{
	"url",
	"host",
	"port",
	"path",
	"directory",
	"table",
	"topic",
	"bucket",
	"endpoint",
	"sql",
	"statement",
	"query",
}

// IsKeyProperty reports whether a property name belongs in the bounded
// key-configuration export.
func IsKeyProperty(name string) bool {
	if flow.IsSensitiveName(name) {
		return true
	}
	lower := strings.ToLower(name)
	for _, part := range keyPropertyParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// WriteSummary writes one fixed-column row per processing unit.
func WriteSummary(w io.Writer, units []*flow.Processor) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeaders); err != nil {
		return err
	}

	for _, unit := range units {
		row := []string{
			unit.Name,
			unit.ID,
			unit.Type,
			unit.Group,
			string(unit.RunState),
			strconv.Itoa(unit.ConcurrentTasks),
			unit.SchedulingPeriod,
			unit.PenaltyDuration,
			unit.YieldDuration,
			unit.BulletinLevel,
			strings.Join(unit.AutoTerminated, "; "),
			strconv.Itoa(unit.Properties.Len()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteKeyConfig writes identity columns plus one column per key
// configuration property seen anywhere in the record set, in first-seen
// order.
func WriteKeyConfig(w io.Writer, units []*flow.Processor) error {
	return writeMatrix(w, units, IsKeyProperty)
}

// WriteMatrix writes identity columns plus one column per property name in
// the union of all record property sets, in first-seen order.
func WriteMatrix(w io.Writer, units []*flow.Processor) error {
	return writeMatrix(w, units, func(string) bool { return true })
}

// writeMatrix builds the union of property names across units, filtered by
// include, and emits one row per unit. The union keeps first-seen order so
// the column layout is stable for a given input document.
func writeMatrix(w io.Writer, units []*flow.Processor, include func(string) bool) error {
	var columns []string
	seen := make(map[string]bool)
	for _, unit := range units {
		for _, name := range unit.Properties.Names() {
			if seen[name] || !include(name) {
				continue
			}
			seen[name] = true
			columns = append(columns, name)
		}
	}

	cw := csv.NewWriter(w)
	header := append(append([]string{}, identityHeaders...), columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, unit := range units {
		row := make([]string, 0, len(header))
		row = append(row, unit.Name, unit.ID, unit.Type, unit.Group, string(unit.RunState))
		for _, name := range columns {
			value, _ := unit.Properties.Get(name)
			row = append(row, value)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
