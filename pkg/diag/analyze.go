package diag

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/flowlens/flowlens/pkg/errors"
)

// heapUsagePattern pulls used/max heap byte counts out of the memory
// section's free-form text.
var heapUsagePattern = regexp.MustCompile(`(?s)Heap Memory Usage.*?used:\s*(\d+)\s*bytes.*?max:\s*(\d+)\s*bytes`)

// processorTypeLinePattern pulls the type value from a "Type: ..." line in
// the processors section.
var processorTypeLinePattern = regexp.MustCompile(`Type:\s*(.+)`)

// platformProcessorNamespace marks a type line as describing one of the
// platform's own processors rather than arbitrary prose.
const platformProcessorNamespace = "org.apache.nifi.processors"

// MemoryReport summarizes heap usage from the memory section.
type MemoryReport struct {
	HeapUsedBytes int64
	HeapMaxBytes  int64
	UsagePercent  float64
}

// AnalyzeMemory extracts heap usage figures from the memory-usage section.
// It fails when the section is absent or carries no recognizable heap
// figures.
func AnalyzeMemory(report *Report) (*MemoryReport, error) {
	section, ok := report.Section(KindMemoryUsage)
	if !ok {
		return nil, errors.New(errors.ErrorTypeNotFound, "memory usage section not found")
	}

	m := heapUsagePattern.FindStringSubmatch(section.Content)
	if m == nil {
		return nil, errors.New(errors.ErrorTypeData, "no heap usage figures in memory section")
	}

	used, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "malformed heap used bytes")
	}
	max, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "malformed heap max bytes")
	}

	mr := &MemoryReport{HeapUsedBytes: used, HeapMaxBytes: max}
	if max > 0 {
		mr.UsagePercent = float64(used) / float64(max) * 100
	}
	return mr, nil
}

// TypeCount is one processor type with its number of occurrences.
type TypeCount struct {
	Type  string
	Count int
}

// ShortType returns the final dotted segment of the type name.
func (tc TypeCount) ShortType() string {
	if idx := strings.LastIndexByte(tc.Type, '.'); idx >= 0 {
		return tc.Type[idx+1:]
	}
	return tc.Type
}

// ProcessorTypeCounts tallies the processor types reported in the
// processors section, sorted by type name. A missing section yields an
// empty tally, not an error.
func ProcessorTypeCounts(report *Report) []TypeCount {
	section, ok := report.Section(KindProcessors)
	if !ok {
		return nil
	}

	counts := make(map[string]int)
	for _, line := range strings.Split(section.Content, "\n") {
		if !strings.Contains(line, "Type:") || !strings.Contains(line, platformProcessorNamespace) {
			continue
		}
		if m := processorTypeLinePattern.FindStringSubmatch(line); m != nil {
			counts[strings.TrimSpace(m[1])]++
		}
	}

	out := make([]TypeCount, 0, len(counts))
	for typ, n := range counts {
		out = append(out, TypeCount{Type: typ, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// SearchMatch is one query hit inside a section, with surrounding lines for
// context.
type SearchMatch struct {
	Kind Kind
	// Line is the 1-based line number of the hit within the section.
	Line    int
	Context []string
}

// contextLines is the number of lines shown on each side of a hit.
const contextLines = 2

// Search finds query, case-insensitively, across every section. Matches
// come back in document order.
func Search(report *Report, query string) []SearchMatch {
	if query == "" {
		return nil
	}
	needle := strings.ToLower(query)

	var matches []SearchMatch
	for _, section := range report.Sections() {
		lines := strings.Split(section.Content, "\n")
		for i, line := range lines {
			if !strings.Contains(strings.ToLower(line), needle) {
				continue
			}
			lo := i - contextLines
			if lo < 0 {
				lo = 0
			}
			hi := i + contextLines + 1
			if hi > len(lines) {
				hi = len(lines)
			}
			context := make([]string, hi-lo)
			copy(context, lines[lo:hi])
			matches = append(matches, SearchMatch{
				Kind:    section.Kind,
				Line:    i + 1,
				Context: context,
			})
		}
	}
	return matches
}
