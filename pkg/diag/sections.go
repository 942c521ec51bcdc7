// Package diag segments free-text diagnostic dumps from flow-based
// data-integration platforms into named sections and derives simple
// analyses from them.
//
// A diagnostic dump is one large text blob whose regions are introduced by
// decorated header lines ("===== Memory Usage ====="). The segmenter finds
// every known header, orders the matches by position, and assigns each
// section the text up to the next header. There is no grammar beyond the
// headers; everything inside a section stays raw.
package diag

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/flowlens/flowlens/pkg/errors"
)

// Kind identifies one of the known diagnostic section types.
type Kind string

// The fixed catalog of section kinds emitted by the platform's diagnostic
// dump.
const (
	KindSystemDiagnostics    Kind = "system_diagnostics"
	KindPlatformProperties   Kind = "platform_properties"
	KindBootstrapProperties  Kind = "bootstrap_properties"
	KindJVMInformation       Kind = "jvm_information"
	KindMemoryUsage          Kind = "memory_usage"
	KindGarbageCollection    Kind = "garbage_collection"
	KindThreadInformation    Kind = "thread_information"
	KindProcessGroups        Kind = "process_groups"
	KindProcessors           Kind = "processors"
	KindControllerServices   Kind = "controller_services"
	KindReportingTasks       Kind = "reporting_tasks"
	KindConnections          Kind = "connections"
	KindProvenance           Kind = "provenance"
	KindFlowFileRepository   Kind = "flowfile_repository"
	KindContentRepository    Kind = "content_repository"
	KindDiskUsage            Kind = "disk_usage"
	KindNetworkInformation   Kind = "network_information"
	KindOperatingSystem      Kind = "operating_system"
	KindEnvironmentVariables Kind = "environment_variables"
	KindClusterInformation   Kind = "cluster_information"
	KindRegistryClients      Kind = "registry_clients"
)

// Title returns a human-readable section title.
func (k Kind) Title() string {
	words := strings.Split(string(k), "_")
	for i, w := range words {
		if w == "jvm" {
			words[i] = "JVM"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// headerPattern associates a decorated-title pattern with its section kind.
type headerPattern struct {
	re   *regexp.Regexp
	kind Kind
}

// headerPatterns matches the decorated header line of each section kind,
// case-insensitively. "NiFi Properties" is the platform's own name for its
// configuration dump.
var headerPatterns = []headerPattern{
	{regexp.MustCompile(`(?i)=+ System Diagnostics =+`), KindSystemDiagnostics},
	{regexp.MustCompile(`(?i)=+ NiFi Properties =+`), KindPlatformProperties},
	{regexp.MustCompile(`(?i)=+ Bootstrap Properties =+`), KindBootstrapProperties},
	{regexp.MustCompile(`(?i)=+ JVM Information =+`), KindJVMInformation},
	{regexp.MustCompile(`(?i)=+ Memory Usage =+`), KindMemoryUsage},
	{regexp.MustCompile(`(?i)=+ Garbage Collection =+`), KindGarbageCollection},
	{regexp.MustCompile(`(?i)=+ Thread Information =+`), KindThreadInformation},
	{regexp.MustCompile(`(?i)=+ Process Groups =+`), KindProcessGroups},
	{regexp.MustCompile(`(?i)=+ Processors =+`), KindProcessors},
	{regexp.MustCompile(`(?i)=+ Controller Services =+`), KindControllerServices},
	{regexp.MustCompile(`(?i)=+ Reporting Tasks =+`), KindReportingTasks},
	{regexp.MustCompile(`(?i)=+ Connections =+`), KindConnections},
	{regexp.MustCompile(`(?i)=+ Provenance =+`), KindProvenance},
	{regexp.MustCompile(`(?i)=+ FlowFile Repository =+`), KindFlowFileRepository},
	{regexp.MustCompile(`(?i)=+ Content Repository =+`), KindContentRepository},
	{regexp.MustCompile(`(?i)=+ Disk Usage =+`), KindDiskUsage},
	{regexp.MustCompile(`(?i)=+ Network Information =+`), KindNetworkInformation},
	{regexp.MustCompile(`(?i)=+ Operating System =+`), KindOperatingSystem},
	{regexp.MustCompile(`(?i)=+ Environment Variables =+`), KindEnvironmentVariables},
	{regexp.MustCompile(`(?i)=+ Cluster Information =+`), KindClusterInformation},
	{regexp.MustCompile(`(?i)=+ Registry Clients =+`), KindRegistryClients},
}

// Section is one named region of a diagnostic document.
type Section struct {
	Kind    Kind
	Header  string
	Content string

	// start orders sections within the document; it is not part of the
	// output shape.
	start int
}

// Report holds the segmented document.
type Report struct {
	sections map[Kind]*Section
}

// Segment splits content into named sections. Every occurrence of every
// known header is located, matches are ordered by position, and each
// section spans from its header to the next matched header or end of
// document. When the same kind matches more than once, the later occurrence
// overwrites the earlier one; text before the first header is discarded.
func Segment(content string) *Report {
	type boundary struct {
		start  int
		end    int
		kind   Kind
		header string
	}

	var bounds []boundary
	for _, hp := range headerPatterns {
		for _, loc := range hp.re.FindAllStringIndex(content, -1) {
			bounds = append(bounds, boundary{
				start:  loc[0],
				kind:   hp.kind,
				header: content[loc[0]:loc[1]],
			})
		}
	}

	sort.Slice(bounds, func(i, j int) bool { return bounds[i].start < bounds[j].start })

	report := &Report{sections: make(map[Kind]*Section, len(bounds))}
	for i, b := range bounds {
		end := len(content)
		if i < len(bounds)-1 {
			end = bounds[i+1].start
		}
		report.sections[b.kind] = &Section{
			Kind:    b.kind,
			Header:  b.header,
			Content: strings.TrimSpace(content[b.start:end]),
			start:   b.start,
		}
	}
	return report
}

// Sections returns the sections ordered by their position in the document.
func (r *Report) Sections() []*Section {
	out := make([]*Section, 0, len(r.sections))
	for _, s := range r.sections {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// Section returns the section of the given kind, if present.
func (r *Report) Section(kind Kind) (*Section, bool) {
	s, ok := r.sections[kind]
	return s, ok
}

// Len returns the number of distinct sections found.
func (r *Report) Len() int {
	return len(r.sections)
}

// Load reads a whole diagnostic file into memory, transparently
// decompressing gzipped bundles. A missing or unreadable file is fatal.
func Load(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeFile, "failed to open diagnostic file").
			WithDetail("path", path)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	var reader io.Reader = br
	if head, err := br.Peek(2); err == nil && head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeFile, "failed to decompress diagnostic file").
				WithDetail("path", path)
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeFile, "failed to read diagnostic file").
			WithDetail("path", path)
	}
	return string(data), nil
}
