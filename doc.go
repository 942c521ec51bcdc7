// Package flowlens provides an offline analyzer for exports from
// flow-based data-integration platforms.
//
// Two kinds of input are supported:
//
// 1. Flow-definition JSON exports. The same logical flow tree is exported
// in several incompatible schema variants depending on the mechanism that
// produced it (template downloads, process-group exports, versioned
// registry snapshots). The flow package locates processor records at
// whatever depth and shape the variant buried them, reconciles competing
// field locations, classifies run status from whichever indicator is
// present, and sanitizes values for tabular export.
//
// 2. Free-text diagnostic dumps. The diag package segments the dump into
// named sections by decorated-header matching and offers simple analyses
// (heap usage, processor type tallies, cross-section search).
//
// # Quick Start
//
// Extract processor records from an export:
//
//	root, err := flow.LoadDocument("flow-export.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	units := flow.ExtractDocument(root)
//
// Segment a diagnostic dump:
//
//	content, err := diag.Load("diagnostics.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report := diag.Segment(content)
//
// The export package turns extracted records into CSV projections; the
// flowlens CLI under cmd/flowlens wires everything together.
package flowlens
