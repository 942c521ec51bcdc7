package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/flowlens/flowlens/pkg/diag"
	"github.com/flowlens/flowlens/pkg/export"
	"github.com/flowlens/flowlens/pkg/flow"
	"github.com/flowlens/flowlens/pkg/json"
	"github.com/flowlens/flowlens/pkg/logger"
)

var version = "0.1.0"

func main() {
	var logLevel string

	root := &cobra.Command{
		Use:   "flowlens",
		Short: "Flowlens - flow export and diagnostic dump analyzer",
		Long: `Flowlens analyzes exports from flow-based data-integration platforms.
It normalizes flow-definition JSON documents (in any of the known schema
variants) into flat processor records, and segments free-text diagnostic
dumps into named sections for inspection.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{
				Level:    logLevel,
				Encoding: "console",
			})
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level (debug, info, warn, error)")

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Flowlens v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newFlowCommand())
	root.AddCommand(newDiagCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newFlowCommand analyzes a flow-definition JSON export.
func newFlowCommand() *cobra.Command {
	var csvFile, keyConfigFile, matrixFile string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "flow <export.json>",
		Short: "Extract processor records from a flow-definition export",
		Long: `Extract every processor record from a flow-definition JSON export,
normalizing across schema variants, and print a summary. Optional flags
write CSV projections of the record set.

Example:
  flowlens flow flow-export.json --csv processors.csv --matrix properties.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(args[0], csvFile, keyConfigFile, matrixFile, asJSON)
		},
	}

	cmd.Flags().StringVar(&csvFile, "csv", "", "Write the fixed-column processor summary CSV to this path")
	cmd.Flags().StringVar(&keyConfigFile, "key-config", "", "Write the key-configuration property matrix CSV to this path")
	cmd.Flags().StringVar(&matrixFile, "matrix", "", "Write the full property matrix CSV to this path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print extracted records as JSON instead of the text summary")

	return cmd
}

func runFlow(path, csvFile, keyConfigFile, matrixFile string, asJSON bool) error {
	log := logger.With(zap.String("document", path))

	root, err := flow.LoadDocument(path)
	if err != nil {
		return err
	}

	units := flow.ExtractDocument(root)
	log.Info("extraction complete", zap.Int("records", len(units)))

	if asJSON {
		data, err := json.MarshalIndent(units, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printFlowSummary(units)
	}

	exports := []struct {
		path  string
		write func(f *os.File) error
	}{
		{csvFile, func(f *os.File) error { return export.WriteSummary(f, units) }},
		{keyConfigFile, func(f *os.File) error { return export.WriteKeyConfig(f, units) }},
		{matrixFile, func(f *os.File) error { return export.WriteMatrix(f, units) }},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := writeExport(e.path, e.write); err != nil {
			return err
		}
		log.Info("export written", zap.String("path", e.path))
	}

	return nil
}

func writeExport(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export file %s: %w", path, err)
	}
	return f.Close()
}

func printFlowSummary(units []*flow.Processor) {
	if len(units) == 0 {
		fmt.Println("No processors found.")
		return
	}

	fmt.Printf("Processors found: %d\n", len(units))
	for i, unit := range units {
		fmt.Printf("\n[%d] %s\n", i+1, unit.Name)
		fmt.Printf("    ID: %s\n", unit.ID)
		fmt.Printf("    Type: %s\n", unit.Type)
		fmt.Printf("    Group: %s\n", unit.Group)
		fmt.Printf("    Run state: %s\n", unit.RunState)
		fmt.Printf("    Concurrent tasks: %d\n", unit.ConcurrentTasks)
		fmt.Printf("    Scheduling period: %s\n", unit.SchedulingPeriod)
		if len(unit.AutoTerminated) > 0 {
			fmt.Printf("    Auto-terminated: %s\n", strings.Join(unit.AutoTerminated, ", "))
		}
		if unit.Properties.Len() > 0 {
			fmt.Printf("    Properties (%d):\n", unit.Properties.Len())
			for _, name := range unit.Properties.Names() {
				value, _ := unit.Properties.Get(name)
				fmt.Printf("      %s: %s\n", name, value)
			}
		}
		for _, rel := range unit.Relationships {
			marker := ""
			if rel.AutoTerminate {
				marker = " [auto-terminate]"
			}
			fmt.Printf("    Relationship: %s%s\n", rel.Name, marker)
		}
	}

	// Type distribution
	counts := make(map[string]int)
	for _, unit := range units {
		counts[unit.ShortType()]++
	}
	types := make([]string, 0, len(counts))
	for typ := range counts {
		types = append(types, typ)
	}
	sort.Strings(types)

	fmt.Println("\nProcessor types:")
	for _, typ := range types {
		fmt.Printf("  %s (%d)\n", typ, counts[typ])
	}
}

// newDiagCommand analyzes a diagnostic dump.
func newDiagCommand() *cobra.Command {
	var sectionName, searchTerm string
	var showMemory, showProcessors bool

	cmd := &cobra.Command{
		Use:   "diag <diagnostic.txt>",
		Short: "Segment and analyze a diagnostic dump",
		Long: `Split a diagnostic dump into named sections and inspect them.
With no flags, the sections found are listed.

Example:
  flowlens diag diagnostics.txt --section memory_usage
  flowlens diag diagnostics.txt --search "OutOfMemory"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiag(args[0], sectionName, searchTerm, showMemory, showProcessors)
		},
	}

	cmd.Flags().StringVar(&sectionName, "section", "", "Print the named section (e.g. memory_usage)")
	cmd.Flags().StringVar(&searchTerm, "search", "", "Search all sections for a term")
	cmd.Flags().BoolVar(&showMemory, "memory", false, "Analyze heap usage from the memory section")
	cmd.Flags().BoolVar(&showProcessors, "processors", false, "Tally processor types from the processors section")

	return cmd
}

func runDiag(path, sectionName, searchTerm string, showMemory, showProcessors bool) error {
	content, err := diag.Load(path)
	if err != nil {
		return err
	}

	report := diag.Segment(content)
	logger.Info("diagnostic segmented",
		zap.String("document", path),
		zap.Int("sections", report.Len()))

	switch {
	case sectionName != "":
		section, ok := report.Section(diag.Kind(sectionName))
		if !ok {
			return fmt.Errorf("section %q not found", sectionName)
		}
		fmt.Println(section.Content)

	case searchTerm != "":
		matches := diag.Search(report, searchTerm)
		if len(matches) == 0 {
			fmt.Printf("No matches for %q.\n", searchTerm)
			return nil
		}
		for _, m := range matches {
			fmt.Printf("%s (line %d):\n", m.Kind.Title(), m.Line)
			for _, line := range m.Context {
				fmt.Printf("    %s\n", line)
			}
			fmt.Println()
		}

	case showMemory:
		mr, err := diag.AnalyzeMemory(report)
		if err != nil {
			return err
		}
		fmt.Printf("Heap used: %d bytes\n", mr.HeapUsedBytes)
		fmt.Printf("Heap max:  %d bytes\n", mr.HeapMaxBytes)
		fmt.Printf("Usage:     %.1f%%\n", mr.UsagePercent)

	case showProcessors:
		counts := diag.ProcessorTypeCounts(report)
		if len(counts) == 0 {
			fmt.Println("No processor types found.")
			return nil
		}
		total := 0
		for _, tc := range counts {
			fmt.Printf("  %-30s : %d\n", tc.ShortType(), tc.Count)
			total += tc.Count
		}
		fmt.Printf("Total processors: %d\n", total)

	default:
		if report.Len() == 0 {
			fmt.Println("No sections found. The file may not be a standard diagnostic dump.")
			return nil
		}
		for i, section := range report.Sections() {
			lines := strings.Count(section.Content, "\n") + 1
			fmt.Printf("%2d. %-25s (%d lines)\n", i+1, section.Kind.Title(), lines)
		}
	}

	return nil
}
