// Dimtrace CLI - replays dimension-allocation scenarios and inspects the result
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/probfold/dimstack/dims"
	"github.com/probfold/dimstack/scenario"
	"github.com/probfold/dimstack/trace"
)

func main() {
	verbosity := flag.Int("v", 0, "Log verbosity (0 = quiet, 2 = debug)")
	recordPath := flag.String("record", "", "Record allocation events to this SQLite database")
	snapshotPath := flag.String("snapshot", "", "Write the final allocator state to this file")
	noColor := flag.Bool("no-color", false, "Disable colored output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dimtrace [options] scenario.toml\n\n")
		fmt.Fprintf(os.Stderr, "Replays a dimension-allocation scenario step by step, printing the\n")
		fmt.Fprintf(os.Stderr, "resolved layout of every conversion and a final allocator dump.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dimtrace examples/iteration.toml\n")
		fmt.Fprintf(os.Stderr, "  dimtrace -record trace.db examples/global.toml\n")
		fmt.Fprintf(os.Stderr, "  dimtrace -v 2 -snapshot state.cbor examples/nesting.toml\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	commonlog.Configure(*verbosity, nil)

	sc, err := scenario.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	st := dims.NewStack(dims.WithFirstDim(sc.Stack.FirstAvailableDim))

	var rec *trace.Recorder
	if *recordPath != "" {
		rec, err = trace.NewRecorder(*recordPath, st.ID())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer rec.Close()
		st.OnEvent = rec.Record
	}

	color := !*noColor && isatty.IsTerminal(os.Stdout.Fd())
	fmt.Printf("session %s, first available dim %d\n", st.ID(), sc.Stack.FirstAvailableDim)

	err = scenario.Run(st, sc, func(step int, detail string) {
		label := stepLabel(step, color)
		if strings.ContainsRune(detail, '\n') {
			fmt.Printf("%s\n%s", label, detail)
		} else {
			fmt.Printf("%s %s\n", label, detail)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Print(st.Inspect())

	if rec != nil {
		printCounts(rec, *recordPath)
	}

	if *snapshotPath != "" {
		snap, err := st.Snapshot()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*snapshotPath, snap, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote snapshot (%d bytes) to %s\n", len(snap), *snapshotPath)
	}
}

func stepLabel(step int, color bool) string {
	if color {
		return fmt.Sprintf("\x1b[36mstep %d\x1b[0m", step)
	}
	return fmt.Sprintf("step %d", step)
}

// printCounts summarizes what the recorder stored, kinds sorted for
// stable output.
func printCounts(rec *trace.Recorder, path string) {
	counts, err := rec.Counts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: reading event counts: %v\n", err)
		return
	}

	kinds := make([]string, 0, len(counts))
	total := 0
	for kind, n := range counts {
		kinds = append(kinds, kind)
		total += n
	}
	sort.Strings(kinds)

	fmt.Printf("recorded %d events to %s:", total, path)
	for _, kind := range kinds {
		fmt.Printf(" %s=%d", kind, counts[kind])
	}
	fmt.Println()
}
