package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/anybox/anybox"
	"github.com/anybox/anybox/capability"
	"github.com/anybox/anybox/dispatch"
)

func main() {
	var (
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		showLayout  = flag.Bool("layout", false, "Print the dispatch slot record layout and exit")
		verbose     = flag.Bool("v", false, "Verbose logging of table construction")
		filter      = flag.String("filter", "", "Only show tables whose type name contains this substring")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		dispatch.SetLogger(logger)
	}

	if *showLayout {
		printSlotsLayout()
		return
	}

	// The registry only holds what this process built, so seed it with a
	// representative set of erased containers to inspect.
	registerSamples()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	listTables(*filter)
}

func printSlotsLayout() {
	d := dispatch.SlotsLayout()
	fmt.Printf("Slot record: %s\n", d)
	fmt.Printf("Stable prefix: %d slots, appendable suffix: %d slots\n\n",
		d.PrefixFieldCount, d.DeclaredFieldCount()-d.PrefixFieldCount)
	for _, f := range d.Fields {
		region := "prefix"
		if f.Index >= d.PrefixFieldCount {
			region = "suffix"
		}
		fmt.Printf("  %2d  %-7s %-13s %s\n", f.Index, region, f.Name, f.Type)
	}
}

func listTables(filter string) {
	infos := dispatch.Tables()
	fmt.Printf("Registered dispatch tables: %d\n\n", len(infos))
	for _, info := range infos {
		if filter != "" && !strings.Contains(info.Type, filter) {
			continue
		}
		fmt.Printf("%s (%s)\n", info.Type, info.Mode)
		fmt.Printf("  package:      %s v%s\n", info.Package, info.Version)
		fmt.Printf("  slots:        %d stored / %d declared\n", info.StoredSlots, info.DeclaredSlots)
		fmt.Printf("  capabilities: %s\n", strings.Join(info.Capabilities, ", "))
		fmt.Printf("  table:        0x%x\n\n", info.Addr)
	}
}

// Sample types covering the capability surface.

type greeting struct {
	Text string
}

func (g greeting) String() string { return g.Text }

func (g greeting) MarshalBinary() ([]byte, error) {
	return []byte(g.Text), nil
}

type countdown struct {
	From int
}

func (c *countdown) Next() (int, bool) {
	if c.From <= 0 {
		return 0, false
	}
	v := c.From
	c.From--
	return v, true
}

func (c *countdown) Len() int { return c.From }

type greetingDesc struct {
	capability.Base
	capability.Display
	capability.Debug
	capability.Serialize
}

func registerSamples() {
	boxes := []interface{ Release() }{
		anybox.FromValue(capability.Ordered{}, 42),
		anybox.FromValue(capability.Ordered{}, "sample"),
		anybox.FromValue(greetingDesc{}, greeting{Text: "hello"}),
		anybox.FromAnyValue(capability.Cloneable{}, []int{1, 2, 3}),
		anybox.FromValue(capability.Iteration[int]{}, countdown{From: 10}),
		anybox.FromBorrowingPtr(capability.TextWriter{}, bufio.NewWriter(os.Stdout)),
	}
	// The containers only exist to register their tables.
	for _, b := range boxes {
		b.Release()
	}
}
