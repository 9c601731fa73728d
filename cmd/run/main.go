package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/veylang/defer-runtime/frame"
	"github.com/veylang/defer-runtime/sched"
	"github.com/veylang/defer-runtime/unwind"
)

func main() {
	var (
		demoName    = flag.String("demo", "", "Demo to run (see -list)")
		list        = flag.Bool("list", false, "List demos and exit")
		showTrace   = flag.Bool("trace", false, "Print the drain event trace")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		frame.SetLogger(logger)
		unwind.SetLogger(logger)
		sched.SetLogger(logger)
	}

	if *list {
		fmt.Println("Demos:")
		for _, d := range demos() {
			fmt.Printf("  %-10s %s\n", d.name, d.desc)
		}
		return
	}

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

	if *demoName == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -demo <name> [-trace] [-v]")
		fmt.Fprintln(os.Stderr, "       run -list")
		fmt.Fprintln(os.Stderr, "       run -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*demoName, *showTrace); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(name string, showTrace bool) error {
	d, ok := findDemo(name)
	if !ok {
		return fmt.Errorf("unknown demo %q (see -list)", name)
	}

	fmt.Printf("Demo: %s\n%s\n\n", d.name, d.desc)

	output, trace, err := execDemo(d)
	for _, line := range output {
		fmt.Println(line)
	}
	if err != nil {
		return err
	}

	if showTrace {
		fmt.Printf("\n--- drain trace ---\n%s", trace.String())
	}
	return nil
}

// execDemo runs one demo with a fresh interpreter and collects its log
// output and drain trace.
func execDemo(d demo) ([]string, *unwind.Trace, error) {
	var output []string
	emit := func(s string) { output = append(output, s) }

	in := newInterp(emit)
	trace := &unwind.Trace{}
	in.SetTrace(trace)
	in.Loop().OnUnhandled(func(err error) {
		emit("unhandled rejection: " + err.Error())
	})

	err := d.run(in, emit)
	return output, trace, err
}

func findDemo(name string) (demo, bool) {
	for _, d := range demos() {
		if strings.EqualFold(d.name, name) {
			return d, true
		}
	}
	return demo{}, false
}
