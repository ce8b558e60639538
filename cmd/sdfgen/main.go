// Command sdfgen evaluates a fragment script and writes the emitted SDF
// fragments to stdout as XML.
//
// Usage:
//
//	sdfgen [-timeout 5s] [-indent "  "] [script.lisp]
//
// The script is read from stdin when no file is given.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/chazu/sdfgen/pkg/element"
	"github.com/chazu/sdfgen/pkg/engine"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("sdfgen: ")

	timeout := flag.Duration("timeout", engine.EvalTimeout, "hard limit for script evaluation")
	indent := flag.String("indent", "  ", "indentation for XML output; empty for compact output")
	flag.Parse()

	if err := run(flag.Args(), *timeout, *indent, os.Stdin, os.Stdout); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(args []string, timeout time.Duration, indent string, stdin io.Reader, stdout io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("expected at most one script, got %d", len(args))
	}

	var (
		source []byte
		err    error
	)
	if len(args) == 1 {
		source, err = os.ReadFile(args[0])
	} else {
		source, err = io.ReadAll(stdin)
	}
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	eng := engine.NewEngine()
	eng.Timeout = timeout

	frags, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Printf("%v", e)
		}
		return fmt.Errorf("%d evaluation error(s)", len(evalErrs))
	}

	if err := element.Encode(stdout, indent, frags...); err != nil {
		return fmt.Errorf("write fragments: %w", err)
	}
	if len(frags) > 0 {
		_, err = io.WriteString(stdout, "\n")
	}
	return err
}
