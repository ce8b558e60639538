// Package engine provides the Lisp front end for sdfgen. It wraps zygomys in
// a sandboxed environment, exposes the fragment builders as builtins and
// returns the fragments a script emits.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/sdfgen/pkg/element"
	"github.com/chazu/sdfgen/pkg/kernel"
	"github.com/chazu/sdfgen/pkg/kernel/sdfx"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. Each call to Evaluate runs in a fresh
// sandboxed environment, but an Engine tracks only its latest request: when
// calls overlap, every call except the newest fails with "evaluation
// superseded by newer request". Use one Engine per independent caller.
type Engine struct {
	// Timeout is the hard limit for a single evaluation. Zero means
	// EvalTimeout.
	Timeout time.Duration

	kernel kernel.Kernel

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine backed by the sdfx geometry kernel.
func NewEngine() *Engine {
	return NewEngineWithKernel(sdfx.New())
}

// NewEngineWithKernel creates an Engine that sizes solid links with k.
func NewEngineWithKernel(k kernel.Kernel) *Engine {
	return &Engine{kernel: k}
}

// Evaluate runs Lisp source and returns the fragments it emitted, in order.
//
// Return semantics:
//   - On success: returns fragments (possibly empty) + nil errors + nil error
//   - On parse/eval failure: returns nil fragments + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
//
// zygomys cannot interrupt a running script. On timeout Evaluate returns, but
// the evaluation goroutine keeps running until the script finishes on its
// own; its result is then dropped.
func (e *Engine) Evaluate(source string) ([]*element.Element, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		frags, evalErrs, err := e.evaluate(source)
		ch <- evalResult{fragments: frags, errors: evalErrs, err: err}
	}()

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	return waitWithTimeout(ch, timeout, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) ([]*element.Element, []EvalError, error) {
	frags := []*element.Element{}

	// Empty source is a valid program that emits nothing.
	if strings.TrimSpace(source) == "" {
		return frags, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, e.kernel, func(f *element.Element) {
		frags = append(frags, f)
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return frags, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
