// Package engine provides the Lisp modeling language for splinter.
// It wraps zygomys in a sandboxed environment and produces a BRep shape
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/kernel/brep"
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

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes Lisp source code and builds the model it describes.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// The model is the argument of the last (model ...) call. Without one it
// is a compound of every shape named with defshape, in definition order,
// which is empty for a program that names nothing.
//
// Return semantics:
//   - On success: returns shape + nil errors + nil error
//   - On parse/eval failure: returns nil shape + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (kernel.Shape, []EvalError, error) {
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

		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{shape: s, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (kernel.Shape, []EvalError, error) {
	m := newModel()
	if strings.TrimSpace(source) == "" {
		return m.shape(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, m)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return m.shape(), nil, nil
}

// model collects what a program defines.
type model struct {
	root  kernel.Shape
	names []string
	named map[string]kernel.Shape
}

func newModel() *model {
	return &model{named: make(map[string]kernel.Shape)}
}

func (m *model) define(name string, s kernel.Shape) {
	if _, ok := m.named[name]; !ok {
		m.names = append(m.names, name)
	}
	m.named[name] = s
}

func (m *model) shape() kernel.Shape {
	if m.root != nil {
		return m.root
	}
	shapes := make([]kernel.Shape, len(m.names))
	for i, n := range m.names {
		shapes[i] = m.named[n]
	}
	return brep.NewCompound(shapes...)
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// No line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
